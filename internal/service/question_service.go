package service

import (
	"context"
	"strings"

	"skm-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// QuestionStore is the persistence surface for survey questions.
type QuestionStore interface {
	Insert(ctx context.Context, question *models.Question) error
	FindByText(ctx context.Context, text string) (*models.Question, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Question, error)
	FindAll(ctx context.Context) ([]*models.Question, error)
	FindActive(ctx context.Context) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

// AnswerPruner removes a deleted question's answers from historical
// submissions.
type AnswerPruner interface {
	RemoveQuestionAnswers(ctx context.Context, questionID bson.ObjectID) (int64, error)
}

// QuestionService manages the admin-owned question set.
type QuestionService struct {
	store       QuestionStore
	submissions AnswerPruner
}

func NewQuestionService(store QuestionStore, submissions AnswerPruner) *QuestionService {
	return &QuestionService{store: store, submissions: submissions}
}

// Create adds a new active question. Question text is unique.
func (s *QuestionService) Create(ctx context.Context, text string) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("question text must not be empty")
	}

	existing, err := s.store.FindByText(ctx, text)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrQuestionExists
	}

	question := &models.Question{
		QuestionText: text,
		IsActive:     true,
	}
	if err := s.store.Insert(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuestionService) Get(ctx context.Context, id bson.ObjectID) (*models.Question, error) {
	question, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrNotFound
	}
	return question, nil
}

func (s *QuestionService) ListActive(ctx context.Context) ([]*models.Question, error) {
	return s.store.FindActive(ctx)
}

func (s *QuestionService) ListAll(ctx context.Context) ([]*models.Question, error) {
	return s.store.FindAll(ctx)
}

// Update changes a question's text and/or active flag. Nil means "leave
// unchanged"; empty replacement text is rejected.
func (s *QuestionService) Update(ctx context.Context, id bson.ObjectID, text *string, isActive *bool) (*models.Question, error) {
	question, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrNotFound
	}

	if text != nil {
		trimmed := strings.TrimSpace(*text)
		if trimmed == "" {
			return nil, NewValidationError("question text must not be empty")
		}
		if trimmed != question.QuestionText {
			existing, err := s.store.FindByText(ctx, trimmed)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != question.ID {
				return nil, ErrQuestionExists
			}
			question.QuestionText = trimmed
		}
	}
	if isActive != nil {
		question.IsActive = *isActive
	}

	if err := s.store.Update(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// Delete removes a question and cascades: the question's answer entries are
// pulled out of every historical submission, leaving the submissions
// themselves (other answers, respondent link) intact.
func (s *QuestionService) Delete(ctx context.Context, id bson.ObjectID) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	_, err = s.submissions.RemoveQuestionAnswers(ctx, id)
	return err
}
