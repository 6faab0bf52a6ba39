package service

import (
	"context"
	"testing"
	"time"

	"skm-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type stubQuestionStore struct {
	questions []*models.Question
}

func (s *stubQuestionStore) Insert(ctx context.Context, question *models.Question) error {
	question.ID = bson.NewObjectID()
	question.CreatedAt = time.Now()
	question.UpdatedAt = question.CreatedAt
	s.questions = append(s.questions, question)
	return nil
}

func (s *stubQuestionStore) FindByText(ctx context.Context, text string) (*models.Question, error) {
	for _, q := range s.questions {
		if q.QuestionText == text {
			return q, nil
		}
	}
	return nil, nil
}

func (s *stubQuestionStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.Question, error) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (s *stubQuestionStore) FindAll(ctx context.Context) ([]*models.Question, error) {
	return s.questions, nil
}

func (s *stubQuestionStore) FindActive(ctx context.Context) ([]*models.Question, error) {
	out := []*models.Question{}
	for _, q := range s.questions {
		if q.IsActive {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *stubQuestionStore) Update(ctx context.Context, question *models.Question) error {
	for i, q := range s.questions {
		if q.ID == question.ID {
			s.questions[i] = question
		}
	}
	return nil
}

func (s *stubQuestionStore) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	for i, q := range s.questions {
		if q.ID == id {
			s.questions = append(s.questions[:i], s.questions[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestQuestionCreate(t *testing.T) {
	store := &stubQuestionStore{}
	svc := NewQuestionService(store, &stubSubmissionStore{})

	question, err := svc.Create(context.Background(), "  Service speed  ")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if question.QuestionText != "Service speed" {
		t.Errorf("expected trimmed text, got %q", question.QuestionText)
	}
	if !question.IsActive {
		t.Error("expected new question to be active")
	}

	if _, err := svc.Create(context.Background(), "Service speed"); err != ErrQuestionExists {
		t.Fatalf("expected ErrQuestionExists, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "   "); !IsValidation(err) {
		t.Fatalf("expected ValidationError for empty text, got %v", err)
	}
}

func TestQuestionUpdate(t *testing.T) {
	store := &stubQuestionStore{}
	svc := NewQuestionService(store, &stubSubmissionStore{})

	question, err := svc.Create(context.Background(), "Service speed")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "Staff friendliness"); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	newText := "Queue waiting time"
	inactive := false
	updated, err := svc.Update(context.Background(), question.ID, &newText, &inactive)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.QuestionText != "Queue waiting time" {
		t.Errorf("expected updated text, got %q", updated.QuestionText)
	}
	if updated.IsActive {
		t.Error("expected question to be inactive")
	}

	// Text must stay unique across questions.
	clash := "Staff friendliness"
	if _, err := svc.Update(context.Background(), question.ID, &clash, nil); err != ErrQuestionExists {
		t.Fatalf("expected ErrQuestionExists, got %v", err)
	}

	if _, err := svc.Update(context.Background(), bson.NewObjectID(), &newText, nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuestionDeleteCascades(t *testing.T) {
	store := &stubQuestionStore{}
	submissions := &stubSubmissionStore{}
	svc := NewQuestionService(store, submissions)

	kept, err := svc.Create(context.Background(), "Service speed")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	doomed, err := svc.Create(context.Background(), "Staff friendliness")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	respondentID := bson.NewObjectID()
	submissions.submissions = append(submissions.submissions, &models.Submission{
		ID:           bson.NewObjectID(),
		RespondentID: respondentID,
		Answers: []models.Answer{
			{QuestionID: kept.ID, QuestionText: kept.QuestionText, Answer: models.AnswerSatisfied},
			{QuestionID: doomed.ID, QuestionText: doomed.QuestionText, Answer: models.AnswerNotSatisfied},
		},
		SubmittedAt: time.Now(),
	})

	if err := svc.Delete(context.Background(), doomed.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if len(store.questions) != 1 {
		t.Fatalf("expected 1 remaining question, got %d", len(store.questions))
	}

	// The deleted question's answer is gone; the rest of the submission
	// (other answers, respondent link) is intact.
	sub := submissions.submissions[0]
	if len(sub.Answers) != 1 {
		t.Fatalf("expected 1 remaining answer, got %d", len(sub.Answers))
	}
	if sub.Answers[0].QuestionID != kept.ID {
		t.Error("wrong answer was removed")
	}
	if sub.RespondentID != respondentID {
		t.Error("respondent link must survive the cascade")
	}

	if err := svc.Delete(context.Background(), bson.NewObjectID()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
