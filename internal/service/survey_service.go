package service

import (
	"context"
	"log"
	"strings"
	"time"

	"skm-backend/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// ActiveQuestionLister supplies the currently-active question set a
// submission must cover.
type ActiveQuestionLister interface {
	FindActive(ctx context.Context) ([]*models.Question, error)
}

// RespondentStore resolves and creates respondent identities.
type RespondentStore interface {
	FindByIdentity(ctx context.Context, name, gender string, age int, visitFrequency string) (*models.Respondent, error)
	Create(ctx context.Context, respondent *models.Respondent) error
}

// SubmissionStore persists accepted submissions. Create must return
// ErrDuplicateSubmission when the (respondent_id, day_bucket) unique index
// rejects the insert — that is what closes the double-submit race.
type SubmissionStore interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByCorrelationToken(ctx context.Context, token string) (*models.Submission, error)
	FindByRespondentBetween(ctx context.Context, respondentID bson.ObjectID, start, end time.Time) (*models.Submission, error)
}

// RespondentData is the identity tuple carried by a submission request.
type RespondentData struct {
	Name           string
	Gender         string
	Age            int
	VisitFrequency string
}

// AnswerInput is one rating as sent by the client.
type AnswerInput struct {
	QuestionID bson.ObjectID
	Answer     string
}

// AcceptResult is returned on a successful submission. CorrelationToken is
// the provided-or-minted opaque token the caller should keep client-side
// (cookie, ~24h) for the fast duplicate check on later attempts.
type AcceptResult struct {
	SubmissionID     bson.ObjectID
	CorrelationToken string
}

// SurveyService is the submission deduplication engine. Exactly one
// accepted submission per respondent identity per server-local calendar
// day, guarded by two independent signals: the correlation token and the
// identity+day match.
type SurveyService struct {
	questions   ActiveQuestionLister
	respondents RespondentStore
	submissions SubmissionStore
	tokens      *TokenService
	now         func() time.Time
}

func NewSurveyService(questions ActiveQuestionLister, respondents RespondentStore, submissions SubmissionStore, tokens *TokenService) *SurveyService {
	return &SurveyService{
		questions:   questions,
		respondents: respondents,
		submissions: submissions,
		tokens:      tokens,
		now:         time.Now,
	}
}

// Accept runs the full acceptance pipeline. tokenCode is the optional
// one-time access code; correlationToken is the optional client cookie
// value. Rejections never leave partial state: answers are validated
// before the respondent is resolved, so a malformed submission cannot
// create an orphan respondent.
func (s *SurveyService) Accept(ctx context.Context, data RespondentData, answers []AnswerInput, correlationToken, tokenCode string) (*AcceptResult, error) {
	// Access code, when supplied, must be redeemable before anything is
	// written. Redemption itself happens after the submission persists.
	if tokenCode != "" {
		if err := s.tokens.Validate(ctx, tokenCode); err != nil {
			return nil, err
		}
	}

	// Fast path: a correlation token already bound to a submission means
	// this browser submitted before. No respondent scan needed.
	if correlationToken != "" {
		existing, err := s.submissions.FindByCorrelationToken(ctx, correlationToken)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateSubmission
		}
	}

	if err := validateRespondentData(data); err != nil {
		return nil, err
	}

	active, err := s.questions.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	byQuestion, err := validateAnswers(active, answers)
	if err != nil {
		return nil, err
	}

	respondent, err := s.resolveRespondent(ctx, data)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start, end := dayBounds(now)
	sameDay, err := s.submissions.FindByRespondentBetween(ctx, respondent.ID, start, end)
	if err != nil {
		return nil, err
	}
	if sameDay != nil {
		return nil, ErrDuplicateSubmission
	}

	if correlationToken == "" {
		correlationToken = uuid.New().String()
	}

	submission := &models.Submission{
		RespondentID:     respondent.ID,
		CorrelationToken: correlationToken,
		Answers:          make([]models.Answer, 0, len(active)),
		SubmittedAt:      now,
		DayBucket:        models.DayBucketFor(now),
	}
	for _, q := range active {
		submission.Answers = append(submission.Answers, models.Answer{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
			Answer:       byQuestion[q.ID],
		})
	}

	if err := s.submissions.Create(ctx, submission); err != nil {
		return nil, err
	}

	if tokenCode != "" {
		// The submission is already accepted at this point; a token that
		// lost a redemption race or a store hiccup must not fail it.
		redeemed, err := s.tokens.Redeem(ctx, tokenCode, respondent.ID)
		if err != nil {
			log.Printf("Error redeeming token %s: %v", tokenCode, err)
		} else if !redeemed {
			log.Printf("Token %s was no longer redeemable after submission %s", tokenCode, submission.ID.Hex())
		}
	}

	return &AcceptResult{
		SubmissionID:     submission.ID,
		CorrelationToken: correlationToken,
	}, nil
}

// HasSubmitted reports whether a correlation token is already bound to an
// accepted submission.
func (s *SurveyService) HasSubmitted(ctx context.Context, correlationToken string) (bool, error) {
	if correlationToken == "" {
		return false, nil
	}
	existing, err := s.submissions.FindByCorrelationToken(ctx, correlationToken)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

func (s *SurveyService) resolveRespondent(ctx context.Context, data RespondentData) (*models.Respondent, error) {
	existing, err := s.respondents.FindByIdentity(ctx, data.Name, data.Gender, data.Age, data.VisitFrequency)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	respondent := &models.Respondent{
		Name:           data.Name,
		Gender:         data.Gender,
		Age:            data.Age,
		VisitFrequency: data.VisitFrequency,
	}
	if err := s.respondents.Create(ctx, respondent); err != nil {
		return nil, err
	}
	return respondent, nil
}

func validateRespondentData(data RespondentData) error {
	if strings.TrimSpace(data.Name) == "" {
		return NewValidationError("name must not be empty")
	}
	if !models.ValidGender(data.Gender) {
		return NewValidationError("gender must be %q or %q", models.GenderMale, models.GenderFemale)
	}
	if data.Age < 18 {
		return NewValidationError("age must be 18 or older")
	}
	if !models.ValidVisitFrequency(data.VisitFrequency) {
		return NewValidationError("invalid visit frequency %q", data.VisitFrequency)
	}
	return nil
}

// validateAnswers requires exactly one valid answer per active question and
// returns the answers keyed by question id. The first missing question, in
// active-question order, is named in the error.
func validateAnswers(active []*models.Question, answers []AnswerInput) (map[bson.ObjectID]string, error) {
	if len(answers) != len(active) {
		return nil, NewValidationError("please answer all survey questions")
	}

	byQuestion := make(map[bson.ObjectID]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Answer
	}

	for _, q := range active {
		answer, ok := byQuestion[q.ID]
		if !ok {
			return nil, NewValidationError("question %q has not been answered", q.QuestionText)
		}
		if answer == "" {
			return nil, NewValidationError("question %q has not been answered", q.QuestionText)
		}
		if !models.ValidAnswerValue(answer) {
			return nil, NewValidationError("invalid answer %q for question %q", answer, q.QuestionText)
		}
	}

	return byQuestion, nil
}

// dayBounds returns the server-local calendar-day window for t. This is a
// fixed day boundary, not a rolling 24h window: 23:59 and 00:01 the next
// minute land in different windows and are both accepted.
func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.Local()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}
