package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"skm-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type stubRespondentStore struct {
	respondents []*models.Respondent
}

func (s *stubRespondentStore) FindByIdentity(ctx context.Context, name, gender string, age int, visitFrequency string) (*models.Respondent, error) {
	for _, r := range s.respondents {
		if strings.EqualFold(r.Name, name) && r.Gender == gender && r.Age == age && r.VisitFrequency == visitFrequency {
			return r, nil
		}
	}
	return nil, nil
}

func (s *stubRespondentStore) Create(ctx context.Context, respondent *models.Respondent) error {
	respondent.ID = bson.NewObjectID()
	respondent.CreatedAt = time.Now()
	s.respondents = append(s.respondents, respondent)
	return nil
}

func (s *stubRespondentStore) Count(ctx context.Context) (int64, error) {
	return int64(len(s.respondents)), nil
}

type stubSubmissionStore struct {
	submissions []*models.Submission
}

func (s *stubSubmissionStore) Create(ctx context.Context, submission *models.Submission) error {
	for _, existing := range s.submissions {
		if existing.RespondentID == submission.RespondentID && existing.DayBucket == submission.DayBucket {
			return ErrDuplicateSubmission
		}
	}
	submission.ID = bson.NewObjectID()
	s.submissions = append(s.submissions, submission)
	return nil
}

func (s *stubSubmissionStore) FindByCorrelationToken(ctx context.Context, token string) (*models.Submission, error) {
	for _, sub := range s.submissions {
		if sub.CorrelationToken == token {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *stubSubmissionStore) FindByRespondentBetween(ctx context.Context, respondentID bson.ObjectID, start, end time.Time) (*models.Submission, error) {
	for _, sub := range s.submissions {
		if sub.RespondentID == respondentID && !sub.SubmittedAt.Before(start) && !sub.SubmittedAt.After(end) {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *stubSubmissionStore) FindAll(ctx context.Context) ([]*models.Submission, error) {
	return s.submissions, nil
}

func (s *stubSubmissionStore) RemoveQuestionAnswers(ctx context.Context, questionID bson.ObjectID) (int64, error) {
	var modified int64
	for _, sub := range s.submissions {
		kept := sub.Answers[:0]
		removed := false
		for _, a := range sub.Answers {
			if a.QuestionID == questionID {
				removed = true
				continue
			}
			kept = append(kept, a)
		}
		sub.Answers = kept
		if removed {
			modified++
		}
	}
	return modified, nil
}

type surveyFixture struct {
	svc         *SurveyService
	questions   *stubQuestionStore
	respondents *stubRespondentStore
	submissions *stubSubmissionStore
	tokenStore  *stubTokenStore
}

func newSurveyFixture(now time.Time, questionTexts ...string) *surveyFixture {
	questions := &stubQuestionStore{}
	for _, text := range questionTexts {
		questions.questions = append(questions.questions, &models.Question{
			ID:           bson.NewObjectID(),
			QuestionText: text,
			IsActive:     true,
		})
	}

	respondents := &stubRespondentStore{}
	submissions := &stubSubmissionStore{}
	tokenStore := &stubTokenStore{}
	tokens := newTestTokenService(tokenStore, now)

	svc := NewSurveyService(questions, respondents, submissions, tokens)
	svc.now = func() time.Time { return now }

	return &surveyFixture{
		svc:         svc,
		questions:   questions,
		respondents: respondents,
		submissions: submissions,
		tokenStore:  tokenStore,
	}
}

func (f *surveyFixture) answersForAll(value string) []AnswerInput {
	answers := make([]AnswerInput, 0, len(f.questions.questions))
	for _, q := range f.questions.questions {
		answers = append(answers, AnswerInput{QuestionID: q.ID, Answer: value})
	}
	return answers
}

func validRespondentData() RespondentData {
	return RespondentData{
		Name:           "Ani",
		Gender:         models.GenderFemale,
		Age:            30,
		VisitFrequency: models.VisitFirstTime,
	}
}

func TestAcceptCreatesSubmission(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	f := newSurveyFixture(now, "Service speed", "Staff friendliness")

	result, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", "")
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if result.CorrelationToken == "" {
		t.Error("expected a minted correlation token")
	}

	if len(f.respondents.respondents) != 1 {
		t.Fatalf("expected 1 respondent, got %d", len(f.respondents.respondents))
	}
	if len(f.submissions.submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(f.submissions.submissions))
	}

	sub := f.submissions.submissions[0]
	if sub.RespondentID != f.respondents.respondents[0].ID {
		t.Error("submission not linked to the resolved respondent")
	}
	if sub.CorrelationToken != result.CorrelationToken {
		t.Error("submission does not carry the returned correlation token")
	}
	if !sub.SubmittedAt.Equal(now) {
		t.Errorf("expected submittedAt %v, got %v", now, sub.SubmittedAt)
	}
	if sub.DayBucket != "2025-06-01" {
		t.Errorf("unexpected day bucket %q", sub.DayBucket)
	}
	if len(sub.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(sub.Answers))
	}
	// Question text is snapshotted from the store at submission time.
	if sub.Answers[0].QuestionText != "Service speed" {
		t.Errorf("expected snapshot text, got %q", sub.Answers[0].QuestionText)
	}
}

func TestAcceptReusesCorrelationToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	f := newSurveyFixture(now, "Service speed")

	result, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "browser-token-1", "")
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}
	if result.CorrelationToken != "browser-token-1" {
		t.Fatalf("expected supplied token to be kept, got %q", result.CorrelationToken)
	}
}

func TestAcceptRejectsKnownCorrelationToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	f := newSurveyFixture(now, "Service speed")

	if _, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "tok-1", ""); err != nil {
		t.Fatalf("first Accept error: %v", err)
	}

	// Same cookie, completely different respondent fields: still rejected.
	other := RespondentData{Name: "Budi", Gender: models.GenderMale, Age: 44, VisitFrequency: models.VisitOften}
	if _, err := f.svc.Accept(context.Background(), other, f.answersForAll(models.AnswerVerySatisfied), "tok-1", ""); err != ErrDuplicateSubmission {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}

	if len(f.respondents.respondents) != 1 {
		t.Errorf("rejected attempt must not create a respondent, have %d", len(f.respondents.respondents))
	}
	if len(f.submissions.submissions) != 1 {
		t.Errorf("rejected attempt must not create a submission, have %d", len(f.submissions.submissions))
	}
}

func TestAcceptRejectsSameIdentitySameDay(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	f := newSurveyFixture(now, "Service speed")

	if _, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", ""); err != nil {
		t.Fatalf("first Accept error: %v", err)
	}

	// No cookie this time (cleared browser), identical identity tuple.
	_, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", "")
	if err != ErrDuplicateSubmission {
		t.Fatalf("expected ErrDuplicateSubmission, got %v", err)
	}

	if len(f.respondents.respondents) != 1 {
		t.Errorf("expected exactly 1 respondent, got %d", len(f.respondents.respondents))
	}
	if len(f.submissions.submissions) != 1 {
		t.Errorf("expected exactly 1 submission, got %d", len(f.submissions.submissions))
	}
}

func TestAcceptIdentityMatchIsCaseInsensitive(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	f := newSurveyFixture(now, "Service speed")

	if _, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", ""); err != nil {
		t.Fatalf("first Accept error: %v", err)
	}

	data := validRespondentData()
	data.Name = "aNi"
	if _, err := f.svc.Accept(context.Background(), data, f.answersForAll(models.AnswerSatisfied), "", ""); err != ErrDuplicateSubmission {
		t.Fatalf("expected case-insensitive identity match to reject, got %v", err)
	}
	if len(f.respondents.respondents) != 1 {
		t.Errorf("expected name casing not to create a second respondent, got %d", len(f.respondents.respondents))
	}
}

func TestAcceptDifferentAgeIsDifferentIdentity(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	f := newSurveyFixture(now, "Service speed")

	if _, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", ""); err != nil {
		t.Fatalf("first Accept error: %v", err)
	}

	data := validRespondentData()
	data.Age = 31
	if _, err := f.svc.Accept(context.Background(), data, f.answersForAll(models.AnswerSatisfied), "", ""); err != nil {
		t.Fatalf("expected different tuple to be accepted, got %v", err)
	}
	if len(f.respondents.respondents) != 2 {
		t.Errorf("expected 2 respondents, got %d", len(f.respondents.respondents))
	}
}

func TestAcceptAllowsNextCalendarDay(t *testing.T) {
	// Fixed day boundary, not a rolling 24h window: 23:59 and 00:01 the
	// next minute are different days and both accepted.
	lateNight := time.Date(2025, 6, 1, 23, 59, 0, 0, time.Local)
	f := newSurveyFixture(lateNight, "Service speed")

	if _, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", ""); err != nil {
		t.Fatalf("first Accept error: %v", err)
	}

	f.svc.now = func() time.Time { return time.Date(2025, 6, 2, 0, 1, 0, 0, time.Local) }
	if _, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", ""); err != nil {
		t.Fatalf("expected next-day submission to be accepted, got %v", err)
	}
	if len(f.submissions.submissions) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(f.submissions.submissions))
	}
}

func TestAcceptValidation(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name        string
		data        RespondentData
		answers     func(f *surveyFixture) []AnswerInput
		wantMessage string
	}{
		{
			name: "empty name",
			data: RespondentData{Name: "  ", Gender: models.GenderFemale, Age: 30, VisitFrequency: models.VisitFirstTime},
			answers: func(f *surveyFixture) []AnswerInput {
				return f.answersForAll(models.AnswerSatisfied)
			},
			wantMessage: "name must not be empty",
		},
		{
			name: "underage",
			data: RespondentData{Name: "Ani", Gender: models.GenderFemale, Age: 17, VisitFrequency: models.VisitFirstTime},
			answers: func(f *surveyFixture) []AnswerInput {
				return f.answersForAll(models.AnswerSatisfied)
			},
			wantMessage: "age must be 18 or older",
		},
		{
			name: "missing answer entry",
			data: validRespondentData(),
			answers: func(f *surveyFixture) []AnswerInput {
				return f.answersForAll(models.AnswerSatisfied)[:1]
			},
			wantMessage: "please answer all survey questions",
		},
		{
			name: "empty answer names the question",
			data: validRespondentData(),
			answers: func(f *surveyFixture) []AnswerInput {
				answers := f.answersForAll(models.AnswerSatisfied)
				answers[1].Answer = ""
				return answers
			},
			wantMessage: `question "Staff friendliness" has not been answered`,
		},
		{
			name: "answer for wrong question names the missing one",
			data: validRespondentData(),
			answers: func(f *surveyFixture) []AnswerInput {
				answers := f.answersForAll(models.AnswerSatisfied)
				answers[1].QuestionID = answers[0].QuestionID
				return answers
			},
			wantMessage: `question "Staff friendliness" has not been answered`,
		},
		{
			name: "value outside the scale",
			data: validRespondentData(),
			answers: func(f *surveyFixture) []AnswerInput {
				answers := f.answersForAll(models.AnswerSatisfied)
				answers[0].Answer = "Ecstatic"
				return answers
			},
			wantMessage: `invalid answer "Ecstatic" for question "Service speed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSurveyFixture(now, "Service speed", "Staff friendliness")

			_, err := f.svc.Accept(context.Background(), tt.data, tt.answers(f), "", "")
			if !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if err.Error() != tt.wantMessage {
				t.Fatalf("expected message %q, got %q", tt.wantMessage, err.Error())
			}

			// Validation happens before respondent resolution: no orphans.
			if len(f.respondents.respondents) != 0 {
				t.Errorf("validation failure must not create a respondent, have %d", len(f.respondents.respondents))
			}
			if len(f.submissions.submissions) != 0 {
				t.Errorf("validation failure must not create a submission, have %d", len(f.submissions.submissions))
			}
		})
	}
}

func TestAcceptRedeemsAccessToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	f := newSurveyFixture(now, "Service speed")

	token := &models.Token{ID: bson.NewObjectID(), TokenCode: "Abc12", IsActive: true, ExpiresAt: now.Add(time.Hour)}
	f.tokenStore.tokens = append(f.tokenStore.tokens, token)

	if _, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", "Abc12"); err != nil {
		t.Fatalf("Accept error: %v", err)
	}

	if token.UsedBy == nil {
		t.Fatal("expected token to be redeemed by the submission")
	}
	if *token.UsedBy != f.respondents.respondents[0].ID {
		t.Error("expected token to be bound to the resolved respondent")
	}
	if token.IsActive {
		t.Error("expected redeemed token to be inactive")
	}
}

func TestAcceptRejectsBadAccessToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		token   *models.Token
		code    string
		wantErr error
	}{
		{name: "unknown code", code: "NOPE5", wantErr: ErrTokenNotFound},
		{
			name:    "expired code",
			token:   &models.Token{TokenCode: "Old12", IsActive: true, ExpiresAt: now.Add(-time.Minute)},
			code:    "Old12",
			wantErr: ErrTokenExpired,
		},
		{
			name:    "used code",
			token:   &models.Token{TokenCode: "Usd12", IsActive: false, ExpiresAt: now.Add(time.Hour)},
			code:    "Usd12",
			wantErr: ErrTokenAlreadyUsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSurveyFixture(now, "Service speed")
			if tt.token != nil {
				tt.token.ID = bson.NewObjectID()
				f.tokenStore.tokens = append(f.tokenStore.tokens, tt.token)
			}

			_, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", tt.code)
			if err != tt.wantErr {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			// Token is checked before anything is written.
			if len(f.respondents.respondents) != 0 || len(f.submissions.submissions) != 0 {
				t.Error("rejected token must not leave partial state")
			}
		})
	}
}

func TestHasSubmitted(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)
	f := newSurveyFixture(now, "Service speed")

	has, err := f.svc.HasSubmitted(context.Background(), "")
	if err != nil || has {
		t.Fatalf("expected false for empty token, got %v/%v", has, err)
	}

	result, err := f.svc.Accept(context.Background(), validRespondentData(), f.answersForAll(models.AnswerSatisfied), "", "")
	if err != nil {
		t.Fatalf("Accept error: %v", err)
	}

	has, err = f.svc.HasSubmitted(context.Background(), result.CorrelationToken)
	if err != nil {
		t.Fatalf("HasSubmitted error: %v", err)
	}
	if !has {
		t.Error("expected true for a bound correlation token")
	}

	has, err = f.svc.HasSubmitted(context.Background(), "never-seen")
	if err != nil || has {
		t.Errorf("expected false for unknown token, got %v/%v", has, err)
	}
}
