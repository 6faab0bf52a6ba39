package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// The 4-point satisfaction scale.
const (
	AnswerVerySatisfied = "VerySatisfied"
	AnswerSatisfied     = "Satisfied"
	AnswerLessSatisfied = "LessSatisfied"
	AnswerNotSatisfied  = "NotSatisfied"
)

// AnswerValues lists the scale in descending order of satisfaction.
var AnswerValues = []string{
	AnswerVerySatisfied,
	AnswerSatisfied,
	AnswerLessSatisfied,
	AnswerNotSatisfied,
}

func ValidAnswerValue(a string) bool {
	switch a {
	case AnswerVerySatisfied, AnswerSatisfied, AnswerLessSatisfied, AnswerNotSatisfied:
		return true
	}
	return false
}

// Answer is one rating inside a submission. QuestionText is a snapshot of
// the question's text at submission time, so later edits to the question do
// not rewrite history; counting always matches by QuestionID.
type Answer struct {
	QuestionID   bson.ObjectID `bson:"question_id" json:"questionId"`
	QuestionText string        `bson:"question_text" json:"questionText"`
	Answer       string        `bson:"answer" json:"answer"`
}

// Submission is one accepted survey attempt. Immutable once written.
// DayBucket is the server-local YYYY-MM-DD of SubmittedAt and backs the
// unique (respondent_id, day_bucket) index that enforces one submission per
// respondent per calendar day.
type Submission struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	RespondentID     bson.ObjectID `bson:"respondent_id" json:"respondentId"`
	CorrelationToken string        `bson:"correlation_token,omitempty" json:"-"`
	Answers          []Answer      `bson:"answers" json:"answers"`
	SubmittedAt      time.Time     `bson:"submitted_at" json:"submittedAt"`
	DayBucket        string        `bson:"day_bucket" json:"-"`
}

// DayBucketFor formats t in the server-local calendar-day key used for
// submission dedup.
func DayBucketFor(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
