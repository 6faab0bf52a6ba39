package service

import (
	"context"
	"math"

	"skm-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// IKM category thresholds on the 0-100 index.
const (
	ikmVeryGood = 88.31
	ikmGood     = 76.61
	ikmPoor     = 65.0
)

// Per-answer weights for the IKM weighted average.
var answerWeights = map[string]int{
	models.AnswerVerySatisfied: 4,
	models.AnswerSatisfied:     3,
	models.AnswerLessSatisfied: 2,
	models.AnswerNotSatisfied:  1,
}

type QuestionLister interface {
	FindAll(ctx context.Context) ([]*models.Question, error)
}

type SubmissionLister interface {
	FindAll(ctx context.Context) ([]*models.Submission, error)
}

type RespondentCounter interface {
	Count(ctx context.Context) (int64, error)
}

// OverallStats buckets every individual answer across all submissions into
// the four satisfaction categories.
type OverallStats struct {
	SatisfactionPercentages map[string]float64 `json:"satisfactionPercentages"`
	TotalRespondents        int64              `json:"totalRespondents"`
}

// DashboardStats is the admin dashboard aggregate.
type DashboardStats struct {
	TotalRespondents        int64              `json:"totalRespondents"`
	TotalQuestions          int                `json:"totalSurveyQuestions"`
	SatisfactionCounts      map[string]int     `json:"satisfactionCounts"`
	SatisfactionPercentages map[string]float64 `json:"satisfactionPercentages"`
	OverallIKM              float64            `json:"overallIKM"`
	IKMCategory             string             `json:"ikmCategory"`
}

// QuestionResult is the per-question breakdown. Answers are matched by
// question id, never by text, so edits to a question's wording do not
// fragment its history.
type QuestionResult struct {
	QuestionID   bson.ObjectID  `json:"questionId"`
	QuestionText string         `json:"questionText"`
	IsActive     bool           `json:"isActive"`
	Counts       map[string]int `json:"answers"`
	TotalAnswers int            `json:"totalAnswersForThisQuestion"`
	IKM          float64        `json:"ikm"`
	Category     string         `json:"category"`
}

// StatsService derives satisfaction percentages and the IKM index from the
// recorded submissions.
type StatsService struct {
	questions   QuestionLister
	submissions SubmissionLister
	respondents RespondentCounter
}

func NewStatsService(questions QuestionLister, submissions SubmissionLister, respondents RespondentCounter) *StatsService {
	return &StatsService{
		questions:   questions,
		submissions: submissions,
		respondents: respondents,
	}
}

// Overall returns each satisfaction category as a percentage of all
// recorded answers, one decimal place, plus the distinct respondent count.
// Zero submissions yield all-zero percentages, never an error.
func (s *StatsService) Overall(ctx context.Context) (*OverallStats, error) {
	submissions, err := s.submissions.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	counts, total := countAnswers(submissions)

	totalRespondents, err := s.respondents.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &OverallStats{
		SatisfactionPercentages: percentagesOf(counts, total),
		TotalRespondents:        totalRespondents,
	}, nil
}

// Dashboard returns the admin overview: totals, category counts and
// percentages, and the overall IKM with its category.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	questions, err := s.questions.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissions.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	totalRespondents, err := s.respondents.Count(ctx)
	if err != nil {
		return nil, err
	}

	counts, total := countAnswers(submissions)
	ikm := overallIKM(questions, submissions)

	return &DashboardStats{
		TotalRespondents:        totalRespondents,
		TotalQuestions:          len(questions),
		SatisfactionCounts:      counts,
		SatisfactionPercentages: percentagesOf(counts, total),
		OverallIKM:              ikm,
		IKMCategory:             IKMCategory(ikm),
	}, nil
}

// ResultsByQuestion breaks every question that has ever existed (active or
// not) down by satisfaction value, with the question's IKM score.
func (s *StatsService) ResultsByQuestion(ctx context.Context) ([]*QuestionResult, error) {
	questions, err := s.questions.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissions.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*QuestionResult, 0, len(questions))
	for _, q := range questions {
		counts := emptyCounts()
		total := 0
		for _, sub := range submissions {
			for _, answer := range sub.Answers {
				if answer.QuestionID != q.ID {
					continue
				}
				if _, ok := counts[answer.Answer]; ok {
					counts[answer.Answer]++
					total++
				}
			}
		}

		ikm := IKMScore(counts, total)
		results = append(results, &QuestionResult{
			QuestionID:   q.ID,
			QuestionText: q.QuestionText,
			IsActive:     q.IsActive,
			Counts:       counts,
			TotalAnswers: total,
			IKM:          ikm,
			Category:     IKMCategory(ikm),
		})
	}

	return results, nil
}

// IKMScore computes the satisfaction index for one question:
// (weighted average on the 1..4 scale / 4) * 100, or 0 with no answers.
func IKMScore(counts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}
	weighted := 0
	for value, count := range counts {
		weighted += answerWeights[value] * count
	}
	avg := float64(weighted) / float64(total)
	return avg / 4 * 100
}

// IKMCategory maps an IKM score to its fixed service-quality label.
func IKMCategory(score float64) string {
	switch {
	case score >= ikmVeryGood:
		return "Very Good"
	case score >= ikmGood:
		return "Good"
	case score >= ikmPoor:
		return "Poor"
	default:
		return "Bad"
	}
}

// overallIKM is the arithmetic mean of the per-question IKMs, deliberately
// not weighted by answer count.
func overallIKM(questions []*models.Question, submissions []*models.Submission) float64 {
	if len(questions) == 0 {
		return 0
	}
	sum := 0.0
	for _, q := range questions {
		counts := emptyCounts()
		total := 0
		for _, sub := range submissions {
			for _, answer := range sub.Answers {
				if answer.QuestionID != q.ID {
					continue
				}
				if _, ok := counts[answer.Answer]; ok {
					counts[answer.Answer]++
					total++
				}
			}
		}
		sum += IKMScore(counts, total)
	}
	return sum / float64(len(questions))
}

func countAnswers(submissions []*models.Submission) (map[string]int, int) {
	counts := emptyCounts()
	total := 0
	for _, sub := range submissions {
		for _, answer := range sub.Answers {
			if _, ok := counts[answer.Answer]; ok {
				counts[answer.Answer]++
				total++
			}
		}
	}
	return counts, total
}

func emptyCounts() map[string]int {
	counts := make(map[string]int, len(models.AnswerValues))
	for _, value := range models.AnswerValues {
		counts[value] = 0
	}
	return counts
}

func percentagesOf(counts map[string]int, total int) map[string]float64 {
	percentages := make(map[string]float64, len(counts))
	for _, value := range models.AnswerValues {
		if total == 0 {
			percentages[value] = 0
			continue
		}
		percentages[value] = round1(float64(counts[value]) / float64(total) * 100)
	}
	return percentages
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
