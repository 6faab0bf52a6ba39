package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"skm-backend/internal/notify"
	"skm-backend/internal/service"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// SurveyCookieName carries the correlation token linking repeat requests
// from the same browser to a prior submission.
const SurveyCookieName = "surveySubmitted"

const surveyCookieLifetime = 24 * time.Hour

type SurveyHandler struct {
	surveys       *service.SurveyService
	stats         *service.StatsService
	notifier      notify.Notifier
	secureCookies bool
}

func NewSurveyHandler(surveys *service.SurveyService, stats *service.StatsService, notifier notify.Notifier, secureCookies bool) *SurveyHandler {
	return &SurveyHandler{
		surveys:       surveys,
		stats:         stats,
		notifier:      notifier,
		secureCookies: secureCookies,
	}
}

type submitRespondentData struct {
	Name           string `json:"name"`
	Gender         string `json:"gender"`
	Age            int    `json:"age"`
	VisitFrequency string `json:"visitFrequency"`
}

type submitAnswer struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

type SubmitSurveyRequest struct {
	RespondentData submitRespondentData `json:"respondentData"`
	Answers        []submitAnswer       `json:"answers"`
	TokenCode      string               `json:"tokenCode,omitempty"`
}

// --- POST /api/surveys ---

func (h *SurveyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	answers := make([]service.AnswerInput, 0, len(req.Answers))
	for _, a := range req.Answers {
		id, err := bson.ObjectIDFromHex(a.QuestionID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid question id"})
			return
		}
		answers = append(answers, service.AnswerInput{QuestionID: id, Answer: a.Answer})
	}

	correlationToken := ""
	if cookie, err := r.Cookie(SurveyCookieName); err == nil {
		correlationToken = cookie.Value
	}

	result, err := h.surveys.Accept(r.Context(), service.RespondentData{
		Name:           req.RespondentData.Name,
		Gender:         req.RespondentData.Gender,
		Age:            req.RespondentData.Age,
		VisitFrequency: req.RespondentData.VisitFrequency,
	}, answers, correlationToken, req.TokenCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setCookie(w, SurveyCookieName, result.CorrelationToken, int(surveyCookieLifetime.Seconds()), h.secureCookies)

	// Notify the admin in the background; delivery is best-effort.
	go func() {
		message := fmt.Sprintf("Respondent %s (%s, %d) submitted the satisfaction survey.",
			req.RespondentData.Name, req.RespondentData.Gender, req.RespondentData.Age)
		if err := h.notifier.Publish(context.Background(), "New survey submission", message); err != nil {
			log.Printf("Error publishing notification: %v", err)
		}
	}()

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "Survey submitted successfully. Thank you for your participation!",
	})
}

// --- GET /api/surveys/check-status ---

func (h *SurveyHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	correlationToken := ""
	if cookie, err := r.Cookie(SurveyCookieName); err == nil {
		correlationToken = cookie.Value
	}

	hasSubmitted, err := h.surveys.HasSubmitted(r.Context(), correlationToken)
	if err != nil {
		log.Printf("Error checking submission status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"hasSubmitted": hasSubmitted})
}

// --- GET /api/surveys/statistics ---

func (h *SurveyHandler) OverallStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Overall(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- GET /api/surveys/admin-statistics ---

func (h *SurveyHandler) DashboardStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- GET /api/surveys/results-by-question ---

func (h *SurveyHandler) ResultsByQuestion(w http.ResponseWriter, r *http.Request) {
	results, err := h.stats.ResultsByQuestion(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
