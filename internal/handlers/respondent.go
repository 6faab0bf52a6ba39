package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"skm-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type RespondentHandler struct {
	respondentRepo *repository.RespondentRepo
	submissionRepo *repository.SubmissionRepo
}

func NewRespondentHandler(respondentRepo *repository.RespondentRepo, submissionRepo *repository.SubmissionRepo) *RespondentHandler {
	return &RespondentHandler{
		respondentRepo: respondentRepo,
		submissionRepo: submissionRepo,
	}
}

// --- GET /api/respondents ---

func (h *RespondentHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 25)

	filter := repository.RespondentFilter{
		Gender:         r.URL.Query().Get("gender"),
		VisitFrequency: r.URL.Query().Get("visitFrequency"),
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("ageMin")); err == nil {
		filter.AgeMin = &v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("ageMax")); err == nil {
		filter.AgeMax = &v
	}
	if from, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("dateFrom"), time.Local); err == nil {
		filter.DateFrom = &from
	}
	if to, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("dateTo"), time.Local); err == nil {
		end := to.Add(24*time.Hour - time.Millisecond)
		filter.DateTo = &end
	}

	respondents, total, err := h.respondentRepo.FindPage(r.Context(), filter, page, limit)
	if err != nil {
		log.Printf("Error fetching respondents: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"respondents":      respondents,
		"currentPage":      page,
		"totalPages":       totalPages,
		"totalRespondents": total,
	})
}

// --- GET /api/respondents/{id} ---

func (h *RespondentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid respondent id"})
		return
	}

	respondent, err := h.respondentRepo.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("Error fetching respondent: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if respondent == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Respondent not found"})
		return
	}

	submission, err := h.submissionRepo.FindByRespondent(r.Context(), id)
	if err != nil {
		log.Printf("Error fetching submission: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"respondent": respondent,
		"submission": submission,
	})
}

// --- DELETE /api/respondents/reset ---
// Bulk reset: wipes every respondent and every submission.

func (h *RespondentHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	deletedRespondents, err := h.respondentRepo.DeleteAll(r.Context())
	if err != nil {
		log.Printf("Error resetting respondents: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	deletedSubmissions, err := h.submissionRepo.DeleteAll(r.Context())
	if err != nil {
		log.Printf("Error resetting submissions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":            "All respondent data and submissions have been reset.",
		"deletedRespondents": deletedRespondents,
		"deletedSubmissions": deletedSubmissions,
	})
}
