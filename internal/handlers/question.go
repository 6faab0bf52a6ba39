package handlers

import (
	"encoding/json"
	"net/http"

	"skm-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuestionHandler struct {
	questions *service.QuestionService
}

func NewQuestionHandler(questions *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

type CreateQuestionRequest struct {
	QuestionText string `json:"questionText"`
}

type UpdateQuestionRequest struct {
	QuestionText *string `json:"questionText,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// --- POST /api/questions ---

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	question, err := h.questions.Create(r.Context(), req.QuestionText)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// --- GET /api/questions ---
// Public: returns only the active questions the survey form renders.

func (h *QuestionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questions.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// --- GET /api/questions/{id} ---

func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid question id"})
		return
	}

	question, err := h.questions.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// --- PUT /api/questions/{id} ---

func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid question id"})
		return
	}

	var req UpdateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	question, err := h.questions.Update(r.Context(), id, req.QuestionText, req.IsActive)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// --- DELETE /api/questions/{id} ---

func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid question id"})
		return
	}

	if err := h.questions.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Question and all related answer data deleted",
	})
}
