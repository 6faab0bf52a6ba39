package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"skm-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type TokenHandler struct {
	tokens *service.TokenService
}

func NewTokenHandler(tokens *service.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

type GenerateTokensRequest struct {
	Quantity int `json:"quantity"`
}

type ValidateTokenRequest struct {
	TokenCode string `json:"tokenCode"`
}

// --- POST /api/tokens/generate ---

func (h *TokenHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	tokens, err := h.tokens.GenerateBatch(r.Context(), req.Quantity)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("%d tokens created", len(tokens)),
		"tokens":  tokens,
	})
}

// --- GET /api/tokens ---

func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 25)

	tokens, total, err := h.tokens.List(r.Context(), page, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokens":      tokens,
		"currentPage": page,
		"totalPages":  totalPages,
		"totalTokens": total,
	})
}

// --- GET /api/tokens/{id} ---

func (h *TokenHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid token id"})
		return
	}

	token, err := h.tokens.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

// --- POST /api/tokens/validate ---
// Advisory only: checks whether a code could be redeemed without
// reserving it.

func (h *TokenHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	if err := h.tokens.Validate(r.Context(), req.TokenCode); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":   true,
		"message": "Token valid",
	})
}

// --- DELETE /api/tokens/{id} ---

func (h *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid token id"})
		return
	}

	if err := h.tokens.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Token deleted"})
}

// --- DELETE /api/tokens/reset ---

func (h *TokenHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tokens.ResetAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       fmt.Sprintf("All tokens (%d) deleted.", deleted),
		"deletedTokens": deleted,
	})
}

// --- GET /api/tokens/active ---
// Public self-service pickup of still-claimable codes.

func (h *TokenHandler) ListActivePublic(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.tokens.ListActivePublic(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokens":      tokens,
		"totalActive": len(tokens),
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
