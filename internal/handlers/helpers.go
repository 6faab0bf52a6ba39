package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"skm-backend/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError maps the service error taxonomy to HTTP statuses.
// Anything outside the taxonomy is an infrastructure failure: logged, and
// answered with a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": ve.Message})
		return
	}

	switch {
	case errors.Is(err, service.ErrDuplicateSubmission):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "You have already filled in the survey today. Thank you for your participation!",
		})
	case errors.Is(err, service.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Token quantity must be between 1 and 10"})
	case errors.Is(err, service.ErrTokenInvalidFormat):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid token format"})
	case errors.Is(err, service.ErrTokenNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Token not found"})
	case errors.Is(err, service.ErrTokenExpired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Token has expired"})
	case errors.Is(err, service.ErrTokenAlreadyUsed):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Token has already been used"})
	case errors.Is(err, service.ErrQuestionExists):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Question already exists"})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found"})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
	}
}

// setCookie applies the shared cookie policy: httpOnly, path-wide, Secure +
// SameSite=None behind TLS in production and Lax otherwise.
func setCookie(w http.ResponseWriter, name, value string, maxAge int, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}
