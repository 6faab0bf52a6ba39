package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"skm-backend/internal/middleware"
	"skm-backend/internal/models"
	"skm-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

const adminSessionLifetime = 24 * time.Hour

type AuthHandler struct {
	adminRepo     *repository.AdminRepo
	jwtSecret     string
	secureCookies bool
}

func NewAuthHandler(adminRepo *repository.AdminRepo, jwtSecret string, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		adminRepo:     adminRepo,
		jwtSecret:     jwtSecret,
		secureCookies: secureCookies,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// --- POST /api/auth/login ---

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "username and password are required"})
		return
	}

	admin, err := h.adminRepo.FindByUsername(r.Context(), req.Username)
	if err != nil {
		log.Printf("Error finding admin: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if admin == nil || bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "incorrect username or password"})
		return
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": admin.ID.Hex(),
		"exp":      time.Now().Add(adminSessionLifetime).Unix(),
		"iat":      time.Now().Unix(),
	})
	tokenString, err := jwtToken.SignedString([]byte(h.jwtSecret))
	if err != nil {
		log.Printf("Error signing JWT: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}

	setCookie(w, middleware.AdminCookieName, tokenString, int(adminSessionLifetime.Seconds()), h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{
		"id":       admin.ID.Hex(),
		"username": admin.Username,
	})
}

// --- POST /api/auth/logout ---

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	setCookie(w, middleware.AdminCookieName, "", -1, h.secureCookies)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// --- GET /api/auth/me ---

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	idHex := middleware.GetAdminID(r.Context())
	id, err := bson.ObjectIDFromHex(idHex)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	admin, err := h.adminRepo.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("Error finding admin: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	if admin == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "admin not found"})
		return
	}

	writeJSON(w, http.StatusOK, admin)
}

// EnsureInitialAdmin creates the bootstrap admin account when it does not
// exist yet. Idempotent; meant to run once at process startup.
func EnsureInitialAdmin(ctx context.Context, adminRepo *repository.AdminRepo, username, password string) error {
	existing, err := adminRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := adminRepo.Create(ctx, &models.Admin{
		Username:     username,
		PasswordHash: string(hash),
	}); err != nil {
		return err
	}
	log.Printf("Initial admin %q created from env", username)
	return nil
}
