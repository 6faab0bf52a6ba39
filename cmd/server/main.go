package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"skm-backend/internal/database"
	"skm-backend/internal/handlers"
	customMiddleware "skm-backend/internal/middleware"
	"skm-backend/internal/notify"
	"skm-backend/internal/repository"
	"skm-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	// Required env vars
	mongoURI := getEnv("MONGODB_URI", "")
	dbName := getEnv("DB_NAME", "skm")
	jwtSecret := getEnv("JWT_SECRET", "")
	adminUsername := getEnv("ADMIN_USERNAME", "")
	adminPassword := getEnv("ADMIN_PASSWORD", "")
	port := getEnv("PORT", "8080")
	frontendURL := getEnv("FRONTEND_URL", "")
	production := getEnv("APP_ENV", "development") == "production"

	if mongoURI == "" {
		log.Fatal("❌ MONGODB_URI is required")
	}
	if jwtSecret == "" {
		log.Fatal("❌ JWT_SECRET is required")
	}
	if adminUsername == "" || adminPassword == "" {
		log.Fatal("❌ ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}

	// Connect to MongoDB
	if err := database.Connect(mongoURI, dbName); err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer database.Disconnect(context.Background())

	// Initialize repositories
	adminRepo := repository.NewAdminRepo()
	questionRepo := repository.NewQuestionRepo()
	respondentRepo := repository.NewRespondentRepo()
	submissionRepo := repository.NewSubmissionRepo()
	tokenRepo := repository.NewTokenRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := adminRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create admin indexes: %v", err)
	}
	if err := questionRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create question indexes: %v", err)
	}
	if err := respondentRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create respondent indexes: %v", err)
	}
	if err := submissionRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create submission indexes: %v", err)
	}
	if err := tokenRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create token indexes: %v", err)
	}

	// Bootstrap the admin account (idempotent)
	if err := handlers.EnsureInitialAdmin(ctx, adminRepo, adminUsername, adminPassword); err != nil {
		log.Fatalf("❌ Failed to ensure initial admin: %v", err)
	}

	// Initialize notifier: email when Resend is configured, mock otherwise
	var notifier notify.Notifier
	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		notifier = notify.NewEmailNotifier(apiKey, getEnv("FROM_EMAIL", ""), getEnv("ADMIN_NOTIFY_EMAIL", ""))
	} else {
		notifier = notify.NewMockNotifier()
	}

	// Initialize services
	tokenService := service.NewTokenService(tokenRepo)
	questionService := service.NewQuestionService(questionRepo, submissionRepo)
	surveyService := service.NewSurveyService(questionRepo, respondentRepo, submissionRepo, tokenService)
	statsService := service.NewStatsService(questionRepo, submissionRepo, respondentRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(adminRepo, jwtSecret, production)
	questionHandler := handlers.NewQuestionHandler(questionService)
	surveyHandler := handlers.NewSurveyHandler(surveyService, statsService, notifier, production)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	respondentHandler := handlers.NewRespondentHandler(respondentRepo, submissionRepo)

	adminAuth := customMiddleware.AdminAuth(jwtSecret, adminRepo)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	allowedOrigins := []string{"*"}
	if frontendURL != "" {
		allowedOrigins = []string{frontendURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"skm-backend"}`))
	})

	// Auth
	r.Post("/api/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(adminAuth)
		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/auth/me", authHandler.Me)
	})

	// Public survey routes (no auth required)
	r.Get("/api/questions", questionHandler.ListActive)
	r.Post("/api/surveys", surveyHandler.Submit)
	r.Get("/api/surveys/check-status", surveyHandler.CheckStatus)
	r.Get("/api/surveys/statistics", surveyHandler.OverallStatistics)
	r.Post("/api/tokens/validate", tokenHandler.Validate)
	r.Get("/api/tokens/active", tokenHandler.ListActivePublic)

	// Admin routes (cookie JWT required)
	r.Group(func(r chi.Router) {
		r.Use(adminAuth)

		r.Post("/api/questions", questionHandler.Create)
		r.Get("/api/questions/{id}", questionHandler.Get)
		r.Put("/api/questions/{id}", questionHandler.Update)
		r.Delete("/api/questions/{id}", questionHandler.Delete)

		r.Get("/api/surveys/admin-statistics", surveyHandler.DashboardStatistics)
		r.Get("/api/surveys/results-by-question", surveyHandler.ResultsByQuestion)

		r.Get("/api/respondents", respondentHandler.List)
		r.Delete("/api/respondents/reset", respondentHandler.ResetAll)
		r.Get("/api/respondents/{id}", respondentHandler.Get)

		r.Post("/api/tokens/generate", tokenHandler.Generate)
		r.Get("/api/tokens", tokenHandler.List)
		r.Delete("/api/tokens/reset", tokenHandler.ResetAll)
		r.Get("/api/tokens/{id}", tokenHandler.Get)
		r.Delete("/api/tokens/{id}", tokenHandler.Delete)
	})

	// Start server
	log.Printf("🚀 SKM backend starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
