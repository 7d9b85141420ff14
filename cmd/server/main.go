package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/speakeasy-practice/backend/internal/auth"
	"github.com/speakeasy-practice/backend/internal/config"
	"github.com/speakeasy-practice/backend/internal/database"
	"github.com/speakeasy-practice/backend/internal/gamification"
	"github.com/speakeasy-practice/backend/internal/logging"
	"github.com/speakeasy-practice/backend/internal/metrics"
	"github.com/speakeasy-practice/backend/internal/middleware"
	"github.com/speakeasy-practice/backend/internal/phrasebank"
	"github.com/speakeasy-practice/backend/internal/practice"
	"github.com/speakeasy-practice/backend/internal/speech"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", "json")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	version, err := database.Migrate(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	logger.Info().Uint("version", version).Msg("migrations applied")

	bank, err := phrasebank.Load(cfg.PhraseBankPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load phrase bank")
	}

	// Initialize services and handlers
	tokens := auth.NewTokens(cfg.JWTSecret)
	gamService := gamification.NewService(gamification.NewStore(db))
	practiceService := practice.NewService(
		practice.NewStore(db),
		bank,
		practice.WithRewarder(gamService),
		practice.WithHinter(speech.NewHinter()),
	)

	authHandler := auth.NewHandler(auth.NewUsers(db), tokens)
	practiceHandler := practice.NewHandler(practiceService)
	gamHandler := gamification.NewHandler(gamService)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Observe(logger))
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	api.HandleFunc("/evaluate", practiceHandler.Evaluate).Methods("POST")
	api.HandleFunc("/questions", practiceHandler.Questions).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(tokens))
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/sessions", practiceHandler.StartSession).Methods("POST")
	protected.HandleFunc("/sessions", practiceHandler.ListSessions).Methods("GET")
	protected.HandleFunc("/sessions/{id}", practiceHandler.GetSession).Methods("GET")
	protected.HandleFunc("/sessions/{id}/responses", practiceHandler.SubmitResponse).Methods("POST")
	protected.HandleFunc("/sessions/{id}/advance", practiceHandler.Advance).Methods("POST")
	protected.HandleFunc("/sessions/{id}/attempts", practiceHandler.ListAttempts).Methods("GET")

	protected.HandleFunc("/gamification", gamHandler.GetGamification).Methods("GET")
	protected.HandleFunc("/gamification/daily-goal", gamHandler.SetDailyGoal).Methods("PUT")

	// Health check and metrics
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
