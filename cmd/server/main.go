package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwrona/vocaflash/internal/ai"
	"github.com/mwrona/vocaflash/internal/api"
	"github.com/mwrona/vocaflash/internal/auth"
	"github.com/mwrona/vocaflash/internal/config"
	"github.com/mwrona/vocaflash/internal/db"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/repository/sqlite"
	"github.com/mwrona/vocaflash/internal/selection"
	"github.com/mwrona/vocaflash/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("VocaFlash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("ai_model=%s", cfg.AIModel)
	log.Debug("ai_base_url=%s", cfg.AIBaseURL)
	log.Debug("ai_timeout_seconds=%d", cfg.AITimeoutSeconds)
	if cfg.AuthJWTSecret == "" {
		log.Warn("AUTH_JWT_SECRET is empty, all tokens will be rejected")
	}

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize repositories
	wordRepo := sqlite.NewWordRepository(database.DB)
	repetitionRepo := sqlite.NewRepetitionRepository(database.DB)
	flashcardRepo := sqlite.NewFlashcardRepository(database.DB)
	quizRepo := sqlite.NewQuizRepository(database.DB)
	userRepo := sqlite.NewUserRepository(database.DB)

	// Initialize services
	generator := ai.New(ai.Options{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.XAIAPIKey,
		Model:   cfg.AIModel,
		Timeout: time.Duration(cfg.AITimeoutSeconds) * time.Second,
	})
	userService := services.NewUserService(userRepo)
	wordService := services.NewWordService(wordRepo)
	repetitionService := services.NewRepetitionService(repetitionRepo)
	flashcardService := services.NewFlashcardSessionService(flashcardRepo, repetitionRepo, userService, selection.NewFactory(wordRepo))
	quizService := services.NewQuizSessionService(quizRepo, wordRepo, generator, services.DefaultQuizConfig())

	srv := &api.Server{
		DB:          database.DB,
		Verifier:    auth.NewVerifier(cfg.AuthJWTSecret),
		Users:       userService,
		Words:       wordService,
		Repetitions: repetitionService,
		Flashcards:  flashcardService,
		Quizzes:     quizService,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // quiz generation waits on the AI upstream
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("VocaFlash Server Stopped")
	log.Info("===========================================")
}
