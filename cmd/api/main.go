package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/memelab/memeqa/internal/api"
	"github.com/memelab/memeqa/internal/api/handler"
	"github.com/memelab/memeqa/internal/config"
	"github.com/memelab/memeqa/internal/logger"
	"github.com/memelab/memeqa/internal/mail"
	"github.com/memelab/memeqa/internal/repository"
	"github.com/memelab/memeqa/internal/service"
	"github.com/memelab/memeqa/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLog := logger.NewDefault()
	logger.SetDefaultLogger(appLog)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// Initialize storage (supports MinIO, R2, S3)
	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Type:      storage.StorageType(cfg.Storage.Type),
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}

	// Ensure bucket exists
	ctx := context.Background()
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		logger.Fatal("Failed to ensure storage bucket: %v", err)
	}

	// Initialize repositories
	memeRepo := repository.NewMemeRepository(db)
	descRepo := repository.NewDescriptionRepository(db)
	evalRepo := repository.NewEvaluationRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	// Initialize services
	identity := service.NewIdentityService(sessionRepo, accountRepo)
	ledger := service.NewLedgerService(db, memeRepo, evalRepo, accountRepo)
	quota := service.NewQuotaPolicy(cfg.Limits)
	selector := service.NewAssignmentSelector(memeRepo, descRepo, evalRepo, voteRepo, cfg.Limits, nil)
	evaluations := service.NewEvaluationService(db, cfg.Limits)
	uploads := service.NewUploadService(db, objectStorage, cfg.Upload)
	merge := service.NewMergeService(db)
	tokens := service.NewTokenService(cfg.Auth)
	mailer := mail.NewMailer(cfg.Mail)
	auth := service.NewAuthService(accountRepo, sessionRepo, tokens, mailer, merge, cfg.Auth.BaseURL)
	stats := service.NewStatsService(memeRepo, evalRepo, accountRepo)

	// Setup router
	router := api.SetupRouter(cfg, identity, api.Handlers{
		Memes:       handler.NewMemeHandler(uploads, evaluations, ledger, quota, memeRepo, descRepo, objectStorage),
		Evaluations: handler.NewEvaluationHandler(selector, evaluations, ledger, quota, objectStorage),
		Auth:        handler.NewAuthHandler(auth, identity, stats),
		Stats:       handler.NewStatsHandler(stats, cfg.Server.ExportOpen),
	}, appLog)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting API server on port %d (mode=%s)", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
