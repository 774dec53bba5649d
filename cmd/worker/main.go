// Package main is the entry point for the Quotero background worker.
// It expires overdue quotations and cleans up stale refresh tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"quotero/internal/domain/quotation"
	"quotero/internal/infrastructure/numerator"
	"quotero/internal/infrastructure/storage/postgres"
	"quotero/internal/infrastructure/storage/postgres/auth_repo"
	"quotero/internal/infrastructure/storage/postgres/document_repo"
	"quotero/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting quotero worker")

	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	quotationRepo := document_repo.NewQuotationRepo(txManager)
	quotationService := quotation.NewService(quotationRepo, numerator.New(pool), txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)

	worker := NewWorker(quotationService, tokenRepo, log)
	worker.SweepInterval = getEnvDuration("EXPIRY_SWEEP_INTERVAL", time.Minute)
	worker.CleanupInterval = getEnvDuration("TOKEN_CLEANUP_INTERVAL", time.Hour)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// TokenCleaner removes expired and long-revoked refresh tokens.
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// Worker runs periodic maintenance jobs.
type Worker struct {
	quotations *quotation.Service
	tokens     TokenCleaner
	log        *logger.Logger

	SweepInterval   time.Duration
	CleanupInterval time.Duration
}

// NewWorker creates a worker with default intervals.
func NewWorker(quotations *quotation.Service, tokens TokenCleaner, log *logger.Logger) *Worker {
	return &Worker{
		quotations:      quotations,
		tokens:          tokens,
		log:             log.WithComponent("worker"),
		SweepInterval:   time.Minute,
		CleanupInterval: time.Hour,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	sweepTicker := time.NewTicker(w.SweepInterval)
	defer sweepTicker.Stop()

	cleanupTicker := time.NewTicker(w.CleanupInterval)
	defer cleanupTicker.Stop()

	// Run one sweep at startup so a restarted worker catches up immediately.
	w.sweepExpired(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sweepTicker.C:
			w.sweepExpired(ctx)
		case <-cleanupTicker.C:
			w.cleanupTokens(ctx)
		}
	}
}

func (w *Worker) sweepExpired(ctx context.Context) {
	count, err := w.quotations.MarkExpired(ctx, time.Now().UTC())
	if err != nil {
		w.log.Errorw("expiry sweep failed", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("quotations expired", "count", count)
	}
}

func (w *Worker) cleanupTokens(ctx context.Context) {
	count, err := w.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		w.log.Errorw("token cleanup failed", "error", err)
		return
	}
	if count > 0 {
		w.log.Infow("refresh tokens cleaned up", "count", count)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
