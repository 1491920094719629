package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benx421/bankmt/internal/advice"
	"github.com/benx421/bankmt/internal/config"
	"github.com/benx421/bankmt/internal/handlers"
	"github.com/benx421/bankmt/internal/repository"
	"github.com/benx421/bankmt/internal/service"
)

const (
	idempotencyKeyTTL = 24 * time.Hour
	sweepEvery        = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting bankmt api",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
		"ledger_backend", cfg.Ledger.Backend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := repository.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open ledger store", "error", err)
		os.Exit(1)
	}
	defer backend.Close() //nolint:errcheck // process is exiting

	var requester service.AdviceRequester
	if cfg.Advice.URL != "" {
		requester = advice.NewClient(cfg.Advice.URL, cfg.Advice.APIKey, cfg.Advice.Timeout, logger)
	} else {
		logger.Warn("ADVICE_URL not set; advice requests will fail")
	}

	router, err := handlers.NewRouter(handlers.Dependencies{
		Store:         backend.Ledger,
		Idempotency:   backend.Idempotency,
		HealthChecker: backend.Health,
		Advice:        requester,
	}, cfg, logger)
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go sweep(ctx, backend.Idempotency, router.Sessions, cfg.Server.SessionIdleTimeout, logger)

	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// sweep periodically drops replay records older than idempotencyKeyTTL and
// closes API sessions idle for longer than sessionIdle, until ctx is canceled.
func sweep(
	ctx context.Context,
	repo repository.IdempotencyRepository,
	sessions *service.SessionRegistry,
	sessionIdle time.Duration,
	logger *slog.Logger,
) {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if closed := sessions.Sweep(now.Add(-sessionIdle)); closed > 0 {
				logger.Info("closed idle sessions", "closed", closed, "open", sessions.Len())
			}

			removed, err := repo.DeleteOlderThan(ctx, now.Add(-idempotencyKeyTTL))
			if err != nil {
				logger.Error("failed to sweep idempotency keys", "error", err)
				continue
			}
			if removed > 0 {
				logger.Debug("swept idempotency keys", "removed", removed)
			}
		}
	}
}
