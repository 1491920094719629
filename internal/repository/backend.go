package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/benx421/bankmt/internal/config"
	"github.com/benx421/bankmt/internal/db"
)

// Backend bundles the stores selected by the ledger configuration
type Backend struct {
	Ledger      LedgerStore
	Idempotency IdempotencyRepository
	Health      interface {
		PingContext(ctx context.Context) error
	}
	close func() error
}

// OpenBackend connects the configured ledger backend. For PostgreSQL it
// applies pending migrations when auto-migrate is enabled. When fault
// injection is configured the ledger is wrapped in a FaultyLedgerStore;
// health checks still reach the real store.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if FaultsEnabled(cfg.App) {
		logger.Warn("ledger fault injection enabled",
			"failure_rate", cfg.App.FailureRate,
			"min_latency_ms", cfg.App.MinLatencyMS,
			"max_latency_ms", cfg.App.MaxLatencyMS,
		)
		backend.Ledger = NewFaultyLedgerStore(backend.Ledger, cfg.App, logger)
	}
	return backend, nil
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendMemory:
		logger.Warn("using in-memory ledger; accounts are lost when the process exits")
		store := NewMemoryLedgerStore()
		return &Backend{
			Ledger:      store,
			Idempotency: NewMemoryIdempotencyRepository(),
			Health:      store,
			close:       func() error { return nil },
		}, nil

	case config.LedgerBackendPostgres:
		database, err := db.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}

		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx); err != nil {
				_ = database.Close() //nolint:errcheck // already failing
				return nil, err
			}
		}

		return &Backend{
			Ledger:      NewLedgerStore(database),
			Idempotency: NewIdempotencyRepository(database),
			Health:      database,
			close:       database.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}

// Close releases the backend's connections
func (b *Backend) Close() error {
	return b.close()
}
