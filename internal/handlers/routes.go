package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/benx421/bankmt/internal/api"
	"github.com/benx421/bankmt/internal/config"
	"github.com/benx421/bankmt/internal/middleware"
	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/repository"
	"github.com/benx421/bankmt/internal/service"
)

// Dependencies are the external collaborators the router wires into the services
type Dependencies struct {
	Store         repository.LedgerStore
	Idempotency   repository.IdempotencyRepository
	HealthChecker service.HealthChecker
	// Advice may be nil, in which case advice requests fail as unavailable.
	Advice service.AdviceRequester
}

// Router is the API's HTTP handler together with the token registry it
// serves, which the server sweeps for idle sessions.
type Router struct {
	http.Handler
	Sessions *service.SessionRegistry
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(
	deps Dependencies,
	cfg *config.Config,
	logger *slog.Logger,
) (*Router, error) {
	initialBalance, err := models.ToCents(cfg.Account.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid initial balance: %w", err)
	}

	numbers, err := service.NewSnowflakeNumbers(cfg.Account.NodeID)
	if err != nil {
		return nil, err
	}

	hasher := service.NewBcryptHasher(cfg.Account.BcryptCost)
	sessionCfg := service.SessionConfig{
		InitialBalanceCents: initialBalance,
		StoreTimeout:        cfg.Ledger.Timeout,
	}
	registry := service.NewSessionRegistry(func() *service.SessionManager {
		// API sessions live only in the registry, so they get no cache slot.
		return service.NewSessionManager(deps.Store, hasher, numbers, nil, sessionCfg, logger)
	})

	processor := service.NewTransactionProcessor(deps.Store, service.ProcessorConfig{
		StoreTimeout: cfg.Ledger.Timeout,
		MaxAttempts:  cfg.Ledger.MaxUpdateAttempts,
	}, logger)
	adviceService := service.NewAdviceService(deps.Advice, cfg.Advice.Timeout, logger)

	handler := NewHandler(registry, processor, adviceService, deps.HealthChecker, logger)

	mux := http.NewServeMux()
	if err := api.RegisterDocsRoutes(mux); err != nil {
		return nil, err
	}
	handler.RegisterRoutes(mux)

	validate, err := api.RequestValidator(logger)
	if err != nil {
		return nil, err
	}

	var finalHandler http.Handler = mux

	finalHandler = validate(finalHandler)

	finalHandler = middleware.Idempotency(deps.Idempotency, logger)(finalHandler)

	return &Router{Handler: finalHandler, Sessions: registry}, nil
}
