// Package handlers implements HTTP handlers for the bank API.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/benx421/bankmt/internal/service"
)

// Handler serves every endpoint described by the OpenAPI document
type Handler struct {
	sessions      *service.SessionRegistry
	applier       service.TransactionApplier
	advisor       service.Advisor
	healthChecker service.HealthChecker
	logger        *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(
	sessions *service.SessionRegistry,
	applier service.TransactionApplier,
	advisor service.Advisor,
	healthChecker service.HealthChecker,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		sessions:      sessions,
		applier:       applier,
		advisor:       advisor,
		healthChecker: healthChecker,
		logger:        logger,
	}
}

// RegisterRoutes registers the API endpoints on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.GetHealth)
	mux.HandleFunc("POST /api/v1/register", h.Register)
	mux.HandleFunc("POST /api/v1/login", h.Login)
	mux.HandleFunc("POST /api/v1/logout", h.Logout)
	mux.HandleFunc("GET /api/v1/account", h.GetAccount)
	mux.HandleFunc("POST /api/v1/deposits", h.CreateDeposit)
	mux.HandleFunc("POST /api/v1/withdrawals", h.CreateWithdrawal)
	mux.HandleFunc("GET /api/v1/transactions", h.ListTransactions)
	mux.HandleFunc("POST /api/v1/advice", h.GetAdvice)
}
