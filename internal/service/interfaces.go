package service

import (
	"context"

	"github.com/benx421/bankmt/internal/models"
)

// HealthChecker validates system health.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// TransactionApplier applies deposits and withdrawals to a session's account
type TransactionApplier interface {
	Apply(ctx context.Context, session *SessionManager, req TransactionRequest) (*models.Account, error)
}

// Advisor produces financial advice for a session's account
type Advisor interface {
	Advise(ctx context.Context, session *SessionManager) (string, error)
}

// Ensure concrete types implement interfaces
var (
	_ TransactionApplier     = (*TransactionProcessor)(nil)
	_ Advisor                = (*AdviceService)(nil)
	_ CredentialHasher       = (*BcryptHasher)(nil)
	_ AccountNumberGenerator = (*SnowflakeNumbers)(nil)
)
