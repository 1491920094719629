package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/benx421/bankmt/internal/models"
)

// AdviceRequester is the external text-generation collaborator
type AdviceRequester interface {
	RequestAdvice(ctx context.Context, req models.AdviceRequest) (string, error)
}

// AdviceService asks the advice collaborator about the session's account.
// It makes a single attempt; failures surface as ErrCodeAdviceUnavailable.
type AdviceService struct {
	requester AdviceRequester
	logger    *slog.Logger
	timeout   time.Duration
}

// NewAdviceService creates an AdviceService. A nil requester makes every
// request fail with ErrCodeAdviceUnavailable.
func NewAdviceService(requester AdviceRequester, timeout time.Duration, logger *slog.Logger) *AdviceService {
	return &AdviceService{
		requester: requester,
		timeout:   timeout,
		logger:    logger,
	}
}

// Advise returns advice for the account's latest transactions and balance.
// The session is refreshed first so writes from other clients are included;
// when the ledger is unreachable the session's own snapshot is used.
func (s *AdviceService) Advise(ctx context.Context, session *SessionManager) (string, error) {
	account, err := session.Refresh(ctx)
	if CodeOf(err) == ErrCodePersistenceFailure {
		s.logger.Warn("advice falling back to session snapshot", "error", err)
		account, err = session.Current(), nil
	}
	if err != nil {
		return "", err
	}
	if len(account.Transactions) == 0 {
		return "", newError(ErrCodeNotEnoughData, nil)
	}
	if s.requester == nil {
		return "", newError(ErrCodeAdviceUnavailable, errors.New("advice service is not configured"))
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	advice, err := s.requester.RequestAdvice(reqCtx, BuildAdviceRequest(account))
	if err != nil {
		s.logger.Error("advice request failed", "account_id", account.ID, "error", err)
		return "", newError(ErrCodeAdviceUnavailable, err)
	}

	advice = strings.TrimSpace(advice)
	if advice == "" {
		return "", newError(ErrCodeAdviceUnavailable, errors.New("empty advice"))
	}

	return advice, nil
}

// BuildAdviceRequest maps an account to the advice input: each transaction
// becomes a signed amount, positive for deposits and negative for withdrawals.
func BuildAdviceRequest(account *models.Account) models.AdviceRequest {
	txns := make([]models.AdviceTransaction, 0, len(account.Transactions))
	for _, t := range account.Transactions {
		txns = append(txns, models.AdviceTransaction{
			Description: t.Description,
			Amount:      models.FromCents(t.SignedCents()),
		})
	}

	return models.AdviceRequest{
		Transactions: txns,
		Balance:      models.FromCents(account.BalanceCents),
	}
}
