package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRequest asks for one deposit or withdrawal
type TransactionRequest struct {
	Amount      decimal.Decimal
	Type        models.TransactionType
	Description string
}

// ProcessorConfig bounds the work done for one request
type ProcessorConfig struct {
	StoreTimeout time.Duration
	MaxAttempts  int
}

// TransactionProcessor validates and applies balance-affecting operations.
// It is the only code path that changes an account's balance or history.
type TransactionProcessor struct {
	store  repository.LedgerStore
	logger *slog.Logger
	now    func() time.Time
	newID  func() uuid.UUID
	cfg    ProcessorConfig
}

// NewTransactionProcessor creates a new TransactionProcessor
func NewTransactionProcessor(store repository.LedgerStore, cfg ProcessorConfig, logger *slog.Logger) *TransactionProcessor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &TransactionProcessor{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		newID:  uuid.New,
	}
}

// Apply validates req against the session's account and writes the result
// through to the ledger store with a compare-and-set on the account version.
// A conflicting concurrent write causes a re-read and retry, so no update is
// lost. The session advances only after the store accepted the write.
func (p *TransactionProcessor) Apply(ctx context.Context, session *SessionManager, req TransactionRequest) (*models.Account, error) {
	current := session.Current()
	if current == nil {
		return nil, newError(ErrCodeNotAuthenticated, nil)
	}

	if !req.Type.Valid() {
		return nil, newError(ErrCodeInvalidTransactionType, nil)
	}

	amountCents, err := ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = req.Type.DefaultDescription()
	}

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		updated, err := p.attempt(ctx, current.ID, req.Type, amountCents, description)
		if err == nil {
			session.commit(updated)
			p.logger.Info("transaction applied",
				"account_id", updated.ID,
				"type", req.Type,
				"amount_cents", amountCents,
				"balance_cents", updated.BalanceCents,
				"attempt", attempt,
			)
			return updated.Clone(), nil
		}

		if !errors.Is(err, models.ErrConflict) {
			return nil, err
		}

		lastErr = err
		p.logger.Debug("concurrent update detected, retrying",
			"account_id", current.ID,
			"attempt", attempt,
		)
	}

	p.logger.Error("giving up after repeated update conflicts",
		"account_id", current.ID,
		"attempts", p.cfg.MaxAttempts,
	)
	return nil, newError(ErrCodePersistenceFailure, lastErr)
}

// attempt performs one read-check-write cycle. It returns models.ErrConflict
// unwrapped when the account changed between read and write.
func (p *TransactionProcessor) attempt(
	ctx context.Context,
	accountID uuid.UUID,
	typ models.TransactionType,
	amountCents int64,
	description string,
) (*models.Account, error) {
	storeCtx, cancel := context.WithTimeout(ctx, p.cfg.StoreTimeout)
	defer cancel()

	record, err := p.store.FindByID(storeCtx, accountID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeNotFound, err)
	}
	if err != nil {
		p.logger.Error("failed to load account", "account_id", accountID, "error", err)
		return nil, newError(ErrCodePersistenceFailure, err)
	}

	account := record.Account
	newBalance, err := nextBalance(account.BalanceCents, typ, amountCents)
	if err != nil {
		return nil, err
	}

	txn := models.Transaction{
		ID:          p.newID(),
		AccountID:   accountID,
		Type:        typ,
		AmountCents: amountCents,
		Description: description,
		CreatedAt:   p.now().UTC(),
	}

	err = p.store.Update(storeCtx, accountID, models.AccountUpdate{
		ExpectedVersion: account.Version,
		BalanceCents:    newBalance,
		NewTransactions: []models.Transaction{txn},
		UpdatedAt:       txn.CreatedAt,
	})
	if errors.Is(err, models.ErrConflict) {
		return nil, models.ErrConflict
	}
	if err != nil {
		p.logger.Error("failed to persist transaction", "account_id", accountID, "error", err)
		return nil, newError(ErrCodePersistenceFailure, err)
	}

	history := make([]models.Transaction, 0, len(account.Transactions)+1)
	history = append(history, txn)
	history = append(history, account.Transactions...)

	account.Transactions = history
	account.BalanceCents = newBalance
	account.Version++
	account.UpdatedAt = txn.CreatedAt

	return &account, nil
}

func nextBalance(balance int64, typ models.TransactionType, amount int64) (int64, error) {
	if typ == models.TransactionTypeWithdrawal {
		if amount > balance {
			return 0, newError(ErrCodeInsufficientFunds, nil)
		}
		return balance - amount, nil
	}

	if balance > math.MaxInt64-amount {
		return 0, &ServiceError{Code: ErrCodeInvalidAmount, Message: "Deposit would exceed the maximum balance."}
	}
	return balance + amount, nil
}
