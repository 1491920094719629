package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

// DefaultDescription is used when a transaction is recorded without one.
func (t TransactionType) DefaultDescription() string {
	if t == TransactionTypeWithdrawal {
		return "Withdrawal"
	}
	return "Deposit"
}

// Transaction is an immutable record of one balance-affecting event
type Transaction struct {
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Description string          `db:"description" json:"description"`
	Type        TransactionType `db:"type" json:"type"`
	AmountCents int64           `db:"amount_cents" json:"amount_cents"`
	ID          uuid.UUID       `db:"id" json:"id"`
	AccountID   uuid.UUID       `db:"account_id" json:"account_id"`
}

// SignedCents returns the amount as a balance delta: positive for deposits,
// negative for withdrawals.
func (t Transaction) SignedCents() int64 {
	if t.Type == TransactionTypeWithdrawal {
		return -t.AmountCents
	}
	return t.AmountCents
}

// IdempotencyKey tracks processed requests to prevent duplicate transactions
type IdempotencyKey struct {
	CreatedAt      time.Time `db:"created_at"`
	Key            string    `db:"key"`
	RequestPath    string    `db:"request_path"`
	ResponseBody   string    `db:"response_body"`
	ResponseStatus int       `db:"response_status"`
}
