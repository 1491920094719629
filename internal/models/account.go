package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Account represents a customer's identity and financial state
type Account struct {
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`
	Username            string        `db:"username" json:"username"`
	AccountNumber       string        `db:"account_number" json:"account_number"`
	Transactions        []Transaction `json:"transactions"`
	OpeningBalanceCents int64         `db:"opening_balance_cents" json:"opening_balance_cents"`
	BalanceCents        int64         `db:"balance_cents" json:"balance_cents"`
	Version             int64         `db:"version" json:"version"`
	ID                  uuid.UUID     `db:"id" json:"id"`
}

// AccountRecord is the persisted form of an account, including the credential hash.
// It never leaves the repository and session layers.
type AccountRecord struct {
	CredentialHash string `db:"credential_hash"`
	Account
}

// AccountUpdate describes a compare-and-set write against a stored account.
// NewTransactions are ordered newest first and are prepended to the stored history.
// UpdatedAt is stored verbatim so the caller's copy matches the stored row.
type AccountUpdate struct {
	UpdatedAt       time.Time
	NewTransactions []Transaction
	ExpectedVersion int64
	BalanceCents    int64
}

// Same reports whether both values describe the same account.
func (a *Account) Same(other *Account) bool {
	if a == nil || other == nil {
		return false
	}
	return a.ID == other.ID
}

// Clone returns a deep copy so callers cannot alias the transaction slice.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Transactions = make([]Transaction, len(a.Transactions))
	copy(cp.Transactions, a.Transactions)
	return &cp
}

// CheckInvariants verifies the balance equation and history ordering.
func (a *Account) CheckInvariants() error {
	if a.BalanceCents < 0 {
		return fmt.Errorf("balance is negative: %d", a.BalanceCents)
	}

	expected := a.OpeningBalanceCents
	for i, t := range a.Transactions {
		if t.AmountCents <= 0 {
			return fmt.Errorf("transaction %s has non-positive amount %d", t.ID, t.AmountCents)
		}
		if i > 0 && t.CreatedAt.After(a.Transactions[i-1].CreatedAt) {
			return fmt.Errorf("transaction %s is out of order", t.ID)
		}
		expected += t.SignedCents()
	}

	if expected != a.BalanceCents {
		return fmt.Errorf("balance %d does not match ledger total %d", a.BalanceCents, expected)
	}

	return nil
}
