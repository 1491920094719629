// Package repository provides ledger store implementations for the bank API.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benx421/bankmt/internal/db"
	"github.com/benx421/bankmt/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// LedgerStore defines the durable storage contract for account records.
//
// Update is a compare-and-set: it succeeds only when the stored version still
// equals update.ExpectedVersion, and reports models.ErrConflict otherwise.
type LedgerStore interface {
	FindByUsername(ctx context.Context, username string) (*models.AccountRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AccountRecord, error)
	Create(ctx context.Context, record *models.AccountRecord) error
	Update(ctx context.Context, id uuid.UUID, update models.AccountUpdate) error
}

// ledgerStore implements LedgerStore on PostgreSQL
type ledgerStore struct {
	db *db.DB
}

// NewLedgerStore creates a PostgreSQL backed LedgerStore
func NewLedgerStore(database *db.DB) LedgerStore {
	return &ledgerStore{db: database}
}

const accountColumns = `id, username, credential_hash, account_number,
	opening_balance_cents, balance_cents, version, created_at, updated_at`

// FindByUsername retrieves an account and its history by exact username
func (r *ledgerStore) FindByUsername(ctx context.Context, username string) (*models.AccountRecord, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
}

// FindByID retrieves an account and its history by its UUID
func (r *ledgerStore) FindByID(ctx context.Context, id uuid.UUID) (*models.AccountRecord, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// findOne reads the account row and its transactions from one snapshot.
func (r *ledgerStore) findOne(ctx context.Context, query string, arg any) (*models.AccountRecord, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to start read transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // read-only transaction
	}()

	var record models.AccountRecord
	err = tx.QueryRowContext(ctx, query, arg).Scan(
		&record.ID,
		&record.Username,
		&record.CredentialHash,
		&record.AccountNumber,
		&record.OpeningBalanceCents,
		&record.BalanceCents,
		&record.Version,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	transactions, err := listTransactions(ctx, tx, record.ID)
	if err != nil {
		return nil, err
	}
	record.Transactions = transactions

	return &record, nil
}

// Create inserts a new account record
func (r *ledgerStore) Create(ctx context.Context, record *models.AccountRecord) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO accounts (id, username, credential_hash, account_number,
			                      opening_balance_cents, balance_cents, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`

		_, err := tx.ExecContext(ctx, query,
			record.ID,
			record.Username,
			record.CredentialHash,
			record.AccountNumber,
			record.OpeningBalanceCents,
			record.BalanceCents,
			record.Version,
			record.CreatedAt,
			record.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "accounts_username_key" {
				return fmt.Errorf("username %q: %w", record.Username, models.ErrDuplicateUsername)
			}
			return fmt.Errorf("failed to create account: %w", err)
		}

		return insertTransactions(ctx, tx, record.ID, record.Transactions)
	})
}

// Update applies a compare-and-set write of the balance and appends new transactions
func (r *ledgerStore) Update(ctx context.Context, id uuid.UUID, update models.AccountUpdate) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE accounts
			SET balance_cents = $3,
			    version = version + 1,
			    updated_at = $4
			WHERE id = $1 AND version = $2
		`

		result, err := tx.ExecContext(ctx, query, id, update.ExpectedVersion, update.BalanceCents, update.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check account existence: %w", err)
			}
			if !exists {
				return fmt.Errorf("account %s: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("account %s at version %d: %w", id, update.ExpectedVersion, models.ErrConflict)
		}

		return insertTransactions(ctx, tx, id, update.NewTransactions)
	})
}

func listTransactions(ctx context.Context, tx *sql.Tx, accountID uuid.UUID) ([]models.Transaction, error) {
	query := `
		SELECT id, account_id, type, amount_cents, description, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY seq DESC
	`

	rows, err := tx.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.AmountCents, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// insertTransactions writes newest-first input oldest-first so seq follows creation order.
func insertTransactions(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, transactions []models.Transaction) error {
	query := `
		INSERT INTO transactions (id, account_id, type, amount_cents, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i := len(transactions) - 1; i >= 0; i-- {
		t := transactions[i]
		if _, err := tx.ExecContext(ctx, query, t.ID, accountID, t.Type, t.AmountCents, t.Description, t.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}

	return nil
}
