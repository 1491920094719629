package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/benx421/bankmt/internal/models"
	"github.com/google/uuid"
)

// MemoryLedgerStore is an in-process LedgerStore with the same compare-and-set
// semantics as the PostgreSQL store. Records are copied on the way in and out.
type MemoryLedgerStore struct {
	byID       map[uuid.UUID]*models.AccountRecord
	byUsername map[string]uuid.UUID
	mu         sync.RWMutex
}

// NewMemoryLedgerStore creates an empty MemoryLedgerStore
func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		byID:       make(map[uuid.UUID]*models.AccountRecord),
		byUsername: make(map[string]uuid.UUID),
	}
}

var _ LedgerStore = (*MemoryLedgerStore)(nil)

// FindByUsername retrieves an account by exact username
func (s *MemoryLedgerStore) FindByUsername(ctx context.Context, username string) (*models.AccountRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", models.ErrNotFound)
	}
	return cloneRecord(s.byID[id]), nil
}

// FindByID retrieves an account by its UUID
func (s *MemoryLedgerStore) FindByID(ctx context.Context, id uuid.UUID) (*models.AccountRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", models.ErrNotFound)
	}
	return cloneRecord(record), nil
}

// Create stores a new account record
func (s *MemoryLedgerStore) Create(ctx context.Context, record *models.AccountRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[record.Username]; exists {
		return fmt.Errorf("username %q: %w", record.Username, models.ErrDuplicateUsername)
	}
	if _, exists := s.byID[record.ID]; exists {
		return fmt.Errorf("account id %s already exists", record.ID)
	}

	s.byID[record.ID] = cloneRecord(record)
	s.byUsername[record.Username] = record.ID
	return nil
}

// Update applies a compare-and-set write of the balance and prepends new transactions
func (s *MemoryLedgerStore) Update(ctx context.Context, id uuid.UUID, update models.AccountUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	if record.Version != update.ExpectedVersion {
		return fmt.Errorf("account %s at version %d: %w", id, update.ExpectedVersion, models.ErrConflict)
	}

	history := make([]models.Transaction, 0, len(update.NewTransactions)+len(record.Transactions))
	history = append(history, update.NewTransactions...)
	history = append(history, record.Transactions...)

	record.Transactions = history
	record.BalanceCents = update.BalanceCents
	record.Version++
	record.UpdatedAt = update.UpdatedAt
	return nil
}

// PingContext reports whether the store can serve requests
func (s *MemoryLedgerStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

func cloneRecord(record *models.AccountRecord) *models.AccountRecord {
	return &models.AccountRecord{
		Account:        *record.Account.Clone(),
		CredentialHash: record.CredentialHash,
	}
}
