package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benx421/bankmt/internal/db"
	"github.com/benx421/bankmt/internal/models"
)

// IdempotencyRepository stores responses of processed mutating requests
type IdempotencyRepository interface {
	Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error)
	Store(ctx context.Context, idemKey *models.IdempotencyKey) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type idempotencyRepository struct {
	db *db.DB
}

// NewIdempotencyRepository creates a PostgreSQL backed IdempotencyRepository
func NewIdempotencyRepository(database *db.DB) IdempotencyRepository {
	return &idempotencyRepository{db: database}
}

// Get returns the cached response for key and path, or nil when none exists
func (r *idempotencyRepository) Get(ctx context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	query := `
		SELECT key, request_path, response_status, response_body, created_at
		FROM idempotency_keys
		WHERE key = $1 AND request_path = $2
	`

	var idemKey models.IdempotencyKey
	err := r.db.QueryRowContext(ctx, query, key, requestPath).Scan(
		&idemKey.Key,
		&idemKey.RequestPath,
		&idemKey.ResponseStatus,
		&idemKey.ResponseBody,
		&idemKey.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	return &idemKey, nil
}

// Store saves a response. The first stored response for a key and path wins.
func (r *idempotencyRepository) Store(ctx context.Context, idemKey *models.IdempotencyKey) error {
	query := `
		INSERT INTO idempotency_keys (key, request_path, response_status, response_body, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key, request_path) DO NOTHING
	`

	createdAt := idemKey.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		idemKey.Key,
		idemKey.RequestPath,
		idemKey.ResponseStatus,
		idemKey.ResponseBody,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store idempotency key: %w", err)
	}

	return nil
}

// DeleteOlderThan removes cached responses created before cutoff
func (r *idempotencyRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idempotency keys: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// MemoryIdempotencyRepository keeps cached responses in process memory
type MemoryIdempotencyRepository struct {
	keys map[string]models.IdempotencyKey
	mu   sync.Mutex
}

// NewMemoryIdempotencyRepository creates an empty MemoryIdempotencyRepository
func NewMemoryIdempotencyRepository() *MemoryIdempotencyRepository {
	return &MemoryIdempotencyRepository{keys: make(map[string]models.IdempotencyKey)}
}

var _ IdempotencyRepository = (*MemoryIdempotencyRepository)(nil)

// Get returns the cached response for key and path, or nil when none exists
func (m *MemoryIdempotencyRepository) Get(_ context.Context, key, requestPath string) (*models.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idemKey, ok := m.keys[requestPath+"\x00"+key]
	if !ok {
		return nil, nil
	}
	return &idemKey, nil
}

// Store saves a response. The first stored response for a key and path wins.
func (m *MemoryIdempotencyRepository) Store(_ context.Context, idemKey *models.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := idemKey.RequestPath + "\x00" + idemKey.Key
	if _, exists := m.keys[id]; exists {
		return nil
	}

	stored := *idemKey
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.keys[id] = stored
	return nil
}

// DeleteOlderThan removes cached responses created before cutoff
func (m *MemoryIdempotencyRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, idemKey := range m.keys {
		if idemKey.CreatedAt.Before(cutoff) {
			delete(m.keys, id)
			deleted++
		}
	}
	return deleted, nil
}
