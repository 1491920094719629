package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testInitialBalanceCents = 100000

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sequentialNumbers struct {
	n atomic.Int64
}

func (s *sequentialNumbers) Next() string {
	return fmt.Sprintf("%s%d", AccountNumberPrefix, s.n.Add(1))
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		InitialBalanceCents: testInitialBalanceCents,
		StoreTimeout:        time.Second,
	}
}

func newTestSession(store repository.LedgerStore, cache AccountCache) *SessionManager {
	return NewSessionManager(store, NewBcryptHasher(bcrypt.MinCost), &sequentialNumbers{}, cache, testSessionConfig(), testLogger())
}

func newTestProcessor(store repository.LedgerStore) *TransactionProcessor {
	return NewTransactionProcessor(store, ProcessorConfig{
		StoreTimeout: time.Second,
		MaxAttempts:  3,
	}, testLogger())
}

// steppingClock returns strictly increasing times so history order is observable
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func deposit(s string) TransactionRequest {
	return TransactionRequest{Type: models.TransactionTypeDeposit, Amount: amount(s)}
}

func withdrawal(s string) TransactionRequest {
	return TransactionRequest{Type: models.TransactionTypeWithdrawal, Amount: amount(s)}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, code, svcErr.Code, "unexpected error: %v", err)
}

func registerUser(t *testing.T, store repository.LedgerStore, username string) *SessionManager {
	t.Helper()
	session := newTestSession(store, nil)
	_, err := session.Register(context.Background(), username, "secret123")
	require.NoError(t, err)
	return session
}

func storedAccount(t *testing.T, store repository.LedgerStore, id uuid.UUID) *models.Account {
	t.Helper()
	record, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	return &record.Account
}

type failingCache struct {
	loadErr error
	cleared int
}

func (c *failingCache) Load() (*models.Account, error) { return nil, c.loadErr }
func (c *failingCache) Save(*models.Account) error     { return nil }
func (c *failingCache) Clear() error {
	c.cleared++
	return nil
}
