package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/benx421/bankmt/internal/config"
	"github.com/benx421/bankmt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFaultyStore(inner LedgerStore, cfg config.AppConfig) *FaultyLedgerStore {
	return NewFaultyLedgerStore(inner, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFaultyLedgerStore_Disabled(t *testing.T) {
	assert.False(t, FaultsEnabled(config.AppConfig{}))

	store := newFaultyStore(NewMemoryLedgerStore(), config.AppConfig{})
	ctx := context.Background()

	record := newRecord("alice", 100000)
	require.NoError(t, store.Create(ctx, record))
	require.NoError(t, store.Update(ctx, record.ID, models.AccountUpdate{ExpectedVersion: 1, BalanceCents: 90000}))

	stored, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(90000), stored.BalanceCents)
}

func TestFaultyLedgerStore_FailedCallsLeaveStoreUntouched(t *testing.T) {
	inner := NewMemoryLedgerStore()
	ctx := context.Background()

	record := newRecord("bob", 100000)
	require.NoError(t, inner.Create(ctx, record))

	store := newFaultyStore(inner, config.AppConfig{FailureRate: 1})
	assert.True(t, FaultsEnabled(config.AppConfig{FailureRate: 1}))

	_, err := store.FindByID(ctx, record.ID)
	assert.ErrorIs(t, err, ErrInjectedFault)

	_, err = store.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrInjectedFault)

	err = store.Update(ctx, record.ID, models.AccountUpdate{
		ExpectedVersion: 1,
		BalanceCents:    125000,
		NewTransactions: []models.Transaction{newTransaction(record.ID, models.TransactionTypeDeposit, 25000, time.Now())},
	})
	assert.ErrorIs(t, err, ErrInjectedFault)

	err = store.Create(ctx, newRecord("carol", 100000))
	assert.ErrorIs(t, err, ErrInjectedFault)

	stored, err := inner.FindByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), stored.BalanceCents)
	assert.Equal(t, int64(1), stored.Version)
	assert.Empty(t, stored.Transactions)

	_, err = inner.FindByUsername(ctx, "carol")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFaultyLedgerStore_LatencyRespectsContext(t *testing.T) {
	inner := NewMemoryLedgerStore()
	store := newFaultyStore(inner, config.AppConfig{MinLatencyMS: 500, MaxLatencyMS: 500})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := store.Create(ctx, newRecord("dave", 0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 400*time.Millisecond)

	_, err = inner.FindByUsername(context.Background(), "dave")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRandomLatency(t *testing.T) {
	assert.Zero(t, randomLatency(0, 0))
	assert.Equal(t, 5*time.Millisecond, randomLatency(5, 5))

	for range 20 {
		d := randomLatency(10, 20)
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.Less(t, d, 20*time.Millisecond)
	}
}

func TestShouldInjectFailure_Bounds(t *testing.T) {
	assert.False(t, shouldInjectFailure(-1))
	assert.False(t, shouldInjectFailure(0))
	assert.True(t, shouldInjectFailure(1))
	assert.True(t, shouldInjectFailure(2))
}
