package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/benx421/bankmt/internal/config"
	"github.com/benx421/bankmt/internal/models"
	"github.com/google/uuid"
)

// ErrInjectedFault is returned in place of a real store error by FaultyLedgerStore
var ErrInjectedFault = errors.New("injected ledger fault")

// FaultyLedgerStore wraps a LedgerStore and makes calls slow or fail at random,
// simulating an unreliable database so clients can exercise their
// persistence-failure paths. A failed call never reaches the wrapped store.
type FaultyLedgerStore struct {
	next   LedgerStore
	logger *slog.Logger
	fail   func() bool
	delay  func() time.Duration
}

// FaultsEnabled reports whether cfg asks for any latency or failure injection
func FaultsEnabled(cfg config.AppConfig) bool {
	return cfg.FailureRate > 0 || cfg.MaxLatencyMS > 0
}

// NewFaultyLedgerStore wraps next with the failure rate and latency range in cfg
func NewFaultyLedgerStore(next LedgerStore, cfg config.AppConfig, logger *slog.Logger) *FaultyLedgerStore {
	return &FaultyLedgerStore{
		next:   next,
		logger: logger,
		fail:   func() bool { return shouldInjectFailure(cfg.FailureRate) },
		delay:  func() time.Duration { return randomLatency(cfg.MinLatencyMS, cfg.MaxLatencyMS) },
	}
}

func (s *FaultyLedgerStore) FindByUsername(ctx context.Context, username string) (*models.AccountRecord, error) {
	if err := s.inject(ctx, "find by username"); err != nil {
		return nil, err
	}
	return s.next.FindByUsername(ctx, username)
}

func (s *FaultyLedgerStore) FindByID(ctx context.Context, id uuid.UUID) (*models.AccountRecord, error) {
	if err := s.inject(ctx, "find by id"); err != nil {
		return nil, err
	}
	return s.next.FindByID(ctx, id)
}

func (s *FaultyLedgerStore) Create(ctx context.Context, record *models.AccountRecord) error {
	if err := s.inject(ctx, "create"); err != nil {
		return err
	}
	return s.next.Create(ctx, record)
}

func (s *FaultyLedgerStore) Update(ctx context.Context, id uuid.UUID, update models.AccountUpdate) error {
	if err := s.inject(ctx, "update"); err != nil {
		return err
	}
	return s.next.Update(ctx, id, update)
}

// inject waits out the injected latency, bounded by ctx, then decides whether
// the call fails.
func (s *FaultyLedgerStore) inject(ctx context.Context, op string) error {
	if d := s.delay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}

	if s.fail() {
		s.logger.Debug("injecting ledger failure", "op", op)
		return fmt.Errorf("%s: %w", op, ErrInjectedFault)
	}
	return nil
}

func randomLatency(minMS, maxMS int) time.Duration {
	if minMS <= 0 && maxMS <= 0 {
		return 0
	}

	rangeMS := maxMS - minMS
	if rangeMS <= 0 {
		return time.Duration(minMS) * time.Millisecond
	}

	randomOffset, err := rand.Int(rand.Reader, big.NewInt(int64(rangeMS)))
	if err != nil {
		return time.Duration(minMS) * time.Millisecond
	}

	return time.Duration(minMS+int(randomOffset.Int64())) * time.Millisecond
}

func shouldInjectFailure(failureRate float64) bool {
	if failureRate <= 0 {
		return false
	}
	if failureRate >= 1 {
		return true
	}

	const precision = 1000000
	randomNum, err := rand.Int(rand.Reader, big.NewInt(precision))
	if err != nil {
		return false
	}

	threshold := int64(failureRate * precision)
	return randomNum.Int64() < threshold
}
