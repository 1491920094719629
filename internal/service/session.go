package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/repository"
	"github.com/google/uuid"
)

// AccountCache is the client-local slot that lets a session resume without
// re-authenticating. Load returns nil, nil when the slot is empty.
type AccountCache interface {
	Load() (*models.Account, error)
	Save(account *models.Account) error
	Clear() error
}

// SessionConfig holds the settings shared by every session
type SessionConfig struct {
	InitialBalanceCents int64
	StoreTimeout        time.Duration
}

// SessionManager owns at most one authenticated account for one client.
// It is an explicit object: each client process or API token gets its own.
type SessionManager struct {
	store   repository.LedgerStore
	hasher  CredentialHasher
	numbers AccountNumberGenerator
	cache   AccountCache
	logger  *slog.Logger
	now     func() time.Time
	current *models.Account
	cfg     SessionConfig
	mu      sync.RWMutex
}

// NewSessionManager creates an unauthenticated session. cache may be nil.
func NewSessionManager(
	store repository.LedgerStore,
	hasher CredentialHasher,
	numbers AccountNumberGenerator,
	cache AccountCache,
	cfg SessionConfig,
	logger *slog.Logger,
) *SessionManager {
	return &SessionManager{
		store:   store,
		hasher:  hasher,
		numbers: numbers,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates a new account with the configured opening balance and
// makes it the current session account.
func (m *SessionManager) Register(ctx context.Context, username, secret string) (*models.Account, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidateSecret(secret); err != nil {
		return nil, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, m.cfg.StoreTimeout)
	_, err := m.store.FindByUsername(lookupCtx, username)
	cancel()
	switch {
	case err == nil:
		return nil, newError(ErrCodeDuplicateUsername, nil)
	case !errors.Is(err, models.ErrNotFound):
		m.logger.Error("failed to look up username", "error", err)
		return nil, newError(ErrCodePersistenceFailure, err)
	}

	hash, err := m.hasher.Hash(secret)
	if err != nil {
		return nil, newError(ErrCodeInternalError, err)
	}

	now := m.now().UTC()
	record := &models.AccountRecord{
		CredentialHash: hash,
		Account: models.Account{
			ID:                  uuid.New(),
			Username:            username,
			AccountNumber:       m.numbers.Next(),
			OpeningBalanceCents: m.cfg.InitialBalanceCents,
			BalanceCents:        m.cfg.InitialBalanceCents,
			Transactions:        []models.Transaction{},
			Version:             1,
			CreatedAt:           now,
			UpdatedAt:           now,
		},
	}

	// The create gets its own deadline; hashing can outlast StoreTimeout.
	createCtx, cancel := context.WithTimeout(ctx, m.cfg.StoreTimeout)
	defer cancel()

	if err := m.store.Create(createCtx, record); err != nil {
		// The store's uniqueness check also covers a registration racing this one.
		if errors.Is(err, models.ErrDuplicateUsername) {
			return nil, newError(ErrCodeDuplicateUsername, nil)
		}
		m.logger.Error("failed to create account", "username", username, "error", err)
		return nil, newError(ErrCodePersistenceFailure, err)
	}

	m.authenticate(&record.Account)
	m.logger.Info("account registered", "account_id", record.ID, "username", username)

	return record.Account.Clone(), nil
}

// Login authenticates against the stored credential and loads the account
// with its transaction history.
func (m *SessionManager) Login(ctx context.Context, username, secret string) (*models.Account, error) {
	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.StoreTimeout)
	defer cancel()

	record, err := m.store.FindByUsername(storeCtx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, newError(ErrCodeNotFound, nil)
	}
	if err != nil {
		m.logger.Error("failed to load account for login", "error", err)
		return nil, newError(ErrCodePersistenceFailure, err)
	}

	if !m.hasher.Compare(record.CredentialHash, secret) {
		m.logger.Info("login rejected", "username", username)
		return nil, newError(ErrCodeInvalidCredential, nil)
	}

	account := record.Account
	if account.Transactions == nil {
		account.Transactions = []models.Transaction{}
	}

	m.authenticate(&account)
	m.logger.Info("login succeeded", "account_id", account.ID, "username", username)

	return account.Clone(), nil
}

// Logout ends the session and invalidates the cached account. Calling it
// without an active session is a no-op.
func (m *SessionManager) Logout() {
	m.mu.Lock()
	previous := m.current
	m.current = nil
	m.mu.Unlock()

	if m.cache != nil {
		if err := m.cache.Clear(); err != nil {
			m.logger.Warn("failed to clear session cache", "error", err)
		}
	}

	if previous != nil {
		m.logger.Info("logged out", "account_id", previous.ID)
	}
}

// Current returns a copy of the authenticated account, or nil.
func (m *SessionManager) Current() *models.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// Authenticated reports whether the session holds an account
func (m *SessionManager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Resume seeds the session from the cache slot. A corrupt slot is cleared and
// the session stays unauthenticated.
func (m *SessionManager) Resume() (*models.Account, bool) {
	if m.cache == nil {
		return nil, false
	}

	account, err := m.cache.Load()
	if err != nil {
		m.logger.Warn("discarding unreadable session cache", "error", err)
		if clearErr := m.cache.Clear(); clearErr != nil {
			m.logger.Warn("failed to clear session cache", "error", clearErr)
		}
		return nil, false
	}
	if account == nil {
		return nil, false
	}

	m.mu.Lock()
	m.current = account.Clone()
	m.mu.Unlock()

	m.logger.Debug("resumed cached session", "account_id", account.ID)
	return account, true
}

// Refresh reloads the session account from the ledger store so a resumed
// session reflects writes made by other clients.
func (m *SessionManager) Refresh(ctx context.Context) (*models.Account, error) {
	current := m.Current()
	if current == nil {
		return nil, newError(ErrCodeNotAuthenticated, nil)
	}

	storeCtx, cancel := context.WithTimeout(ctx, m.cfg.StoreTimeout)
	defer cancel()

	record, err := m.store.FindByID(storeCtx, current.ID)
	if errors.Is(err, models.ErrNotFound) {
		m.Logout()
		return nil, newError(ErrCodeNotFound, nil)
	}
	if err != nil {
		return nil, newError(ErrCodePersistenceFailure, err)
	}

	m.commit(&record.Account)
	return m.Current(), nil
}

func (m *SessionManager) authenticate(account *models.Account) {
	m.mu.Lock()
	m.current = account.Clone()
	m.mu.Unlock()

	m.saveCache(account)
}

// commit advances the session to a persisted account state. It refuses to
// switch accounts or move backwards, which can happen when the session was
// replaced or a later write already committed.
func (m *SessionManager) commit(account *models.Account) bool {
	m.mu.Lock()
	if m.current == nil || !m.current.Same(account) || account.Version <= m.current.Version {
		m.mu.Unlock()
		return false
	}
	m.current = account.Clone()
	m.mu.Unlock()

	m.saveCache(account)
	return true
}

func (m *SessionManager) saveCache(account *models.Account) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Save(account); err != nil {
		m.logger.Warn("failed to write session cache", "account_id", account.ID, "error", err)
	}
}
