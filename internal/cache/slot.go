// Package cache provides the client-local slot that holds the authenticated
// account between process runs.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benx421/bankmt/internal/models"
)

const slotVersion = 1

type envelope struct {
	SavedAt time.Time       `json:"saved_at"`
	Account *models.Account `json:"account"`
	Version int             `json:"version"`
}

// FileSlot stores one account as a JSON document at a fixed path.
// Writes go to a temporary file that is renamed over the slot, so a crash
// mid-write leaves the previous contents intact.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

// NewFileSlot creates a slot backed by path. The file is created on first Save.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

// Path returns the slot's file location
func (s *FileSlot) Path() string {
	return s.path
}

// Load returns the cached account, or nil when the slot is empty
func (s *FileSlot) Load() (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}

	return decode(data)
}

// Save replaces the slot contents with account
func (s *FileSlot) Save(account *models.Account) error {
	data, err := encode(account)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session cache directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best effort cleanup
		return fmt.Errorf("failed to replace session cache: %w", err)
	}

	return nil
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (s *FileSlot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear session cache: %w", err)
	}
	return nil
}

// MemorySlot is a process-local slot, used where no persistent slot exists.
// It stores the encoded form so callers never share memory with the slot.
type MemorySlot struct {
	data []byte
	mu   sync.Mutex
}

// NewMemorySlot creates an empty MemorySlot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Load returns the cached account, or nil when the slot is empty
func (s *MemorySlot) Load() (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, nil
	}
	return decode(s.data)
}

// Save replaces the slot contents with account
func (s *MemorySlot) Save(account *models.Account) error {
	data, err := encode(account)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Clear empties the slot
func (s *MemorySlot) Clear() error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

func encode(account *models.Account) ([]byte, error) {
	if account == nil {
		return nil, errors.New("cannot cache a nil account")
	}

	data, err := json.MarshalIndent(envelope{
		Version: slotVersion,
		SavedAt: time.Now().UTC(),
		Account: account,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session cache: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*models.Account, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode session cache: %w", err)
	}
	if env.Version != slotVersion {
		return nil, fmt.Errorf("unsupported session cache version %d", env.Version)
	}
	if env.Account == nil {
		return nil, errors.New("session cache has no account")
	}
	if env.Account.Transactions == nil {
		env.Account.Transactions = []models.Transaction{}
	}
	return env.Account, nil
}
