package service

import (
	"context"
	"sync"
	"time"

	"github.com/benx421/bankmt/internal/models"
	"github.com/google/uuid"
)

type registryEntry struct {
	session  *SessionManager
	lastUsed time.Time
}

// SessionRegistry maps API tokens to their sessions. Each token owns exactly
// one SessionManager, created fresh for every register or login. Tokens that
// go unused are dropped by Sweep.
type SessionRegistry struct {
	sessions   map[string]*registryEntry
	newSession func() *SessionManager
	now        func() time.Time
	mu         sync.Mutex
}

// NewSessionRegistry creates an empty registry. newSession builds an
// unauthenticated session for each new client.
func NewSessionRegistry(newSession func() *SessionManager) *SessionRegistry {
	return &SessionRegistry{
		sessions:   make(map[string]*registryEntry),
		newSession: newSession,
		now:        time.Now,
	}
}

// Authenticate runs auth (Register or Login) on a fresh session and, when it
// succeeds, returns a new token bound to that session.
func (r *SessionRegistry) Authenticate(
	ctx context.Context,
	auth func(ctx context.Context, session *SessionManager) (*models.Account, error),
) (string, *models.Account, error) {
	session := r.newSession()

	account, err := auth(ctx, session)
	if err != nil {
		return "", nil, err
	}

	token := uuid.NewString()

	r.mu.Lock()
	r.sessions[token] = &registryEntry{session: session, lastUsed: r.now()}
	r.mu.Unlock()

	return token, account, nil
}

// Get returns the session bound to token and marks it as used
func (r *SessionRegistry) Get(token string) (*SessionManager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[token]
	if !ok {
		return nil, false
	}
	entry.lastUsed = r.now()
	return entry.session, true
}

// Close logs the session out and forgets the token. Unknown tokens are ignored.
func (r *SessionRegistry) Close(token string) {
	r.mu.Lock()
	entry, ok := r.sessions[token]
	delete(r.sessions, token)
	r.mu.Unlock()

	if ok {
		entry.session.Logout()
	}
}

// Sweep closes every session last used before cutoff and returns how many
// were closed.
func (r *SessionRegistry) Sweep(cutoff time.Time) int {
	var expired []*SessionManager

	r.mu.Lock()
	for token, entry := range r.sessions {
		if entry.lastUsed.Before(cutoff) {
			expired = append(expired, entry.session)
			delete(r.sessions, token)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.Logout()
	}
	return len(expired)
}

// Len returns the number of open sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
