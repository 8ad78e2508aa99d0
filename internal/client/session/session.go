// Package session holds the agent's authenticated session: the signed token
// returned by the backend and the identity decoded from it.
//
// A Manager never reports decode or expiry problems as errors to its
// readers. An unreadable or stale token simply means "logged out".
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/posync/internal/auth"
	"github.com/dmitrijs2005/posync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
)

var (
	ErrDecode        = errors.New("cannot decode session token")
	ErrEmptyToken    = errors.New("empty session token")
	ErrEmptyIdentity = errors.New("empty session identity")
)

// TokenStore persists the session token between agent runs.
type TokenStore interface {
	Get(ctx context.Context, name string) (*metadata.Entry, error)
	Put(ctx context.Context, name, value string) error
	Remove(ctx context.Context, name string) (bool, error)
}

type state struct {
	token    string
	identity auth.Identity
}

type Manager struct {
	secret []byte
	store  TokenStore
	logger logging.Logger
	now    func() time.Time

	// mu serializes writers; readers go through cur.
	mu  sync.Mutex
	cur atomic.Pointer[state]
}

// NewManager returns a logged-out manager. A nil store keeps the session in
// memory only.
func NewManager(secret []byte, store TokenStore, logger logging.Logger) *Manager {
	return &Manager{
		secret: secret,
		store:  store,
		logger: logger.With("component", "session"),
		now:    time.Now,
	}
}

// Decode verifies the token signature and returns its identity. Expiry is
// not checked here.
func (m *Manager) Decode(token string) (*auth.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: %v", ErrDecode, ErrEmptyToken)
	}
	id, err := auth.ParseTokenIgnoringExpiry(token, m.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return id, nil
}

// IsExpired reports whether token is past its expiry. Tokens that cannot be
// decoded count as expired.
func (m *Manager) IsExpired(token string) bool {
	id, err := m.Decode(token)
	if err != nil {
		return true
	}
	return !id.ExpiresAt.After(m.now())
}

// Login persists token and installs it together with identity. If the token
// cannot be persisted the session is left unchanged.
func (m *Manager) Login(ctx context.Context, token string, identity *auth.Identity) error {
	if strings.TrimSpace(token) == "" {
		return ErrEmptyToken
	}
	if identity == nil || identity.Username == "" {
		return ErrEmptyIdentity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Put(ctx, metadata.KeySessionToken, token); err != nil {
			return fmt.Errorf("failed to persist session token: %w", err)
		}
	}
	m.cur.Store(&state{token: token, identity: *identity})
	m.logger.Info(ctx, "session established", "username", identity.Username, "permission", string(identity.Permission))
	return nil
}

// Logout clears the session and the persisted token. Calling it while
// logged out is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.cur.Swap(nil)
	if m.store != nil {
		if _, err := m.store.Remove(ctx, metadata.KeySessionToken); err != nil {
			m.logger.Warn(ctx, "failed to delete persisted session token", "error", err)
		}
	}
	if prev != nil {
		m.logger.Info(ctx, "session cleared", "username", prev.identity.Username)
	}
}

// IsAuthenticated is true while a token and identity are held and the token
// expires strictly after now. It is evaluated on every call.
func (m *Manager) IsAuthenticated() bool {
	s := m.cur.Load()
	if s == nil || s.token == "" || s.identity.Username == "" {
		return false
	}
	return s.identity.ExpiresAt.After(m.now())
}

// Identity returns the current identity while authenticated.
func (m *Manager) Identity() (auth.Identity, bool) {
	if !m.IsAuthenticated() {
		return auth.Identity{}, false
	}
	return m.cur.Load().identity, true
}

// Token returns the current token while authenticated, or "".
func (m *Manager) Token() string {
	if !m.IsAuthenticated() {
		return ""
	}
	return m.cur.Load().token
}

// HasPermission reports whether the authenticated user holds at least
// required. Logged-out sessions hold nothing.
func (m *Manager) HasPermission(required models.Permission) bool {
	id, ok := m.Identity()
	if !ok {
		return false
	}
	return models.HasPermission(id.Permission, required)
}

// Restore loads a previously persisted token. Expired, undecodable or
// unreadable tokens are discarded and the session stays logged out. It
// reports whether a session was restored.
func (m *Manager) Restore(ctx context.Context) bool {
	if m.store == nil {
		return false
	}

	e, err := m.store.Get(ctx, metadata.KeySessionToken)
	if err != nil {
		m.logger.Warn(ctx, "failed to read persisted session token", "error", err)
		return false
	}
	if e == nil {
		return false
	}

	id, err := m.Decode(e.Value)
	if err != nil || !id.ExpiresAt.After(m.now()) {
		m.logger.Info(ctx, "discarding persisted session token", "stored_at", e.UpdatedAt, "error", err)
		m.mu.Lock()
		if _, derr := m.store.Remove(ctx, metadata.KeySessionToken); derr != nil {
			m.logger.Warn(ctx, "failed to delete persisted session token", "error", derr)
		}
		m.mu.Unlock()
		return false
	}

	m.mu.Lock()
	m.cur.Store(&state{token: strings.TrimSpace(e.Value), identity: *id})
	m.mu.Unlock()
	m.logger.Info(ctx, "session restored", "username", id.Username, "stored_at", e.UpdatedAt, "expires_at", id.ExpiresAt)
	return true
}
