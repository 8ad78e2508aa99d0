package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/posync/internal/auth"
	"github.com/dmitrijs2005/posync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("secretKey")

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
	getErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(_ context.Context, name string) (*metadata.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.values[name]
	if !ok {
		return nil, nil
	}
	return &metadata.Entry{Name: name, Value: v, UpdatedAt: time.Now()}, nil
}

func (s *memStore) Put(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[name] = value
	return nil
}

func (s *memStore) Remove(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[name]
	delete(s.values, name)
	return ok, nil
}

func issue(t *testing.T, perm models.Permission, validity time.Duration) string {
	t.Helper()
	tok, err := auth.GenerateToken(auth.Identity{UserID: 3, Username: "cashier", Permission: perm}, secret, validity)
	require.NoError(t, err)
	return tok
}

func loginWith(t *testing.T, m *Manager, tok string) {
	t.Helper()
	id, err := m.Decode(tok)
	require.NoError(t, err)
	require.NoError(t, m.Login(context.Background(), tok, id))
}

func TestLoginLogout_AuthenticationWindow(t *testing.T) {
	store := newMemStore()
	m := NewManager(secret, store, logging.Nop())
	ctx := context.Background()

	assert.False(t, m.IsAuthenticated())

	tok := issue(t, models.PermissionUser, time.Hour)
	loginWith(t, m, tok)
	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, tok, m.Token())
	assert.Equal(t, tok, store.values[metadata.KeySessionToken])

	m.Logout(ctx)
	assert.False(t, m.IsAuthenticated())
	assert.Empty(t, m.Token())
	assert.NotContains(t, store.values, metadata.KeySessionToken)

	m.Logout(ctx)
	assert.False(t, m.IsAuthenticated())
}

func TestIsAuthenticated_ExpiresWithoutLogout(t *testing.T) {
	m := NewManager(secret, nil, logging.Nop())
	loginWith(t, m, issue(t, models.PermissionUser, time.Hour))
	require.True(t, m.IsAuthenticated())

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.False(t, m.IsAuthenticated())
	_, ok := m.Identity()
	assert.False(t, ok)
}

func TestLogin_PastExpiryNeverAuthenticates(t *testing.T) {
	m := NewManager(secret, nil, logging.Nop())
	loginWith(t, m, issue(t, models.PermissionAdmin, -time.Minute))
	assert.False(t, m.IsAuthenticated())
}

func TestLogin_PersistFailureLeavesSessionUnchanged(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("disk full")
	m := NewManager(secret, store, logging.Nop())

	tok := issue(t, models.PermissionUser, time.Hour)
	id, err := m.Decode(tok)
	require.NoError(t, err)

	err = m.Login(context.Background(), tok, id)
	require.Error(t, err)
	assert.False(t, m.IsAuthenticated())
}

func TestLogin_RejectsEmptyInput(t *testing.T) {
	m := NewManager(secret, nil, logging.Nop())
	ctx := context.Background()

	assert.ErrorIs(t, m.Login(ctx, "", &auth.Identity{Username: "x"}), ErrEmptyToken)
	assert.ErrorIs(t, m.Login(ctx, "tok", nil), ErrEmptyIdentity)
}

func TestDecode_RoundTrip(t *testing.T) {
	m := NewManager(secret, nil, logging.Nop())

	id, err := m.Decode(issue(t, models.PermissionAdmin, time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), id.UserID)
	assert.Equal(t, "cashier", id.Username)
	assert.Equal(t, models.PermissionAdmin, id.Permission)
}

func TestDecode_Failures(t *testing.T) {
	m := NewManager(secret, nil, logging.Nop())

	_, err := m.Decode("not-a-token")
	assert.ErrorIs(t, err, ErrDecode)

	other, err := auth.GenerateToken(auth.Identity{Username: "x"}, []byte("other"), time.Hour)
	require.NoError(t, err)
	_, err = m.Decode(other)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = m.Decode("  ")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestIsExpired_UndecodableCountsAsExpired(t *testing.T) {
	m := NewManager(secret, nil, logging.Nop())

	assert.True(t, m.IsExpired("garbage"))
	assert.True(t, m.IsExpired(issue(t, models.PermissionUser, -time.Second)))
	assert.False(t, m.IsExpired(issue(t, models.PermissionUser, time.Hour)))
}

func TestHasPermission(t *testing.T) {
	m := NewManager(secret, nil, logging.Nop())
	assert.False(t, m.HasPermission(models.PermissionUser))

	loginWith(t, m, issue(t, models.PermissionUser, time.Hour))
	assert.True(t, m.HasPermission(models.PermissionUser))
	assert.False(t, m.HasPermission(models.PermissionAdmin))
}

func TestRestore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		stored    string
		want      bool
		keepToken bool
	}{
		{name: "valid", stored: issue(t, models.PermissionUser, time.Hour), want: true, keepToken: true},
		{name: "expired", stored: issue(t, models.PermissionUser, -time.Minute)},
		{name: "corrupt", stored: "eyJhbGciOi.broken"},
		{name: "absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			if tt.stored != "" {
				store.values[metadata.KeySessionToken] = tt.stored
			}
			m := NewManager(secret, store, logging.Nop())

			assert.Equal(t, tt.want, m.Restore(ctx))
			assert.Equal(t, tt.want, m.IsAuthenticated())
			_, kept := store.values[metadata.KeySessionToken]
			assert.Equal(t, tt.keepToken, kept)
		})
	}
}

func TestRestore_StoreErrorIsLoggedOut(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("locked")
	m := NewManager(secret, store, logging.Nop())

	assert.False(t, m.Restore(context.Background()))
	assert.False(t, m.IsAuthenticated())
}

func TestConcurrentReadersDuringLoginLogout(t *testing.T) {
	m := NewManager(secret, newMemStore(), logging.Nop())
	tok := issue(t, models.PermissionUser, time.Hour)
	id, err := m.Decode(tok)
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = m.Login(ctx, tok, id)
			m.Logout(ctx)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if got := m.Token(); got != "" {
				assert.Equal(t, tok, got)
			}
		}
	}()
	wg.Wait()
}
