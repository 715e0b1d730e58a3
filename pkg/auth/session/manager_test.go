package session

import (
	"context"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func newTestManager(store *mockStore) *Manager {
	return &Manager{store: store, keyer: store, ttl: time.Hour}
}

func TestManagerGenerateAndRotate(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, token, store.data[store.AccessSessionKey(accessID)])

	newAccessID, newToken, err := manager.Rotate(ctx, accessID, token)
	require.NoError(t, err)
	assert.NotEqual(t, accessID, newAccessID)
	assert.NotEqual(t, token, newToken)

	_, ok := store.data[store.AccessSessionKey(accessID)]
	assert.False(t, ok, "old session should be removed after rotation")
	assert.Equal(t, newToken, store.data[store.AccessSessionKey(newAccessID)])
}

func TestManagerRotateRejectsWrongToken(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	require.NoError(t, err)

	_, _, err = manager.Rotate(ctx, accessID, token+"tampered")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The original mapping must survive a failed rotation.
	assert.Equal(t, token, store.data[store.AccessSessionKey(accessID)])
}

func TestManagerRotateUnknownSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)

	_, _, err := manager.Rotate(context.Background(), NewAccessID(), "anything")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestManagerRevoke(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	_, err := manager.Generate(ctx, accessID)
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(ctx, accessID))

	ok, err := manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerHasSession(t *testing.T) {
	store := newMockStore()
	manager := newTestManager(store)
	ctx := context.Background()

	ok, err := manager.HasSession(ctx, NewAccessID())
	require.NoError(t, err)
	assert.False(t, ok)

	accessID := NewAccessID()
	_, err = manager.Generate(ctx, accessID)
	require.NoError(t, err)

	ok, err = manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewAccessIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewAccessID()
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}
