package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

// storeContract runs the behaviour every Store must share
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptySession)

	require.NoError(t, s.Set(ctx, "abc", []byte(`{"access_token":"t"}`), time.Hour))
	require.NoError(t, s.Set(ctx, "def", []byte(`{"access_token":"u"}`), 0))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"t"}`, string(got))

	seen := map[string]string{}
	require.NoError(t, s.Scan(ctx, func(id string, vault []byte) error {
		seen[id] = string(vault)
		return nil
	}))
	assert.Len(t, seen, 2)
	assert.Contains(t, seen, "abc")
	assert.Contains(t, seen, "def")

	stop := errors.New("stop")
	calls := 0
	err = s.Scan(ctx, func(string, []byte) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)

	require.NoError(t, s.Delete(ctx, "abc", "nope"))
	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx))
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStore_Contract(t *testing.T) {
	s, _ := newRedisStore(t)
	storeContract(t, s)
}

func TestRedisStore_UsesSessionKeyPrefix(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "xyz", []byte(`{}`), time.Minute))
	assert.True(t, mr.Exists("session:xyz"))

	require.NoError(t, mr.Set("other:key", "ignored"))
	require.NoError(t, mr.Set("session:raw", `{"access_token":"r"}`))

	var ids []string
	require.NoError(t, s.Scan(ctx, func(id string, _ []byte) error {
		ids = append(ids, id)
		return nil
	}))
	assert.ElementsMatch(t, []string{"xyz", "raw"}, ids)
}

func TestRedisStore_Expiry(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte(`{}`), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := s.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Ping(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte(`{}`), time.Minute))
	assert.Equal(t, 1, s.Len())

	now = now.Add(time.Minute)
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestIDFromKey(t *testing.T) {
	id, ok := IDFromKey("session:abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = IDFromKey("other:abc")
	assert.False(t, ok)
}
