package kvstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siteprompt-go-crawler/internal/config"
)

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache", "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// stores runs fn against both backends.
func stores(t *testing.T, fn func(t *testing.T, s Store, advance func(time.Duration))) {
	t.Run("memory", func(t *testing.T) {
		m := NewMemoryStore()
		now := time.Now()
		m.now = func() time.Time { return now }
		fn(t, m, func(d time.Duration) { now = now.Add(d) })
	})
	t.Run("sqlite", func(t *testing.T) {
		s := openSQLite(t)
		now := time.Now()
		s.now = func() time.Time { return now }
		fn(t, s, func(d time.Duration) { now = now.Add(d) })
	})
}

func TestSetGet(t *testing.T) {
	stores(t, func(t *testing.T, s Store, _ func(time.Duration)) {
		ctx := context.Background()
		_, ok, err := s.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.Set(ctx, "k", []byte(`{"a":1}`), time.Hour))
		got, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, `{"a":1}`, string(got))

		require.NoError(t, s.Set(ctx, "k", []byte("v2"), time.Hour))
		got, _, _ = s.Get(ctx, "k")
		assert.Equal(t, "v2", string(got))
	})
}

func TestTTLExpiry(t *testing.T) {
	stores(t, func(t *testing.T, s Store, advance func(time.Duration)) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "short", []byte("x"), time.Minute))
		require.NoError(t, s.Set(ctx, "forever", []byte("y"), 0))

		advance(59 * time.Second)
		_, ok, _ := s.Get(ctx, "short")
		assert.True(t, ok)

		advance(2 * time.Second)
		_, ok, err := s.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, _ = s.Get(ctx, "forever")
		assert.True(t, ok)
	})
}

func TestSweep(t *testing.T) {
	stores(t, func(t *testing.T, s Store, advance func(time.Duration)) {
		sw, ok := s.(Sweeper)
		require.True(t, ok, "%T does not sweep", s)

		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Second))
		require.NoError(t, s.Set(ctx, "b", []byte("2"), time.Second))
		require.NoError(t, s.Set(ctx, "c", []byte("3"), time.Hour))
		require.NoError(t, s.Set(ctx, "d", []byte("4"), 0))

		advance(time.Minute)
		n, err := sw.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		_, ok, _ = s.Get(ctx, "c")
		assert.True(t, ok)
		_, ok, _ = s.Get(ctx, "d")
		assert.True(t, ok)
	})
}

func TestMemorySweepReleasesUnreadEntries(t *testing.T) {
	m := NewMemoryStore()
	now := time.Now()
	m.now = func() time.Time { return now }
	ctx := context.Background()
	for _, k := range []string{"x", "y", "z"} {
		require.NoError(t, m.Set(ctx, k, []byte(k), time.Minute))
	}
	require.Equal(t, 3, m.Len())

	now = now.Add(2 * time.Minute)
	n, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 0, m.Len())
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", []byte("v"), 0))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	got, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
}

func TestOpen(t *testing.T) {
	s, err := Open(config.CacheConfig{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(config.CacheConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(config.CacheConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "kv.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.CacheConfig{Driver: "sqlite"})
	assert.Error(t, err)
	_, err = Open(config.CacheConfig{Driver: "redis"})
	assert.Error(t, err)
}
