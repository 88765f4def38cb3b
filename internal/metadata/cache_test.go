package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/psxpack/internal/migrations"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Each pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	require.NoError(t, migrations.Apply(db))

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestCache_GetSet_RoundTrip(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	value := []byte(`{"id":"19125","name":"Final Fantasy VII"}`)
	require.NoError(t, cache.Set(ctx, "game-key", value, time.Hour))

	got, ok := cache.Get(ctx, "game-key")
	assert.True(t, ok, "expected to find cached value")
	assert.Equal(t, value, got)
}

func TestCache_Get_NotFound(t *testing.T) {
	cache := NewCache(setupTestDB(t))

	got, ok := cache.Get(context.Background(), "missing")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_Get_Expired(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "stale", []byte("x"), -time.Minute))

	_, ok := cache.Get(ctx, "stale")
	assert.False(t, ok, "expired entry should be a miss")
}

func TestCache_Set_Overwrite(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("first"), time.Hour))
	require.NoError(t, cache.Set(ctx, "k", []byte("second"), time.Hour))

	got, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestCache_Delete(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "k"))

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)

	assert.NoError(t, cache.Delete(ctx, "never-existed"))
}

func TestCache_Prune(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "old-1", []byte("a"), -time.Hour))
	require.NoError(t, cache.Set(ctx, "old-2", []byte("b"), -time.Minute))
	require.NoError(t, cache.Set(ctx, "fresh", []byte("c"), time.Hour))

	removed, err := cache.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, ok := cache.Get(ctx, "fresh")
	assert.True(t, ok)
}

func TestCache_ExpiryUsesClock(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Hour))

	_, ok := cache.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = cache.Get(ctx, "k")
	assert.False(t, ok, "entry should expire once the clock passes its TTL")
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "screenscraper:game:sha1:a", []byte("1"), time.Hour))
	require.NoError(t, cache.Set(ctx, "screenscraper:game:md5:b", []byte("2"), -time.Hour))
	require.NoError(t, cache.Set(ctx, "other:x", []byte("3"), time.Hour))
	require.NoError(t, cache.Set(ctx, "screenscraper_game", []byte("4"), time.Hour))

	removed, err := cache.Clear(ctx, "screenscraper:game:")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, ok := cache.Get(ctx, "other:x")
	assert.True(t, ok)
	_, ok = cache.Get(ctx, "screenscraper_game")
	assert.True(t, ok, "underscore in the prefix must not act as a wildcard")

	removed, err = cache.Clear(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}

func TestCache_Stats(t *testing.T) {
	cache := NewCache(setupTestDB(t))
	ctx := context.Background()

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheStats{}, stats)

	require.NoError(t, cache.Set(ctx, "live", []byte("a"), time.Hour))
	require.NoError(t, cache.Set(ctx, "dead", []byte("b"), -time.Hour))

	stats, err = cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CacheStats{Entries: 2, Expired: 1}, stats)
}
