// Package metadata provides caching for catalog lookups.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Cache stores serialized lookup results in SQLite with a per-entry expiry.
// It is safe for concurrent use to the extent the *sql.DB is.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// CacheStats describes the cache contents.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Expired int64 `json:"expired"`
}

// NewCache creates a cache over db. The metadata_cache table must exist.
func NewCache(db *sql.DB) *Cache {
	return &Cache{db: db, now: time.Now}
}

// Get returns the value stored under key if it has not expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	var value string
	err := c.db.QueryRowContext(ctx,
		"SELECT value FROM metadata_cache WHERE key = ? AND expires_at > ?", key, c.now(),
	).Scan(&value)
	if err != nil {
		return nil, false
	}
	return []byte(value), true
}

// Set stores value under key for ttl, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO metadata_cache (key, value, expires_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, string(value), c.now().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM metadata_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Clear removes every entry whose key starts with prefix, expired or not.
// An empty prefix clears the whole cache.
func (c *Cache) Clear(ctx context.Context, prefix string) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM metadata_cache WHERE key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%",
	)
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	return result.RowsAffected()
}

// Prune removes expired entries and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx,
		"DELETE FROM metadata_cache WHERE expires_at <= ?", c.now(),
	)
	if err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return result.RowsAffected()
}

// Stats counts live and expired entries.
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	var s CacheStats
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		 FROM metadata_cache`, c.now(),
	).Scan(&s.Entries, &s.Expired)
	if err != nil {
		return CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return s, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
