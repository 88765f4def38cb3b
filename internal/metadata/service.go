package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/vmunix/psxpack/pkg/screenscraper"
)

const (
	gameTTL     = 7 * 24 * time.Hour
	notFoundTTL = 24 * time.Hour

	// KeyPrefix starts every cache key the service writes.
	KeyPrefix = "screenscraper:game:"
)

// Lookuper is the catalog client the service fronts.
type Lookuper interface {
	Lookup(ctx context.Context, q screenscraper.Query) (*screenscraper.GameInfo, error)
}

// Service provides cached access to ScreenScraper game metadata.
// Misses are cached too, with a shorter TTL, so re-running a batch does not
// spend API quota on games the catalog does not know. Errors are never cached.
type Service struct {
	client Lookuper
	cache  *Cache // nil disables caching
	log    *slog.Logger
}

// NewService creates a new metadata service. cache may be nil.
func NewService(client Lookuper, cache *Cache, log *slog.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		log:    log,
	}
}

// Configured reports whether the underlying client has credentials.
// Clients that cannot tell are assumed configured.
func (s *Service) Configured() bool {
	if c, ok := s.client.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// Lookup returns game information for q, consulting the cache first.
// It returns nil, nil when the catalog has no matching game.
func (s *Service) Lookup(ctx context.Context, q screenscraper.Query) (*screenscraper.GameInfo, error) {
	key := cacheKey(q)

	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			var info *screenscraper.GameInfo
			if err := json.Unmarshal(data, &info); err == nil {
				if s.log != nil {
					s.log.Debug("cache hit for game", "key", key, "found", info != nil)
				}
				return info, nil
			}
			// If unmarshal fails, treat as cache miss and fetch fresh data
			if s.log != nil {
				s.log.Warn("failed to unmarshal cached game", "key", key)
			}
		}
	}

	info, err := s.client.Lookup(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", filepath.Base(q.FileName), err)
	}

	if s.cache == nil {
		return info, nil
	}

	data, err := json.Marshal(info)
	if err != nil {
		if s.log != nil {
			s.log.Warn("failed to marshal game for cache", "key", key, "error", err)
		}
		return info, nil
	}

	ttl := gameTTL
	if info == nil {
		ttl = notFoundTTL
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		if s.log != nil {
			s.log.Warn("failed to cache game", "key", key, "error", err)
		}
	}

	return info, nil
}

// cacheKey prefers the SHA-1, which identifies the dump regardless of file name.
func cacheKey(q screenscraper.Query) string {
	switch {
	case q.SHA1 != "":
		return KeyPrefix + "sha1:" + q.SHA1
	case q.MD5 != "":
		return KeyPrefix + "md5:" + q.MD5
	default:
		return fmt.Sprintf("%sname:%s:%d", KeyPrefix, filepath.Base(q.FileName), q.Size)
	}
}
