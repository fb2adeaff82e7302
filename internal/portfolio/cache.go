package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "portfolio:version"
	cacheSnapshot   = "portfolio:snapshot"
)

// Cache wraps Redis-backed snapshot caching with a version counter so a bump
// invalidates every derived key at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(ctx context.Context) (string, error) {
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", cacheSnapshot, ver), nil
}

// Get returns the cached baseline, or ok=false on a miss.
func (c *Cache) Get(ctx context.Context) ([]Record, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	key, err := c.key(ctx)
	if err != nil {
		return nil, false, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var records []Record
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, false, err
	}
	return records, true, nil
}

// Set stores the baseline under the current version.
func (c *Cache) Set(ctx context.Context, records []Record) error {
	if c == nil || c.client == nil {
		return nil
	}
	key, err := c.key(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

// Bump invalidates the snapshot by incrementing the version counter.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// CachedFetcher decorates a Fetcher with read-through snapshot caching. Cache
// failures degrade to a direct fetch; they are logged, never surfaced.
type CachedFetcher struct {
	inner  Fetcher
	cache  *Cache
	logger *slog.Logger
}

// NewCachedFetcher wires the decorator.
func NewCachedFetcher(inner Fetcher, cache *Cache, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{inner: inner, cache: cache, logger: logger}
}

// FetchRecords serves from cache when possible and populates it after a
// successful upstream fetch.
func (f *CachedFetcher) FetchRecords(ctx context.Context) ([]Record, error) {
	records, ok, err := f.cache.Get(ctx)
	if err != nil {
		f.log().Warn("snapshot cache read", slog.Any("error", err))
	}
	if ok {
		return records, nil
	}
	records, err = f.inner.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Set(ctx, records); err != nil {
		f.log().Warn("snapshot cache write", slog.Any("error", err))
	}
	return records, nil
}

func (f *CachedFetcher) log() *slog.Logger {
	if f.logger != nil {
		return f.logger.With(slog.String("component", "portfolio_cache"))
	}
	return slog.Default().With(slog.String("component", "portfolio_cache"))
}
