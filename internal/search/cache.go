package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/raine/photo-pricer/internal/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultCacheTTL = 6 * time.Hour

// CachedSearcher caches search responses in Redis. Redis being unavailable
// degrades to calling the inner searcher directly.
type CachedSearcher struct {
	inner Searcher
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCachedSearcher wraps inner with a Redis cache. A non-positive ttl uses
// DefaultCacheTTL.
func NewCachedSearcher(inner Searcher, rdb *redis.Client, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSearcher{inner: inner, rdb: rdb, ttl: ttl}
}

// NewRedisClient connects to addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func cacheKey(query string, num int) string {
	return fmt.Sprintf("search:%d:%s", num, strings.ToLower(strings.TrimSpace(query)))
}

// Search implements Searcher.
func (c *CachedSearcher) Search(ctx context.Context, query string, num int) ([]Result, error) {
	key := cacheKey(query, num)

	payload, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []Result
		if err := json.Unmarshal(payload, &cached); err == nil {
			metrics.SearchCache.WithLabelValues("hit").Inc()
			log.Debug().Str("query", query).Int("count", len(cached)).Msg("search cache hit")
			return cached, nil
		}
		log.Warn().Str("key", key).Msg("discarding corrupt search cache entry")
	case err != redis.Nil:
		log.Warn().Err(err).Msg("failed to read search cache")
	}
	metrics.SearchCache.WithLabelValues("miss").Inc()

	results, err := c.inner.Search(ctx, query, num)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(results); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to write search cache")
		}
	}
	return results, nil
}
