// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/animetrack/internal/platform/constants"
	"github.com/taibuivan/animetrack/internal/platform/metrics"
)

// ErrCacheMiss is returned by a [RemoteStore] when the key is absent.
var ErrCacheMiss = errors.New("catalog: cache miss")

// RemoteStore is the cache shared between API instances.
type RemoteStore interface {
	Get(context context.Context, key string) ([]byte, error)
	Set(context context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore implements [RemoteStore] on Redis strings.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps a Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the raw value or [ErrCacheMiss].
func (store *RedisStore) Get(context context.Context, key string) ([]byte, error) {
	value, err := store.client.Get(context, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return value, err
}

// Set writes a value with an expiry.
func (store *RedisStore) Set(context context.Context, key string, value []byte, ttl time.Duration) error {
	return store.client.Set(context, key, value, ttl).Err()
}

// # Two-Level Cache

// Cache keeps catalog responses in process memory in front of a
// [RemoteStore]. Values are stored as JSON in both layers.
//
// Cache failures are logged and treated as misses.
type Cache struct {
	local   *gocache.Cache
	remote  RemoteStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCache builds the cache. remote may be nil to run with the local layer only.
func NewCache(remote RemoteStore, collectors *metrics.Metrics, logger *slog.Logger) *Cache {
	return &Cache{
		local:   gocache.New(constants.CatalogLocalTTL, 2*constants.CatalogLocalTTL),
		remote:  remote,
		metrics: collectors,
		logger:  logger,
	}
}

// Load decodes the cached value for key into target and reports whether it
// was found in either layer.
func (cache *Cache) Load(context context.Context, key string, target any) bool {
	if cached, found := cache.local.Get(key); found {
		if raw, ok := cached.([]byte); ok && json.Unmarshal(raw, target) == nil {
			cache.metrics.CacheLookup(metrics.LayerLocal, metrics.ResultHit)
			return true
		}
	}
	cache.metrics.CacheLookup(metrics.LayerLocal, metrics.ResultMiss)

	if cache.remote == nil {
		return false
	}

	raw, err := cache.remote.Get(context, key)
	switch {
	case errors.Is(err, ErrCacheMiss):
		cache.metrics.CacheLookup(metrics.LayerRedis, metrics.ResultMiss)
		return false
	case err != nil:
		cache.metrics.CacheLookup(metrics.LayerRedis, metrics.ResultError)
		cache.logger.WarnContext(context, "catalog_cache_read_failed", slog.String("key", key), slog.Any("error", err))
		return false
	}

	if err := json.Unmarshal(raw, target); err != nil {
		cache.metrics.CacheLookup(metrics.LayerRedis, metrics.ResultError)
		return false
	}

	cache.metrics.CacheLookup(metrics.LayerRedis, metrics.ResultHit)
	cache.local.Set(key, raw, gocache.DefaultExpiration)
	return true
}

// Store writes value to both layers.
func (cache *Cache) Store(context context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	cache.local.Set(key, raw, gocache.DefaultExpiration)

	if cache.remote == nil {
		return
	}
	if err := cache.remote.Set(context, key, raw, constants.CatalogRemoteTTL); err != nil {
		cache.logger.WarnContext(context, "catalog_cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}
}
