package webflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCacheConfig configures the Redis backend.
type RedisCacheConfig struct {
	// Addr is host:port of the Redis server. Ignored when Client is set.
	Addr     string
	Password string
	DB       int
	// Client reuses an existing client. The cache does not close it.
	Client *redis.Client
	// KeyPrefix scopes every key so Clear never touches foreign data.
	// Defaults to "webflow:".
	KeyPrefix string
}

// RedisCache stores entries as JSON strings with native Redis expiry.
type RedisCache struct {
	client     *redis.Client
	ownsClient bool
	prefix     string
}

// NewRedisCache creates a Redis backed cache. It does not dial until first use.
func NewRedisCache(config *RedisCacheConfig) (*RedisCache, error) {
	if config == nil {
		return nil, ErrRedisConfigRequired
	}

	client := config.Client
	ownsClient := false

	if client == nil {
		if config.Addr == "" {
			return nil, fmt.Errorf("%w: addr is empty", ErrRedisConfigRequired)
		}

		client = redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		})
		ownsClient = true
	}

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = "webflow:"
	}

	return &RedisCache{client: client, ownsClient: ownsClient, prefix: prefix}, nil
}

// Get returns a live entry.
func (c *RedisCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrCacheMiss, key)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s from redis: %w", key, err)
	}

	var entry CacheEntry

	err = json.Unmarshal(data, &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	if entry.Expired(time.Now()) {
		return nil, fmt.Errorf("%w: %s", ErrCacheExpired, key)
	}

	return &entry, nil
}

// Set stores entry under key. Entries with an expiry get a matching Redis TTL.
func (c *RedisCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	err = c.client.Set(ctx, c.prefix+key, data, redisTTL(entry, time.Now())).Err()
	if err != nil {
		return fmt.Errorf("writing %s to redis: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.client.Del(ctx, c.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("deleting %s from redis: %w", key, err)
	}

	return nil
}

// Clear removes every key under the prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()

	pipe := c.client.Pipeline()
	queued := 0

	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		queued++
	}

	err := iter.Err()
	if err != nil {
		return fmt.Errorf("scanning redis keys: %w", err)
	}

	if queued == 0 {
		return nil
	}

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("clearing redis keys: %w", err)
	}

	return nil
}

// Has reports whether key holds a live entry.
func (c *RedisCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close releases the client when the cache created it.
func (c *RedisCache) Close() error {
	if !c.ownsClient {
		return nil
	}

	err := c.client.Close()
	if err != nil {
		return fmt.Errorf("closing redis client: %w", err)
	}

	return nil
}

// redisTTL converts an entry expiry into a Redis TTL; 0 means no expiry.
func redisTTL(entry *CacheEntry, now time.Time) time.Duration {
	if entry.ExpiresAt.IsZero() {
		return 0
	}

	ttl := entry.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return time.Millisecond
	}

	return ttl
}
