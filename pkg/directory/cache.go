package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ProfileCache is a read-through cache for stored profiles. Implementations
// must treat entries as immutable snapshots.
type ProfileCache interface {
	Name() string
	Get(ctx context.Context, key string) (*User, bool)
	Set(ctx context.Context, key string, user *User)
	Delete(ctx context.Context, keys ...string)
}

// LRUCache is an in-process expiring LRU profile cache
type LRUCache struct {
	entries *lru.LRU[string, User]
}

// NewLRUCache creates an LRU cache holding up to size entries for ttl
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	return &LRUCache{entries: lru.NewLRU[string, User](size, nil, ttl)}
}

// Name identifies the cache backend in metrics
func (c *LRUCache) Name() string { return "lru" }

// Get returns a copy of the cached profile, if present
func (c *LRUCache) Get(_ context.Context, key string) (*User, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return &entry, true
}

// Set stores a profile snapshot
func (c *LRUCache) Set(_ context.Context, key string, user *User) {
	c.entries.Add(key, *user)
}

// Delete removes entries
func (c *LRUCache) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.entries.Remove(key)
	}
}

// RedisCache is a Redis-backed profile cache shared across instances
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and returns a profile cache
func NewRedisCache(addr, password string, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Name identifies the cache backend in metrics
func (c *RedisCache) Name() string { return "redis" }

// Get returns the cached profile, if present and decodable
func (c *RedisCache) Get(ctx context.Context, key string) (*User, bool) {
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var user User
	if err := json.Unmarshal([]byte(cached), &user); err != nil {
		return nil, false
	}
	return &user, true
}

// Set stores a profile snapshot with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, user *User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, c.ttl)
}

// Delete removes entries
func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	c.client.Del(ctx, keys...)
}

// Client exposes the underlying connection for readiness probes
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
