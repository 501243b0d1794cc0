package person

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	id "dvi/pkg/domain"
)

// Cache stores resolved person keys. It only ever caches answers from the
// external registry, never DVI records.
type Cache interface {
	Get(ctx context.Context, ref id.PersonRef) (id.PersonRef, bool, error)
	Set(ctx context.Context, ref, key id.PersonRef, ttl time.Duration) error
}

const redisKeyPrefix = "dvi:person:"

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, ref id.PersonRef) (id.PersonRef, bool, error) {
	v, err := c.client.Get(ctx, redisKeyPrefix+string(ref)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id.PersonRef(v), true, nil
}

func (c *RedisCache) Set(ctx context.Context, ref, key id.PersonRef, ttl time.Duration) error {
	return c.client.Set(ctx, redisKeyPrefix+string(ref), string(key), ttl).Err()
}

type memoryEntry struct {
	key     id.PersonRef
	expires time.Time
}

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[id.PersonRef]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[id.PersonRef]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, ref id.PersonRef) (id.PersonRef, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[ref]
	if !ok || !c.now().Before(e.expires) {
		return "", false, nil
	}
	return e.key, true, nil
}

func (c *MemoryCache) Set(_ context.Context, ref, key id.PersonRef, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ref] = memoryEntry{key: key, expires: c.now().Add(ttl)}
	return nil
}

// CachingRegistry decorates a Registry with a TTL cache of positive
// resolutions. Unknown references are not cached; cache errors fall through
// to the registry.
type CachingRegistry struct {
	Registry
	cache Cache
	ttl   time.Duration
}

func NewCachingRegistry(next Registry, cache Cache, ttl time.Duration) *CachingRegistry {
	return &CachingRegistry{Registry: next, cache: cache, ttl: ttl}
}

func (r *CachingRegistry) Resolve(ctx context.Context, ref id.PersonRef) (id.PersonRef, error) {
	if key, ok, err := r.cache.Get(ctx, ref); err == nil && ok {
		return key, nil
	}
	key, err := r.Registry.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	_ = r.cache.Set(ctx, ref, key, r.ttl)
	return key, nil
}
