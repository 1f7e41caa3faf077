// Package cache memoises forecast results keyed by their planning parameters.
package cache

import (
	"container/list"
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/rpgo/lifecastor/internal/domain"
)

// KeyPrefix namespaces every cache key.
const KeyPrefix = "lifecastor:forecast:"

// Cache stores encoded batch results.
type Cache interface {
	// Get reports ok=false on a miss. err is reserved for backend failures.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Default bounds for MemoryCache.
const (
	DefaultMaxEntries = 256
	DefaultTTL        = time.Hour
)

var nowFunc = time.Now

// Key hashes the canonical JSON form of the parameters. Defaults are applied
// first and the worker count is ignored, since neither changes the result.
// An unset start year is pinned to the current calendar year, which the
// periodic expense window depends on.
func Key(p domain.PlanningParameters) (string, error) {
	p.ApplyDefaults()
	p.Simulation.Workers = 0
	if p.Simulation.StartYear == 0 {
		p.Simulation.StartYear = nowFunc().Year()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return KeyPrefix + strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

// MemoryCache is an in-process least recently used Cache. Entries expire
// after ttl and the oldest entry is evicted once maxEntries is reached.
type MemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	order      *list.List // front is most recently used
	items      map[string]*list.Element
}

type memoryEntry struct {
	key     string
	value   []byte
	expires time.Time
}

// NewMemoryCache bounds the cache to maxEntries entries living ttl each.
// Non-positive arguments fall back to DefaultMaxEntries and DefaultTTL.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	entry := el.Value.(*memoryEntry)
	if !nowFunc().Before(entry.expires) {
		m.remove(el)
		return nil, false, nil
	}
	m.order.MoveToFront(el)
	return entry.value, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := &memoryEntry{key: key, value: append([]byte(nil), value...), expires: nowFunc().Add(m.ttl)}
	if el, ok := m.items[key]; ok {
		el.Value = entry
		m.order.MoveToFront(el)
		return nil
	}
	m.items[key] = m.order.PushFront(entry)
	for m.order.Len() > m.maxEntries {
		m.remove(m.order.Back())
	}
	return nil
}

func (m *MemoryCache) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*memoryEntry).key)
}

// Len returns the number of cached entries, expired ones included until
// they are next touched.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// RedisCache stores entries in Redis with a fixed time to live.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects lazily to the Redis server at addr. A zero ttl keeps
// entries until evicted.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return NewRedisCacheWithOptions(&redis.Options{Addr: addr}, ttl)
}

func NewRedisCacheWithOptions(opts *redis.Options, ttl time.Duration) *RedisCache {
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
