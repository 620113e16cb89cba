package principal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/partnerdash/gateway/internal/clock"
)

const (
	// DefaultTTL is how long a resolved principal stays cached
	DefaultTTL = 5 * time.Minute

	// DefaultMaxEntries bounds the cache to prevent unbounded growth
	DefaultMaxEntries = 1000
)

// CacheConfig configures a Cache
type CacheConfig struct {
	// TTL for cached entries (default: 5m)
	TTL time.Duration

	// MaxEntries caps the cache size (default: 1000)
	MaxEntries int

	// Clock is an optional clock for testing (defaults to system clock)
	Clock clock.Clock
}

// Cache is a bounded in-process cache of resolved principals keyed by email.
// At most one entry exists per email. Entries are valid until their expiry;
// inserts first sweep expired entries, then evict in ascending expiry order
// if the cache is still over capacity.
//
// Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	clock      clock.Clock
}

type cacheEntry struct {
	principal Principal
	expiresAt time.Time
}

// NewCache creates a bounded TTL cache
func NewCache(cfg CacheConfig) *Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clk,
	}
}

// Get returns the cached principal for email if a live entry exists
func (c *Cache) Get(email string) (*Principal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[email]
	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		return nil, false
	}
	p := entry.principal
	return &p, true
}

// Put stores a principal under email with the configured TTL, sweeping
// expired entries first and evicting oldest-expiry entries if the cache
// would still exceed its capacity.
func (c *Cache) Put(email string, p *Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.sweepLocked(now)

	c.entries[email] = cacheEntry{principal: *p, expiresAt: now.Add(c.ttl)}

	if len(c.entries) > c.maxEntries {
		c.evictLocked()
	}
}

// Len returns the number of entries currently held (live or expired)
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// sweepLocked removes expired entries. Caller must hold the lock.
func (c *Cache) sweepLocked(now time.Time) {
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// evictLocked removes entries in ascending expiry order until the cache is
// at or under capacity. Caller must hold the lock.
func (c *Cache) evictLocked() {
	type keyed struct {
		key       string
		expiresAt time.Time
	}

	ordered := make([]keyed, 0, len(c.entries))
	for key, entry := range c.entries {
		ordered = append(ordered, keyed{key: key, expiresAt: entry.expiresAt})
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].expiresAt.Before(ordered[j].expiresAt)
	})

	excess := len(c.entries) - c.maxEntries
	for _, entry := range ordered[:excess] {
		delete(c.entries, entry.key)
	}
}

// CachingResolver wraps a Resolver with a Cache.
// A live cache hit never reaches the underlying resolver; failed resolutions
// are not cached.
type CachingResolver struct {
	source Resolver
	cache  *Cache
}

// NewCachingResolver wraps source with the given cache
func NewCachingResolver(source Resolver, cache *Cache) *CachingResolver {
	return &CachingResolver{source: source, cache: cache}
}

// Resolve implements Resolver
func (r *CachingResolver) Resolve(ctx context.Context, email string) (*Principal, error) {
	if p, ok := r.cache.Get(email); ok {
		return p, nil
	}

	p, err := r.source.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	r.cache.Put(email, p)
	return p, nil
}
