package duckblog

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader produces a Post for a content key. *Store implements it.
type Loader interface {
	Load(ctx context.Context, key string) (*Post, error)
}

// ContentCache is an in-memory cache of rendered posts keyed by content key.
// An entry expires when it is older than the TTL or has not been read for
// longer than the idle window, whichever comes first. Concurrent misses for
// the same key share a single load.
type ContentCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	paths   map[string]string // post path -> key
	gens    map[string]uint64
	epoch   uint64
	group   singleflight.Group

	loader Loader
	ttl    time.Duration
	idle   time.Duration
	now    func() time.Time

	metrics *cacheMetrics
	logger  *zap.Logger
}

type cacheEntry struct {
	post     *Post
	inserted time.Time
	accessed time.Time
}

// CacheOption configures a ContentCache.
type CacheOption func(*ContentCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ContentCache) {
		c.now = now
	}
}

// WithCacheMetrics registers hit/miss/eviction counters on reg.
func WithCacheMetrics(reg prometheus.Registerer) CacheOption {
	return func(c *ContentCache) {
		c.metrics = newCacheMetrics(reg)
	}
}

// WithCacheLogger sets the logger used by the sweeper.
func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *ContentCache) {
		c.logger = l
	}
}

// NewContentCache creates a cache in front of loader. A zero ttl or idle
// disables that bound.
func NewContentCache(loader Loader, ttl, idle time.Duration, opts ...CacheOption) *ContentCache {
	c := &ContentCache{
		entries: make(map[string]*cacheEntry),
		paths:   make(map[string]string),
		gens:    make(map[string]uint64),
		loader:  loader,
		ttl:     ttl,
		idle:    idle,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ContentCache) expired(e *cacheEntry, now time.Time) bool {
	if c.ttl > 0 && now.Sub(e.inserted) >= c.ttl {
		return true
	}
	return c.idle > 0 && now.Sub(e.accessed) >= c.idle
}

// lookup returns a live entry and refreshes its access time. Expired entries
// are dropped on the way.
func (c *ContentCache) lookup(key string) (*Post, bool) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.expired(e, now) {
		c.dropLocked(key)
		c.metrics.evicted()
		return nil, false
	}
	e.accessed = now
	return e.post, true
}

// dropLocked removes key and its path index entry. c.mu must be held.
func (c *ContentCache) dropLocked(key string) {
	if e, ok := c.entries[key]; ok {
		if c.paths[e.post.Path] == key {
			delete(c.paths, e.post.Path)
		}
		delete(c.entries, key)
	}
}

type stamp struct{ epoch, gen uint64 }

func (c *ContentCache) stampLocked(key string) stamp {
	return stamp{epoch: c.epoch, gen: c.gens[key]}
}

// GetOrLoad returns the cached post for key, loading it on a miss. Failed
// loads are not cached. A caller that gives up does not cancel the shared
// load; a load overtaken by Invalidate or Purge is returned but not stored.
func (c *ContentCache) GetOrLoad(ctx context.Context, key string) (*Post, error) {
	key = contentKey(key)
	if post, ok := c.lookup(key); ok {
		c.metrics.hit()
		return post, nil
	}
	c.metrics.miss()

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// A flight that finished between our lookup and DoChan may have filled it.
		if post, ok := c.lookup(key); ok {
			return post, nil
		}
		c.mu.Lock()
		before := c.stampLocked(key)
		c.mu.Unlock()

		post, err := c.loader.Load(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, err
		}
		now := c.now()
		c.mu.Lock()
		if c.stampLocked(key) == before {
			c.dropLocked(key)
			c.entries[key] = &cacheEntry{post: post, inserted: now, accessed: now}
			c.paths[post.Path] = key
		}
		c.mu.Unlock()
		return post, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Post), nil
	}
}

// Load is GetOrLoad, so a cache can stand in for a Store as a Loader.
func (c *ContentCache) Load(ctx context.Context, key string) (*Post, error) {
	return c.GetOrLoad(ctx, key)
}

// LookupPath returns the live cached post whose path is p, without loading.
func (c *ContentCache) LookupPath(p string) (*Post, bool) {
	p = canonicalPath(p)
	c.mu.Lock()
	key, ok := c.paths[p]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	post, ok := c.lookup(key)
	if !ok || post.Path != p {
		return nil, false
	}
	c.metrics.hit()
	return post, true
}

// Invalidate drops the entry for key so the next read reloads it.
func (c *ContentCache) Invalidate(key string) {
	key = contentKey(key)
	c.mu.Lock()
	c.gens[key]++
	c.dropLocked(key)
	c.mu.Unlock()
}

// Purge drops every entry.
func (c *ContentCache) Purge() {
	c.mu.Lock()
	c.epoch++
	c.entries = make(map[string]*cacheEntry)
	c.paths = make(map[string]string)
	c.gens = make(map[string]uint64)
	c.mu.Unlock()
}

// Len returns the number of entries, live or not yet swept.
func (c *ContentCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes expired entries and returns how many were dropped.
func (c *ContentCache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key, e := range c.entries {
		if c.expired(e, now) {
			c.dropLocked(key)
			n++
		}
	}
	c.metrics.evictedN(n)
	return n
}

// StartSweeper runs Sweep on interval. Returns a stop function.
func (c *ContentCache) StartSweeper(interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					c.logger.Debug("swept cache", zap.Int("evicted", n))
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
}

func newCacheMetrics(reg prometheus.Registerer) *cacheMetrics {
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duckblog_content_cache_hits_total",
			Help: "Content cache lookups served from memory.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duckblog_content_cache_misses_total",
			Help: "Content cache lookups that required a load.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duckblog_content_cache_evictions_total",
			Help: "Entries dropped for exceeding the TTL or idle window.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.evictions)
	}
	return m
}

func (m *cacheMetrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) evicted() { m.evictedN(1) }

func (m *cacheMetrics) evictedN(n int) {
	if m != nil && n > 0 {
		m.evictions.Add(float64(n))
	}
}
