package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pageza/recipe-buddy/backend/internal/search"
)

// Defaults for the query cache.
const (
	DefaultTTL        = 300 * time.Second
	DefaultMaxEntries = 1000
)

// Entry is one cached page of search results. Entries are replaced,
// never updated in place.
type Entry struct {
	Query      string         `json:"query"`
	MaxResults int            `json:"max_results"`
	Page       int            `json:"page"`
	Result     *search.Result `json:"result"`
	CachedAt   time.Time      `json:"cached_at"`
}

// EntryStats describes one live entry.
type EntryStats struct {
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	CachedAt    time.Time `json:"cached_at"`
}

// Stats is a snapshot of the cache.
type Stats struct {
	TotalEntries       int          `json:"total_entries"`
	TotalCachedResults int          `json:"total_cached_results"`
	Entries            []EntryStats `json:"entries"`
	Hits               uint64       `json:"hits"`
	Misses             uint64       `json:"misses"`
}

// Store is a shared second-level cache, such as Redis.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, e *Entry, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// ErrMiss is returned by a Store that has no entry for a key.
var ErrMiss = fmt.Errorf("cache miss")

// Config configures a QueryCache.
type Config struct {
	TTL        time.Duration
	MaxEntries int
	// Store is optional.
	Store Store
}

// QueryCache memoizes search result pages per normalized query. At most
// one computation per key is in flight; concurrent callers share it.
type QueryCache struct {
	mu         sync.RWMutex
	entries    map[string]*Entry
	group      singleflight.Group
	store      Store
	ttl        time.Duration
	maxEntries int
	hits       atomic.Uint64
	misses     atomic.Uint64
	now        func() time.Time
	onStoreErr func(op string, err error)
}

// New creates a query cache.
func New(cfg Config) *QueryCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	return &QueryCache{
		entries:    make(map[string]*Entry),
		store:      cfg.Store,
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		now:        time.Now,
		onStoreErr: func(string, error) {},
	}
}

// OnStoreError registers a callback for second-level store failures.
// Those failures never fail a request.
func (c *QueryCache) OnStoreError(fn func(op string, err error)) {
	c.onStoreErr = fn
}

// NormalizeQuery lower-cases q and collapses whitespace.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Key builds the cache key for a query and its paging options.
func Key(query string, opts search.Options) string {
	k := fmt.Sprintf("%s|%d|%d", NormalizeQuery(query), opts.MaxResults, opts.Page)
	if opts.DisableSemantic {
		k += "|rule"
	}
	return k
}

// GetOrCompute returns the cached entry for key or runs compute and caches
// its result. cached reports whether this caller was served without
// running compute. Errors are never cached.
func (c *QueryCache) GetOrCompute(ctx context.Context, key string, opts search.Options, query string, compute func(ctx context.Context) (*search.Result, error)) (*Entry, bool, error) {
	if e := c.lookup(key); e != nil {
		c.hits.Add(1)
		return e, true, nil
	}

	computed := false
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if e := c.lookup(key); e != nil {
			return e, nil
		}
		if c.store != nil {
			e, err := c.store.Get(ctx, key)
			switch {
			case err == nil && e != nil:
				c.install(key, e)
				return e, nil
			case err != nil && err != ErrMiss:
				c.onStoreErr("get", err)
			}
		}

		computed = true
		res, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		e := &Entry{
			Query:      NormalizeQuery(query),
			MaxResults: opts.MaxResults,
			Page:       opts.Page,
			Result:     res,
			CachedAt:   c.now(),
		}
		c.install(key, e)
		if c.store != nil {
			if err := c.store.Set(ctx, key, e, c.ttl); err != nil {
				c.onStoreErr("set", err)
			}
		}
		return e, nil
	})
	if err != nil {
		return nil, false, err
	}
	if computed {
		c.misses.Add(1)
	} else {
		c.hits.Add(1)
	}
	return v.(*Entry), !computed, nil
}

func (c *QueryCache) lookup(key string) *Entry {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.expired(e) {
		return nil
	}
	return e
}

func (c *QueryCache) expired(e *Entry) bool {
	return c.now().Sub(e.CachedAt) >= c.ttl
}

// install swaps in e, evicting expired entries and then the oldest ones
// when the cache is full.
func (c *QueryCache) install(key string, e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		for k, old := range c.entries {
			if c.expired(old) {
				delete(c.entries, k)
			}
		}
		for len(c.entries) >= c.maxEntries {
			var oldestKey string
			var oldest time.Time
			for k, old := range c.entries {
				if oldestKey == "" || old.CachedAt.Before(oldest) || (old.CachedAt.Equal(oldest) && k < oldestKey) {
					oldestKey, oldest = k, old.CachedAt
				}
			}
			delete(c.entries, oldestKey)
		}
	}
	c.entries[key] = e
}

// Stats returns a snapshot of the live entries and the hit counters.
func (c *QueryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: []EntryStats{}}
	for _, e := range c.entries {
		if c.expired(e) {
			continue
		}
		count := 0
		if e.Result != nil {
			count = len(e.Result.Results)
		}
		s.TotalEntries++
		s.TotalCachedResults += count
		s.Entries = append(s.Entries, EntryStats{Query: e.Query, ResultCount: count, CachedAt: e.CachedAt})
	}
	sort.Slice(s.Entries, func(i, j int) bool {
		if !s.Entries[i].CachedAt.Equal(s.Entries[j].CachedAt) {
			return s.Entries[i].CachedAt.After(s.Entries[j].CachedAt)
		}
		return s.Entries[i].Query < s.Entries[j].Query
	})
	return s
}

// Clear drops every entry, locally and in the shared store.
func (c *QueryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()
	if c.store != nil {
		if err := c.store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear shared cache: %w", err)
		}
	}
	return nil
}
