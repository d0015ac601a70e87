package cache

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	csmap "github.com/mhmtszr/concurrent-swiss-map"
	"golang.org/x/exp/slices"
)

type Option[K comparable, V any] func(c *cache[K, V])

type Cache[K comparable, V any] interface {
	// Stores a value under the given key using the default TTL
	// (see WithExpireAfterWrite). Without a default TTL the entry never expires.
	//
	// Overwriting an existing key refreshes its insertion recency, so a
	// frequently re-put key is not the first candidate for eviction.
	//
	// When the cache is at its maximum size (see WithMaxSize), putting a new key
	// evicts the single oldest-inserted entry first.
	Put(key K, value V)

	// Same as 'Put' but with a TTL for this entry only.
	//
	// A zero or negative TTL silently falls back to the default TTL.
	PutTTL(key K, value V, ttl time.Duration)

	// Returns the value for the given key, or the zero value and false if the
	// key is absent or its entry has expired.
	//
	// An expired entry found by this call is removed from the cache (lazy cleanup).
	Get(key K) (V, bool)

	// Reports whether a live (non-expired) entry exists for the given key,
	// with the same lazy cleanup side effect as 'Get'.
	Has(key K) bool

	// Removes the entry for the given key, if any.
	Remove(key K)

	// Removes all entries.
	Clear()

	// Returns the number of stored entries, including entries that have expired
	// but were not yet removed. Call 'Cleanup' first for an exact live count.
	Count() int

	// Removes every expired entry and returns the number removed.
	Cleanup() int

	// Returns the keys of all live entries in insertion order.
	Keys() []K

	// Returns the values of all live entries in undefined order.
	Values() []V

	// Returns all live entries as a map.
	ToMap() map[K]V

	// Executes the given function for every live entry.
	ForEach(fn func(K, V))

	// Stops the background sweeper, if one was configured
	// (see WithExpireAfterWriteCustom). Safe to call multiple times.
	Close()
}

type cache[K comparable, V any] struct {
	data *csmap.CsMap[K, *entry[K, V]]

	// order holds keys oldest-first and is kept in sync with data.
	// mu serializes every mutation of data and order; reads of data are lock-free.
	order []K
	mu    sync.Mutex

	maxSize          int
	expireAfterWrite time.Duration
	clock            clock.Clock
	onExpired        func(K, V)
	onEvicted        func(K, V)

	sweeper    *sweeper[K, V]
	sweepEvery time.Duration

	loaderFunc LoaderFunc[K, V]
	loaderMu   loaderMutex[K]
}

func NewCache[K comparable, V any](options ...Option[K, V]) Cache[K, V] {
	return newCache(options...)
}

func newCache[K comparable, V any](options ...Option[K, V]) *cache[K, V] {
	c := &cache[K, V]{
		data:  csmap.Create[K, *entry[K, V]](),
		clock: clock.New(),
	}

	for _, option := range options {
		option(c)
	}

	if c.sweepEvery > 0 {
		c.sweeper = newSweeper(c, c.sweepEvery)
		c.sweeper.start()
	}

	return c
}

func (c *cache[K, V]) Put(key K, value V) {
	c.PutTTL(key, value, c.expireAfterWrite)
}

func (c *cache[K, V]) PutTTL(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.expireAfterWrite
	}

	now := c.clock.Now()

	expireAt := zeroTime
	if ttl > 0 {
		expireAt = now.Add(ttl)
	}

	var evicted *entry[K, V]

	c.mu.Lock()
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	} else if c.maxSize > 0 && len(c.order) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		if old, found := c.data.Load(oldest); found {
			evicted = old
		}
		c.data.Delete(oldest)
	}
	c.order = append(c.order, key)
	c.data.Store(key, newEntry(key, value, now, expireAt))
	c.mu.Unlock()

	if evicted != nil && c.onEvicted != nil {
		c.onEvicted(evicted.key, evicted.value)
	}
}

func (c *cache[K, V]) Get(key K) (V, bool) {
	e, found := c.data.Load(key)
	if !found {
		var zero V
		return zero, false
	}

	if e.isExpired(c.clock.Now()) {
		c.removeExpired(key)
		var zero V
		return zero, false
	}

	return e.value, true
}

func (c *cache[K, V]) Has(key K) bool {
	_, found := c.Get(key)
	return found
}

func (c *cache[K, V]) Remove(key K) {
	c.mu.Lock()
	c.data.Delete(key)
	if i := slices.Index(c.order, key); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	c.mu.Unlock()
}

func (c *cache[K, V]) Clear() {
	c.mu.Lock()
	for _, key := range c.order {
		c.data.Delete(key)
	}
	c.order = nil
	c.mu.Unlock()
}

func (c *cache[K, V]) Count() int {
	return c.data.Count()
}

func (c *cache[K, V]) Cleanup() int {
	now := c.clock.Now()

	var expired []*entry[K, V]

	c.mu.Lock()
	remaining := make([]K, 0, len(c.order))
	for _, key := range c.order {
		e, found := c.data.Load(key)
		if !found {
			continue
		}
		if e.isExpired(now) {
			c.data.Delete(key)
			expired = append(expired, e)
			continue
		}
		remaining = append(remaining, key)
	}
	c.order = remaining
	c.mu.Unlock()

	if c.onExpired != nil {
		for _, e := range expired {
			c.onExpired(e.key, e.value)
		}
	}

	return len(expired)
}

func (c *cache[K, V]) Keys() []K {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.order))
	for _, key := range c.order {
		if e, found := c.data.Load(key); found && e.isValid(now) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (c *cache[K, V]) Values() []V {
	now := c.clock.Now()

	values := make([]V, 0, c.data.Count())
	c.data.Range(func(key K, e *entry[K, V]) (stop bool) {
		if e.isValid(now) {
			values = append(values, e.value)
		}
		return false
	})
	return values
}

func (c *cache[K, V]) ToMap() map[K]V {
	now := c.clock.Now()

	m := make(map[K]V, c.data.Count())
	c.data.Range(func(key K, e *entry[K, V]) (stop bool) {
		if e.isValid(now) {
			m[key] = e.value
		}
		return false
	})
	return m
}

func (c *cache[K, V]) ForEach(fn func(K, V)) {
	now := c.clock.Now()

	c.data.Range(func(key K, e *entry[K, V]) (stop bool) {
		if e.isValid(now) {
			fn(key, e.value)
		}
		return false
	})
}

func (c *cache[K, V]) Close() {
	if c.sweeper != nil {
		c.sweeper.stop()
	}
}

// Removes the entry for key if it is (still) expired. The recheck under the
// lock guards against a concurrent Put having replaced the entry.
func (c *cache[K, V]) removeExpired(key K) {
	var removed *entry[K, V]

	c.mu.Lock()
	if e, found := c.data.Load(key); found && e.isExpired(c.clock.Now()) {
		c.data.Delete(key)
		if i := slices.Index(c.order, key); i >= 0 {
			c.order = slices.Delete(c.order, i, i+1)
		}
		removed = e
	}
	c.mu.Unlock()

	if removed != nil && c.onExpired != nil {
		c.onExpired(removed.key, removed.value)
	}
}

// Evicts the oldest-inserted entry first once maxSize is reached.
// A maxSize of zero (the default) means unbounded.
func WithMaxSize[K comparable, V any](maxSize int) Option[K, V] {
	return func(c *cache[K, V]) {
		c.maxSize = maxSize
	}
}

// Expires entries the given duration after they were written.
// Expired entries are removed lazily, on access.
func WithExpireAfterWrite[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *cache[K, V]) {
		c.expireAfterWrite = ttl
	}
}

// Same as WithExpireAfterWrite, but additionally runs a background sweeper
// calling 'Cleanup' at the given interval, so expired entries are removed even
// when never accessed. Call 'Close' to stop the sweeper.
func WithExpireAfterWriteCustom[K comparable, V any](
	ttl time.Duration,
	cleanupInterval time.Duration,
) Option[K, V] {
	return func(c *cache[K, V]) {
		c.expireAfterWrite = ttl
		c.sweepEvery = cleanupInterval
	}
}

// Executes the given function whenever an expired entry is removed,
// either lazily on access or by the sweeper.
func WithOnExpired[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *cache[K, V]) {
		c.onExpired = fn
	}
}

// Executes the given function whenever an entry is evicted to satisfy
// the maximum size.
func WithOnEvicted[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *cache[K, V]) {
		c.onEvicted = fn
	}
}

// Replaces the wall clock, e.g. with a clock.Mock inside tests.
func WithClock[K comparable, V any](clk clock.Clock) Option[K, V] {
	return func(c *cache[K, V]) {
		c.clock = clk
	}
}
