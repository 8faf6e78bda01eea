package predicthq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/retailradar/event-insights/internal/domain"
	"github.com/retailradar/event-insights/internal/observability"
)

// CachedRadiusEstimator wraps a RadiusEstimator with an in-memory LRU cache.
// Suggestions are expensive to recompute and stable for a given input, so
// each distinct (lat, lon, unit, industry) key hits the provider at most
// once per TTL; concurrent callers for the same key collapse into a single
// in-flight provider call.
type CachedRadiusEstimator struct {
	inner   domain.RadiusEstimator
	cache   *lruCache
	group   singleflight.Group
	metrics *observability.Metrics
}

// NewCachedRadiusEstimator creates a cache decorator around an estimator.
// A ttl of zero keeps entries for the process lifetime (LRU eviction only).
func NewCachedRadiusEstimator(inner domain.RadiusEstimator, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedRadiusEstimator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedRadiusEstimator{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

func (c *CachedRadiusEstimator) SuggestRadius(ctx context.Context, lat, lon float64, unit, industry string) (domain.RadiusSuggestion, error) {
	if industry == "" {
		industry = DefaultIndustry
	}
	key := fmt.Sprintf("%.6f,%.6f|%s|%s", lat, lon, unit, industry)

	if suggestion, ok := c.cache.get(key); ok {
		c.metrics.RadiusCache.WithLabelValues("hit").Inc()
		return suggestion, nil
	}
	c.metrics.RadiusCache.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		suggestion, err := c.inner.SuggestRadius(ctx, lat, lon, unit, industry)
		if err != nil {
			return domain.RadiusSuggestion{}, err
		}
		// Failures are never cached so a provider outage can be retried.
		c.cache.put(key, suggestion)
		return suggestion, nil
	})
	if err != nil {
		return domain.RadiusSuggestion{}, err
	}
	return v.(domain.RadiusSuggestion), nil
}

// lruCache is a thread-safe LRU cache for radius suggestions with optional
// per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key       string
	value     domain.RadiusSuggestion
	expiresAt time.Time // zero when the cache has no TTL
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.RadiusSuggestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.RadiusSuggestion{}, false
	}
	if !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt) {
		delete(c.entries, e.key)
		c.remove(e)
		return domain.RadiusSuggestion{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.RadiusSuggestion) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.clock.Now().Add(c.ttl)
	}

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
