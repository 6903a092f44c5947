package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/resolver"
)

// cacheKey identifies a fetch by its price-relevant attributes.
func cacheKey(route domain.Route, params domain.TripParameters) string {
	dep, ret := "", ""
	if params.DepartureDate != nil {
		dep = params.DepartureDate.Format("2006-01-02")
	}
	if params.ReturnDate != nil {
		ret = params.ReturnDate.Format("2006-01-02")
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d|%s|%s", route.Key(), dep, ret, params.CabinClass, params.Stops, params.TripType, params.AirlineTier)
}

type cacheEntry struct {
	price     float64
	expiresAt time.Time
}

// Cached decorates a SourceAdapter with a TTL cache over successful
// fetches. Failures are never cached.
type Cached struct {
	inner resolver.SourceAdapter
	ttl   time.Duration
	nowFn func() time.Time

	mu        sync.Mutex
	entries   map[string]cacheEntry
	lastSweep time.Time
}

// NewCached wraps an adapter with a TTL cache.
func NewCached(inner resolver.SourceAdapter, ttl time.Duration) *Cached {
	return &Cached{
		inner:   inner,
		ttl:     ttl,
		nowFn:   time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Compile-time interface check.
var _ resolver.SourceAdapter = (*Cached)(nil)

// Source delegates to the wrapped adapter.
func (c *Cached) Source() domain.QuoteSource {
	return c.inner.Source()
}

// TryFetch returns a cached price when fresh, otherwise delegates.
func (c *Cached) TryFetch(ctx context.Context, route domain.Route, params domain.TripParameters) (float64, error) {
	key := cacheKey(route, params)
	now := c.nowFn()

	c.mu.Lock()
	c.sweep(now)
	if entry, ok := c.entries[key]; ok && now.Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.price, nil
	}
	c.mu.Unlock()

	price, err := c.inner.TryFetch(ctx, route, params)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{price: price, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()

	return price, nil
}

// sweep drops expired entries at most once per TTL, so keys that stop
// being queried do not pile up over a long-running watch. Caller holds mu.
func (c *Cached) sweep(now time.Time) {
	if now.Sub(c.lastSweep) < c.ttl {
		return
	}
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.lastSweep = now
}

// ErrBreakerOpen is returned while a tripped breaker is cooling down.
var ErrBreakerOpen = fmt.Errorf("circuit breaker open")

// Breaker decorates a SourceAdapter with a circuit breaker: after
// Threshold consecutive failures the source is skipped for Cooldown,
// turning a hard-down provider into one fast soft failure per call.
type Breaker struct {
	inner     resolver.SourceAdapter
	threshold int
	cooldown  time.Duration
	nowFn     func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
}

// NewBreaker wraps an adapter with a circuit breaker.
func NewBreaker(inner resolver.SourceAdapter, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 3
	}
	return &Breaker{
		inner:     inner,
		threshold: threshold,
		cooldown:  cooldown,
		nowFn:     time.Now,
	}
}

// Compile-time interface check.
var _ resolver.SourceAdapter = (*Breaker)(nil)

// Source delegates to the wrapped adapter.
func (b *Breaker) Source() domain.QuoteSource {
	return b.inner.Source()
}

// TryFetch short-circuits while open, otherwise delegates and tracks
// consecutive failures. A success closes the breaker.
func (b *Breaker) TryFetch(ctx context.Context, route domain.Route, params domain.TripParameters) (float64, error) {
	b.mu.Lock()
	if b.failures >= b.threshold {
		if b.nowFn().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return 0, ErrBreakerOpen
		}
		// Cooldown elapsed: allow one probe through.
		b.failures = b.threshold - 1
	}
	b.mu.Unlock()

	price, err := b.inner.TryFetch(ctx, route, params)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.failures >= b.threshold {
			b.openedAt = b.nowFn()
		}
		return 0, err
	}
	b.failures = 0
	return price, nil
}
