// Package resolver turns a route plus trip parameters into a PriceQuote
// by trying external fare sources in priority order and falling back to
// the synthetic estimator when every source fails.
package resolver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/estimator"
	"github.com/juankaspain/vuelosrobot-sub001/internal/idhash"
)

// ErrNoFare is returned by a SourceAdapter when the provider answered
// but offered no usable price for the trip.
var ErrNoFare = errors.New("no usable fare")

// SourceAdapter wraps one external fare provider. Implementations own
// their authentication, request construction and response parsing, and
// convert provider errors into ErrNoFare or a plain error; either way
// the resolver treats the source as a soft failure and moves on.
type SourceAdapter interface {
	// Source tags quotes produced from this adapter.
	Source() domain.QuoteSource

	// TryFetch returns the cheapest fare currently offered for the trip.
	TryFetch(ctx context.Context, route domain.Route, params domain.TripParameters) (float64, error)
}

// DefaultFetchTimeout bounds a single adapter call.
const DefaultFetchTimeout = 12 * time.Second

// Resolver resolves prices through an ordered adapter chain.
type Resolver struct {
	sources      []SourceAdapter
	estimator    *estimator.Estimator
	fetchTimeout time.Duration
	logger       *log.Logger
	nowFn        func() time.Time
}

// Options contains configuration for creating a Resolver.
type Options struct {
	// Sources are tried in order, highest-trust first. May be empty.
	Sources []SourceAdapter

	// Estimator is the fallback and must be set; it cannot fail, which
	// guarantees Resolve always returns a quote.
	Estimator *estimator.Estimator

	FetchTimeout time.Duration // default DefaultFetchTimeout
	Logger       *log.Logger   // default log.Default()
	Now          func() time.Time
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	timeout := opts.FetchTimeout
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	return &Resolver{
		sources:      opts.Sources,
		estimator:    opts.Estimator,
		fetchTimeout: timeout,
		logger:       logger,
		nowFn:        nowFn,
	}
}

// Resolve tries each source in order and returns the first usable price.
// Timeouts, errors and non-positive prices are soft failures: logged,
// then the next source is tried. There are no retries within a single
// resolution. On exhaustion the estimator supplies the quote, so the
// returned quote is always valid.
func (r *Resolver) Resolve(ctx context.Context, route domain.Route, params domain.TripParameters) domain.PriceQuote {
	for _, src := range r.sources {
		price, err := r.tryFetch(ctx, src, route, params)
		if err != nil {
			r.logger.Printf("source %s skipped for %s: %v", src.Source(), route.Key(), err)
			continue
		}
		if price <= 0 {
			r.logger.Printf("source %s skipped for %s: non-positive price %.2f", src.Source(), route.Key(), price)
			continue
		}
		return r.newQuote(route, price, src.Source(), 1.0)
	}

	price, confidence := r.estimator.Estimate(route, params)
	return r.newQuote(route, price, domain.SourceEstimated, confidence)
}

// tryFetch invokes one adapter under the per-adapter timeout.
func (r *Resolver) tryFetch(ctx context.Context, src SourceAdapter, route domain.Route, params domain.TripParameters) (float64, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	return src.TryFetch(fetchCtx, route, params)
}

func (r *Resolver) newQuote(route domain.Route, price float64, source domain.QuoteSource, confidence float64) domain.PriceQuote {
	observedAt := r.nowFn().UTC()
	return domain.PriceQuote{
		ID:         idhash.ComputeQuoteID(route.Key(), source.String(), observedAt.UnixMilli()),
		Route:      route,
		Price:      price,
		Source:     source,
		Confidence: confidence,
		ObservedAt: observedAt,
	}
}
