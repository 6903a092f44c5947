// Package watch runs periodic checks over a set of route watches and
// folds live feed updates into the same history and alerting path.
package watch

import (
	"context"
	"log"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/deal"
	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/idhash"
	"github.com/juankaspain/vuelosrobot-sub001/internal/notify"
	"github.com/juankaspain/vuelosrobot-sub001/internal/orchestrator"
	"github.com/juankaspain/vuelosrobot-sub001/internal/source"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
)

// DefaultCheckInterval is how often the full watch list is re-checked.
const DefaultCheckInterval = 1 * time.Hour

// CheckRunner executes one check over a set of watches.
type CheckRunner interface {
	Run(ctx context.Context, watches []domain.Watch) (*orchestrator.RunResult, error)
}

// PriceDrop describes a fall between the two most recent stored quotes
// for one route.
type PriceDrop struct {
	RouteKey string
	From     float64
	To       float64
	Pct      float64
}

// Runner drives the continuous watch loop.
type Runner struct {
	checker   CheckRunner
	store     storage.QuoteStore
	feed      *source.Feed
	sink      notify.Sink
	evaluator *deal.Evaluator
	watches   []domain.Watch
	threshold float64
	interval  time.Duration
	logger    *log.Logger
	nowFn     func() time.Time
}

// Options contains configuration for creating a Runner.
type Options struct {
	Checker CheckRunner
	Store   storage.QuoteStore
	Watches []domain.Watch

	// Feed is optional; when set its updates are evaluated and stored
	// between scheduled checks.
	Feed *source.Feed

	Sink      notify.Sink
	Threshold float64
	Interval  time.Duration // default DefaultCheckInterval
	Logger    *log.Logger
	Now       func() time.Time
}

// NewRunner creates a new watch runner.
func NewRunner(opts Options) *Runner {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultCheckInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	sink := opts.Sink
	if sink == nil {
		sink = notify.NewConsoleSink(logger)
	}

	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	return &Runner{
		checker:   opts.Checker,
		store:     opts.Store,
		feed:      opts.Feed,
		sink:      sink,
		evaluator: deal.NewEvaluator(),
		watches:   opts.Watches,
		threshold: opts.Threshold,
		interval:  interval,
		logger:    logger,
		nowFn:     nowFn,
	}
}

// Run starts the watch loop. One check fires immediately, then every
// interval. It blocks until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Printf("watch runner started: %d watches, interval %v", len(r.watches), r.interval)

	var feedCh <-chan source.FareUpdate
	if r.feed != nil {
		var err error
		feedCh, err = r.feed.Subscribe(ctx)
		if err != nil {
			return err
		}
		r.logger.Println("subscribed to live fare feed")
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.check(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("watch runner stopping")
			return ctx.Err()

		case <-ticker.C:
			r.check(ctx)

		case update, ok := <-feedCh:
			if !ok {
				feedCh = nil
				continue
			}
			r.handleFeedUpdate(ctx, update)
		}
	}
}

// check runs one full pass and reports detected price drops.
func (r *Runner) check(ctx context.Context) {
	result, err := r.checker.Run(ctx, r.watches)
	if err != nil {
		r.logger.Printf("check failed: %v", err)
		return
	}
	for _, msg := range result.Errors {
		r.logger.Printf("check warning: %s", msg)
	}

	for _, drop := range r.DetectDrops(ctx) {
		r.logger.Printf("price drop on %s: %.2f -> %.2f EUR (-%.1f%%)",
			drop.RouteKey, drop.From, drop.To, drop.Pct)
	}
}

// DetectDrops compares the two most recent stored quotes per watched
// route and returns those where the price fell.
func (r *Runner) DetectDrops(ctx context.Context) []PriceDrop {
	var drops []PriceDrop
	for _, w := range r.watches {
		latest, err := r.store.Latest(ctx, w.Route.Key(), 2)
		if err != nil || len(latest) < 2 {
			continue
		}
		newest, previous := latest[0], latest[1]
		if newest.Price >= previous.Price || previous.Price <= 0 {
			continue
		}
		drops = append(drops, PriceDrop{
			RouteKey: w.Route.Key(),
			From:     previous.Price,
			To:       newest.Price,
			Pct:      (previous.Price - newest.Price) / previous.Price * 100,
		})
	}
	return drops
}

// handleFeedUpdate turns a pushed fare into a stored quote and alert.
// Updates for routes outside the watch list are dropped.
func (r *Runner) handleFeedUpdate(ctx context.Context, update source.FareUpdate) {
	routeKey := update.Origin + "-" + update.Destination
	if !r.watched(routeKey) {
		return
	}
	if update.Price <= 0 {
		return
	}

	observedAt := r.nowFn().UTC()
	quote := &domain.PriceQuote{
		ID:         idhash.ComputeQuoteID(routeKey, domain.SourceFeed.String(), observedAt.UnixMilli()),
		Route:      domain.Route{Origin: update.Origin, Destination: update.Destination, DisplayName: update.Origin + " → " + update.Destination},
		Price:      update.Price,
		Source:     domain.SourceFeed,
		Confidence: 1.0,
		ObservedAt: observedAt,
	}

	if err := r.store.Insert(ctx, quote); err != nil {
		r.logger.Printf("store feed quote %s: %v", routeKey, err)
	}

	verdict := r.evaluator.Evaluate(*quote, r.threshold)
	if verdict.IsDeal {
		if err := r.sink.Notify(ctx, verdict); err != nil {
			r.logger.Printf("notify feed deal %s: %v", routeKey, err)
		}
	}
}

func (r *Runner) watched(routeKey string) bool {
	for _, w := range r.watches {
		if w.Route.Key() == routeKey {
			return true
		}
	}
	return false
}
