// Package orchestrator runs one full check over a set of route watches.
// It coordinates: resolution → evaluation → persistence → notification
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/juankaspain/vuelosrobot-sub001/internal/deal"
	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/notify"
	"github.com/juankaspain/vuelosrobot-sub001/internal/resolver"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
)

const (
	// DefaultWorkers is the resolution pool size.
	DefaultWorkers = 20

	// MaxWorkers caps the pool regardless of configuration.
	MaxWorkers = 25
)

// Orchestrator executes check runs.
// Resolution fans out over a bounded worker pool; the remaining phases
// run sequentially over the collected quotes.
type Orchestrator struct {
	resolver  *resolver.Resolver
	evaluator *deal.Evaluator
	store     storage.QuoteStore
	sink      notify.Sink

	threshold float64
	workers   int
	logger    *log.Logger
	verbose   bool
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Resolver *resolver.Resolver
	Store    storage.QuoteStore

	// Optional; NewEvaluator / ConsoleSink are used when nil.
	Evaluator *deal.Evaluator
	Sink      notify.Sink

	Threshold float64 // alert threshold in EUR
	Workers   int     // default DefaultWorkers, capped at MaxWorkers
	Logger    *log.Logger
	Verbose   bool
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = deal.NewEvaluator()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	sink := opts.Sink
	if sink == nil {
		sink = notify.NewConsoleSink(logger)
	}

	return &Orchestrator{
		resolver:  opts.Resolver,
		evaluator: evaluator,
		store:     opts.Store,
		sink:      sink,
		threshold: opts.Threshold,
		workers:   workers,
		logger:    logger,
		verbose:   opts.Verbose,
	}
}

// RunResult contains results from one check run.
type RunResult struct {
	RunID         string
	RoutesChecked int
	QuotesStored  int
	DealsFound    int
	Verdicts      []domain.DealVerdict // sorted by price ascending
	Errors        []string
}

// Run executes the full check over watches.
// Phases:
//  1. Resolve every watch to a quote (worker pool)
//  2. Evaluate quotes against the threshold
//  3. Persist all quotes to the history store
//  4. Notify the sink for each deal
//
// Resolution cannot fail, so every watch yields exactly one quote.
// Persistence and notification failures are collected, not fatal.
func (o *Orchestrator) Run(ctx context.Context, watches []domain.Watch) (*RunResult, error) {
	result := &RunResult{RunID: uuid.NewString()}
	if len(watches) == 0 {
		return result, nil
	}

	// Phase 1: Resolution
	o.log("run %s: resolving %d watches with %d workers", result.RunID, len(watches), o.workers)
	quotes := o.resolveAll(ctx, watches)
	result.RoutesChecked = len(quotes)
	if skipped := len(watches) - len(quotes); skipped > 0 {
		o.log("run %s: %d watches skipped by cancellation", result.RunID, skipped)
	}

	// Phase 2: Evaluation
	verdicts := make([]domain.DealVerdict, 0, len(quotes))
	for _, q := range quotes {
		verdicts = append(verdicts, o.evaluator.Evaluate(*q, o.threshold))
	}
	sort.Slice(verdicts, func(i, j int) bool {
		return verdicts[i].Quote.Price < verdicts[j].Quote.Price
	})
	result.Verdicts = verdicts

	// Phase 3: Persistence
	if len(quotes) > 0 {
		if err := o.store.InsertBulk(ctx, quotes); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist quotes: %v", err))
		} else {
			result.QuotesStored = len(quotes)
		}
	}

	// Phase 4: Notification
	for _, v := range verdicts {
		if !v.IsDeal {
			continue
		}
		result.DealsFound++
		if err := o.sink.Notify(ctx, v); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("notify %s: %v", v.Quote.Route.Key(), err))
		}
	}

	o.log("run %s completed: %d routes, %d stored, %d deals (%d errors)",
		result.RunID, result.RoutesChecked, result.QuotesStored, result.DealsFound, len(result.Errors))

	return result, nil
}

// resolveAll fans watches out over the worker pool. Cancellation stops
// dispatch of yet-unstarted watches; already-dispatched ones finish.
// Results keep the order of the input watches, skipping undispatched ones.
func (o *Orchestrator) resolveAll(ctx context.Context, watches []domain.Watch) []*domain.PriceQuote {
	slots := make([]*domain.PriceQuote, len(watches))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := o.workers
	if workers > len(watches) {
		workers = len(watches)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				q := o.resolver.Resolve(ctx, watches[i].Route, watches[i].Params)
				slots[i] = &q
			}
		}()
	}

dispatch:
	for i := range watches {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	quotes := make([]*domain.PriceQuote, 0, len(slots))
	for _, q := range slots {
		if q != nil {
			quotes = append(quotes, q)
		}
	}
	return quotes
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf("[orchestrator] "+format, args...)
	}
}
