package storage

import (
	"context"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
)

// QuoteStore provides access to the append-only price quote history.
type QuoteStore interface {
	// Insert adds a new quote. Returns ErrDuplicateKey if the quote ID exists.
	Insert(ctx context.Context, q *domain.PriceQuote) error

	// InsertBulk adds multiple quotes atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, quotes []*domain.PriceQuote) error

	// GetByRoute retrieves all quotes for a route key, ordered by observed_at ASC.
	GetByRoute(ctx context.Context, routeKey string) ([]*domain.PriceQuote, error)

	// GetByTimeRange retrieves quotes for a route key within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, routeKey string, start, end time.Time) ([]*domain.PriceQuote, error)

	// Latest retrieves up to n most recent quotes for a route key, newest first.
	Latest(ctx context.Context, routeKey string, n int) ([]*domain.PriceQuote, error)
}
