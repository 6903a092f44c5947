package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
)

// QuoteStore implements storage.QuoteStore using PostgreSQL.
type QuoteStore struct {
	pool *Pool
}

// NewQuoteStore creates a new QuoteStore.
func NewQuoteStore(pool *Pool) *QuoteStore {
	return &QuoteStore{pool: pool}
}

// Compile-time interface check.
var _ storage.QuoteStore = (*QuoteStore)(nil)

const insertQuoteQuery = `
	INSERT INTO price_quotes (
		quote_id, route_key, origin, destination, display_name, price, source, confidence, observed_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Insert adds a new quote. Returns ErrDuplicateKey if the quote ID exists.
func (s *QuoteStore) Insert(ctx context.Context, q *domain.PriceQuote) error {
	if q == nil || q.ID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertQuoteQuery,
		q.ID,
		q.Route.Key(),
		q.Route.Origin,
		q.Route.Destination,
		q.Route.DisplayName,
		q.Price,
		q.Source.String(),
		q.Confidence,
		q.ObservedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// InsertBulk adds multiple quotes atomically. Fails entire batch on any duplicate.
func (s *QuoteStore) InsertBulk(ctx context.Context, quotes []*domain.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, q := range quotes {
		if q == nil || q.ID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertQuoteQuery,
			q.ID,
			q.Route.Key(),
			q.Route.Origin,
			q.Route.Destination,
			q.Route.DisplayName,
			q.Price,
			q.Source.String(),
			q.Confidence,
			q.ObservedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert quote %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectQuoteColumns = `
	quote_id, origin, destination, display_name, price, source, confidence, observed_at
`

// GetByRoute retrieves all quotes for a route key, ordered by observed_at ASC.
func (s *QuoteStore) GetByRoute(ctx context.Context, routeKey string) ([]*domain.PriceQuote, error) {
	query := `
		SELECT ` + selectQuoteColumns + `
		FROM price_quotes
		WHERE route_key = $1
		ORDER BY observed_at ASC
	`

	rows, err := s.pool.Query(ctx, query, routeKey)
	if err != nil {
		return nil, fmt.Errorf("query quotes by route: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// GetByTimeRange retrieves quotes for a route key within [start, end] (inclusive).
func (s *QuoteStore) GetByTimeRange(ctx context.Context, routeKey string, start, end time.Time) ([]*domain.PriceQuote, error) {
	query := `
		SELECT ` + selectQuoteColumns + `
		FROM price_quotes
		WHERE route_key = $1 AND observed_at >= $2 AND observed_at <= $3
		ORDER BY observed_at ASC
	`

	rows, err := s.pool.Query(ctx, query, routeKey, start, end)
	if err != nil {
		return nil, fmt.Errorf("query quotes by time range: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// Latest retrieves up to n most recent quotes for a route key, newest first.
func (s *QuoteStore) Latest(ctx context.Context, routeKey string, n int) ([]*domain.PriceQuote, error) {
	if n <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ` + selectQuoteColumns + `
		FROM price_quotes
		WHERE route_key = $1
		ORDER BY observed_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, routeKey, n)
	if err != nil {
		return nil, fmt.Errorf("query latest quotes: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// scanQuotes reads all rows into quotes.
func scanQuotes(rows pgx.Rows) ([]*domain.PriceQuote, error) {
	var result []*domain.PriceQuote
	for rows.Next() {
		var q domain.PriceQuote
		var source string
		err := rows.Scan(
			&q.ID,
			&q.Route.Origin,
			&q.Route.Destination,
			&q.Route.DisplayName,
			&q.Price,
			&source,
			&q.Confidence,
			&q.ObservedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		q.Source = domain.QuoteSource(source)
		result = append(result, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return result, nil
}
