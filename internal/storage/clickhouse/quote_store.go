package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
)

// QuoteStore implements storage.QuoteStore using ClickHouse.
// Suited for long-horizon fare analytics over the append-only history.
type QuoteStore struct {
	conn *Conn
}

// NewQuoteStore creates a new QuoteStore.
func NewQuoteStore(conn *Conn) *QuoteStore {
	return &QuoteStore{conn: conn}
}

// Compile-time interface check.
var _ storage.QuoteStore = (*QuoteStore)(nil)

// Insert adds a new quote. Returns ErrDuplicateKey if the quote ID exists.
func (s *QuoteStore) Insert(ctx context.Context, q *domain.PriceQuote) error {
	if q == nil || q.ID == "" {
		return storage.ErrInvalidInput
	}
	return s.InsertBulk(ctx, []*domain.PriceQuote{q})
}

// InsertBulk adds multiple quotes. Fails entire batch on any duplicate;
// MergeTree does not enforce uniqueness, so duplicates are checked here.
func (s *QuoteStore) InsertBulk(ctx context.Context, quotes []*domain.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		if q == nil || q.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[q.ID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[q.ID] = struct{}{}
	}

	for _, q := range quotes {
		exists, err := s.exists(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_quotes (
			quote_id, route_key, origin, destination, display_name, price, source, confidence, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, q := range quotes {
		err = batch.Append(
			q.ID, q.Route.Key(), q.Route.Origin, q.Route.Destination, q.Route.DisplayName,
			q.Price, q.Source.String(), q.Confidence, q.ObservedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// exists checks whether a quote ID is already stored.
func (s *QuoteStore) exists(ctx context.Context, quoteID string) (bool, error) {
	row := s.conn.QueryRow(ctx, `SELECT count() FROM price_quotes WHERE quote_id = ?`, quoteID)
	var count uint64
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByRoute retrieves all quotes for a route key, ordered by observed_at ASC.
func (s *QuoteStore) GetByRoute(ctx context.Context, routeKey string) ([]*domain.PriceQuote, error) {
	query := `
		SELECT quote_id, origin, destination, display_name, price, source, confidence, observed_at
		FROM price_quotes
		WHERE route_key = ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, routeKey)
	if err != nil {
		return nil, fmt.Errorf("query quotes by route: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// GetByTimeRange retrieves quotes for a route key within [start, end] (inclusive).
func (s *QuoteStore) GetByTimeRange(ctx context.Context, routeKey string, start, end time.Time) ([]*domain.PriceQuote, error) {
	query := `
		SELECT quote_id, origin, destination, display_name, price, source, confidence, observed_at
		FROM price_quotes
		WHERE route_key = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, routeKey, start, end)
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
		SELECT quote_id, origin, destination, display_name, price, source, confidence, observed_at
		FROM price_quotes
		WHERE route_key = ?
		ORDER BY observed_at DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, routeKey, n)
	if err != nil {
		return nil, fmt.Errorf("query latest quotes: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// scanQuotes reads all rows into quotes.
func scanQuotes(rows driver.Rows) ([]*domain.PriceQuote, error) {
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
