// Package csvlog implements the quote history as a flat CSV file.
// Appends are best-effort: one line per quote, header written on create.
package csvlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
)

var header = []string{"quote_id", "route_key", "origin", "destination", "display_name", "price", "source", "confidence", "observed_at"}

// QuoteStore implements storage.QuoteStore on a single CSV file.
type QuoteStore struct {
	path string
	mu   sync.Mutex
}

// NewQuoteStore creates a CSV-backed quote store at path, writing the
// header if the file does not exist yet.
func NewQuoteStore(path string) (*QuoteStore, error) {
	s := &QuoteStore{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("create quote log: %w", err)
		}
		defer file.Close()

		w := csv.NewWriter(file)
		if err := w.Write(header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("flush header: %w", err)
		}
	}

	return s, nil
}

// Compile-time interface check.
var _ storage.QuoteStore = (*QuoteStore)(nil)

// Insert appends one quote. Returns ErrDuplicateKey if the ID exists.
func (s *QuoteStore) Insert(ctx context.Context, q *domain.PriceQuote) error {
	return s.InsertBulk(ctx, []*domain.PriceQuote{q})
}

// InsertBulk appends multiple quotes. Fails entire batch on any duplicate
// without writing anything.
func (s *QuoteStore) InsertBulk(_ context.Context, quotes []*domain.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readAll()
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		known[q.ID] = struct{}{}
	}
	for _, q := range quotes {
		if q == nil || q.ID == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := known[q.ID]; dup {
			return storage.ErrDuplicateKey
		}
		known[q.ID] = struct{}{}
	}

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open quote log: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, q := range quotes {
		record := []string{
			q.ID,
			q.Route.Key(),
			q.Route.Origin,
			q.Route.Destination,
			q.Route.DisplayName,
			strconv.FormatFloat(q.Price, 'f', 2, 64),
			q.Source.String(),
			strconv.FormatFloat(q.Confidence, 'f', 3, 64),
			q.ObservedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("append quote: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush quote log: %w", err)
	}
	return nil
}

// GetByRoute retrieves all quotes for a route key, ordered by observed_at ASC.
// Rows are already in append order, which is observation order.
func (s *QuoteStore) GetByRoute(_ context.Context, routeKey string) ([]*domain.PriceQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var result []*domain.PriceQuote
	for _, q := range all {
		if q.Route.Key() == routeKey {
			result = append(result, q)
		}
	}
	return result, nil
}

// GetByTimeRange retrieves quotes for a route key within [start, end] (inclusive).
func (s *QuoteStore) GetByTimeRange(ctx context.Context, routeKey string, start, end time.Time) ([]*domain.PriceQuote, error) {
	all, err := s.GetByRoute(ctx, routeKey)
	if err != nil {
		return nil, err
	}

	var result []*domain.PriceQuote
	for _, q := range all {
		if !q.ObservedAt.Before(start) && !q.ObservedAt.After(end) {
			result = append(result, q)
		}
	}
	return result, nil
}

// Latest retrieves up to n most recent quotes for a route key, newest first.
func (s *QuoteStore) Latest(ctx context.Context, routeKey string, n int) ([]*domain.PriceQuote, error) {
	if n <= 0 {
		return nil, storage.ErrInvalidInput
	}

	all, err := s.GetByRoute(ctx, routeKey)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// readAll parses the whole file. Malformed lines fail the read; the log
// is machine-written and a broken line means real corruption.
func (s *QuoteStore) readAll() ([]*domain.PriceQuote, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open quote log: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read quote log: %w", err)
	}

	var result []*domain.PriceQuote
	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == header[0] {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("quote log line %d: want %d fields, got %d", i+1, len(header), len(record))
		}

		price, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("quote log line %d: parse price: %w", i+1, err)
		}
		confidence, err := strconv.ParseFloat(record[7], 64)
		if err != nil {
			return nil, fmt.Errorf("quote log line %d: parse confidence: %w", i+1, err)
		}
		observedAt, err := time.Parse(time.RFC3339Nano, record[8])
		if err != nil {
			return nil, fmt.Errorf("quote log line %d: parse observed_at: %w", i+1, err)
		}

		result = append(result, &domain.PriceQuote{
			ID: record[0],
			Route: domain.Route{
				Origin:      record[2],
				Destination: record[3],
				DisplayName: record[4],
			},
			Price:      price,
			Source:     domain.QuoteSource(record[6]),
			Confidence: confidence,
			ObservedAt: observedAt,
		})
	}
	return result, nil
}
