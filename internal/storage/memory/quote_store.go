package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
)

// QuoteStore is an in-memory implementation of storage.QuoteStore.
type QuoteStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceQuote // keyed by quote ID
}

// NewQuoteStore creates a new in-memory quote store.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		data: make(map[string]*domain.PriceQuote),
	}
}

// Compile-time interface check.
var _ storage.QuoteStore = (*QuoteStore)(nil)

// Insert adds a new quote. Returns ErrDuplicateKey if the ID exists.
func (s *QuoteStore) Insert(_ context.Context, q *domain.PriceQuote) error {
	if q == nil || q.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[q.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *q
	s.data[q.ID] = &copy
	return nil
}

// InsertBulk adds multiple quotes atomically. Fails entire batch on any duplicate.
func (s *QuoteStore) InsertBulk(_ context.Context, quotes []*domain.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything.
	seen := make(map[string]bool, len(quotes))
	for _, q := range quotes {
		if q == nil || q.ID == "" {
			return storage.ErrInvalidInput
		}
		if seen[q.ID] {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[q.ID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[q.ID] = true
	}

	for _, q := range quotes {
		copy := *q
		s.data[q.ID] = &copy
	}
	return nil
}

// GetByRoute retrieves all quotes for a route key, ordered by observed_at ASC.
func (s *QuoteStore) GetByRoute(_ context.Context, routeKey string) ([]*domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceQuote
	for _, q := range s.data {
		if q.Route.Key() == routeKey {
			copy := *q
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt.Before(result[j].ObservedAt)
	})
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

	// Reverse to newest-first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}
