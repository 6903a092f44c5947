package csvlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
)

func newTestStore(t *testing.T) *QuoteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quotes.csv")
	store, err := NewQuoteStore(path)
	if err != nil {
		t.Fatalf("NewQuoteStore failed: %v", err)
	}
	return store
}

func quote(id string, price float64, observedAt time.Time) *domain.PriceQuote {
	return &domain.PriceQuote{
		ID:         id,
		Route:      domain.Route{Origin: "MAD", Destination: "MIA", DisplayName: "Madrid → Miami"},
		Price:      price,
		Source:     domain.SourceEstimated,
		Confidence: 0.85,
		ObservedAt: observedAt,
	}
}

func TestQuoteStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	observed := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	if err := store.Insert(ctx, quote("q1", 455.50, observed)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByRoute(ctx, "MAD-MIA")
	if err != nil {
		t.Fatalf("GetByRoute failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 quote, got %d", len(result))
	}

	got := result[0]
	if got.Price != 455.50 {
		t.Errorf("Price mismatch: got %.2f, want 455.50", got.Price)
	}
	if got.Source != domain.SourceEstimated {
		t.Errorf("Source mismatch: got %s", got.Source)
	}
	if got.Confidence != 0.85 {
		t.Errorf("Confidence mismatch: got %.3f", got.Confidence)
	}
	if !got.ObservedAt.Equal(observed) {
		t.Errorf("ObservedAt mismatch: got %v, want %v", got.ObservedAt, observed)
	}
	if got.Route.DisplayName != "Madrid → Miami" {
		t.Errorf("DisplayName mismatch: got %q", got.Route.DisplayName)
	}
}

func TestQuoteStore_HeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.csv")

	store, err := NewQuoteStore(path)
	if err != nil {
		t.Fatalf("NewQuoteStore failed: %v", err)
	}
	store.Insert(context.Background(), quote("q1", 450, time.Now().UTC()))

	// Reopen the same file and append again.
	store2, err := NewQuoteStore(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	store2.Insert(context.Background(), quote("q2", 460, time.Now().UTC()))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if count := strings.Count(string(data), "quote_id"); count != 1 {
		t.Errorf("Header must appear exactly once, found %d", count)
	}
	if lines := strings.Count(strings.TrimSpace(string(data)), "\n") + 1; lines != 3 {
		t.Errorf("Expected header + 2 rows, got %d lines", lines)
	}
}

func TestQuoteStore_DuplicateKey(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	q := quote("q1", 450, time.Now().UTC())
	if err := store.Insert(ctx, q); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, q); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestQuoteStore_Latest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	store.Insert(ctx, quote("q1", 450, base))
	store.Insert(ctx, quote("q2", 440, base.Add(time.Hour)))
	store.Insert(ctx, quote("q3", 430, base.Add(2*time.Hour)))

	result, err := store.Latest(ctx, "MAD-MIA", 2)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 quotes, got %d", len(result))
	}
	if result[0].Price != 430 || result[1].Price != 440 {
		t.Errorf("Latest must be newest first: got %.0f, %.0f", result[0].Price, result[1].Price)
	}
}

func TestQuoteStore_GetByTimeRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	store.Insert(ctx, quote("q1", 450, base))
	store.Insert(ctx, quote("q2", 440, base.Add(time.Hour)))
	store.Insert(ctx, quote("q3", 430, base.Add(2*time.Hour)))

	result, err := store.GetByTimeRange(ctx, "MAD-MIA", base.Add(time.Hour), base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 quotes in range, got %d", len(result))
	}
}
