package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
	pgstore "github.com/juankaspain/vuelosrobot-sub001/internal/storage/postgres"
)

func testQuote(id string, price float64, observedAt time.Time) *domain.PriceQuote {
	return &domain.PriceQuote{
		ID:         id,
		Route:      domain.Route{Origin: "MAD", Destination: "MIA", DisplayName: "Madrid → Miami"},
		Price:      price,
		Source:     domain.SourceTravelPayouts,
		Confidence: 1.0,
		ObservedAt: observedAt,
	}
}

func TestQuoteStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewQuoteStore(pool)

	observed := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	quote := testQuote("pg-quote-1", 455.50, observed)

	err := store.Insert(ctx, quote)
	require.NoError(t, err)

	quotes, err := store.GetByRoute(ctx, "MAD-MIA")
	require.NoError(t, err)

	require.Len(t, quotes, 1)
	assert.Equal(t, quote.ID, quotes[0].ID)
	assert.Equal(t, "MAD", quotes[0].Route.Origin)
	assert.Equal(t, "MIA", quotes[0].Route.Destination)
	assert.Equal(t, quote.Source, quotes[0].Source)
	assert.InDelta(t, quote.Price, quotes[0].Price, 0.0001)
	assert.InDelta(t, quote.Confidence, quotes[0].Confidence, 0.0001)
	assert.True(t, quotes[0].ObservedAt.Equal(observed))
}

func TestQuoteStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewQuoteStore(pool)

	quote := testQuote("pg-quote-dup", 420, time.Now().UTC())

	// First insert should succeed
	err := store.Insert(ctx, quote)
	require.NoError(t, err)

	// Second insert with the same quote_id should fail
	err = store.Insert(ctx, quote)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestQuoteStore_InsertBulk(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewQuoteStore(pool)

	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	quotes := []*domain.PriceQuote{
		testQuote("pg-bulk-1", 450, base),
		testQuote("pg-bulk-2", 460, base.Add(time.Hour)),
		testQuote("pg-bulk-3", 440, base.Add(2*time.Hour)),
	}

	err := store.InsertBulk(ctx, quotes)
	require.NoError(t, err)

	stored, err := store.GetByRoute(ctx, "MAD-MIA")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestQuoteStore_InsertBulk_FailsOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewQuoteStore(pool)

	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, testQuote("pg-existing", 450, base)))

	quotes := []*domain.PriceQuote{
		testQuote("pg-new", 460, base.Add(time.Hour)),
		testQuote("pg-existing", 470, base.Add(2*time.Hour)),
	}

	err := store.InsertBulk(ctx, quotes)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The transaction must have rolled back the whole batch.
	stored, err := store.GetByRoute(ctx, "MAD-MIA")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestQuoteStore_GetByRoute_Ordering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewQuoteStore(pool)

	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, testQuote("pg-ord-2", 460, base.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, testQuote("pg-ord-1", 450, base)))

	quotes, err := store.GetByRoute(ctx, "MAD-MIA")
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.True(t, quotes[0].ObservedAt.Before(quotes[1].ObservedAt))
}

func TestQuoteStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewQuoteStore(pool)

	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		q := testQuote("pg-range-"+string(rune('a'+i)), 400+float64(i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.Insert(ctx, q))
	}

	quotes, err := store.GetByTimeRange(ctx, "MAD-MIA", base.Add(time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)

	// Bounds are inclusive.
	assert.Len(t, quotes, 3)
}

func TestQuoteStore_Latest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewQuoteStore(pool)

	base := time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Insert(ctx, testQuote("pg-latest-1", 450, base)))
	require.NoError(t, store.Insert(ctx, testQuote("pg-latest-2", 440, base.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, testQuote("pg-latest-3", 430, base.Add(2*time.Hour))))

	quotes, err := store.Latest(ctx, "MAD-MIA", 2)
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.InDelta(t, 430, quotes[0].Price, 0.0001)
	assert.InDelta(t, 440, quotes[1].Price, 0.0001)
}
