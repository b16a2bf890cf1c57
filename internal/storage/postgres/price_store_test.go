package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

func seedPrices(t *testing.T, store *PriceStore, assetID string, timestamps ...int64) {
	t.Helper()
	var rows []domain.Row
	for _, ts := range timestamps {
		rows = append(rows, domain.PriceObservation{
			Timestamp: ts,
			AssetID:   assetID,
			Price:     float64(ts),
			MarketCap: float64(ts) * 1000,
			Volume:    float64(ts) * 10,
		}.Row())
	}
	require.NoError(t, store.AppendRows(context.Background(), rows))
}

func TestPriceStore_AppendAndLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(pool)
	ctx := context.Background()

	seedPrices(t, store, "bitcoin", 100, 300, 200)

	latest, err := store.Latest(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, int64(300), latest.Timestamp)
	assert.Equal(t, float64(300), latest.Price)
	assert.Equal(t, "bitcoin", latest.AssetID)
}

func TestPriceStore_LatestNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(pool)
	_, err := store.Latest(context.Background(), "bitcoin")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPriceStore_SeriesWindow(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(pool)
	ctx := context.Background()

	seedPrices(t, store, "bitcoin", 100, 200, 300, 400, 500)
	seedPrices(t, store, "ethereum", 150)

	// Most recent 3, ascending.
	points, err := store.Series(ctx, "bitcoin", 3)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, int64(300), points[0].Timestamp)
	assert.Equal(t, int64(500), points[2].Timestamp)

	// No limit returns everything for the asset only.
	points, err = store.Series(ctx, "bitcoin", 0)
	require.NoError(t, err)
	assert.Len(t, points, 5)
}

func TestPriceStore_HistoryAscending(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(pool)
	ctx := context.Background()

	seedPrices(t, store, "bitcoin", 300, 100, 200)

	history, err := store.History(ctx, "bitcoin", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(200), history[0].Timestamp)
	assert.Equal(t, int64(300), history[1].Timestamp)
	assert.Equal(t, float64(300_000), history[1].MarketCap)
}

func TestPriceStore_LatestTimestamp(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(pool)
	ctx := context.Background()

	ts, err := store.LatestTimestamp(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Zero(t, ts, "empty table watermark should be 0")

	seedPrices(t, store, "bitcoin", 100, 500, 300)

	ts, err = store.LatestTimestamp(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Equal(t, int64(500), ts)
}

func TestPriceStore_DuplicateKeyIsMalformed(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(pool)
	ctx := context.Background()

	seedPrices(t, store, "bitcoin", 100)

	// Same (timestamp, asset_id) again: the merge engine should have
	// filtered this, so the store reports batch corruption.
	err := store.AppendRows(ctx, []domain.Row{
		domain.PriceObservation{Timestamp: 100, AssetID: "bitcoin", Price: 1}.Row(),
	})
	assert.ErrorIs(t, err, storage.ErrMalformedBatch)

	// Same timestamp for another asset is a distinct key.
	err = store.AppendRows(ctx, []domain.Row{
		domain.PriceObservation{Timestamp: 100, AssetID: "ethereum", Price: 1}.Row(),
	})
	assert.NoError(t, err)
}

func TestPriceStore_AppendRollsBackOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(pool)
	ctx := context.Background()

	seedPrices(t, store, "bitcoin", 100)

	// New row plus a duplicate in one batch: nothing may land.
	err := store.AppendRows(ctx, []domain.Row{
		domain.PriceObservation{Timestamp: 200, AssetID: "bitcoin", Price: 1}.Row(),
		domain.PriceObservation{Timestamp: 100, AssetID: "bitcoin", Price: 1}.Row(),
	})
	require.ErrorIs(t, err, storage.ErrMalformedBatch)

	history, err := store.History(ctx, "bitcoin", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "partial batch must not survive")
}

func TestRawTable_ExistingKeys(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceStore(pool)
	ctx := context.Background()

	seedPrices(t, store, "bitcoin", 100, 200)

	keys, err := store.ExistingKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	for _, key := range keys {
		assert.Contains(t, key, "timestamp")
		assert.Contains(t, key, "asset_id")
		assert.NotContains(t, key, "price")
	}
}
