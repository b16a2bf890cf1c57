package storage

import (
	"context"

	"cycle-radar/internal/domain"
)

// RawTable is the merge engine's surface over one raw observation table.
// Raw tables are append-only: rows are never updated or deleted.
type RawTable interface {
	// Spec describes the table's columns and primary-key column set.
	Spec() domain.TableSpec

	// ExistingKeys returns the key-column values of every stored row,
	// one Row per stored row containing only the key columns. An empty
	// result means the table is empty (merge fast path).
	ExistingKeys(ctx context.Context) ([]domain.Row, error)

	// AppendRows inserts rows as a single atomic unit. Either all rows
	// are written or none. No existing row is modified or removed.
	AppendRows(ctx context.Context, rows []domain.Row) error
}

// PriceStore provides access to crypto_prices.
type PriceStore interface {
	RawTable

	// Series returns up to maxPoints most recent (timestamp, price) points
	// for the asset, ascending by time. maxPoints <= 0 returns everything.
	Series(ctx context.Context, assetID string, maxPoints int) ([]domain.PricePoint, error)

	// Latest returns the newest observation for the asset.
	// Returns ErrNotFound if none exists.
	Latest(ctx context.Context, assetID string) (*domain.PriceObservation, error)

	// History returns up to limit most recent observations, ascending by time.
	History(ctx context.Context, assetID string, limit int) ([]domain.PriceObservation, error)

	// LatestTimestamp returns the newest stored timestamp for the asset,
	// or 0 when the asset has no rows. Used as the incremental-fetch watermark.
	LatestTimestamp(ctx context.Context, assetID string) (int64, error)
}

// SentimentStore provides access to sentiment_index.
type SentimentStore interface {
	RawTable
	Latest(ctx context.Context) (*domain.SentimentObservation, error)
	History(ctx context.Context, limit int) ([]domain.SentimentObservation, error)
}

// TrendStore provides access to trend_scores.
type TrendStore interface {
	RawTable
	Latest(ctx context.Context) (*domain.TrendObservation, error)
	History(ctx context.Context, limit int) ([]domain.TrendObservation, error)
}

// MacroStore provides access to macro_indicators.
type MacroStore interface {
	RawTable
	Latest(ctx context.Context, ticker string) (*domain.MacroObservation, error)
	History(ctx context.Context, ticker string, limit int) ([]domain.MacroObservation, error)
}

// SupplyStore provides access to supply_snapshots.
type SupplyStore interface {
	RawTable
	Latest(ctx context.Context) (*domain.SupplySnapshot, error)
}

// DominanceStore provides access to dominance_snapshots.
type DominanceStore interface {
	RawTable
	Latest(ctx context.Context) (*domain.DominanceSnapshot, error)
	History(ctx context.Context, limit int) ([]domain.DominanceSnapshot, error)
}

// Derived stores hold fully-rebuilt indicator tables. Replace swaps the
// whole table content atomically from a reader's perspective: a concurrent
// Latest or History never observes the table empty or half-written.

// PiCycleStore provides access to the pi_cycle derived table.
type PiCycleStore interface {
	Replace(ctx context.Context, rows []domain.PiCycleRow) error
	Latest(ctx context.Context) (*domain.PiCycleRow, error)
	History(ctx context.Context, limit int) ([]domain.PiCycleRow, error)
}

// WMA200Store provides access to the wma_200 derived table.
type WMA200Store interface {
	Replace(ctx context.Context, rows []domain.WMA200Row) error
	Latest(ctx context.Context) (*domain.WMA200Row, error)
	History(ctx context.Context, limit int) ([]domain.WMA200Row, error)
}

// S2FStore provides access to the s2f_model derived table.
type S2FStore interface {
	Replace(ctx context.Context, rows []domain.S2FRow) error
	Latest(ctx context.Context) (*domain.S2FRow, error)
	History(ctx context.Context, limit int) ([]domain.S2FRow, error)
}

// PuellStore provides access to the puell_multiple derived table.
type PuellStore interface {
	Replace(ctx context.Context, rows []domain.PuellRow) error
	Latest(ctx context.Context) (*domain.PuellRow, error)
	History(ctx context.Context, limit int) ([]domain.PuellRow, error)
}
