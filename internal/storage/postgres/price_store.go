package postgres

import (
	"context"
	"fmt"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// PriceStore implements storage.PriceStore using PostgreSQL.
type PriceStore struct {
	*rawTable
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(pool *Pool) *PriceStore {
	return &PriceStore{rawTable: newRawTable(pool, domain.PriceTable)}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// Series returns up to maxPoints most recent points, ascending by time.
func (s *PriceStore) Series(ctx context.Context, assetID string, maxPoints int) ([]domain.PricePoint, error) {
	query := `
		SELECT timestamp, price
		FROM crypto_prices
		WHERE asset_id = $1
		ORDER BY timestamp ASC
	`
	args := []any{assetID}
	if maxPoints > 0 {
		query = `
			SELECT timestamp, price FROM (
				SELECT timestamp, price
				FROM crypto_prices
				WHERE asset_id = $1
				ORDER BY timestamp DESC
				LIMIT $2
			) recent
			ORDER BY timestamp ASC
		`
		args = append(args, maxPoints)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select price series: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price series: %w", err)
	}
	return points, nil
}

// Latest returns the newest observation for the asset.
func (s *PriceStore) Latest(ctx context.Context, assetID string) (*domain.PriceObservation, error) {
	query := `
		SELECT timestamp, asset_id, price, market_cap, total_volume
		FROM crypto_prices
		WHERE asset_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var obs domain.PriceObservation
	err := s.pool.QueryRow(ctx, query, assetID).Scan(
		&obs.Timestamp, &obs.AssetID, &obs.Price, &obs.MarketCap, &obs.Volume)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest price: %w", err)
	}
	return &obs, nil
}

// History returns up to limit most recent observations, ascending by time.
func (s *PriceStore) History(ctx context.Context, assetID string, limit int) ([]domain.PriceObservation, error) {
	query := `
		SELECT timestamp, asset_id, price, market_cap, total_volume
		FROM crypto_prices
		WHERE asset_id = $1
		ORDER BY timestamp ASC
	`
	args := []any{assetID}
	if limit > 0 {
		query = `
			SELECT timestamp, asset_id, price, market_cap, total_volume FROM (
				SELECT timestamp, asset_id, price, market_cap, total_volume
				FROM crypto_prices
				WHERE asset_id = $1
				ORDER BY timestamp DESC
				LIMIT $2
			) recent
			ORDER BY timestamp ASC
		`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select price history: %w", err)
	}
	defer rows.Close()

	var result []domain.PriceObservation
	for rows.Next() {
		var obs domain.PriceObservation
		if err := rows.Scan(&obs.Timestamp, &obs.AssetID, &obs.Price, &obs.MarketCap, &obs.Volume); err != nil {
			return nil, fmt.Errorf("scan price observation: %w", err)
		}
		result = append(result, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history: %w", err)
	}
	return result, nil
}

// LatestTimestamp returns the newest stored timestamp, 0 when none.
func (s *PriceStore) LatestTimestamp(ctx context.Context, assetID string) (int64, error) {
	query := `SELECT COALESCE(MAX(timestamp), 0) FROM crypto_prices WHERE asset_id = $1`

	var ts int64
	if err := s.pool.QueryRow(ctx, query, assetID).Scan(&ts); err != nil {
		return 0, fmt.Errorf("select latest price timestamp: %w", err)
	}
	return ts, nil
}
