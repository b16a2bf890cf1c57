package memory

import (
	"context"
	"sort"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// PriceStore is an in-memory implementation of storage.PriceStore.
type PriceStore struct {
	*rawTable
}

// NewPriceStore creates a new in-memory price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{rawTable: newRawTable(domain.PriceTable)}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// observations returns all rows for the asset as typed observations,
// ascending by timestamp.
func (s *PriceStore) observations(assetID string) []domain.PriceObservation {
	var result []domain.PriceObservation
	for _, row := range s.snapshot() {
		if rowString(row, "asset_id") != assetID {
			continue
		}
		result = append(result, domain.PriceObservation{
			Timestamp: rowInt64(row, "timestamp"),
			AssetID:   assetID,
			Price:     rowFloat(row, "price"),
			MarketCap: rowFloat(row, "market_cap"),
			Volume:    rowFloat(row, "total_volume"),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result
}

// Series returns up to maxPoints most recent points, ascending by time.
func (s *PriceStore) Series(_ context.Context, assetID string, maxPoints int) ([]domain.PricePoint, error) {
	obs := s.observations(assetID)
	if maxPoints > 0 && len(obs) > maxPoints {
		obs = obs[len(obs)-maxPoints:]
	}
	points := make([]domain.PricePoint, len(obs))
	for i, o := range obs {
		points[i] = domain.PricePoint{Timestamp: o.Timestamp, Price: o.Price}
	}
	return points, nil
}

// Latest returns the newest observation for the asset.
func (s *PriceStore) Latest(_ context.Context, assetID string) (*domain.PriceObservation, error) {
	obs := s.observations(assetID)
	if len(obs) == 0 {
		return nil, storage.ErrNotFound
	}
	latest := obs[len(obs)-1]
	return &latest, nil
}

// History returns up to limit most recent observations, ascending by time.
func (s *PriceStore) History(_ context.Context, assetID string, limit int) ([]domain.PriceObservation, error) {
	obs := s.observations(assetID)
	if limit > 0 && len(obs) > limit {
		obs = obs[len(obs)-limit:]
	}
	return obs, nil
}

// LatestTimestamp returns the newest stored timestamp, 0 when none.
func (s *PriceStore) LatestTimestamp(_ context.Context, assetID string) (int64, error) {
	obs := s.observations(assetID)
	if len(obs) == 0 {
		return 0, nil
	}
	return obs[len(obs)-1].Timestamp, nil
}
