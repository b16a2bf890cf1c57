package memory

import (
	"context"
	"sort"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// SentimentStore is an in-memory implementation of storage.SentimentStore.
type SentimentStore struct {
	*rawTable
}

// NewSentimentStore creates a new in-memory sentiment store.
func NewSentimentStore() *SentimentStore {
	return &SentimentStore{rawTable: newRawTable(domain.SentimentTable)}
}

var _ storage.SentimentStore = (*SentimentStore)(nil)

func (s *SentimentStore) observations() []domain.SentimentObservation {
	var result []domain.SentimentObservation
	for _, row := range s.snapshot() {
		result = append(result, domain.SentimentObservation{
			Timestamp:      rowInt64(row, "timestamp"),
			Value:          rowFloat(row, "value"),
			Classification: rowString(row, "value_classification"),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result
}

func (s *SentimentStore) Latest(_ context.Context) (*domain.SentimentObservation, error) {
	obs := s.observations()
	if len(obs) == 0 {
		return nil, storage.ErrNotFound
	}
	latest := obs[len(obs)-1]
	return &latest, nil
}

func (s *SentimentStore) History(_ context.Context, limit int) ([]domain.SentimentObservation, error) {
	obs := s.observations()
	if limit > 0 && len(obs) > limit {
		obs = obs[len(obs)-limit:]
	}
	return obs, nil
}

// TrendStore is an in-memory implementation of storage.TrendStore.
type TrendStore struct {
	*rawTable
}

// NewTrendStore creates a new in-memory trend store.
func NewTrendStore() *TrendStore {
	return &TrendStore{rawTable: newRawTable(domain.TrendTable)}
}

var _ storage.TrendStore = (*TrendStore)(nil)

func (s *TrendStore) observations() []domain.TrendObservation {
	var result []domain.TrendObservation
	for _, row := range s.snapshot() {
		result = append(result, domain.TrendObservation{
			Date:  rowString(row, "date"),
			Score: rowFloat(row, "score"),
		})
	}
	// YYYY-MM-DD sorts correctly as text
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

func (s *TrendStore) Latest(_ context.Context) (*domain.TrendObservation, error) {
	obs := s.observations()
	if len(obs) == 0 {
		return nil, storage.ErrNotFound
	}
	latest := obs[len(obs)-1]
	return &latest, nil
}

func (s *TrendStore) History(_ context.Context, limit int) ([]domain.TrendObservation, error) {
	obs := s.observations()
	if limit > 0 && len(obs) > limit {
		obs = obs[len(obs)-limit:]
	}
	return obs, nil
}

// MacroStore is an in-memory implementation of storage.MacroStore.
type MacroStore struct {
	*rawTable
}

// NewMacroStore creates a new in-memory macro indicator store.
func NewMacroStore() *MacroStore {
	return &MacroStore{rawTable: newRawTable(domain.MacroTable)}
}

var _ storage.MacroStore = (*MacroStore)(nil)

func (s *MacroStore) observations(ticker string) []domain.MacroObservation {
	var result []domain.MacroObservation
	for _, row := range s.snapshot() {
		if rowString(row, "ticker") != ticker {
			continue
		}
		result = append(result, domain.MacroObservation{
			Date:       rowString(row, "date"),
			Ticker:     ticker,
			ClosePrice: rowFloat(row, "close_price"),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result
}

func (s *MacroStore) Latest(_ context.Context, ticker string) (*domain.MacroObservation, error) {
	obs := s.observations(ticker)
	if len(obs) == 0 {
		return nil, storage.ErrNotFound
	}
	latest := obs[len(obs)-1]
	return &latest, nil
}

func (s *MacroStore) History(_ context.Context, ticker string, limit int) ([]domain.MacroObservation, error) {
	obs := s.observations(ticker)
	if limit > 0 && len(obs) > limit {
		obs = obs[len(obs)-limit:]
	}
	return obs, nil
}

// SupplyStore is an in-memory implementation of storage.SupplyStore.
type SupplyStore struct {
	*rawTable
}

// NewSupplyStore creates a new in-memory supply snapshot store.
func NewSupplyStore() *SupplyStore {
	return &SupplyStore{rawTable: newRawTable(domain.SupplyTable)}
}

var _ storage.SupplyStore = (*SupplyStore)(nil)

func (s *SupplyStore) Latest(_ context.Context) (*domain.SupplySnapshot, error) {
	rows := s.snapshot()
	if len(rows) == 0 {
		return nil, storage.ErrNotFound
	}
	var latest *domain.SupplySnapshot
	for _, row := range rows {
		snap := domain.SupplySnapshot{
			Timestamp:         rowInt64(row, "timestamp"),
			CirculatingSupply: rowFloat(row, "circulating_supply"),
		}
		if latest == nil || snap.Timestamp > latest.Timestamp {
			cp := snap
			latest = &cp
		}
	}
	return latest, nil
}

// DominanceStore is an in-memory implementation of storage.DominanceStore.
type DominanceStore struct {
	*rawTable
}

// NewDominanceStore creates a new in-memory dominance snapshot store.
func NewDominanceStore() *DominanceStore {
	return &DominanceStore{rawTable: newRawTable(domain.DominanceTable)}
}

var _ storage.DominanceStore = (*DominanceStore)(nil)

func (s *DominanceStore) observations() []domain.DominanceSnapshot {
	var result []domain.DominanceSnapshot
	for _, row := range s.snapshot() {
		result = append(result, domain.DominanceSnapshot{
			Timestamp: rowInt64(row, "timestamp"),
			Dominance: rowFloat(row, "dominance"),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result
}

func (s *DominanceStore) Latest(_ context.Context) (*domain.DominanceSnapshot, error) {
	obs := s.observations()
	if len(obs) == 0 {
		return nil, storage.ErrNotFound
	}
	latest := obs[len(obs)-1]
	return &latest, nil
}

func (s *DominanceStore) History(_ context.Context, limit int) ([]domain.DominanceSnapshot, error) {
	obs := s.observations()
	if limit > 0 && len(obs) > limit {
		obs = obs[len(obs)-limit:]
	}
	return obs, nil
}
