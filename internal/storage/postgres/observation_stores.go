package postgres

import (
	"context"
	"fmt"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// SentimentStore implements storage.SentimentStore using PostgreSQL.
type SentimentStore struct {
	*rawTable
}

// NewSentimentStore creates a new SentimentStore.
func NewSentimentStore(pool *Pool) *SentimentStore {
	return &SentimentStore{rawTable: newRawTable(pool, domain.SentimentTable)}
}

var _ storage.SentimentStore = (*SentimentStore)(nil)

func (s *SentimentStore) Latest(ctx context.Context) (*domain.SentimentObservation, error) {
	query := `
		SELECT timestamp, value, value_classification
		FROM sentiment_index
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var obs domain.SentimentObservation
	err := s.pool.QueryRow(ctx, query).Scan(&obs.Timestamp, &obs.Value, &obs.Classification)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest sentiment: %w", err)
	}
	return &obs, nil
}

func (s *SentimentStore) History(ctx context.Context, limit int) ([]domain.SentimentObservation, error) {
	query := `
		SELECT timestamp, value, value_classification FROM (
			SELECT timestamp, value, value_classification
			FROM sentiment_index
			ORDER BY timestamp DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select sentiment history: %w", err)
	}
	defer rows.Close()

	var result []domain.SentimentObservation
	for rows.Next() {
		var obs domain.SentimentObservation
		if err := rows.Scan(&obs.Timestamp, &obs.Value, &obs.Classification); err != nil {
			return nil, fmt.Errorf("scan sentiment observation: %w", err)
		}
		result = append(result, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentiment history: %w", err)
	}
	return result, nil
}

// TrendStore implements storage.TrendStore using PostgreSQL.
type TrendStore struct {
	*rawTable
}

// NewTrendStore creates a new TrendStore.
func NewTrendStore(pool *Pool) *TrendStore {
	return &TrendStore{rawTable: newRawTable(pool, domain.TrendTable)}
}

var _ storage.TrendStore = (*TrendStore)(nil)

func (s *TrendStore) Latest(ctx context.Context) (*domain.TrendObservation, error) {
	query := `
		SELECT date, score
		FROM trend_scores
		ORDER BY date DESC
		LIMIT 1
	`

	var obs domain.TrendObservation
	err := s.pool.QueryRow(ctx, query).Scan(&obs.Date, &obs.Score)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest trend score: %w", err)
	}
	return &obs, nil
}

func (s *TrendStore) History(ctx context.Context, limit int) ([]domain.TrendObservation, error) {
	query := `
		SELECT date, score FROM (
			SELECT date, score
			FROM trend_scores
			ORDER BY date DESC
			LIMIT $1
		) recent
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select trend history: %w", err)
	}
	defer rows.Close()

	var result []domain.TrendObservation
	for rows.Next() {
		var obs domain.TrendObservation
		if err := rows.Scan(&obs.Date, &obs.Score); err != nil {
			return nil, fmt.Errorf("scan trend observation: %w", err)
		}
		result = append(result, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend history: %w", err)
	}
	return result, nil
}

// MacroStore implements storage.MacroStore using PostgreSQL.
type MacroStore struct {
	*rawTable
}

// NewMacroStore creates a new MacroStore.
func NewMacroStore(pool *Pool) *MacroStore {
	return &MacroStore{rawTable: newRawTable(pool, domain.MacroTable)}
}

var _ storage.MacroStore = (*MacroStore)(nil)

func (s *MacroStore) Latest(ctx context.Context, ticker string) (*domain.MacroObservation, error) {
	query := `
		SELECT date, ticker, close_price
		FROM macro_indicators
		WHERE ticker = $1
		ORDER BY date DESC
		LIMIT 1
	`

	var obs domain.MacroObservation
	err := s.pool.QueryRow(ctx, query, ticker).Scan(&obs.Date, &obs.Ticker, &obs.ClosePrice)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest macro close: %w", err)
	}
	return &obs, nil
}

func (s *MacroStore) History(ctx context.Context, ticker string, limit int) ([]domain.MacroObservation, error) {
	query := `
		SELECT date, ticker, close_price FROM (
			SELECT date, ticker, close_price
			FROM macro_indicators
			WHERE ticker = $1
			ORDER BY date DESC
			LIMIT $2
		) recent
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select macro history: %w", err)
	}
	defer rows.Close()

	var result []domain.MacroObservation
	for rows.Next() {
		var obs domain.MacroObservation
		if err := rows.Scan(&obs.Date, &obs.Ticker, &obs.ClosePrice); err != nil {
			return nil, fmt.Errorf("scan macro observation: %w", err)
		}
		result = append(result, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate macro history: %w", err)
	}
	return result, nil
}

// SupplyStore implements storage.SupplyStore using PostgreSQL.
type SupplyStore struct {
	*rawTable
}

// NewSupplyStore creates a new SupplyStore.
func NewSupplyStore(pool *Pool) *SupplyStore {
	return &SupplyStore{rawTable: newRawTable(pool, domain.SupplyTable)}
}

var _ storage.SupplyStore = (*SupplyStore)(nil)

func (s *SupplyStore) Latest(ctx context.Context) (*domain.SupplySnapshot, error) {
	query := `
		SELECT timestamp, circulating_supply
		FROM supply_snapshots
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var snap domain.SupplySnapshot
	err := s.pool.QueryRow(ctx, query).Scan(&snap.Timestamp, &snap.CirculatingSupply)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest supply: %w", err)
	}
	return &snap, nil
}

// DominanceStore implements storage.DominanceStore using PostgreSQL.
type DominanceStore struct {
	*rawTable
}

// NewDominanceStore creates a new DominanceStore.
func NewDominanceStore(pool *Pool) *DominanceStore {
	return &DominanceStore{rawTable: newRawTable(pool, domain.DominanceTable)}
}

var _ storage.DominanceStore = (*DominanceStore)(nil)

func (s *DominanceStore) Latest(ctx context.Context) (*domain.DominanceSnapshot, error) {
	query := `
		SELECT timestamp, dominance
		FROM dominance_snapshots
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var snap domain.DominanceSnapshot
	err := s.pool.QueryRow(ctx, query).Scan(&snap.Timestamp, &snap.Dominance)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest dominance: %w", err)
	}
	return &snap, nil
}

func (s *DominanceStore) History(ctx context.Context, limit int) ([]domain.DominanceSnapshot, error) {
	query := `
		SELECT timestamp, dominance FROM (
			SELECT timestamp, dominance
			FROM dominance_snapshots
			ORDER BY timestamp DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select dominance history: %w", err)
	}
	defer rows.Close()

	var result []domain.DominanceSnapshot
	for rows.Next() {
		var snap domain.DominanceSnapshot
		if err := rows.Scan(&snap.Timestamp, &snap.Dominance); err != nil {
			return nil, fmt.Errorf("scan dominance snapshot: %w", err)
		}
		result = append(result, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dominance history: %w", err)
	}
	return result, nil
}

// nullableLimit maps limit <= 0 to SQL NULL so LIMIT means "no limit".
func nullableLimit(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
