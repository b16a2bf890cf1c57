package postgres

import (
	"context"
	"fmt"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// Derived tables are rebuilt wholesale: Replace runs DELETE plus the new
// inserts in one transaction, so readers see the old table until commit
// and never an empty or half-written one.

// PiCycleStore implements storage.PiCycleStore using PostgreSQL.
type PiCycleStore struct {
	pool *Pool
}

// NewPiCycleStore creates a new PiCycleStore.
func NewPiCycleStore(pool *Pool) *PiCycleStore {
	return &PiCycleStore{pool: pool}
}

var _ storage.PiCycleStore = (*PiCycleStore)(nil)

func (s *PiCycleStore) Replace(ctx context.Context, rows []domain.PiCycleRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM pi_cycle`); err != nil {
		return fmt.Errorf("clear pi_cycle: %w", err)
	}

	query := `
		INSERT INTO pi_cycle (timestamp, btc_price, sma_111, sma_350_x2, signal)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, row := range rows {
		_, err := tx.Exec(ctx, query,
			row.Timestamp, row.BTCPrice, row.SMA111, row.SMA350Doubled, row.Signal)
		if err != nil {
			return fmt.Errorf("insert pi_cycle row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PiCycleStore) Latest(ctx context.Context) (*domain.PiCycleRow, error) {
	query := `
		SELECT timestamp, btc_price, sma_111, sma_350_x2, signal
		FROM pi_cycle
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var row domain.PiCycleRow
	err := s.pool.QueryRow(ctx, query).Scan(
		&row.Timestamp, &row.BTCPrice, &row.SMA111, &row.SMA350Doubled, &row.Signal)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest pi_cycle: %w", err)
	}
	return &row, nil
}

func (s *PiCycleStore) History(ctx context.Context, limit int) ([]domain.PiCycleRow, error) {
	query := `
		SELECT timestamp, btc_price, sma_111, sma_350_x2, signal FROM (
			SELECT timestamp, btc_price, sma_111, sma_350_x2, signal
			FROM pi_cycle
			ORDER BY timestamp DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select pi_cycle history: %w", err)
	}
	defer rows.Close()

	var result []domain.PiCycleRow
	for rows.Next() {
		var row domain.PiCycleRow
		if err := rows.Scan(&row.Timestamp, &row.BTCPrice, &row.SMA111, &row.SMA350Doubled, &row.Signal); err != nil {
			return nil, fmt.Errorf("scan pi_cycle row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pi_cycle history: %w", err)
	}
	return result, nil
}

// WMA200Store implements storage.WMA200Store using PostgreSQL.
type WMA200Store struct {
	pool *Pool
}

// NewWMA200Store creates a new WMA200Store.
func NewWMA200Store(pool *Pool) *WMA200Store {
	return &WMA200Store{pool: pool}
}

var _ storage.WMA200Store = (*WMA200Store)(nil)

func (s *WMA200Store) Replace(ctx context.Context, rows []domain.WMA200Row) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM wma_200`); err != nil {
		return fmt.Errorf("clear wma_200: %w", err)
	}

	query := `
		INSERT INTO wma_200 (timestamp, btc_price, wma_200)
		VALUES ($1, $2, $3)
	`
	for _, row := range rows {
		if _, err := tx.Exec(ctx, query, row.Timestamp, row.BTCPrice, row.WMA200); err != nil {
			return fmt.Errorf("insert wma_200 row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *WMA200Store) Latest(ctx context.Context) (*domain.WMA200Row, error) {
	query := `
		SELECT timestamp, btc_price, wma_200
		FROM wma_200
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var row domain.WMA200Row
	err := s.pool.QueryRow(ctx, query).Scan(&row.Timestamp, &row.BTCPrice, &row.WMA200)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest wma_200: %w", err)
	}
	return &row, nil
}

func (s *WMA200Store) History(ctx context.Context, limit int) ([]domain.WMA200Row, error) {
	query := `
		SELECT timestamp, btc_price, wma_200 FROM (
			SELECT timestamp, btc_price, wma_200
			FROM wma_200
			ORDER BY timestamp DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select wma_200 history: %w", err)
	}
	defer rows.Close()

	var result []domain.WMA200Row
	for rows.Next() {
		var row domain.WMA200Row
		if err := rows.Scan(&row.Timestamp, &row.BTCPrice, &row.WMA200); err != nil {
			return nil, fmt.Errorf("scan wma_200 row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wma_200 history: %w", err)
	}
	return result, nil
}

// S2FStore implements storage.S2FStore using PostgreSQL.
type S2FStore struct {
	pool *Pool
}

// NewS2FStore creates a new S2FStore.
func NewS2FStore(pool *Pool) *S2FStore {
	return &S2FStore{pool: pool}
}

var _ storage.S2FStore = (*S2FStore)(nil)

func (s *S2FStore) Replace(ctx context.Context, rows []domain.S2FRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM s2f_model`); err != nil {
		return fmt.Errorf("clear s2f_model: %w", err)
	}

	query := `
		INSERT INTO s2f_model (timestamp, btc_price, ratio, model_price)
		VALUES ($1, $2, $3, $4)
	`
	for _, row := range rows {
		if _, err := tx.Exec(ctx, query, row.Timestamp, row.BTCPrice, row.Ratio, row.ModelPrice); err != nil {
			return fmt.Errorf("insert s2f_model row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *S2FStore) Latest(ctx context.Context) (*domain.S2FRow, error) {
	query := `
		SELECT timestamp, btc_price, ratio, model_price
		FROM s2f_model
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var row domain.S2FRow
	err := s.pool.QueryRow(ctx, query).Scan(&row.Timestamp, &row.BTCPrice, &row.Ratio, &row.ModelPrice)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest s2f_model: %w", err)
	}
	return &row, nil
}

func (s *S2FStore) History(ctx context.Context, limit int) ([]domain.S2FRow, error) {
	query := `
		SELECT timestamp, btc_price, ratio, model_price FROM (
			SELECT timestamp, btc_price, ratio, model_price
			FROM s2f_model
			ORDER BY timestamp DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select s2f_model history: %w", err)
	}
	defer rows.Close()

	var result []domain.S2FRow
	for rows.Next() {
		var row domain.S2FRow
		if err := rows.Scan(&row.Timestamp, &row.BTCPrice, &row.Ratio, &row.ModelPrice); err != nil {
			return nil, fmt.Errorf("scan s2f_model row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate s2f_model history: %w", err)
	}
	return result, nil
}

// PuellStore implements storage.PuellStore using PostgreSQL.
type PuellStore struct {
	pool *Pool
}

// NewPuellStore creates a new PuellStore.
func NewPuellStore(pool *Pool) *PuellStore {
	return &PuellStore{pool: pool}
}

var _ storage.PuellStore = (*PuellStore)(nil)

func (s *PuellStore) Replace(ctx context.Context, rows []domain.PuellRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM puell_multiple`); err != nil {
		return fmt.Errorf("clear puell_multiple: %w", err)
	}

	query := `
		INSERT INTO puell_multiple (timestamp, btc_price, issuance_usd, issuance_usd_365ma, multiple)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, row := range rows {
		_, err := tx.Exec(ctx, query,
			row.Timestamp, row.BTCPrice, row.IssuanceUSD, row.IssuanceUSD365MA, row.Multiple)
		if err != nil {
			return fmt.Errorf("insert puell_multiple row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PuellStore) Latest(ctx context.Context) (*domain.PuellRow, error) {
	query := `
		SELECT timestamp, btc_price, issuance_usd, issuance_usd_365ma, multiple
		FROM puell_multiple
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var row domain.PuellRow
	err := s.pool.QueryRow(ctx, query).Scan(
		&row.Timestamp, &row.BTCPrice, &row.IssuanceUSD, &row.IssuanceUSD365MA, &row.Multiple)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest puell_multiple: %w", err)
	}
	return &row, nil
}

func (s *PuellStore) History(ctx context.Context, limit int) ([]domain.PuellRow, error) {
	query := `
		SELECT timestamp, btc_price, issuance_usd, issuance_usd_365ma, multiple FROM (
			SELECT timestamp, btc_price, issuance_usd, issuance_usd_365ma, multiple
			FROM puell_multiple
			ORDER BY timestamp DESC
			LIMIT $1
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := s.pool.Query(ctx, query, nullableLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select puell_multiple history: %w", err)
	}
	defer rows.Close()

	var result []domain.PuellRow
	for rows.Next() {
		var row domain.PuellRow
		if err := rows.Scan(&row.Timestamp, &row.BTCPrice, &row.IssuanceUSD, &row.IssuanceUSD365MA, &row.Multiple); err != nil {
			return nil, fmt.Errorf("scan puell_multiple row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate puell_multiple history: %w", err)
	}
	return result, nil
}
