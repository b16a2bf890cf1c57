package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// Each derived table has a _shadow twin with the same schema. Replace
// truncates the shadow, batch-inserts into it, then EXCHANGE TABLES swaps
// the two, so readers always see a complete table. MergeTree enforces no
// uniqueness, but rebuilds write each timestamp exactly once.

func (c *Conn) replaceViaShadow(ctx context.Context, table, insertColumns string, fill func(batch driver.Batch) error) error {
	shadow := table + "_shadow"

	if err := c.Exec(ctx, "TRUNCATE TABLE "+shadow); err != nil {
		return fmt.Errorf("truncate %s: %w", shadow, err)
	}

	batch, err := c.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s (%s)", shadow, insertColumns))
	if err != nil {
		return fmt.Errorf("prepare %s batch: %w", shadow, err)
	}
	if err := fill(batch); err != nil {
		return err
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send %s batch: %w", shadow, err)
	}

	if err := c.Exec(ctx, fmt.Sprintf("EXCHANGE TABLES %s AND %s", table, shadow)); err != nil {
		return fmt.Errorf("exchange %s: %w", table, err)
	}
	return nil
}

func isNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// historyQuery wraps a DESC LIMIT inner select back into ascending order;
// limit <= 0 reads the whole table.
func historyQuery(columns, table string, limit int) (string, []any) {
	if limit <= 0 {
		return fmt.Sprintf("SELECT %s FROM %s ORDER BY timestamp ASC", columns, table), nil
	}
	query := fmt.Sprintf(
		"SELECT %s FROM (SELECT %s FROM %s ORDER BY timestamp DESC LIMIT ?) ORDER BY timestamp ASC",
		columns, columns, table)
	return query, []any{limit}
}

// PiCycleStore implements storage.PiCycleStore using ClickHouse.
type PiCycleStore struct {
	conn *Conn
}

// NewPiCycleStore creates a new PiCycleStore.
func NewPiCycleStore(conn *Conn) *PiCycleStore {
	return &PiCycleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PiCycleStore = (*PiCycleStore)(nil)

func (s *PiCycleStore) Replace(ctx context.Context, rows []domain.PiCycleRow) error {
	return s.conn.replaceViaShadow(ctx, "pi_cycle",
		"timestamp, btc_price, sma_111, sma_350_x2, signal",
		func(batch driver.Batch) error {
			for _, row := range rows {
				if err := batch.Append(row.Timestamp, row.BTCPrice, row.SMA111, row.SMA350Doubled, row.Signal); err != nil {
					return fmt.Errorf("append pi_cycle row: %w", err)
				}
			}
			return nil
		})
}

func (s *PiCycleStore) Latest(ctx context.Context) (*domain.PiCycleRow, error) {
	query := `
		SELECT timestamp, btc_price, sma_111, sma_350_x2, signal
		FROM pi_cycle
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var row domain.PiCycleRow
	err := s.conn.QueryRow(ctx, query).Scan(
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
	query, args := historyQuery("timestamp, btc_price, sma_111, sma_350_x2, signal", "pi_cycle", limit)

	rows, err := s.conn.Query(ctx, query, args...)
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

// WMA200Store implements storage.WMA200Store using ClickHouse.
type WMA200Store struct {
	conn *Conn
}

// NewWMA200Store creates a new WMA200Store.
func NewWMA200Store(conn *Conn) *WMA200Store {
	return &WMA200Store{conn: conn}
}

var _ storage.WMA200Store = (*WMA200Store)(nil)

func (s *WMA200Store) Replace(ctx context.Context, rows []domain.WMA200Row) error {
	return s.conn.replaceViaShadow(ctx, "wma_200",
		"timestamp, btc_price, wma_200",
		func(batch driver.Batch) error {
			for _, row := range rows {
				if err := batch.Append(row.Timestamp, row.BTCPrice, row.WMA200); err != nil {
					return fmt.Errorf("append wma_200 row: %w", err)
				}
			}
			return nil
		})
}

func (s *WMA200Store) Latest(ctx context.Context) (*domain.WMA200Row, error) {
	query := `
		SELECT timestamp, btc_price, wma_200
		FROM wma_200
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var row domain.WMA200Row
	err := s.conn.QueryRow(ctx, query).Scan(&row.Timestamp, &row.BTCPrice, &row.WMA200)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest wma_200: %w", err)
	}
	return &row, nil
}

func (s *WMA200Store) History(ctx context.Context, limit int) ([]domain.WMA200Row, error) {
	query, args := historyQuery("timestamp, btc_price, wma_200", "wma_200", limit)

	rows, err := s.conn.Query(ctx, query, args...)
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

// S2FStore implements storage.S2FStore using ClickHouse.
type S2FStore struct {
	conn *Conn
}

// NewS2FStore creates a new S2FStore.
func NewS2FStore(conn *Conn) *S2FStore {
	return &S2FStore{conn: conn}
}

var _ storage.S2FStore = (*S2FStore)(nil)

func (s *S2FStore) Replace(ctx context.Context, rows []domain.S2FRow) error {
	return s.conn.replaceViaShadow(ctx, "s2f_model",
		"timestamp, btc_price, ratio, model_price",
		func(batch driver.Batch) error {
			for _, row := range rows {
				if err := batch.Append(row.Timestamp, row.BTCPrice, row.Ratio, row.ModelPrice); err != nil {
					return fmt.Errorf("append s2f_model row: %w", err)
				}
			}
			return nil
		})
}

func (s *S2FStore) Latest(ctx context.Context) (*domain.S2FRow, error) {
	query := `
		SELECT timestamp, btc_price, ratio, model_price
		FROM s2f_model
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var row domain.S2FRow
	err := s.conn.QueryRow(ctx, query).Scan(&row.Timestamp, &row.BTCPrice, &row.Ratio, &row.ModelPrice)
	if isNotFoundError(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest s2f_model: %w", err)
	}
	return &row, nil
}

func (s *S2FStore) History(ctx context.Context, limit int) ([]domain.S2FRow, error) {
	query, args := historyQuery("timestamp, btc_price, ratio, model_price", "s2f_model", limit)

	rows, err := s.conn.Query(ctx, query, args...)
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

// PuellStore implements storage.PuellStore using ClickHouse.
type PuellStore struct {
	conn *Conn
}

// NewPuellStore creates a new PuellStore.
func NewPuellStore(conn *Conn) *PuellStore {
	return &PuellStore{conn: conn}
}

var _ storage.PuellStore = (*PuellStore)(nil)

func (s *PuellStore) Replace(ctx context.Context, rows []domain.PuellRow) error {
	return s.conn.replaceViaShadow(ctx, "puell_multiple",
		"timestamp, btc_price, issuance_usd, issuance_usd_365ma, multiple",
		func(batch driver.Batch) error {
			for _, row := range rows {
				if err := batch.Append(row.Timestamp, row.BTCPrice, row.IssuanceUSD, row.IssuanceUSD365MA, row.Multiple); err != nil {
					return fmt.Errorf("append puell_multiple row: %w", err)
				}
			}
			return nil
		})
}

func (s *PuellStore) Latest(ctx context.Context) (*domain.PuellRow, error) {
	query := `
		SELECT timestamp, btc_price, issuance_usd, issuance_usd_365ma, multiple
		FROM puell_multiple
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var row domain.PuellRow
	err := s.conn.QueryRow(ctx, query).Scan(
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
	query, args := historyQuery("timestamp, btc_price, issuance_usd, issuance_usd_365ma, multiple", "puell_multiple", limit)

	rows, err := s.conn.Query(ctx, query, args...)
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
