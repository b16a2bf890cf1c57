package postgres

import (
	"context"
	"fmt"
	"strings"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// rawTable is the shared spec-driven backing for one raw observation table.
// The table spec supplies column names, so the SQL here is assembled from
// trusted compile-time specs, never from request input.
type rawTable struct {
	pool *Pool
	spec domain.TableSpec
}

func newRawTable(pool *Pool, spec domain.TableSpec) *rawTable {
	return &rawTable{pool: pool, spec: spec}
}

// Spec describes the table's columns and primary-key column set.
func (t *rawTable) Spec() domain.TableSpec {
	return t.spec
}

// ExistingKeys returns the key-column values of every stored row.
func (t *rawTable) ExistingKeys(ctx context.Context) ([]domain.Row, error) {
	query := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(t.spec.KeyColumns, ", "), t.spec.Name)

	rows, err := t.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s keys: %w", t.spec.Name, err)
	}
	defer rows.Close()

	var result []domain.Row
	for rows.Next() {
		values := make([]any, len(t.spec.KeyColumns))
		ptrs := make([]any, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s key: %w", t.spec.Name, err)
		}
		key := make(domain.Row, len(t.spec.KeyColumns))
		for i, name := range t.spec.KeyColumns {
			key[name] = values[i]
		}
		result = append(result, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s keys: %w", t.spec.Name, err)
	}
	return result, nil
}

// AppendRows inserts rows in one transaction. The merge engine has already
// deduplicated against ExistingKeys, so a unique violation here means the
// batch raced a concurrent writer or slipped past canonicalization; either
// way the write is an integrity failure, not a retry case.
func (t *rawTable) AppendRows(ctx context.Context, rows []domain.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	names := make([]string, len(t.spec.Columns))
	placeholders := make([]string, len(t.spec.Columns))
	for i, col := range t.spec.Columns {
		names[i] = col.Name
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.spec.Name, strings.Join(names, ", "), strings.Join(placeholders, ", "))

	for _, row := range rows {
		args := make([]any, len(t.spec.Columns))
		for i, col := range t.spec.Columns {
			args[i] = row[col.Name]
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("%w: duplicate key in %s append", storage.ErrMalformedBatch, t.spec.Name)
			}
			return fmt.Errorf("insert into %s: %w", t.spec.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
