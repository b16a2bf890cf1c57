package merge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// Engine performs incremental merges into raw tables. It never modifies or
// removes an existing row; re-running the same batch inserts nothing.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates a merge engine.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Merge inserts the subset of rows whose composite key is not already
// present in the target table, as one atomic append, and returns the number
// of rows inserted. Rows are validated first: a row missing a key column,
// or holding an ill-typed key value, fails the whole call with
// storage.ErrMalformedBatch and nothing is written. Within the batch the
// first occurrence of a key wins.
func (e *Engine) Merge(ctx context.Context, table storage.RawTable, rows []domain.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	spec := table.Spec()

	keys, projected, err := prepare(spec, rows)
	if err != nil {
		return 0, err
	}

	existingRows, err := table.ExistingKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("read existing keys of %s: %w", spec.Name, err)
	}
	existing := make(map[string]struct{}, len(existingRows))
	for _, r := range existingRows {
		k, err := CompositeKey(spec, r)
		if err != nil {
			return 0, fmt.Errorf("canonicalize stored key of %s: %w", spec.Name, err)
		}
		existing[k] = struct{}{}
	}

	seen := make(map[string]struct{}, len(keys))
	toInsert := make([]domain.Row, 0, len(rows))
	for i, k := range keys {
		if _, dup := existing[k]; dup {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		toInsert = append(toInsert, projected[i])
	}

	if len(toInsert) == 0 {
		e.log.Debug("merge: no new rows", zap.String("table", spec.Name), zap.Int("offered", len(rows)))
		return 0, nil
	}

	if err := table.AppendRows(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("append %d rows to %s: %w", len(toInsert), spec.Name, err)
	}

	e.log.Info("merge: inserted rows",
		zap.String("table", spec.Name),
		zap.Int("offered", len(rows)),
		zap.Int("inserted", len(toInsert)))
	return len(toInsert), nil
}

// prepare validates each row against the table spec and returns its
// composite key alongside the row projected down to the target schema.
// The batch schema must be a superset of the target's: every target column
// must be present in every row (non-key values may be nil).
func prepare(spec domain.TableSpec, rows []domain.Row) ([]string, []domain.Row, error) {
	keys := make([]string, len(rows))
	projected := make([]domain.Row, len(rows))

	for i, row := range rows {
		key, err := CompositeKey(spec, row)
		if err != nil {
			return nil, nil, err
		}
		keys[i] = key

		p := make(domain.Row, len(spec.Columns))
		for _, col := range spec.Columns {
			v, ok := row[col.Name]
			if !ok {
				return nil, nil, fmt.Errorf("%w: row missing column %q for %s", storage.ErrMalformedBatch, col.Name, spec.Name)
			}
			p[col.Name] = v
		}
		projected[i] = p
	}

	return keys, projected, nil
}
