// Package memory provides in-memory store implementations used by tests and
// local runs without a database.
package memory

import (
	"context"
	"sync"

	"cycle-radar/internal/domain"
)

// rawTable is the shared in-memory backing for one raw observation table.
// Rows are held as appended; dedup is the merge engine's responsibility.
type rawTable struct {
	spec domain.TableSpec

	mu   sync.RWMutex
	rows []domain.Row
}

func newRawTable(spec domain.TableSpec) *rawTable {
	return &rawTable{spec: spec}
}

// Spec describes the table's columns and primary-key column set.
func (t *rawTable) Spec() domain.TableSpec {
	return t.spec
}

// ExistingKeys returns the key-column values of every stored row.
func (t *rawTable) ExistingKeys(_ context.Context) ([]domain.Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]domain.Row, 0, len(t.rows))
	for _, row := range t.rows {
		key := make(domain.Row, len(t.spec.KeyColumns))
		for _, name := range t.spec.KeyColumns {
			key[name] = row[name]
		}
		result = append(result, key)
	}
	return result, nil
}

// AppendRows inserts rows as one unit. No existing row is touched.
func (t *rawTable) AppendRows(_ context.Context, rows []domain.Row) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range rows {
		cp := make(domain.Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		t.rows = append(t.rows, cp)
	}
	return nil
}

// snapshot returns a copy of all rows for read paths.
func (t *rawTable) snapshot() []domain.Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// rowFloat reads a numeric cell, tolerating the integer/float drift the
// merge canonicalization also absorbs.
func rowFloat(row domain.Row, name string) float64 {
	switch v := row[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func rowInt64(row domain.Row, name string) int64 {
	switch v := row[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func rowString(row domain.Row, name string) string {
	s, _ := row[name].(string)
	return s
}
