// Package merge implements the incremental upsert that reconciles freshly
// fetched batches against already-persisted rows using canonical composite
// keys. It is the only component that writes to raw tables.
package merge

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// KeySeparator joins canonical column values into one composite key.
// ASCII unit separator: it cannot appear in a canonical numeric or date
// form, and text key values containing it are rejected as malformed, so two
// distinct tuples can never concatenate to the same key.
const KeySeparator = "\x1f"

const dateLayout = "2006-01-02"

// CanonicalValue returns the canonical text form of one key value according
// to the column's semantic kind. Numeric values canonicalize through
// float64 with shortest round-trip formatting, so an integer timestamp that
// drifted to a float upstream still produces the same key. Date values
// canonicalize to YYYY-MM-DD in UTC.
func CanonicalValue(col domain.Column, v any) (string, error) {
	if v == nil {
		return "", fmt.Errorf("%w: column %q: nil key value", storage.ErrMalformedBatch, col.Name)
	}

	switch col.Kind {
	case domain.KindNumeric:
		f, ok := toFloat64(v)
		if !ok {
			return "", fmt.Errorf("%w: column %q: non-numeric key value of type %T", storage.ErrMalformedBatch, col.Name, v)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil

	case domain.KindDate:
		return canonicalDate(col, v)

	default:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("%w: column %q: non-text key value of type %T", storage.ErrMalformedBatch, col.Name, v)
		}
		if strings.Contains(s, KeySeparator) {
			return "", fmt.Errorf("%w: column %q: key value contains reserved separator", storage.ErrMalformedBatch, col.Name)
		}
		return s, nil
	}
}

func canonicalDate(col domain.Column, v any) (string, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(dateLayout), nil
	case string:
		parsed, err := time.Parse(dateLayout, t)
		if err != nil {
			return "", fmt.Errorf("%w: column %q: date %q is not YYYY-MM-DD", storage.ErrMalformedBatch, col.Name, t)
		}
		return parsed.Format(dateLayout), nil
	default:
		if f, ok := toFloat64(v); ok {
			return time.Unix(int64(f), 0).UTC().Format(dateLayout), nil
		}
		return "", fmt.Errorf("%w: column %q: cannot canonicalize date value of type %T", storage.ErrMalformedBatch, col.Name, v)
	}
}

// CompositeKey builds the comparison key for one row from the spec's key
// columns, in their declared order.
func CompositeKey(spec domain.TableSpec, row domain.Row) (string, error) {
	parts := make([]string, len(spec.KeyColumns))
	for i, name := range spec.KeyColumns {
		col, ok := spec.Column(name)
		if !ok {
			return "", fmt.Errorf("%w: key column %q not in schema of %s", storage.ErrMalformedBatch, name, spec.Name)
		}
		v, ok := row[name]
		if !ok {
			return "", fmt.Errorf("%w: row missing key column %q for %s", storage.ErrMalformedBatch, name, spec.Name)
		}
		canon, err := CanonicalValue(col, v)
		if err != nil {
			return "", err
		}
		parts[i] = canon
	}
	return strings.Join(parts, KeySeparator), nil
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
