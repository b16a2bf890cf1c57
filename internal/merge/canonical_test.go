package merge

import (
	"errors"
	"testing"
	"time"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

func TestCanonicalValue_NumericIntFloatDrift(t *testing.T) {
	col := domain.Column{Name: "timestamp", Kind: domain.KindNumeric}

	asInt, err := CanonicalValue(col, int64(1700000000))
	if err != nil {
		t.Fatalf("canonicalize int64: %v", err)
	}
	asFloat, err := CanonicalValue(col, float64(1700000000))
	if err != nil {
		t.Fatalf("canonicalize float64: %v", err)
	}

	if asInt != asFloat {
		t.Errorf("int and float forms differ: %q vs %q", asInt, asFloat)
	}
}

func TestCanonicalValue_NumericDistinctValues(t *testing.T) {
	col := domain.Column{Name: "value", Kind: domain.KindNumeric}

	a, _ := CanonicalValue(col, 72.5)
	b, _ := CanonicalValue(col, 72.0)
	if a == b {
		t.Errorf("distinct values canonicalized to the same key %q", a)
	}
}

func TestCanonicalValue_Date(t *testing.T) {
	col := domain.Column{Name: "date", Kind: domain.KindDate}

	fromString, err := CanonicalValue(col, "2024-03-09")
	if err != nil {
		t.Fatalf("canonicalize date string: %v", err)
	}
	fromTime, err := CanonicalValue(col, time.Date(2024, 3, 9, 23, 15, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("canonicalize time.Time: %v", err)
	}

	if fromString != "2024-03-09" || fromTime != "2024-03-09" {
		t.Errorf("expected 2024-03-09, got %q and %q", fromString, fromTime)
	}
}

func TestCanonicalValue_DateRejectsBadFormat(t *testing.T) {
	col := domain.Column{Name: "date", Kind: domain.KindDate}

	_, err := CanonicalValue(col, "09/03/2024")
	if !errors.Is(err, storage.ErrMalformedBatch) {
		t.Errorf("expected ErrMalformedBatch, got %v", err)
	}
}

func TestCanonicalValue_NilKeyValue(t *testing.T) {
	col := domain.Column{Name: "timestamp", Kind: domain.KindNumeric}

	_, err := CanonicalValue(col, nil)
	if !errors.Is(err, storage.ErrMalformedBatch) {
		t.Errorf("expected ErrMalformedBatch, got %v", err)
	}
}

func TestCanonicalValue_TextRejectsSeparator(t *testing.T) {
	col := domain.Column{Name: "asset_id", Kind: domain.KindText}

	_, err := CanonicalValue(col, "bit"+KeySeparator+"coin")
	if !errors.Is(err, storage.ErrMalformedBatch) {
		t.Errorf("expected ErrMalformedBatch, got %v", err)
	}
}

// Two rows whose plain concatenation would collide must still produce
// distinct composite keys.
func TestCompositeKey_NoConcatenationCollision(t *testing.T) {
	spec := domain.TableSpec{
		Name: "pairs",
		Columns: []domain.Column{
			{Name: "a", Kind: domain.KindText},
			{Name: "b", Kind: domain.KindText},
		},
		KeyColumns: []string{"a", "b"},
	}

	k1, err := CompositeKey(spec, domain.Row{"a": "ab", "b": "c"})
	if err != nil {
		t.Fatalf("composite key 1: %v", err)
	}
	k2, err := CompositeKey(spec, domain.Row{"a": "a", "b": "bc"})
	if err != nil {
		t.Fatalf("composite key 2: %v", err)
	}

	if k1 == k2 {
		t.Errorf("composite keys collided: %q", k1)
	}
}

func TestCompositeKey_MissingKeyColumn(t *testing.T) {
	_, err := CompositeKey(domain.PriceTable, domain.Row{"timestamp": int64(1)})
	if !errors.Is(err, storage.ErrMalformedBatch) {
		t.Errorf("expected ErrMalformedBatch, got %v", err)
	}
}
