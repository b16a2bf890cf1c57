package metrics

import (
	"errors"
	"math"
	"testing"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

func TestBuildPuell_InsufficientHistory(t *testing.T) {
	_, err := BuildPuell(flatSeries(364, 50000), domain.DefaultIssuance())
	if !errors.Is(err, storage.ErrInsufficientHistory) {
		t.Errorf("Expected ErrInsufficientHistory, got %v", err)
	}
}

// A flat price series has issuance equal to its own average: multiple 1.
func TestBuildPuell_FlatSeriesMultipleOne(t *testing.T) {
	issuance := domain.DefaultIssuance()

	rows, err := BuildPuell(flatSeries(400, 50000), issuance)
	if err != nil {
		t.Fatalf("BuildPuell failed: %v", err)
	}
	if len(rows) != 36 { // 400 - 365 + 1
		t.Fatalf("Expected 36 rows, got %d", len(rows))
	}

	wantIssuance := issuance.DailyIssuanceBTC() * 50000
	for i, row := range rows {
		if math.Abs(row.Multiple-1) > 1e-9 {
			t.Fatalf("row %d: multiple %f, want 1", i, row.Multiple)
		}
		if math.Abs(row.IssuanceUSD-wantIssuance) > 1e-6 {
			t.Fatalf("row %d: issuance %f, want %f", i, row.IssuanceUSD, wantIssuance)
		}
	}
}

// A price spike on the final day lifts the multiple above 1 there.
func TestBuildPuell_SpikeRaisesMultiple(t *testing.T) {
	points := flatSeries(400, 50000)
	points[399].Price = 150000

	rows, err := BuildPuell(points, domain.DefaultIssuance())
	if err != nil {
		t.Fatalf("BuildPuell failed: %v", err)
	}

	last := rows[len(rows)-1]
	if last.Multiple <= 1 {
		t.Errorf("Expected multiple above 1 after spike, got %f", last.Multiple)
	}
	if prev := rows[len(rows)-2]; math.Abs(prev.Multiple-1) > 1e-9 {
		t.Errorf("Expected day before spike at 1, got %f", prev.Multiple)
	}
}

// Rows where the 365-day average is zero carry no defined multiple and are
// dropped instead of dividing by zero.
func TestBuildPuell_ZeroAverageRowsDropped(t *testing.T) {
	points := flatSeries(400, 0)
	for i := 365; i < 400; i++ {
		points[i].Price = 50000
	}

	rows, err := BuildPuell(points, domain.DefaultIssuance())
	if err != nil {
		t.Fatalf("BuildPuell failed: %v", err)
	}
	for _, row := range rows {
		if row.IssuanceUSD365MA == 0 {
			t.Fatalf("Row with zero average survived: %+v", row)
		}
	}
}
