package metrics

import (
	"math"
	"testing"
)

func TestTrailingMean_FullWindowOnly(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	result := TrailingMean(values, 3)
	if len(result) != 3 {
		t.Fatalf("Expected 3 means, got %d", len(result))
	}

	expected := []float64{2, 3, 4}
	for i, want := range expected {
		if math.Abs(result[i]-want) > 1e-9 {
			t.Errorf("result[%d] = %f, want %f", i, result[i], want)
		}
	}
}

func TestTrailingMean_FirstWindowIsExactMean(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	result := TrailingMean(values, 4)
	if len(result) != 1 {
		t.Fatalf("Expected 1 mean, got %d", len(result))
	}
	if result[0] != 25 {
		t.Errorf("Expected 25, got %f", result[0])
	}
}

func TestTrailingMean_ShortInput(t *testing.T) {
	if got := TrailingMean([]float64{1, 2}, 3); got != nil {
		t.Errorf("Expected nil for short input, got %v", got)
	}
}

func TestTrailingMean_WindowOne(t *testing.T) {
	values := []float64{7, 8, 9}

	result := TrailingMean(values, 1)
	if len(result) != 3 {
		t.Fatalf("Expected 3 means, got %d", len(result))
	}
	for i, v := range values {
		if result[i] != v {
			t.Errorf("result[%d] = %f, want %f", i, result[i], v)
		}
	}
}

func TestTrailingMean_InvalidWindow(t *testing.T) {
	if got := TrailingMean([]float64{1, 2, 3}, 0); got != nil {
		t.Errorf("Expected nil for window 0, got %v", got)
	}
}
