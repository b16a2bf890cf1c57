package risk

import (
	"math"
	"testing"

	"cycle-radar/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestClassify_NilValueUnavailable(t *testing.T) {
	if got := Classify(nil, Bound{High: 80, Medium: 65, LowIsGood: true}); got != domain.TierUnavailable {
		t.Errorf("Classify(nil) = %s, want Unavailable", got)
	}
}

// NaN is a non-reading, not a low-risk one: every threshold comparison is
// false, so without an explicit check it would fall through to TierLow.
func TestClassify_NaNUnavailable(t *testing.T) {
	for _, b := range []Bound{
		{High: 80, Medium: 65, LowIsGood: true},
		{High: 40, Medium: 48, LowIsGood: false},
	} {
		if got := Classify(ptr(math.NaN()), b); got != domain.TierUnavailable {
			t.Errorf("Classify(NaN, %+v) = %s, want Unavailable", b, got)
		}
	}
}

func TestClassify_LowIsGoodInclusiveBoundaries(t *testing.T) {
	b := Bound{High: 80, Medium: 65, LowIsGood: true}

	cases := []struct {
		value float64
		want  domain.Tier
	}{
		{90, domain.TierHigh},
		{80, domain.TierHigh}, // exactly at High
		{79.999, domain.TierMedium},
		{65, domain.TierMedium}, // exactly at Medium
		{64.999, domain.TierLow},
		{0, domain.TierLow},
	}
	for _, tc := range cases {
		if got := Classify(ptr(tc.value), b); got != tc.want {
			t.Errorf("Classify(%f) = %s, want %s", tc.value, got, tc.want)
		}
	}
}

// Dominance inverts: falling values are the risk signal.
func TestClassify_InvertedDirection(t *testing.T) {
	b := Bound{High: 40, Medium: 48, LowIsGood: false}

	cases := []struct {
		value float64
		want  domain.Tier
	}{
		{35, domain.TierHigh},
		{40, domain.TierHigh}, // exactly at High
		{40.001, domain.TierMedium},
		{48, domain.TierMedium}, // exactly at Medium
		{48.001, domain.TierLow},
		{60, domain.TierLow},
	}
	for _, tc := range cases {
		if got := Classify(ptr(tc.value), b); got != tc.want {
			t.Errorf("Classify(%f) = %s, want %s", tc.value, got, tc.want)
		}
	}
}

// Every input lands in exactly one tier, including extreme values.
func TestClassify_Total(t *testing.T) {
	b := Bound{High: 3.0, Medium: 1.8, LowIsGood: true}
	for _, v := range []float64{-1e18, -1, 0, 1.8, 2.9, 3.0, 1e18} {
		got := Classify(ptr(v), b)
		switch got {
		case domain.TierLow, domain.TierMedium, domain.TierHigh:
		default:
			t.Errorf("Classify(%g) = %s, not a conclusive tier", v, got)
		}
	}
}
