package risk

import (
	"math"
	"testing"

	"cycle-radar/internal/domain"
)

func TestAggregate_Cutoffs(t *testing.T) {
	rule := DefaultAggregateRule()

	cases := []struct {
		name   string
		counts domain.TierCounts
		want   domain.Tier
	}{
		{"three high", domain.TierCounts{High: 3, Low: 4}, domain.TierHigh},
		{"two high", domain.TierCounts{High: 2, Low: 5}, domain.TierMedium},
		{"one high three medium", domain.TierCounts{High: 1, Medium: 3, Low: 3}, domain.TierMedium},
		{"four medium", domain.TierCounts{Medium: 4, Low: 3}, domain.TierMedium},
		{"one high two medium", domain.TierCounts{High: 1, Medium: 2, Low: 4}, domain.TierLow},
		{"all low", domain.TierCounts{Low: 7}, domain.TierLow},
		{"all unavailable", domain.TierCounts{Unavailable: 7}, domain.TierLow},
	}
	for _, tc := range cases {
		if got := Aggregate(tc.counts, rule); got.Tier != tc.want {
			t.Errorf("%s: tier %s, want %s", tc.name, got.Tier, tc.want)
		}
	}
}

func TestAggregate_Score(t *testing.T) {
	rule := DefaultAggregateRule()

	// 2 high + 1 medium of 5 conclusive: (2*2 + 1) / (2*5) = 0.5
	got := Aggregate(domain.TierCounts{High: 2, Medium: 1, Low: 2, Unavailable: 2}, rule)
	if math.Abs(got.Score-0.5) > 1e-9 {
		t.Errorf("Score = %f, want 0.5", got.Score)
	}

	// All high saturates at 1.
	got = Aggregate(domain.TierCounts{High: 7}, rule)
	if got.Score != 1 {
		t.Errorf("Score = %f, want 1", got.Score)
	}

	// All low scores 0.
	got = Aggregate(domain.TierCounts{Low: 7}, rule)
	if got.Score != 0 {
		t.Errorf("Score = %f, want 0", got.Score)
	}
}

// No conclusive indicators: score 0 rather than a division by zero.
func TestAggregate_NoConclusive(t *testing.T) {
	got := Aggregate(domain.TierCounts{Unavailable: 7}, DefaultAggregateRule())
	if got.Score != 0 {
		t.Errorf("Score = %f, want 0", got.Score)
	}
	if got.Tier != domain.TierLow {
		t.Errorf("Tier = %s, want Low", got.Tier)
	}
}

// Unavailable indicators do not inflate the denominator.
func TestAggregate_UnavailableExcludedFromScore(t *testing.T) {
	rule := DefaultAggregateRule()
	with := Aggregate(domain.TierCounts{High: 1, Low: 1, Unavailable: 5}, rule)
	without := Aggregate(domain.TierCounts{High: 1, Low: 1}, rule)
	if with.Score != without.Score {
		t.Errorf("Scores differ: %f vs %f", with.Score, without.Score)
	}
}
