package risk

import "cycle-radar/internal/domain"

// AggregateRule holds the overall-verdict cutoffs.
type AggregateRule struct {
	// HighAt: overall High when at least this many indicators are High.
	HighAt int
	// MediumAtHigh: overall Medium when at least this many are High.
	MediumAtHigh int
	// MediumAtCombined: overall Medium when High+Medium reach this many.
	MediumAtCombined int
}

// DefaultAggregateRule returns the standard cutoffs.
func DefaultAggregateRule() AggregateRule {
	return AggregateRule{HighAt: 3, MediumAtHigh: 2, MediumAtCombined: 4}
}

// Aggregate folds tier counts into the overall verdict. Unavailable
// indicators count toward nothing. Score is (2·high + medium) over
// 2·conclusive, 0 when no indicator is conclusive, so it stays in [0,1].
func Aggregate(counts domain.TierCounts, rule AggregateRule) domain.OverallRisk {
	tier := domain.TierLow
	switch {
	case counts.High >= rule.HighAt:
		tier = domain.TierHigh
	case counts.High >= rule.MediumAtHigh,
		counts.High+counts.Medium >= rule.MediumAtCombined:
		tier = domain.TierMedium
	}

	var score float64
	if n := counts.Conclusive(); n > 0 {
		score = float64(2*counts.High+counts.Medium) / float64(2*n)
	}

	return domain.OverallRisk{Tier: tier, Score: score, Counts: counts}
}
