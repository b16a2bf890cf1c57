// Package risk classifies the latest indicator readings into tiers and
// aggregates them into an overall verdict.
package risk

import (
	"math"

	"cycle-radar/internal/domain"
)

// Bound holds one indicator's tier thresholds. When LowIsGood, readings at
// or above High are high risk; when not, the direction inverts and readings
// at or below High are high risk (BTC dominance falls toward cycle tops).
type Bound struct {
	High      float64
	Medium    float64
	LowIsGood bool
}

// Thresholds carries the per-indicator bounds, injectable via config.
type Thresholds struct {
	Sentiment    Bound
	Trend        Bound
	PiCycleRatio Bound
	WMARatio     Bound
	Dominance    Bound
	S2FDeviation Bound
	Puell        Bound
}

// DefaultThresholds returns the standard cycle-top bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Sentiment:    Bound{High: 80, Medium: 65, LowIsGood: true},
		Trend:        Bound{High: 85, Medium: 65, LowIsGood: true},
		PiCycleRatio: Bound{High: 1.0, Medium: 0.95, LowIsGood: true},
		WMARatio:     Bound{High: 3.0, Medium: 2.0, LowIsGood: true},
		Dominance:    Bound{High: 40, Medium: 48, LowIsGood: false},
		S2FDeviation: Bound{High: 2.5, Medium: 1.7, LowIsGood: true},
		Puell:        Bound{High: 3.0, Medium: 1.8, LowIsGood: true},
	}
}

// Classify assigns a tier to one reading. Boundaries are inclusive: a value
// exactly at High is TierHigh, exactly at Medium is TierMedium. A nil or NaN
// value is TierUnavailable. Total: every input maps to exactly one tier.
func Classify(value *float64, b Bound) domain.Tier {
	if value == nil {
		return domain.TierUnavailable
	}
	v := *value
	if math.IsNaN(v) {
		return domain.TierUnavailable
	}
	if b.LowIsGood {
		switch {
		case v >= b.High:
			return domain.TierHigh
		case v >= b.Medium:
			return domain.TierMedium
		default:
			return domain.TierLow
		}
	}
	switch {
	case v <= b.High:
		return domain.TierHigh
	case v <= b.Medium:
		return domain.TierMedium
	default:
		return domain.TierLow
	}
}
