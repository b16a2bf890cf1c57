package domain

// Tier is the risk level assigned to one indicator's latest reading.
type Tier string

const (
	TierLow         Tier = "Low"
	TierMedium      Tier = "Medium"
	TierHigh        Tier = "High"
	TierUnavailable Tier = "Unavailable"
)

// Indicator names used in snapshots and the query API.
const (
	IndicatorSentiment = "sentiment"
	IndicatorTrend     = "trend"
	IndicatorPiCycle   = "pi_cycle"
	IndicatorWMA200    = "wma_200"
	IndicatorDominance = "dominance"
	IndicatorS2F       = "s2f_deviation"
	IndicatorPuell     = "puell_multiple"
)

// IndicatorAssessment is one indicator's classified latest reading.
// Value is nil when the indicator could not be read; Rendered is the
// display form the dashboard shows verbatim ("N/A" when unavailable).
type IndicatorAssessment struct {
	Indicator string   `json:"indicator"`
	Value     *float64 `json:"value,omitempty"`
	Rendered  string   `json:"rendered"`
	Tier      Tier     `json:"tier"`
}

// TierCounts tallies assessments by tier.
type TierCounts struct {
	High        int `json:"high"`
	Medium      int `json:"medium"`
	Low         int `json:"low"`
	Unavailable int `json:"unavailable"`
}

// Conclusive returns the number of indicators with a usable reading.
func (c TierCounts) Conclusive() int {
	return c.High + c.Medium + c.Low
}

// OverallRisk is the aggregate verdict across all indicators.
// Score is in [0,1]; 0 when no indicator is conclusive.
type OverallRisk struct {
	Tier   Tier       `json:"tier"`
	Score  float64    `json:"score"`
	Counts TierCounts `json:"counts"`
}

// RiskSnapshot is the full classified view handed to the dashboard.
type RiskSnapshot struct {
	GeneratedAt int64                 `json:"generated_at"` // unix seconds
	Indicators  []IndicatorAssessment `json:"indicators"`
	Overall     OverallRisk           `json:"overall"`
}
