package domain

// IssuanceParams captures the current Bitcoin issuance rate. The pipeline
// applies it uniformly across the whole stored history: issuance is NOT
// back-adjusted across halving dates. This is a known simplification carried
// over from the source model, kept explicit and versioned here rather than
// buried as magic numbers.
type IssuanceParams struct {
	BlockRewardBTC float64 // reward per block
	BlocksPerDay   float64 // ~144 at a 10-minute block time
	EffectiveFrom  string  // YYYY-MM-DD the reward took effect (last halving)
}

// AnnualFlowBTC returns the yearly issuance implied by the current rate.
func (p IssuanceParams) AnnualFlowBTC() float64 {
	return p.BlockRewardBTC * p.BlocksPerDay * 365.25
}

// DailyIssuanceBTC returns the daily issuance implied by the current rate.
func (p IssuanceParams) DailyIssuanceBTC() float64 {
	return p.BlockRewardBTC * p.BlocksPerDay
}

// S2FCalibration holds the fixed stock-to-flow model regression constants:
// model market value = exp(LogCoeff) * ratio^Exponent, divided by supply to
// get a per-coin model price. Documented constants, never re-derived at
// runtime.
type S2FCalibration struct {
	LogCoeff float64
	Exponent float64
}

// DefaultIssuance is the post-April-2024-halving issuance rate.
func DefaultIssuance() IssuanceParams {
	return IssuanceParams{
		BlockRewardBTC: 3.125,
		BlocksPerDay:   144,
		EffectiveFrom:  "2024-04-20",
	}
}

// DefaultS2FCalibration returns the commonly cited PlanB 2019 regression
// parameters.
func DefaultS2FCalibration() S2FCalibration {
	return S2FCalibration{LogCoeff: 14.607, Exponent: 3.3168}
}
