package domain

// Pi Cycle signal labels stored per derived row. The crossover is a state
// comparison, so the label makes the table self-describing for the
// classifier.
const (
	PiSignalNeutral = "Neutral"
	PiSignalCrossed = "High Risk (CROSSED)"
)

// PiCycleRow is one row of the pi_cycle derived table.
// Present only where both moving averages have a full window.
type PiCycleRow struct {
	Timestamp     int64
	BTCPrice      float64
	SMA111        float64 // trailing 111-day simple moving average
	SMA350Doubled float64 // 2 x trailing 350-day simple moving average
	Signal        string  // PiSignalNeutral or PiSignalCrossed
}

// WMA200Row is one row of the wma_200 derived table, at weekly granularity.
// BTCPrice is the weekly close so the price/MA ratio needs no extra join.
type WMA200Row struct {
	Timestamp int64 // Sunday week-end, midnight UTC
	BTCPrice  float64
	WMA200    float64 // trailing 200-week simple moving average
}

// S2FRow is one row of the s2f_model derived table. Ratio and ModelPrice
// are computed from the latest supply snapshot with the current issuance
// rate and are constant across the stored window; only BTCPrice varies.
type S2FRow struct {
	Timestamp  int64
	BTCPrice   float64
	Ratio      float64
	ModelPrice float64
}

// PuellRow is one row of the puell_multiple derived table.
// Present only where the 365-day issuance average has a full window.
type PuellRow struct {
	Timestamp        int64
	BTCPrice         float64
	IssuanceUSD      float64 // current block reward x blocks/day x price
	IssuanceUSD365MA float64
	Multiple         float64 // IssuanceUSD / IssuanceUSD365MA
}
