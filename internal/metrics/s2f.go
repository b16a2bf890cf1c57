package metrics

import (
	"fmt"
	"math"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

// BuildS2F derives stock-to-flow rows from a daily price series and the
// latest circulating supply. The flow uses the current issuance rate across
// the whole window, so ratio and model price are constant per rebuild; only
// the observed price varies row to row.
func BuildS2F(daily []domain.PricePoint, supply float64, issuance domain.IssuanceParams, cal domain.S2FCalibration) ([]domain.S2FRow, error) {
	if len(daily) == 0 {
		return nil, fmt.Errorf("%w: s2f needs at least one daily point", storage.ErrInsufficientHistory)
	}
	if supply <= 0 {
		return nil, fmt.Errorf("%w: non-positive circulating supply %f", storage.ErrMalformedBatch, supply)
	}

	var ratio, model float64
	if flow := issuance.AnnualFlowBTC(); flow > 0 {
		ratio = supply / flow
		model = math.Exp(cal.LogCoeff) * math.Pow(ratio, cal.Exponent) / supply
	}

	rows := make([]domain.S2FRow, len(daily))
	for i, p := range daily {
		rows[i] = domain.S2FRow{
			Timestamp:  p.Timestamp,
			BTCPrice:   p.Price,
			Ratio:      ratio,
			ModelPrice: model,
		}
	}
	return rows, nil
}
