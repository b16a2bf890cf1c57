package metrics

import (
	"fmt"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

const puellWindow = 365

// BuildPuell derives Puell Multiple rows from a daily price series: daily
// issuance value in USD against its trailing 365-day average. A row exists
// only where the averaging window is full; rows where the average is zero
// are dropped rather than dividing by it.
func BuildPuell(daily []domain.PricePoint, issuance domain.IssuanceParams) ([]domain.PuellRow, error) {
	if len(daily) < puellWindow {
		return nil, fmt.Errorf("%w: puell needs %d daily points, have %d",
			storage.ErrInsufficientHistory, puellWindow, len(daily))
	}

	dailyBTC := issuance.DailyIssuanceBTC()
	issued := make([]float64, len(daily))
	for i, p := range daily {
		issued[i] = dailyBTC * p.Price
	}
	ma := TrailingMean(issued, puellWindow)

	rows := make([]domain.PuellRow, 0, len(ma))
	for j, avg := range ma {
		if avg == 0 {
			continue
		}
		i := j + puellWindow - 1
		rows = append(rows, domain.PuellRow{
			Timestamp:        daily[i].Timestamp,
			BTCPrice:         daily[i].Price,
			IssuanceUSD:      issued[i],
			IssuanceUSD365MA: avg,
			Multiple:         issued[i] / avg,
		})
	}
	return rows, nil
}
