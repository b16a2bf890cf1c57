package metrics

import (
	"fmt"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

const (
	wmaWindow = 200
	// wmaMinDailyPoints rejects series too short to yield 200 full weeks
	// before resampling even runs, so the error names the daily shortfall.
	wmaMinDailyPoints = 1400
)

// BuildWMA200 derives the 200-week moving average rows from a daily price
// series. The series is resampled to Sunday-ending weekly closes first; a
// row exists only where the 200-week window is full.
func BuildWMA200(daily []domain.PricePoint) ([]domain.WMA200Row, error) {
	if len(daily) < wmaMinDailyPoints {
		return nil, fmt.Errorf("%w: 200wma needs %d daily points, have %d",
			storage.ErrInsufficientHistory, wmaMinDailyPoints, len(daily))
	}

	weekly := ResampleWeekly(daily)
	if len(weekly) < wmaWindow {
		return nil, fmt.Errorf("%w: 200wma needs %d weekly closes, have %d",
			storage.ErrInsufficientHistory, wmaWindow, len(weekly))
	}

	closes := make([]float64, len(weekly))
	for i, p := range weekly {
		closes[i] = p.Price
	}
	ma := TrailingMean(closes, wmaWindow)

	rows := make([]domain.WMA200Row, len(ma))
	for j, avg := range ma {
		i := j + wmaWindow - 1
		rows[j] = domain.WMA200Row{
			Timestamp: weekly[i].Timestamp,
			BTCPrice:  weekly[i].Price,
			WMA200:    avg,
		}
	}
	return rows, nil
}
