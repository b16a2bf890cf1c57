package metrics

import (
	"fmt"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage"
)

const (
	piShortWindow = 111
	piLongWindow  = 350
)

// BuildPiCycle derives the Pi Cycle Top rows from a daily price series. A row
// exists only where both the 111-day and the 350-day moving average have a
// full window, so the first row sits at index piLongWindow-1 of the input.
func BuildPiCycle(daily []domain.PricePoint) ([]domain.PiCycleRow, error) {
	if len(daily) < piLongWindow {
		return nil, fmt.Errorf("%w: pi cycle needs %d daily points, have %d",
			storage.ErrInsufficientHistory, piLongWindow, len(daily))
	}

	prices := make([]float64, len(daily))
	for i, p := range daily {
		prices[i] = p.Price
	}
	smaShort := TrailingMean(prices, piShortWindow)
	smaLong := TrailingMean(prices, piLongWindow)

	rows := make([]domain.PiCycleRow, 0, len(smaLong))
	for j, longMA := range smaLong {
		i := j + piLongWindow - 1
		shortMA := smaShort[i-piShortWindow+1]
		doubled := 2 * longMA

		signal := domain.PiSignalNeutral
		if shortMA >= doubled {
			signal = domain.PiSignalCrossed
		}
		rows = append(rows, domain.PiCycleRow{
			Timestamp:     daily[i].Timestamp,
			BTCPrice:      daily[i].Price,
			SMA111:        shortMA,
			SMA350Doubled: doubled,
			Signal:        signal,
		})
	}
	return rows, nil
}
