package metrics

import (
	"sort"
	"time"

	"cycle-radar/internal/domain"
)

// ResampleWeekly buckets a daily series into Sunday-ending weeks in UTC and
// keeps the latest observation of each week as the weekly close, regardless
// of input order. Each output point is labeled with the week's Sunday at
// midnight UTC, ascending. A Sunday observation belongs to the week it ends.
func ResampleWeekly(points []domain.PricePoint) []domain.PricePoint {
	closes := make(map[int64]domain.PricePoint, len(points)/7+1)
	for _, p := range points {
		w := weekEnd(p.Timestamp)
		if cur, ok := closes[w]; !ok || p.Timestamp > cur.Timestamp {
			closes[w] = p
		}
	}

	weeks := make([]int64, 0, len(closes))
	for w := range closes {
		weeks = append(weeks, w)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i] < weeks[j] })

	result := make([]domain.PricePoint, len(weeks))
	for i, w := range weeks {
		result[i] = domain.PricePoint{Timestamp: w, Price: closes[w].Price}
	}
	return result
}

// weekEnd returns the unix timestamp of the Sunday midnight UTC that ends
// the week containing ts.
func weekEnd(ts int64) int64 {
	t := time.Unix(ts, 0).UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (7 - int(day.Weekday())) % 7
	return day.AddDate(0, 0, offset).Unix()
}
