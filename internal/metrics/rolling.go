// Package metrics derives the four cycle indicators from the raw price
// series via rolling windows and closed-form models, and rebuilds their
// derived tables wholesale on each recompute.
package metrics

// TrailingMean computes the trailing simple moving average of values with a
// full-window requirement: result[i] is the mean of values[i : i+window],
// so the result has max(0, len(values)-window+1) entries and no
// partial/leading-edge windows exist.
func TrailingMean(values []float64, window int) []float64 {
	if window <= 0 || len(values) < window {
		return nil
	}

	result := make([]float64, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			result[i-window+1] = sum / float64(window)
		}
	}
	return result
}
