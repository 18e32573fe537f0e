package stats

import (
	"math"
	"sort"
)

// quantile returns the p-quantile of sorted data by linear interpolation
// between the closest ranks at (n-1)*p. NaN for empty input.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

func sortedCopy(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	sort.Float64s(out)
	return out
}
