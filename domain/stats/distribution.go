package stats

import (
	"math"

	"keystats/models"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"
)

// HistogramBins is the number of equal-width score bins
const HistogramBins = 20

// ScoreDistribution summarizes the score column: a 20-bin histogram over
// [min, max] plus central tendency, spread and quartiles. Missing scores
// count as 0.
func ScoreDistribution(rows []models.KeyRecord, c *Coercions) models.ScoreDistribution {
	scores := column(rows, models.ColumnScore)
	sorted := sortedCopy(scores)

	counts, edges := histogram(sorted, HistogramBins)

	qualified := 0
	for _, s := range scores {
		if s > models.QualifiedScoreThreshold {
			qualified++
		}
	}

	return models.ScoreDistribution{
		Histogram:      counts,
		Bins:           edges,
		Mean:           c.From(mstats.Mean(scores)),
		Median:         c.From(mstats.Median(scores)),
		Std:            c.From(mstats.StandardDeviationPopulation(scores)),
		Min:            c.From(mstats.Min(scores)),
		Max:            c.From(mstats.Max(scores)),
		Q1:             c.Clean(quantile(sorted, 0.25)),
		Q3:             c.Clean(quantile(sorted, 0.75)),
		TotalCount:     len(scores),
		QualifiedCount: qualified,
	}
}

// histogram bins sorted data into n equal-width bins spanning [min, max].
// A degenerate range is widened by 0.5 on both sides and empty input uses
// [0, 1]. The last bin is closed on the right.
func histogram(sorted []float64, n int) ([]int, []float64) {
	lo, hi := 0.0, 1.0
	if len(sorted) > 0 {
		lo, hi = sorted[0], sorted[len(sorted)-1]
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := floats.Span(make([]float64, n+1), lo, hi)

	// gonum's dividers are half-open on the right; nudge the top one so the
	// maximum lands in the last bin.
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	weights := gstat.Histogram(nil, dividers, sorted, nil)
	counts := make([]int, len(weights))
	for i, w := range weights {
		counts[i] = int(w)
	}
	return counts, edges
}
