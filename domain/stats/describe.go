package stats

import (
	"keystats/models"

	mstats "github.com/montanaflynn/stats"
)

// ScoreTypeStats describes each of the four sub-score columns: count, mean,
// sample standard deviation, min, quartiles and max
func ScoreTypeStats(rows []models.KeyRecord, c *Coercions) map[string]models.DescribeStats {
	out := make(map[string]models.DescribeStats, len(models.SubScoreColumns))
	for _, name := range models.SubScoreColumns {
		out[name] = Describe(column(rows, name), c)
	}
	return out
}

// Describe computes the summary of one column
func Describe(values []float64, c *Coercions) models.DescribeStats {
	sorted := sortedCopy(values)
	return models.DescribeStats{
		Count: float64(len(values)),
		Mean:  c.From(mstats.Mean(values)),
		Std:   c.From(mstats.StandardDeviationSample(values)),
		Min:   c.From(mstats.Min(values)),
		P25:   c.Clean(quantile(sorted, 0.25)),
		P50:   c.Clean(quantile(sorted, 0.50)),
		P75:   c.Clean(quantile(sorted, 0.75)),
		Max:   c.From(mstats.Max(values)),
	}
}
