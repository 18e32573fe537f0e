package stats

import (
	"math"

	"keystats/models"

	mstats "github.com/montanaflynn/stats"
)

// Trend bounds
const (
	MaxTrend = 10.0
	MinTrend = -10.0
)

// Trend is the relative change (current-previous)/previous clamped to
// [-10, 10]. A zero baseline yields 0 when current is also 0, else 1.
func Trend(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 1
	}
	t := (current - previous) / previous
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0
	}
	return math.Max(math.Min(t, MaxTrend), MinTrend)
}

// WindowSummary holds the headline numbers trends are computed from
type WindowSummary struct {
	Mean          float64
	Max           float64
	Count         int
	QualifiedRate float64
}

// Summarize computes the headline numbers of one window
func Summarize(rows []models.KeyRecord, c *Coercions) WindowSummary {
	scores := column(rows, models.ColumnScore)
	qualified := 0
	for _, r := range rows {
		if r.Qualified() {
			qualified++
		}
	}
	denom := len(rows)
	if denom < 1 {
		denom = 1
	}
	return WindowSummary{
		Mean:          c.From(mstats.Mean(scores)),
		Max:           c.From(mstats.Max(scores)),
		Count:         len(rows),
		QualifiedRate: float64(qualified) / float64(denom),
	}
}

// CompareWindows builds the score summary of current annotated with trends
// against previous. Mean and max are rounded to 1 decimal after the trends
// are taken from the unrounded values.
func CompareWindows(current, previous WindowSummary) models.ScoreSummary {
	return models.ScoreSummary{
		Mean:           Round(current.Mean, 1),
		Max:            Round(current.Max, 1),
		Count:          current.Count,
		QualifiedRate:  current.QualifiedRate,
		MeanTrend:      Trend(current.Mean, previous.Mean),
		MaxTrend:       Trend(current.Max, previous.Max),
		CountTrend:     Trend(float64(current.Count), float64(previous.Count)),
		QualifiedTrend: Trend(current.QualifiedRate, previous.QualifiedRate),
	}
}
