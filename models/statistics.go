package models

// ScoreDistribution summarizes the aggregate score column
type ScoreDistribution struct {
	Histogram      []int     `json:"histogram"`
	Bins           []float64 `json:"bins"`
	Mean           float64   `json:"mean"`
	Median         float64   `json:"median"`
	Std            float64   `json:"std"`
	Min            float64   `json:"min"`
	Max            float64   `json:"max"`
	Q1             float64   `json:"q1"`
	Q3             float64   `json:"q3"`
	TotalCount     int       `json:"total_count"`
	QualifiedCount int       `json:"qualified_count"`
}

// DescribeStats is the count/mean/std/five-number summary of one column
type DescribeStats struct {
	Count float64 `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// ScoreSummary holds the current window's headline numbers and their trend
// against the comparison window
type ScoreSummary struct {
	Mean           float64 `json:"mean"`
	Max            float64 `json:"max"`
	Count          int     `json:"count"`
	QualifiedRate  float64 `json:"qualified_rate"`
	MeanTrend      float64 `json:"mean_trend"`
	MaxTrend       float64 `json:"max_trend"`
	CountTrend     float64 `json:"count_trend"`
	QualifiedTrend float64 `json:"qualified_trend"`
}

// Point is one bucket of a float series
type Point struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// CountPoint is one bucket of the count series
type CountPoint struct {
	Time  string `json:"time"`
	Value int    `json:"value"`
}

// Display hints for bucket times
const (
	TimeFormatHour = "YYYY-MM-DD HH:mm"
	TimeFormatDay  = "YYYY-MM-DD"
)

// Trends is the bucketed time series of the current window
type Trends struct {
	TimeFormat string       `json:"time_format"`
	AvgScores  []Point      `json:"avg_scores"`
	MaxScores  []Point      `json:"max_scores"`
	Counts     []CountPoint `json:"counts"`
}

// Diagnostics reports how many statistic values were coerced to 0 because
// they were undefined, and how many came from failed computations
type Diagnostics struct {
	CoercedValues     int `json:"coerced_values"`
	ComputationFaults int `json:"computation_faults"`
}

// StatisticsResult is the full statistics snapshot for one window
type StatisticsResult struct {
	ScoreDistribution ScoreDistribution             `json:"score_distribution"`
	CorrelationMatrix map[string]map[string]float64 `json:"correlation_matrix"`
	SummaryStats      map[string]ScoreSummary       `json:"summary_stats"`
	ScoreTypesStats   map[string]DescribeStats      `json:"score_types_stats"`
	Trends            Trends                        `json:"trends"`
	Diagnostics       Diagnostics                   `json:"diagnostics"`
}

// EmptyStatistics is returned when the current window holds no records
func EmptyStatistics() *StatisticsResult {
	return &StatisticsResult{
		ScoreDistribution: ScoreDistribution{
			Histogram: []int{},
			Bins:      []float64{},
		},
		CorrelationMatrix: map[string]map[string]float64{},
		SummaryStats: map[string]ScoreSummary{
			ColumnScore: {},
		},
		ScoreTypesStats: map[string]DescribeStats{},
		Trends: Trends{
			TimeFormat: TimeFormatHour,
			AvgScores:  []Point{},
			MaxScores:  []Point{},
			Counts:     []CountPoint{},
		},
	}
}
