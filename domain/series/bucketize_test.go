package series

import (
	"testing"
	"time"

	"keystats/domain/window"
	"keystats/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t time.Time, score float64) models.KeyRecord {
	return models.KeyRecord{CreatedAt: &t, Score: &score}
}

var base = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func TestWidth(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want time.Duration
	}{
		{time.Hour, time.Hour},
		{7 * day, time.Hour},
		{7*day + time.Minute, 6 * time.Hour},
		{30 * day, 6 * time.Hour},
		{30*day + time.Minute, day},
		{365 * day, day},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Width(tc.d), "duration %s", tc.d)
	}
}

func TestBucketize_HourlyWindowFullyReindexed(t *testing.T) {
	r := window.New(base, base.Add(6*time.Hour))
	rows := []models.KeyRecord{
		at(base.Add(10*time.Minute), 100),
		at(base.Add(20*time.Minute), 301),
		at(base.Add(3*time.Hour+5*time.Minute), 50.556),
		at(base.Add(6*time.Hour), 999), // end is exclusive
		{ID: 9},                        // no timestamp
	}

	got := Bucketize(rows, r)

	assert.Equal(t, models.TimeFormatHour, got.TimeFormat)
	require.Len(t, got.Counts, 6)
	require.Len(t, got.AvgScores, 6)
	require.Len(t, got.MaxScores, 6)

	assert.Equal(t, "2024-01-01 08:00", got.Counts[0].Time)
	assert.Equal(t, "2024-01-01 13:00", got.Counts[5].Time)
	assert.Equal(t, []int{2, 0, 0, 1, 0, 0}, counts(got))

	assert.Equal(t, 200.5, got.AvgScores[0].Value)
	assert.Equal(t, 301.0, got.MaxScores[0].Value)
	assert.Equal(t, 0.0, got.AvgScores[1].Value)
	assert.Equal(t, 50.56, got.AvgScores[3].Value)
}

func TestBucketize_OriginTruncatedToHour(t *testing.T) {
	start := base.Add(30 * time.Minute)
	r := window.New(start, start.Add(2*time.Hour))
	got := Bucketize([]models.KeyRecord{at(start, 1)}, r)

	require.Len(t, got.Counts, 3)
	assert.Equal(t, "2024-01-01 08:00", got.Counts[0].Time)
	assert.Equal(t, 1, got.Counts[0].Value)
}

func TestBucketize_SixHourAndDailyWidths(t *testing.T) {
	week := window.New(base, base.Add(10*day))
	got := Bucketize([]models.KeyRecord{at(base.Add(7*time.Hour), 10)}, week)
	assert.Equal(t, models.TimeFormatHour, got.TimeFormat)
	assert.Len(t, got.Counts, 40)
	assert.Equal(t, 1, got.Counts[1].Value)
	assert.Equal(t, "2024-01-01 14:00", got.Counts[1].Time)

	month := window.New(base, base.Add(60*day))
	got = Bucketize([]models.KeyRecord{at(base.Add(25*time.Hour), 10)}, month)
	assert.Equal(t, models.TimeFormatDay, got.TimeFormat)
	assert.Len(t, got.Counts, 60)
	assert.Equal(t, "2024-01-02", got.Counts[1].Time)
	assert.Equal(t, 1, got.Counts[1].Value)
}

func TestBucketize_UnboundedUsesRecordSpan(t *testing.T) {
	rows := []models.KeyRecord{
		at(base.Add(2*time.Hour+15*time.Minute), 10),
		at(base.Add(15*time.Minute), 30),
		at(base.Add(15*time.Minute), 20),
	}
	got := Bucketize(rows, window.Unbounded())

	assert.Equal(t, models.TimeFormatHour, got.TimeFormat)
	assert.Equal(t, []int{2, 0, 1}, counts(got))
	assert.Equal(t, 25.0, got.AvgScores[0].Value)
	assert.Equal(t, 30.0, got.MaxScores[0].Value)
}

func TestBucketize_UnboundedWithoutTimestamps(t *testing.T) {
	got := Bucketize([]models.KeyRecord{{ID: 1}}, window.Unbounded())
	assert.Empty(t, got.Counts)
	assert.NotNil(t, got.Counts)
	assert.NotNil(t, got.AvgScores)
}

func TestBucketize_CapsSeriesLength(t *testing.T) {
	r := window.New(base, base.Add(100*365*day))
	got := Bucketize(nil, r)
	assert.LessOrEqual(t, len(got.Counts), MaxBuckets)
	assert.Equal(t, models.TimeFormatDay, got.TimeFormat)
}

func TestBucketize_ConservesRows(t *testing.T) {
	r := window.New(base, base.Add(3*day))
	var rows []models.KeyRecord
	for i := 0; i < 200; i++ {
		rows = append(rows, at(base.Add(time.Duration(i)*17*time.Minute), float64(i)))
	}
	got := Bucketize(rows, r)

	total := 0
	for _, c := range got.Counts {
		total += c.Value
	}
	assert.Equal(t, 200, total)
}

func counts(tr models.Trends) []int {
	out := make([]int, len(tr.Counts))
	for i, c := range tr.Counts {
		out[i] = c.Value
	}
	return out
}
