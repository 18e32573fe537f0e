package excel

import (
	"bytes"
	"path/filepath"
	"testing"

	"keystats/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleSnapshot() Snapshot {
	st := models.EmptyStatistics()
	st.ScoreDistribution = models.ScoreDistribution{
		Histogram:  []int{1, 2},
		Bins:       []float64{0, 50, 100},
		Mean:       42.5,
		TotalCount: 3,
	}
	st.SummaryStats[models.ColumnScore] = models.ScoreSummary{Mean: 42.5, MeanTrend: 1}
	st.ScoreTypesStats = map[string]models.DescribeStats{
		models.ColumnMagicLetterScore: {Count: 3, Mean: 7},
	}
	st.CorrelationMatrix = map[string]map[string]float64{
		models.ColumnScore:              {models.ColumnScore: 1, models.ColumnUniqueLettersCount: 0.5},
		models.ColumnUniqueLettersCount: {models.ColumnScore: 0.5, models.ColumnUniqueLettersCount: 1},
	}
	st.Trends = models.Trends{
		TimeFormat: models.TimeFormatHour,
		Counts:     []models.CountPoint{{Time: "2024-01-01 08:00", Value: 3}},
		AvgScores:  []models.Point{{Time: "2024-01-01 08:00", Value: 42.5}},
		MaxScores:  []models.Point{{Time: "2024-01-01 08:00", Value: 90}},
	}
	return Snapshot{
		Recent: []models.RecordView{
			{CreatedAt: "2024-01-01 08:30:00", Fingerprint: "abc", Score: 90, UniqueLettersCount: 3},
		},
		HighScore:  []models.RecordView{},
		Statistics: st,
	}
}

func TestWrite_Sheets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExporter().Write(&buf, sampleSnapshot()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t,
		[]string{SheetRecent, SheetHighScore, SheetSummary, SheetScoreTypes, SheetCorrelation, SheetTrends},
		f.GetSheetList())

	rows, err := f.GetRows(SheetRecent)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"created_at", "fingerprint", "score", "unique_letters_count"}, rows[0])
	assert.Equal(t, []string{"2024-01-01 08:30:00", "abc", "90", "3"}, rows[1])

	rows, err = f.GetRows(SheetHighScore)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	v, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
	v, err = f.GetCellValue(SheetSummary, "F3")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	rows, err = f.GetRows(SheetCorrelation)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"", models.ColumnScore, models.ColumnUniqueLettersCount}, rows[0])
	assert.Equal(t, []string{models.ColumnScore, "1", "0.5"}, rows[1])

	rows, err = f.GetRows(SheetTrends)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-01 08:00", "3", "42.5", "90"}, rows[1])
}

func TestSaveAs_EmptyStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, NewExporter().SaveAs(path, Snapshot{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetTrends)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
