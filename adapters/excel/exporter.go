// Package excel writes dashboard snapshots to xlsx workbooks.
package excel

import (
	"fmt"
	"io"
	"slices"
	"sort"

	"keystats/models"

	"github.com/xuri/excelize/v2"
)

// Sheet names of an exported workbook, in order
const (
	SheetRecent      = "Recent Keys"
	SheetHighScore   = "High Score Keys"
	SheetSummary     = "Summary"
	SheetScoreTypes  = "Score Types"
	SheetCorrelation = "Correlation"
	SheetTrends      = "Trends"
)

// Snapshot is everything one export covers
type Snapshot struct {
	Recent     []models.RecordView
	HighScore  []models.RecordView
	Statistics *models.StatisticsResult
}

// Exporter renders snapshots with a bold header row on every sheet
type Exporter struct{}

// NewExporter creates an exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Write renders snap as a workbook into w
func (e *Exporter) Write(w io.Writer, snap Snapshot) error {
	f, err := e.Build(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveAs renders snap into the file at path
func (e *Exporter) SaveAs(path string, snap Snapshot) error {
	f, err := e.Build(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// Build assembles the workbook in memory
func (e *Exporter) Build(snap Snapshot) (*excelize.File, error) {
	st := snap.Statistics
	if st == nil {
		st = models.EmptyStatistics()
	}

	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	b := &builder{f: f, header: header}

	if err := f.SetSheetName("Sheet1", SheetRecent); err != nil {
		f.Close()
		return nil, err
	}
	b.records(SheetRecent, snap.Recent)
	b.records(SheetHighScore, snap.HighScore)
	b.summary(st)
	b.scoreTypes(st.ScoreTypesStats)
	b.correlation(st.CorrelationMatrix)
	b.trends(st.Trends)

	if b.err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to build workbook: %w", b.err)
	}
	return f, nil
}

// builder keeps the first error so sheet writers stay linear
type builder struct {
	f      *excelize.File
	header int
	err    error
}

func (b *builder) sheet(name string) {
	if b.err != nil {
		return
	}
	if idx, _ := b.f.GetSheetIndex(name); idx >= 0 {
		return
	}
	_, b.err = b.f.NewSheet(name)
}

func (b *builder) row(sheet string, n int, values ...any) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetSheetRow(sheet, cell, &values)
}

func (b *builder) headerRow(sheet string, values ...any) {
	b.sheet(sheet)
	b.row(sheet, 1, values...)
	if b.err != nil {
		return
	}
	end, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellStyle(sheet, "A1", end, b.header)
}

func (b *builder) records(sheet string, views []models.RecordView) {
	b.headerRow(sheet, "created_at", "fingerprint", "score", "unique_letters_count")
	for i, v := range views {
		b.row(sheet, i+2, v.CreatedAt, v.Fingerprint, v.Score, v.UniqueLettersCount)
	}
}

func (b *builder) summary(st *models.StatisticsResult) {
	b.headerRow(SheetSummary, "metric", "value")
	d := st.ScoreDistribution
	rows := [][]any{
		{"total_count", d.TotalCount},
		{"qualified_count", d.QualifiedCount},
		{"mean", d.Mean},
		{"median", d.Median},
		{"std", d.Std},
		{"min", d.Min},
		{"q1", d.Q1},
		{"q3", d.Q3},
		{"max", d.Max},
	}
	if s, ok := st.SummaryStats[models.ColumnScore]; ok {
		rows = append(rows,
			[]any{"qualified_rate", s.QualifiedRate},
			[]any{"mean_trend", s.MeanTrend},
			[]any{"max_trend", s.MaxTrend},
			[]any{"count_trend", s.CountTrend},
			[]any{"qualified_trend", s.QualifiedTrend},
		)
	}
	rows = append(rows,
		[]any{"coerced_values", st.Diagnostics.CoercedValues},
		[]any{"computation_faults", st.Diagnostics.ComputationFaults},
	)
	for i, r := range rows {
		b.row(SheetSummary, i+2, r...)
	}

	// histogram beside the summary: bin lower edge and count
	if b.err != nil || len(d.Histogram) == 0 {
		return
	}
	b.err = b.f.SetSheetRow(SheetSummary, "D1", &[]any{"bin_start", "bin_end", "count"})
	for i, n := range d.Histogram {
		if b.err != nil || i+1 >= len(d.Bins) {
			return
		}
		cell, _ := excelize.CoordinatesToCellName(4, i+2)
		b.err = b.f.SetSheetRow(SheetSummary, cell, &[]any{d.Bins[i], d.Bins[i+1], n})
	}
}

func (b *builder) scoreTypes(types map[string]models.DescribeStats) {
	b.headerRow(SheetScoreTypes, "column", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	n := 2
	for _, col := range models.SubScoreColumns {
		s, ok := types[col]
		if !ok {
			continue
		}
		b.row(SheetScoreTypes, n, col, s.Count, s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max)
		n++
	}
}

func (b *builder) correlation(matrix map[string]map[string]float64) {
	cols := make([]string, 0, len(matrix))
	for _, c := range models.NumericColumns {
		if _, ok := matrix[c]; ok {
			cols = append(cols, c)
		}
	}
	// columns outside the known set go last, alphabetically
	var extra []string
	for c := range matrix {
		if !slices.Contains(cols, c) {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	cols = append(cols, extra...)

	head := []any{""}
	for _, c := range cols {
		head = append(head, c)
	}
	b.headerRow(SheetCorrelation, head...)
	for i, a := range cols {
		line := []any{a}
		for _, c := range cols {
			line = append(line, matrix[a][c])
		}
		b.row(SheetCorrelation, i+2, line...)
	}
}

func (b *builder) trends(t models.Trends) {
	b.headerRow(SheetTrends, "time", "count", "avg_score", "max_score")
	for i, c := range t.Counts {
		var avg, peak float64
		if i < len(t.AvgScores) {
			avg = t.AvgScores[i].Value
		}
		if i < len(t.MaxScores) {
			peak = t.MaxScores[i].Value
		}
		b.row(SheetTrends, i+2, c.Time, c.Value, avg, peak)
	}
}
