package models

import (
	"strings"
	"time"
)

// QualifiedScoreThreshold is the aggregate score above which a key counts as high-score
const QualifiedScoreThreshold = 400.0

// Score column names, in the order used by the correlation matrix
const (
	ColumnRepeatLetterScore     = "repeat_letter_score"
	ColumnIncreasingLetterScore = "increasing_letter_score"
	ColumnDecreasingLetterScore = "decreasing_letter_score"
	ColumnMagicLetterScore      = "magic_letter_score"
	ColumnScore                 = "score"
	ColumnUniqueLettersCount    = "unique_letters_count"
)

// SubScoreColumns are the four independent sub-score columns
var SubScoreColumns = []string{
	ColumnRepeatLetterScore,
	ColumnIncreasingLetterScore,
	ColumnDecreasingLetterScore,
	ColumnMagicLetterScore,
}

// NumericColumns are the columns fed into the correlation matrix
var NumericColumns = []string{
	ColumnRepeatLetterScore,
	ColumnIncreasingLetterScore,
	ColumnDecreasingLetterScore,
	ColumnMagicLetterScore,
	ColumnScore,
	ColumnUniqueLettersCount,
}

// KeyRecord is a stored key fingerprint with its scores. CreatedAt is a naive
// local wall-clock time carried in time.UTC. Nullable columns are pointers.
type KeyRecord struct {
	ID                    int64      `json:"id" db:"id"`
	CreatedAt             *time.Time `json:"created_at" db:"created_at"`
	Fingerprint           *string    `json:"fingerprint" db:"fingerprint"`
	RepeatLetterScore     *float64   `json:"repeat_letter_score" db:"repeat_letter_score"`
	IncreasingLetterScore *float64   `json:"increasing_letter_score" db:"increasing_letter_score"`
	DecreasingLetterScore *float64   `json:"decreasing_letter_score" db:"decreasing_letter_score"`
	MagicLetterScore      *float64   `json:"magic_letter_score" db:"magic_letter_score"`
	Score                 *float64   `json:"score" db:"score"`
	UniqueLettersCount    *int64     `json:"unique_letters_count" db:"unique_letters_count"`
}

// ScoreValue returns the aggregate score, 0 when missing
func (k KeyRecord) ScoreValue() float64 {
	return floatOrZero(k.Score)
}

// UniqueLetters returns the unique letter count, 0 when missing
func (k KeyRecord) UniqueLetters() int64 {
	if k.UniqueLettersCount == nil {
		return 0
	}
	return *k.UniqueLettersCount
}

// Qualified reports whether the record exceeds the high-score threshold
func (k KeyRecord) Qualified() bool {
	return k.ScoreValue() > QualifiedScoreThreshold
}

// Column returns a numeric column by name with missing values as 0
func (k KeyRecord) Column(name string) float64 {
	switch name {
	case ColumnRepeatLetterScore:
		return floatOrZero(k.RepeatLetterScore)
	case ColumnIncreasingLetterScore:
		return floatOrZero(k.IncreasingLetterScore)
	case ColumnDecreasingLetterScore:
		return floatOrZero(k.DecreasingLetterScore)
	case ColumnMagicLetterScore:
		return floatOrZero(k.MagicLetterScore)
	case ColumnScore:
		return floatOrZero(k.Score)
	case ColumnUniqueLettersCount:
		return float64(k.UniqueLetters())
	}
	return 0
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// RecordView is the display form of a KeyRecord returned by the key listings
type RecordView struct {
	CreatedAt          string  `json:"created_at"`
	Fingerprint        string  `json:"fingerprint"`
	Score              float64 `json:"score"`
	UniqueLettersCount int64   `json:"unique_letters_count"`
}

// DisplayTimeLayout is the minute-precision layout used for record and bucket times
const DisplayTimeLayout = "2006-01-02 15:04"

// NewRecordView formats a record for display. now supplies the timestamp used
// when the record has none.
func NewRecordView(k KeyRecord, now func() time.Time) RecordView {
	created := now()
	if k.CreatedAt != nil {
		created = *k.CreatedAt
	}
	return RecordView{
		CreatedAt:          created.Format(DisplayTimeLayout),
		Fingerprint:        ShortFingerprint(k.Fingerprint),
		Score:              k.ScoreValue(),
		UniqueLettersCount: k.UniqueLetters(),
	}
}

// ShortFingerprint upper-cases the fingerprint and keeps runes 24..40,
// or returns "N/A" when it is missing
func ShortFingerprint(fp *string) string {
	if fp == nil || *fp == "" {
		return "N/A"
	}
	upper := []rune(strings.ToUpper(*fp))
	start, end := 24, 40
	if start > len(upper) {
		return ""
	}
	if end > len(upper) {
		end = len(upper)
	}
	return string(upper[start:end])
}
