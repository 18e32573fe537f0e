package testkit

import (
	"math"
	"math/rand"
	"time"

	"keystats/models"
)

// KeyGeneratorConfig configures the synthetic key record generator
type KeyGeneratorConfig struct {
	Count     int       `json:"count"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	// HighScoreRate is the share of records pushed above the qualified threshold
	HighScoreRate float64 `json:"high_score_rate"`
	// MissingRate is the share of sub-score values left NULL
	MissingRate float64 `json:"missing_rate"`
	Seed        int64   `json:"seed"`
}

// DefaultKeyConfig returns sensible defaults for key record generation
func DefaultKeyConfig() KeyGeneratorConfig {
	return KeyGeneratorConfig{
		Count:         500,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		HighScoreRate: 0.05,
		MissingRate:   0.01,
		Seed:          42,
	}
}

// KeyGenerator produces plausible key fingerprints with scores
type KeyGenerator struct {
	config KeyGeneratorConfig
	rng    *rand.Rand
}

// NewKeyGenerator creates a new key record generator
func NewKeyGenerator(config KeyGeneratorConfig) *KeyGenerator {
	return &KeyGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

const hexDigits = "0123456789ABCDEF"

// Generate returns Count records spread evenly over [StartDate, EndDate),
// oldest first. Creation times are naive wall-clock values.
func (g *KeyGenerator) Generate() []models.KeyRecord {
	n := g.config.Count
	if n <= 0 {
		return []models.KeyRecord{}
	}
	span := g.config.EndDate.Sub(g.config.StartDate)
	step := span / time.Duration(n)

	records := make([]models.KeyRecord, 0, n)
	for i := 0; i < n; i++ {
		createdAt := g.config.StartDate.Add(time.Duration(i) * step)
		records = append(records, g.record(createdAt))
	}
	return records
}

func (g *KeyGenerator) record(createdAt time.Time) models.KeyRecord {
	fp := g.fingerprint()

	repeat := g.subScore(60, 25)
	increasing := g.subScore(50, 20)
	decreasing := g.subScore(50, 20)
	magic := g.subScore(40, 30)
	if g.rng.Float64() < g.config.HighScoreRate {
		magic = g.subScore(300, 40)
	}

	total := 0.0
	for _, v := range []*float64{repeat, increasing, decreasing, magic} {
		if v != nil {
			total += *v
		}
	}
	total = math.Round(total*100) / 100
	unique := uniqueLetters(fp)

	return models.KeyRecord{
		CreatedAt:             &createdAt,
		Fingerprint:           &fp,
		RepeatLetterScore:     repeat,
		IncreasingLetterScore: increasing,
		DecreasingLetterScore: decreasing,
		MagicLetterScore:      magic,
		Score:                 &total,
		UniqueLettersCount:    &unique,
	}
}

func (g *KeyGenerator) fingerprint() string {
	b := make([]byte, 40)
	for i := range b {
		b[i] = hexDigits[g.rng.Intn(len(hexDigits))]
	}
	return string(b)
}

// subScore draws a non-negative normal value, or nil at MissingRate
func (g *KeyGenerator) subScore(mean, sd float64) *float64 {
	if g.rng.Float64() < g.config.MissingRate {
		return nil
	}
	v := math.Max(0, mean+g.rng.NormFloat64()*sd)
	v = math.Round(v*100) / 100
	return &v
}

func uniqueLetters(s string) int64 {
	seen := make(map[rune]struct{}, 16)
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return int64(len(seen))
}
