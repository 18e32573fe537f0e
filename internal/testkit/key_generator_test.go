package testkit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyGenerator_Basic(t *testing.T) {
	config := DefaultKeyConfig()
	config.Count = 200

	records := NewKeyGenerator(config).Generate()
	require.Len(t, records, 200)

	for i, rec := range records {
		require.NotNil(t, rec.CreatedAt, "record %d", i)
		assert.False(t, rec.CreatedAt.Before(config.StartDate))
		assert.True(t, rec.CreatedAt.Before(config.EndDate))
		require.NotNil(t, rec.Fingerprint)
		assert.Len(t, *rec.Fingerprint, 40)
		require.NotNil(t, rec.Score)
		assert.GreaterOrEqual(t, *rec.Score, 0.0)
		assert.LessOrEqual(t, rec.UniqueLetters(), int64(16))
		if i > 0 {
			assert.False(t, rec.CreatedAt.Before(*records[i-1].CreatedAt), "records are oldest first")
		}
	}
}

func TestKeyGenerator_Deterministic(t *testing.T) {
	config := DefaultKeyConfig()
	config.Count = 20

	a := NewKeyGenerator(config).Generate()
	b := NewKeyGenerator(config).Generate()
	assert.Equal(t, a, b)

	config.Seed = 7
	c := NewKeyGenerator(config).Generate()
	assert.NotEqual(t, *a[0].Fingerprint, *c[0].Fingerprint)
}

func TestKeyGenerator_HighScores(t *testing.T) {
	config := KeyGeneratorConfig{
		Count:         100,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		HighScoreRate: 1,
		Seed:          1,
	}
	qualified := 0
	for _, rec := range NewKeyGenerator(config).Generate() {
		if rec.Qualified() {
			qualified++
		}
	}
	assert.Greater(t, qualified, 50)
}

func TestKeyGenerator_Empty(t *testing.T) {
	config := DefaultKeyConfig()
	config.Count = 0
	assert.Empty(t, NewKeyGenerator(config).Generate())
}
