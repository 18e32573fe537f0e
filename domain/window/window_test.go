package window

import (
	"math"
	"testing"
	"time"

	"keystats/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver(nil)
	require.NoError(t, err)
	return r
}

func TestResolve_MissingBoundIsUnbounded(t *testing.T) {
	r := newResolver(t)

	cases := []struct {
		name       string
		start, end *int64
	}{
		{"both missing", nil, nil},
		{"start missing", nil, i64(1000)},
		{"end missing", i64(1000), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.start, tc.end)
			require.NoError(t, err)
			assert.True(t, got.IsUnbounded())
			s, e := got.KeyParts()
			assert.Equal(t, "None", s)
			assert.Equal(t, "None", e)
		})
	}
}

func TestResolve_EndBeforeStart(t *testing.T) {
	r := newResolver(t)
	_, err := r.Resolve(i64(2000), i64(1000))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func TestResolve_ConvertsToNaiveLocalTime(t *testing.T) {
	r := newResolver(t)

	// 2024-01-01T00:00:00Z .. 2024-01-01T06:00:00Z
	got, err := r.Resolve(i64(1704067200000), i64(1704088800000))
	require.NoError(t, err)

	assert.False(t, got.IsUnbounded())
	assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), got.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC), got.End)
	assert.Equal(t, 6*time.Hour, got.Duration())

	s, e := got.KeyParts()
	assert.Equal(t, "1704067200000", s)
	assert.Equal(t, "1704088800000", e)
}

func TestResolve_DurationMatchesInputSpan(t *testing.T) {
	r := newResolver(t)
	spans := []int64{0, 1, 999, 3_600_000, 8 * 24 * 3_600_000, 45 * 24 * 3_600_000, 1e13 / 4, MaxSpanMillis}
	base := int64(1_700_000_000_123)

	for _, span := range spans {
		got, err := r.Resolve(i64(base), i64(base+span))
		require.NoError(t, err)
		assert.Equal(t, time.Duration(span)*time.Millisecond, got.Duration())
		assert.Equal(t, got.Duration(), got.End.Sub(got.Start))

		prev := got.Previous()
		assert.Equal(t, got.Start, prev.End, "span %d", span)
		assert.Equal(t, got.Duration(), prev.Duration(), "span %d", span)
		assert.False(t, prev.Start.After(prev.End), "span %d", span)
	}
}

func TestResolve_RejectsUnrepresentableSpans(t *testing.T) {
	r := newResolver(t)

	cases := []struct {
		name       string
		start, end int64
	}{
		{"longer than a duration", 0, 1e13},
		{"one past the limit", 0, MaxSpanMillis + 1},
		{"difference overflows", math.MinInt64 / 2, math.MaxInt64 / 2},
		{"full int64 range", math.MinInt64, math.MaxInt64},
		{"comparison window underflows", math.MinInt64, math.MinInt64 + 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Resolve(i64(tc.start), i64(tc.end))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrRangeTooLong)
			assert.ErrorIs(t, err, core.ErrInvalidRange)
		})
	}
}

func TestPrevious_AdjacentAndSameDuration(t *testing.T) {
	r := newResolver(t)
	cur, err := r.Resolve(i64(1704067200000), i64(1704067200000+3*24*3_600_000))
	require.NoError(t, err)

	prev := cur.Previous()
	assert.Equal(t, cur.Duration(), prev.Duration())
	assert.Equal(t, cur.Start, prev.End)
	assert.Equal(t, cur.Start.Add(-cur.Duration()), prev.Start)

	ps, pe := prev.KeyParts()
	assert.Equal(t, "1703808000000", ps)
	assert.Equal(t, "1704067200000", pe)
}

func TestPrevious_UnboundedIsItself(t *testing.T) {
	u := Unbounded()
	assert.True(t, u.Previous().IsUnbounded())
	assert.Equal(t, time.Duration(0), u.Previous().Duration())
}

func TestContains_HalfOpen(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rng := New(start, start.Add(time.Hour))

	assert.True(t, rng.Contains(start))
	assert.True(t, rng.Contains(start.Add(59*time.Minute)))
	assert.False(t, rng.Contains(start.Add(time.Hour)))
	assert.False(t, rng.Contains(start.Add(-time.Nanosecond)))
	assert.True(t, Unbounded().Contains(start))
}

func TestNewResolver_CustomZone(t *testing.T) {
	r, err := NewResolver(time.UTC)
	require.NoError(t, err)
	got, err := r.Resolve(i64(1704067200000), i64(1704067200000))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got.Start)
	assert.Equal(t, time.Duration(0), got.Duration())
}
