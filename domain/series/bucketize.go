// Package series turns the records of a window into fixed-width time buckets
// for the trend charts.
package series

import (
	"time"

	"keystats/domain/core"
	"keystats/domain/stats"
	"keystats/domain/window"
	"keystats/models"
)

// MaxBuckets caps the length of every emitted series
const MaxBuckets = 10000

const day = 24 * time.Hour

// Output layouts matching models.TimeFormatHour and models.TimeFormatDay
const (
	HourLayout = "2006-01-02 15:04"
	DayLayout  = "2006-01-02"
)

// Width picks the bucket width for a window of duration d
func Width(d time.Duration) time.Duration {
	switch {
	case d > 30*day:
		return day
	case d > 7*day:
		return 6 * time.Hour
	default:
		return time.Hour
	}
}

// widen returns the next coarser width once the series would exceed MaxBuckets
func widen(w time.Duration) time.Duration {
	switch {
	case w < 6*time.Hour:
		return 6 * time.Hour
	case w < day:
		return day
	default:
		return 2 * w
	}
}

type bucket struct {
	sum   float64
	max   float64
	count int
}

// Bucketize groups the timestamped rows of r into buckets starting at the
// hour of the window start (or the earliest record when r is unbounded).
// Every bucket between the origin and the end of the window is emitted;
// empty ones report zeros.
func Bucketize(rows []models.KeyRecord, r window.Range) models.Trends {
	var from, to time.Time
	var span time.Duration
	var found bool

	if r.IsUnbounded() {
		for _, row := range rows {
			if row.CreatedAt == nil {
				continue
			}
			t := *row.CreatedAt
			if !found || t.Before(from) {
				from = t
			}
			if !found || t.After(to) {
				to = t
			}
			found = true
		}
		span = to.Sub(from)
		// include the latest record itself
		to = to.Add(time.Nanosecond)
	} else {
		from, to, span = r.Start, r.End, r.Duration()
		found = true
	}

	width := Width(span)
	origin := core.TruncateToHour(from)
	n := 0
	if found && to.After(origin) {
		for {
			n = int((to.Sub(origin) + width - 1) / width)
			if n <= MaxBuckets {
				break
			}
			width = widen(width)
		}
	}

	buckets := make([]bucket, n)
	for _, row := range rows {
		if row.CreatedAt == nil {
			continue
		}
		t := *row.CreatedAt
		if !r.Contains(t) || t.Before(origin) {
			continue
		}
		i := int(t.Sub(origin) / width)
		if i >= n {
			continue
		}
		s := row.ScoreValue()
		b := &buckets[i]
		if b.count == 0 || s > b.max {
			b.max = s
		}
		b.sum += s
		b.count++
	}

	format, layout := models.TimeFormatHour, HourLayout
	if width >= day {
		format, layout = models.TimeFormatDay, DayLayout
	}

	out := models.Trends{
		TimeFormat: format,
		AvgScores:  make([]models.Point, n),
		MaxScores:  make([]models.Point, n),
		Counts:     make([]models.CountPoint, n),
	}
	for i, b := range buckets {
		label := origin.Add(time.Duration(i) * width).Format(layout)
		var avg float64
		if b.count > 0 {
			avg = b.sum / float64(b.count)
		}
		out.AvgScores[i] = models.Point{Time: label, Value: stats.Round(avg, 2)}
		out.MaxScores[i] = models.Point{Time: label, Value: stats.Round(b.max, 2)}
		out.Counts[i] = models.CountPoint{Time: label, Value: b.count}
	}
	return out
}
