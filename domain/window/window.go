// Package window resolves caller supplied millisecond bounds into the naive
// local-time windows records are selected over.
package window

import (
	"math"
	"strconv"
	"time"

	"keystats/domain/core"
)

// UnboundedToken is the cache-key token used for a missing bound
const UnboundedToken = "None"

// MaxSpanMillis is the longest window, in milliseconds, whose duration fits
// a time.Duration (about 292 years)
const MaxSpanMillis = math.MaxInt64 / int64(time.Millisecond)

// Range is a half-open [Start, End) window of naive local times, or the
// unbounded range meaning "every record".
type Range struct {
	Start     time.Time
	End       time.Time
	bounded   bool
	startMs   int64
	endMs     int64
	durationD time.Duration
}

// Unbounded returns the range that selects every record
func Unbounded() Range {
	return Range{}
}

// New builds a bounded range from naive times. Millisecond keys are derived
// from the naive values, so ranges built this way are only for internal use
// (comparison windows and tests).
func New(start, end time.Time) Range {
	return Range{
		Start:     start,
		End:       end,
		bounded:   true,
		startMs:   start.UnixMilli(),
		endMs:     end.UnixMilli(),
		durationD: end.Sub(start),
	}
}

// IsUnbounded reports whether the range has no time filter
func (r Range) IsUnbounded() bool {
	return !r.bounded
}

// Duration is End-Start, zero for the unbounded range
func (r Range) Duration() time.Duration {
	return r.durationD
}

// Contains reports whether t falls inside [Start, End)
func (r Range) Contains(t time.Time) bool {
	if !r.bounded {
		return true
	}
	return !t.Before(r.Start) && t.Before(r.End)
}

// Previous returns the comparison window: same duration, ending at Start.
// The unbounded range is its own comparison window.
func (r Range) Previous() Range {
	if !r.bounded {
		return r
	}
	prev := New(r.Start.Add(-r.durationD), r.Start)
	prev.startMs = r.startMs - r.durationD.Milliseconds()
	prev.endMs = r.startMs
	return prev
}

// StartMillis returns the epoch milliseconds the range was resolved from
func (r Range) StartMillis() (int64, bool) {
	return r.startMs, r.bounded
}

// EndMillis returns the epoch milliseconds the range was resolved from
func (r Range) EndMillis() (int64, bool) {
	return r.endMs, r.bounded
}

// KeyParts renders the bounds for cache keys, "None" for unbounded
func (r Range) KeyParts() (string, string) {
	if !r.bounded {
		return UnboundedToken, UnboundedToken
	}
	return strconv.FormatInt(r.startMs, 10), strconv.FormatInt(r.endMs, 10)
}

// String renders the range for logs
func (r Range) String() string {
	if !r.bounded {
		return "[unbounded]"
	}
	return "[" + r.Start.Format(time.DateTime) + ", " + r.End.Format(time.DateTime) + ")"
}

// Resolver turns optional epoch-millisecond bounds into Ranges in a fixed zone
type Resolver struct {
	location *time.Location
}

// NewResolver creates a resolver for the given zone; nil means the default zone
func NewResolver(loc *time.Location) (*Resolver, error) {
	if loc == nil {
		var err error
		loc, err = core.LoadLocation(core.DefaultTimezone)
		if err != nil {
			return nil, err
		}
	}
	return &Resolver{location: loc}, nil
}

// Location returns the zone the resolver converts into
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Resolve converts the bounds. Either bound missing yields the unbounded range;
// end before start is rejected with core.ErrInvalidRange. Spans longer than
// MaxSpanMillis, or whose comparison window would start before the smallest
// int64 millisecond, are rejected with core.ErrRangeTooLong.
func (r *Resolver) Resolve(startMs, endMs *int64) (Range, error) {
	if startMs == nil || endMs == nil {
		return Unbounded(), nil
	}
	if *endMs < *startMs {
		return Range{}, core.NewRangeError(*startMs, *endMs)
	}
	// end >= start, so a negative difference means int64 overflow
	span := *endMs - *startMs
	if span < 0 || span > MaxSpanMillis || *startMs < math.MinInt64+span {
		return Range{}, core.NewSpanError(*startMs, *endMs)
	}

	start := core.NaiveFromMillis(*startMs, r.location)
	end := core.NaiveFromMillis(*endMs, r.location)
	return Range{
		Start:     start,
		End:       end,
		bounded:   true,
		startMs:   *startMs,
		endMs:     *endMs,
		durationD: time.Duration(span) * time.Millisecond,
	}, nil
}
