package core

import (
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the zone record timestamps are stored in
const DefaultTimezone = "Asia/Shanghai"

// fixedZones covers zones without DST so a missing tz database never changes results
var fixedZones = map[string]int{
	"Asia/Shanghai": 8 * 3600,
	"UTC":           0,
}

// LoadLocation resolves a zone name, falling back to a fixed offset for the
// known DST-free zones
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if offset, ok := fixedZones[name]; ok {
		return time.FixedZone(name, offset), nil
	}
	return nil, err
}

// Naive converts an instant to the wall clock of loc and drops the zone,
// returning the same wall clock carried in time.UTC
func Naive(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
}

// NaiveFromMillis converts epoch milliseconds to a naive wall-clock time in loc
func NaiveFromMillis(ms int64, loc *time.Location) time.Time {
	return Naive(time.UnixMilli(ms), loc)
}

// NaiveNow returns the current naive wall-clock time in loc
func NaiveNow(loc *time.Location) time.Time {
	return Naive(time.Now(), loc)
}

// TruncateToHour zeroes minutes, seconds and sub-second parts
func TruncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
