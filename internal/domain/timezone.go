package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimezonePolicy resolves the UTC offset, in whole hours, in effect at a UTC instant.
type TimezonePolicy interface {
	OffsetHours(t time.Time) int
}

// IsraelPolicy is the Israel Standard/Daylight Time rule set: UTC+2 in winter, UTC+3 in summer.
// DST starts at 00:00 UTC on the Friday before the last Sunday of March and ends at 23:00 UTC
// on the day before the last Sunday of October. No time zone database is consulted.
type IsraelPolicy struct{}

const (
	israelStandardOffset = 2
	israelDaylightOffset = 3
)

func (IsraelPolicy) OffsetHours(t time.Time) int {
	if IsraelDST(t) {
		return israelDaylightOffset
	}
	return israelStandardOffset
}

// IsraelDST reports whether t falls in [start, end) of the year's daylight period.
func IsraelDST(t time.Time) bool {
	start, end := IsraelDSTBoundaries(t.UTC().Year())
	t = t.UTC()
	return !t.Before(start) && t.Before(end)
}

// IsraelDSTBoundaries returns the UTC instants at which daylight time starts and ends in year.
func IsraelDSTBoundaries(year int) (start, end time.Time) {
	march := LastSunday(year, time.March)
	start = time.Date(year, time.March, march-2, 0, 0, 0, 0, time.UTC)
	october := LastSunday(year, time.October)
	end = time.Date(year, time.October, october, 23, 0, 0, 0, time.UTC).Add(-24 * time.Hour)
	return start, end
}

// LastSunday returns the day of month of the last Sunday of month in year.
func LastSunday(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	last := time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC)
	return last.Day() - int(last.Weekday())
}

// FixedOffsetPolicy always returns the same offset.
type FixedOffsetPolicy int

func (p FixedOffsetPolicy) OffsetHours(time.Time) int { return int(p) }

// LocationPolicy uses the Go time zone database. Sub-hour offsets are truncated toward zero.
type LocationPolicy struct {
	Location *time.Location
}

func (p LocationPolicy) OffsetHours(t time.Time) int {
	_, secs := t.In(p.Location).Zone()
	return secs / 3600
}

// PolicyFor resolves a configured timezone name. Empty and "israel" select the built-in Israel
// rules, "UTC" and "UTC+3"/"UTC-5" a fixed offset, anything else an IANA location.
func PolicyFor(name string) (TimezonePolicy, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "", "israel":
		return IsraelPolicy{}, nil
	case "utc", "z":
		return FixedOffsetPolicy(0), nil
	}
	if rest, ok := strings.CutPrefix(strings.ToUpper(name), "UTC"); ok {
		h, err := strconv.Atoi(rest)
		if err != nil || h < -12 || h > 14 || (rest[0] != '+' && rest[0] != '-') {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
		}
		return FixedOffsetPolicy(h), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, name)
	}
	return LocationPolicy{Location: loc}, nil
}

// ToUTCHour converts a local hour of day to the UTC hour of day in effect at t.
func ToUTCHour(policy TimezonePolicy, localHour int, t time.Time) int {
	h := (localHour - policy.OffsetHours(t)) % 24
	if h < 0 {
		h += 24
	}
	return h
}
