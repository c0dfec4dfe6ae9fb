package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestLastSunday(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.March, 31},
		{2024, time.October, 27},
		{2025, time.March, 30},
		{2025, time.October, 26},
		{2026, time.March, 29},
		{2026, time.October, 25},
		{2025, time.February, 23},
	}
	for _, tt := range tests {
		got := LastSunday(tt.year, tt.month)
		assert.Equal(t, tt.want, got, "%d-%s", tt.year, tt.month)
		assert.Equal(t, time.Sunday, time.Date(tt.year, tt.month, got, 12, 0, 0, 0, time.UTC).Weekday())
	}
}

func TestIsraelDSTBoundaries(t *testing.T) {
	start, end := IsraelDSTBoundaries(2025)
	assert.Equal(t, utc(2025, time.March, 28, 0, 0), start)
	assert.Equal(t, time.Friday, start.Weekday())
	assert.Equal(t, utc(2025, time.October, 25, 23, 0), end)
}

func TestIsraelPolicy_Seasons(t *testing.T) {
	p := IsraelPolicy{}
	assert.Equal(t, 2, p.OffsetHours(utc(2025, time.January, 15, 12, 0)))
	assert.Equal(t, 3, p.OffsetHours(utc(2025, time.July, 15, 12, 0)))
	assert.Equal(t, 2, p.OffsetHours(utc(2025, time.December, 31, 23, 59)))
}

func TestIsraelPolicy_TransitionBoundaries(t *testing.T) {
	p := IsraelPolicy{}

	assert.Equal(t, 2, p.OffsetHours(time.Date(2025, time.March, 27, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, 3, p.OffsetHours(utc(2025, time.March, 28, 0, 0)))

	assert.Equal(t, 3, p.OffsetHours(time.Date(2025, time.October, 25, 22, 59, 59, 0, time.UTC)))
	assert.Equal(t, 2, p.OffsetHours(utc(2025, time.October, 25, 23, 0)))
}

func TestIsraelPolicy_StableWithinDay(t *testing.T) {
	p := IsraelPolicy{}
	days := []time.Time{
		utc(2025, time.January, 15, 0, 0),
		utc(2025, time.March, 28, 0, 0), // day DST starts, at midnight
		utc(2025, time.July, 15, 0, 0),
		utc(2025, time.October, 24, 0, 0),
	}
	for _, day := range days {
		want := p.OffsetHours(day)
		for m := 0; m < 24*60; m += 15 {
			at := day.Add(time.Duration(m) * time.Minute)
			require.Equal(t, want, p.OffsetHours(at), "at %s", at)
		}
	}
}

func TestIsraelPolicy_NonUTCInput(t *testing.T) {
	loc := time.FixedZone("X", 5*3600)
	at := time.Date(2025, time.March, 28, 4, 30, 0, 0, loc) // 2025-03-27 23:30 UTC
	assert.Equal(t, 2, IsraelPolicy{}.OffsetHours(at))
}

func TestToUTCHour(t *testing.T) {
	winter := utc(2025, time.January, 15, 12, 0)
	assert.Equal(t, 7, ToUTCHour(IsraelPolicy{}, 9, winter))
	assert.Equal(t, 22, ToUTCHour(IsraelPolicy{}, 0, winter))
	assert.Equal(t, 23, ToUTCHour(IsraelPolicy{}, 1, winter))
	assert.Equal(t, 4, ToUTCHour(FixedOffsetPolicy(-5), 23, winter))
}

func TestPolicyFor(t *testing.T) {
	p, err := PolicyFor("")
	require.NoError(t, err)
	assert.Equal(t, IsraelPolicy{}, p)

	p, err = PolicyFor("Israel")
	require.NoError(t, err)
	assert.Equal(t, IsraelPolicy{}, p)

	p, err = PolicyFor("UTC")
	require.NoError(t, err)
	assert.Equal(t, FixedOffsetPolicy(0), p)

	p, err = PolicyFor("UTC+3")
	require.NoError(t, err)
	assert.Equal(t, 3, p.OffsetHours(time.Now()))

	p, err = PolicyFor("utc-5")
	require.NoError(t, err)
	assert.Equal(t, -5, p.OffsetHours(time.Now()))

	for _, bad := range []string{"UTC+99", "UTC3", "Not/AZone"} {
		_, err = PolicyFor(bad)
		assert.True(t, errors.Is(err, ErrUnknownTimezone), bad)
	}
}

func TestLocationPolicy(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	p := LocationPolicy{Location: loc}
	assert.Equal(t, -5, p.OffsetHours(utc(2025, time.January, 15, 12, 0)))
	assert.Equal(t, -4, p.OffsetHours(utc(2025, time.July, 15, 12, 0)))
}
