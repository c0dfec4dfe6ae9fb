package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeWindow represents an allowed local time of day (e.g. 09:00-17:00).
// Equal start and end means the whole day.
type TimeWindow struct {
	StartLocal string `json:"start" yaml:"start"` // "09:00" HH:MM
	EndLocal   string `json:"end" yaml:"end"`     // "17:00" HH:MM
}

// DaySchedule holds the windows for one weekday (0 = Sunday).
type DaySchedule struct {
	Day     int          `json:"day" yaml:"day"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Windows []TimeWindow `json:"windows" yaml:"windows"`
}

// ScheduleConfig is the weekly schedule of an account.
type ScheduleConfig struct {
	Enabled  bool          `json:"enabled" yaml:"enabled"`
	Timezone string        `json:"timezone,omitempty" yaml:"timezone,omitempty"`
	Days     []DaySchedule `json:"days" yaml:"days"`
}

// ParseTime parses "HH:MM" or "H:MM" format
func ParseTime(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	hour, err = parseComponent(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	minute, err = parseComponent(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrInvalidFormat, s)
	}
	return hour, minute, nil
}

// parseComponent accepts one or two ASCII digits only, so "+9" and " 9" are rejected.
func parseComponent(s string) (int, error) {
	if len(s) == 0 || len(s) > 2 {
		return 0, strconv.ErrSyntax
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}

// Parse returns the start and end hours of the window. Minutes are validated but dropped.
func (w TimeWindow) Parse() (startHour, endHour int, err error) {
	startHour, _, err = ParseTime(w.StartLocal)
	if err != nil {
		return 0, 0, fmt.Errorf("window start: %w", err)
	}
	endHour, _, err = ParseTime(w.EndLocal)
	if err != nil {
		return 0, 0, fmt.Errorf("window end: %w", err)
	}
	return startHour, endHour, nil
}

// Day returns the schedule for the given weekday, nil if absent.
func (s ScheduleConfig) Day(day int) *DaySchedule {
	for i := range s.Days {
		if s.Days[i].Day == day {
			return &s.Days[i]
		}
	}
	return nil
}

// Validate checks day numbers, duplicate days and every window.
func (s ScheduleConfig) Validate() error {
	seen := make(map[int]bool, len(s.Days))
	for _, d := range s.Days {
		if d.Day < 0 || d.Day > 6 {
			return fmt.Errorf("%w: day %d out of range 0..6", ErrMalformedConfig, d.Day)
		}
		if seen[d.Day] {
			return fmt.Errorf("%w: day %d listed twice", ErrMalformedConfig, d.Day)
		}
		seen[d.Day] = true
		for i, w := range d.Windows {
			if _, _, err := w.Parse(); err != nil {
				return fmt.Errorf("day %d window %d: %w", d.Day, i, err)
			}
		}
	}
	return nil
}
