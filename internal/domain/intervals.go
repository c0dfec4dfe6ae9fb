package domain

import (
	"time"
)

// UTCWindow is a TimeWindow translated to UTC hours for one particular instant.
// From == To means the whole day; From > To wraps past midnight UTC.
type UTCWindow struct {
	Window  TimeWindow `json:"window"`
	FromUTC int        `json:"from_utc_hour"`
	ToUTC   int        `json:"to_utc_hour"`
}

// Contains reports whether the UTC hour falls inside the window.
func (w UTCWindow) Contains(hour int) bool {
	return IsUTCHourInWindow(hour, w.FromUTC, w.ToUTC)
}

// IsUTCHourInWindow checks hour against [from, to), wrapping past midnight when from > to.
func IsUTCHourInWindow(hour, from, to int) bool {
	if from == to {
		return true
	}
	if from < to {
		return hour >= from && hour < to
	}
	return hour >= from || hour < to
}

// ConvertWindow translates both window boundaries to UTC hours using the offset in effect at t.
func ConvertWindow(policy TimezonePolicy, w TimeWindow, t time.Time) (UTCWindow, error) {
	startHour, endHour, err := w.Parse()
	if err != nil {
		return UTCWindow{}, err
	}
	return UTCWindow{
		Window:  w,
		FromUTC: ToUTCHour(policy, startHour, t),
		ToUTC:   ToUTCHour(policy, endHour, t),
	}, nil
}

// DayPreview describes how the schedule applies at a given instant.
type DayPreview struct {
	At          time.Time       `json:"at"`
	Weekday     int             `json:"weekday"`
	UTCHour     int             `json:"utc_hour"`
	OffsetHours int             `json:"offset_hours"`
	Windows     []PreviewWindow `json:"windows"`
}

// PreviewWindow is a converted window and whether it contains the current UTC hour.
type PreviewWindow struct {
	UTCWindow
	Active bool `json:"active"`
}

// DayWindows converts the windows of the UTC weekday of t. The day is not timezone adjusted,
// matching what the engine evaluates.
func DayWindows(schedule ScheduleConfig, policy TimezonePolicy, t time.Time) (DayPreview, error) {
	t = t.UTC()
	preview := DayPreview{
		At:          t,
		Weekday:     int(t.Weekday()),
		UTCHour:     t.Hour(),
		OffsetHours: policy.OffsetHours(t),
	}
	day := schedule.Day(preview.Weekday)
	if day == nil {
		return preview, nil
	}
	for _, w := range day.Windows {
		uw, err := ConvertWindow(policy, w, t)
		if err != nil {
			return DayPreview{}, err
		}
		preview.Windows = append(preview.Windows, PreviewWindow{UTCWindow: uw, Active: uw.Contains(preview.UTCHour)})
	}
	return preview, nil
}
