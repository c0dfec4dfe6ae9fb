package domain

import (
	"testing"
	"time"
)

func TestIsUTCHourInWindow_FullDay(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		if !IsUTCHourInWindow(hour, 7, 7) {
			t.Errorf("hour %d: want contained for full-day window", hour)
		}
	}
}

func TestIsUTCHourInWindow_SameDay(t *testing.T) {
	cases := []struct {
		hour int
		want bool
	}{
		{6, false},
		{7, true},
		{12, true},
		{14, true},
		{15, false},
		{23, false},
	}
	for _, c := range cases {
		if got := IsUTCHourInWindow(c.hour, 7, 15); got != c.want {
			t.Errorf("hour %d in [7,15): want %v, got %v", c.hour, c.want, got)
		}
	}
}

func TestIsUTCHourInWindow_WrapAround(t *testing.T) {
	if !IsUTCHourInWindow(23, 22, 6) {
		t.Error("want 23 inside [22,6)")
	}
	if !IsUTCHourInWindow(2, 22, 6) {
		t.Error("want 2 inside [22,6)")
	}
	if IsUTCHourInWindow(10, 22, 6) {
		t.Error("want 10 outside [22,6)")
	}
	if IsUTCHourInWindow(6, 22, 6) {
		t.Error("want end hour 6 excluded")
	}
}

func TestConvertWindow_Winter(t *testing.T) {
	// Wednesday 15 Jan 2025, Israel standard time (UTC+2)
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	uw, err := ConvertWindow(IsraelPolicy{}, TimeWindow{StartLocal: "09:00", EndLocal: "17:30"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if uw.FromUTC != 7 || uw.ToUTC != 15 {
		t.Errorf("want [7,15), got [%d,%d)", uw.FromUTC, uw.ToUTC)
	}
}

func TestConvertWindow_LocalMidnightWrapsInUTC(t *testing.T) {
	// Summer, UTC+3: local 00:00-08:00 becomes 21:00-05:00 UTC
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.UTC)
	uw, err := ConvertWindow(IsraelPolicy{}, TimeWindow{StartLocal: "00:00", EndLocal: "08:00"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if uw.FromUTC != 21 || uw.ToUTC != 5 {
		t.Fatalf("want [21,5), got [%d,%d)", uw.FromUTC, uw.ToUTC)
	}
	if !uw.Contains(23) || !uw.Contains(2) || uw.Contains(10) {
		t.Errorf("unexpected containment for wrapped window %+v", uw)
	}
}

func TestConvertWindow_InvalidFormat(t *testing.T) {
	_, err := ConvertWindow(IsraelPolicy{}, TimeWindow{StartLocal: "9am", EndLocal: "17:00"}, time.Now())
	if err == nil {
		t.Fatal("want error for malformed window")
	}
}

func TestDayWindows_MarksActive(t *testing.T) {
	// Monday 13 Jan 2025, 10:00 UTC = 12:00 local
	now := time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC)
	schedule := ScheduleConfig{
		Enabled: true,
		Days: []DaySchedule{
			{Day: 1, Windows: []TimeWindow{
				{StartLocal: "06:00", EndLocal: "08:00"},
				{StartLocal: "09:00", EndLocal: "17:00"},
			}},
		},
	}
	preview, err := DayWindows(schedule, IsraelPolicy{}, now)
	if err != nil {
		t.Fatal(err)
	}
	if preview.Weekday != 1 || preview.UTCHour != 10 || preview.OffsetHours != 2 {
		t.Errorf("unexpected header: %+v", preview)
	}
	if len(preview.Windows) != 2 {
		t.Fatalf("want 2 windows, got %d", len(preview.Windows))
	}
	if preview.Windows[0].Active {
		t.Error("first window should be inactive")
	}
	if !preview.Windows[1].Active {
		t.Error("second window should be active")
	}
}

func TestDayWindows_NoDay(t *testing.T) {
	now := time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)
	schedule := ScheduleConfig{Enabled: true, Days: []DaySchedule{{Day: 1}}}
	preview, err := DayWindows(schedule, IsraelPolicy{}, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(preview.Windows) != 0 {
		t.Errorf("want no windows on Tuesday, got %v", preview.Windows)
	}
}
