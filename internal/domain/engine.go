package domain

import (
	"time"
)

// Engine decides whether an inbound call is forwarded. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	policy TimezonePolicy
}

// NewEngine returns an engine using policy for local-to-UTC conversion.
func NewEngine(policy TimezonePolicy) *Engine {
	return &Engine{policy: policy}
}

// Evaluate returns the verdict for caller at now. Checks run in strict order:
// caller present, whitelist, schedule enabled, today's windows, window scan.
// It never panics; any fault yields a deny with ReasonError.
func (e *Engine) Evaluate(cfg Config, caller string, now time.Time) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = deny(caller, ReasonError)
		}
	}()

	if caller == "" {
		return deny(caller, ReasonError)
	}
	if cfg.IsWhitelisted(caller) {
		return allow(caller, ReasonWhitelist)
	}
	if !cfg.Schedule.Enabled {
		return deny(caller, ReasonScheduleDisabled)
	}
	if e.policy == nil {
		return deny(caller, ReasonError)
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return deny(caller, ReasonError)
	}

	now = now.UTC()
	day := cfg.Schedule.Day(int(now.Weekday()))
	if day == nil || len(day.Windows) == 0 {
		return deny(caller, ReasonNoWindows)
	}

	hour := now.Hour()
	for _, w := range day.Windows {
		uw, err := ConvertWindow(e.policy, w, now)
		if err != nil {
			return deny(caller, ReasonError)
		}
		if uw.Contains(hour) {
			return allow(caller, ReasonInSchedule)
		}
	}
	return deny(caller, ReasonOutsideHours)
}
