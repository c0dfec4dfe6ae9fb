package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned when a time-of-day string is not a valid "HH:MM".
	ErrInvalidFormat = errors.New("invalid time format")
	// ErrMalformedConfig is returned for structurally invalid configuration.
	ErrMalformedConfig = errors.New("malformed config")
	// ErrUnknownTimezone is returned when a timezone name cannot be resolved to a policy.
	ErrUnknownTimezone = errors.New("unknown timezone")
)

// WhitelistEntry is a caller that is always forwarded.
type WhitelistEntry struct {
	Number string `json:"number" yaml:"number"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Config is the full call filter configuration of one account.
type Config struct {
	Whitelist []WhitelistEntry `json:"whitelist" yaml:"whitelist"`
	Schedule  ScheduleConfig   `json:"schedule" yaml:"schedule"`
}

// IsWhitelisted reports whether caller matches a whitelist number exactly.
// No normalization is applied; "+972..." and "0..." are different callers.
func (c Config) IsWhitelisted(caller string) bool {
	for _, w := range c.Whitelist {
		if w.Number == caller {
			return true
		}
	}
	return false
}

// Validate checks the whole config, including the schedule when it is disabled,
// so that a later enable cannot activate broken windows.
func (c Config) Validate() error {
	for i, w := range c.Whitelist {
		if w.Number == "" {
			return fmt.Errorf("%w: whitelist entry %d has empty number", ErrMalformedConfig, i)
		}
	}
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	if _, err := PolicyFor(c.Schedule.Timezone); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	out := c
	out.Whitelist = append([]WhitelistEntry(nil), c.Whitelist...)
	if c.Schedule.Days == nil {
		return out
	}
	out.Schedule.Days = make([]DaySchedule, len(c.Schedule.Days))
	for i, d := range c.Schedule.Days {
		d.Windows = append([]TimeWindow(nil), d.Windows...)
		out.Schedule.Days[i] = d
	}
	return out
}
