package domain

// Reason is the machine readable cause of a Decision.
type Reason string

const (
	ReasonWhitelist        Reason = "whitelist"
	ReasonInSchedule       Reason = "in_schedule"
	ReasonOutsideHours     Reason = "outside_hours"
	ReasonNoWindows        Reason = "no_windows"
	ReasonScheduleDisabled Reason = "schedule_disabled"
	ReasonError            Reason = "error"
)

// Reasons lists every reason in a stable order.
var Reasons = []Reason{
	ReasonWhitelist,
	ReasonInSchedule,
	ReasonOutsideHours,
	ReasonNoWindows,
	ReasonScheduleDisabled,
	ReasonError,
}

// Allows reports whether decisions with this reason forward the call.
func (r Reason) Allows() bool {
	return r == ReasonWhitelist || r == ReasonInSchedule
}

// Decision is the verdict for one inbound call.
type Decision struct {
	Allow  bool   `json:"allow"`
	Reason Reason `json:"reason"`
	Caller string `json:"caller"`
}

func allow(caller string, reason Reason) Decision {
	return Decision{Allow: true, Reason: reason, Caller: caller}
}

func deny(caller string, reason Reason) Decision {
	return Decision{Allow: false, Reason: reason, Caller: caller}
}
