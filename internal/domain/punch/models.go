package punch

import (
	"time"

	"timeclock/internal/domain/geofence"
)

// Kind is a requested punch state transition.
type Kind string

const (
	KindPunchIn    Kind = "punch_in"
	KindPunchOut   Kind = "punch_out"
	KindBreakStart Kind = "break_start"
	KindBreakEnd   Kind = "break_end"
)

func ParseKind(raw string) (Kind, bool) {
	switch Kind(raw) {
	case KindPunchIn, KindPunchOut, KindBreakStart, KindBreakEnd:
		return Kind(raw), true
	}
	return "", false
}

// State is derived from the open session's fields each time it is needed.
// There is no persisted status column to fall out of sync with the data.
type State string

const (
	StateClockedOut State = "clocked_out"
	StateClockedIn  State = "clocked_in"
	StateOnBreak    State = "on_break"
)

// Session is one continuous attendance record from punch-in to punch-out,
// possibly containing one break interval. A nil PunchOutAt means the session
// is open; once set, the session is closed and no further transitions touch it.
type Session struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	PunchInAt     time.Time  `json:"punchInAt"`
	PunchInLat    float64    `json:"punchInLat"`
	PunchInLon    float64    `json:"punchInLon"`
	PunchInValid  bool       `json:"punchInValid"`
	PunchOutAt    *time.Time `json:"punchOutAt,omitempty"`
	PunchOutLat   *float64   `json:"punchOutLat,omitempty"`
	PunchOutLon   *float64   `json:"punchOutLon,omitempty"`
	PunchOutValid *bool      `json:"punchOutValid,omitempty"`
	BreakStartAt  *time.Time `json:"breakStartAt,omitempty"`
	BreakEndAt    *time.Time `json:"breakEndAt,omitempty"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// DeriveState maps the latest open session (or nil) to the employee's punch
// state. No open session means clocked out; an open session with a started and
// unfinished break means on break; anything else open means clocked in.
func DeriveState(open *Session) State {
	if open == nil {
		return StateClockedOut
	}
	if open.BreakStartAt != nil && open.BreakEndAt == nil {
		return StateOnBreak
	}
	return StateClockedIn
}

// WorkedHours returns fractional hours worked: punch-in to punch-out (or now,
// for an open session) minus the completed break interval. No rounding here;
// presentation rounds to two decimals.
func (s *Session) WorkedHours(now time.Time) float64 {
	end := now
	if s.PunchOutAt != nil {
		end = *s.PunchOutAt
	}
	worked := end.Sub(s.PunchInAt)
	if s.BreakStartAt != nil && s.BreakEndAt != nil {
		worked -= s.BreakEndAt.Sub(*s.BreakStartAt)
	}
	return worked.Hours()
}

// TransitionResult is returned for every accepted transition: the persisted
// session plus the advisory location verdict computed for the request.
type TransitionResult struct {
	Session    *Session            `json:"session"`
	Validation geofence.Validation `json:"validation"`
}

// Status describes the employee's live punch state for status displays.
type Status struct {
	State       State    `json:"state"`
	Session     *Session `json:"session,omitempty"`
	WorkedHours float64  `json:"workedHours"`
}
