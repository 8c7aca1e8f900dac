package punch

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConflictingState is the errors.Is target for every rejected
	// transition whose precondition does not hold. No mutation happens.
	ErrConflictingState = errors.New("conflicting punch state")

	// ErrUnknownEmployee means the employee id resolved to nothing. Checked
	// defensively even though callers are trusted to authenticate first.
	ErrUnknownEmployee = errors.New("unknown employee")
)

// Store-level sentinels for failed conditional writes.
var (
	ErrOpenSessionExists = errors.New("an open session already exists")
	ErrNoOpenSession     = errors.New("no open session")
	ErrBreakAlreadyTaken = errors.New("break already taken for this session")
	ErrBreakNotOpen      = errors.New("no break in progress")
)

// ConflictError reports a rejected transition together with the employee's
// actual current state, so callers can say "already punched in since 09:02"
// instead of a generic rejection.
type ConflictError struct {
	Attempted Kind
	Current   State
	OpenedAt  *time.Time
}

func (e *ConflictError) Error() string {
	if e.OpenedAt != nil {
		return fmt.Sprintf("cannot %s: currently %s (session open since %s)",
			e.Attempted, e.Current, e.OpenedAt.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("cannot %s: currently %s", e.Attempted, e.Current)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictingState
}
