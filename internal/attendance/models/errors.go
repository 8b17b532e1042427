package models

import (
	dErrors "timeclock/pkg/domain-errors"
)

// Business-state errors for attendance transitions. These are expected
// conflicts, not failures: no retry makes sense, the caller's view of the
// state machine is simply stale.
var (
	ErrAlreadyClockedIn    = dErrors.New(dErrors.CodeConflict, "user is already clocked in")
	ErrNotClockedIn        = dErrors.New(dErrors.CodeConflict, "user is not clocked in")
	ErrClockOutDuringBreak = dErrors.New(dErrors.CodeConflict, "cannot clock out while a break is active")
	ErrAlreadyOnBreak      = dErrors.New(dErrors.CodeConflict, "user is already on break")
	ErrNotOnBreak          = dErrors.New(dErrors.CodeConflict, "user is not on break")
	ErrEntryNotFound       = dErrors.New(dErrors.CodeNotFound, "time entry not found")
)
