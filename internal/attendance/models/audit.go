package models

import (
	"encoding/json"
	"time"

	id "timeclock/pkg/domain"
)

// AuditAction labels the state transition or manual edit an audit row records.
type AuditAction string

const (
	ActionClockIn      AuditAction = "clock_in"
	ActionClockOut     AuditAction = "clock_out"
	ActionBreakStart   AuditAction = "break_start"
	ActionBreakEnd     AuditAction = "break_end"
	ActionEditClockIn  AuditAction = "edit_clock_in"
	ActionEditClockOut AuditAction = "edit_clock_out"
	ActionEditBreak    AuditAction = "edit_break"
	ActionDelete       AuditAction = "delete"
)

// AuditEntry is an immutable record of one transition or edit. Rows are
// append-only: never mutated, never deleted, and they intentionally outlive
// the time entry they describe.
type AuditEntry struct {
	ID               int64       `json:"-"`
	UUID             id.AuditID  `json:"id"`
	TimeEntryID      int64       `json:"-"`
	ModifiedByUserID id.UserID   `json:"modified_by_user_id"`
	Action           AuditAction `json:"action"`
	FieldName        *string     `json:"field_name,omitempty"`
	OldValue         *string     `json:"old_value,omitempty"`
	NewValue         *string     `json:"new_value,omitempty"`
	Reason           *string     `json:"reason,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// NewTransitionAudit records a plain state transition (clock in/out, break
// start/end) caused by the entry's owner.
func NewTransitionAudit(entry *TimeEntry, actor id.UserID, action AuditAction, now time.Time) *AuditEntry {
	return &AuditEntry{
		UUID:             id.NewAuditID(),
		TimeEntryID:      entry.ID,
		ModifiedByUserID: actor,
		Action:           action,
		CreatedAt:        now,
	}
}

// NewEditAudit records a manager edit of a single field, carrying the old and
// new values and the mandatory reason.
func NewEditAudit(entry *TimeEntry, actor id.UserID, action AuditAction, field string, oldValue, newValue *string, reason string, now time.Time) *AuditEntry {
	return &AuditEntry{
		UUID:             id.NewAuditID(),
		TimeEntryID:      entry.ID,
		ModifiedByUserID: actor,
		Action:           action,
		FieldName:        &field,
		OldValue:         oldValue,
		NewValue:         newValue,
		Reason:           &reason,
		CreatedAt:        now,
	}
}

// deletedSnapshot is the pre-deletion state captured in a delete audit row.
type deletedSnapshot struct {
	ClockInTime       time.Time  `json:"clock_in_time"`
	ClockOutTime      *time.Time `json:"clock_out_time"`
	TotalBreakMinutes int        `json:"total_break_minutes"`
}

// NewDeleteAudit records a manager deletion. OldValue holds a serialized
// snapshot of the entry so the trail retains what was removed.
func NewDeleteAudit(entry *TimeEntry, actor id.UserID, reason string, now time.Time) (*AuditEntry, error) {
	snapshot, err := json.Marshal(deletedSnapshot{
		ClockInTime:       entry.ClockInTime,
		ClockOutTime:      entry.ClockOutTime,
		TotalBreakMinutes: entry.TotalBreakMinutes,
	})
	if err != nil {
		return nil, err
	}
	old := string(snapshot)
	return &AuditEntry{
		UUID:             id.NewAuditID(),
		TimeEntryID:      entry.ID,
		ModifiedByUserID: actor,
		Action:           ActionDelete,
		OldValue:         &old,
		Reason:           &reason,
		CreatedAt:        now,
	}, nil
}
