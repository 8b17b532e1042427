package models

import (
	"math"
	"time"

	id "timeclock/pkg/domain"
)

// EntryStatus is the lifecycle state of a time entry. Active means the user
// is currently clocked in (clock_out_time is null); Completed is terminal and
// only mutable through an audited manager edit.
type EntryStatus string

const (
	EntryStatusActive    EntryStatus = "active"
	EntryStatusCompleted EntryStatus = "completed"
)

// BreakStatus mirrors EntryStatus for break periods.
type BreakStatus string

const (
	BreakStatusActive    BreakStatus = "active"
	BreakStatusCompleted BreakStatus = "completed"
)

// TimeEntry is the aggregate root for one clock-in/clock-out work period.
//
// Invariants:
//   - At most one entry with Status=Active exists per user at any time
//     (enforced by a partial unique index, double-checked here).
//   - At most one break with Status=Active exists per entry.
//   - A break may only start while the entry is Active; the entry may not
//     clock out while a break is Active.
//   - TotalBreakMinutes is recomputed from completed breaks at clock-out,
//     never at break end. Live reads must derive in-progress break time
//     themselves.
type TimeEntry struct {
	ID                int64          `json:"-"`
	UUID              id.EntryID     `json:"id"`
	UserID            id.UserID      `json:"user_id"`
	ClockInTime       time.Time      `json:"clock_in_time"`
	ClockOutTime      *time.Time     `json:"clock_out_time,omitempty"`
	Status            EntryStatus    `json:"status"`
	TotalBreakMinutes int            `json:"total_break_minutes"`
	Notes             string         `json:"notes,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Breaks            []*BreakPeriod `json:"breaks,omitempty"`
}

// BreakPeriod is a pause nested inside exactly one time entry. It is owned by
// the entry and deleted with it.
type BreakPeriod struct {
	ID          int64       `json:"-"`
	UUID        id.BreakID  `json:"id"`
	TimeEntryID int64       `json:"-"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     *time.Time  `json:"end_time,omitempty"`
	Status      BreakStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewTimeEntry starts a fresh active entry for userID.
func NewTimeEntry(entryID id.EntryID, userID id.UserID, now time.Time) *TimeEntry {
	return &TimeEntry{
		UUID:        entryID,
		UserID:      userID,
		ClockInTime: now,
		Status:      EntryStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (e *TimeEntry) IsActive() bool {
	return e.Status == EntryStatusActive
}

// ActiveBreak returns the entry's active break, or nil.
func (e *TimeEntry) ActiveBreak() *BreakPeriod {
	for _, b := range e.Breaks {
		if b.IsActive() {
			return b
		}
	}
	return nil
}

// CanClockOut checks the clock-out preconditions.
func (e *TimeEntry) CanClockOut() error {
	if !e.IsActive() {
		return ErrNotClockedIn
	}
	if e.ActiveBreak() != nil {
		return ErrClockOutDuringBreak
	}
	return nil
}

// ApplyClockOut completes the entry and rolls up completed break time.
// Call CanClockOut first.
func (e *TimeEntry) ApplyClockOut(now time.Time) {
	out := now
	e.ClockOutTime = &out
	e.Status = EntryStatusCompleted
	e.TotalBreakMinutes = e.CompletedBreakMinutes()
	e.UpdatedAt = now
}

// CompletedBreakMinutes sums the durations of all completed breaks, rounded
// to the nearest whole minute after summing.
func (e *TimeEntry) CompletedBreakMinutes() int {
	var total time.Duration
	for _, b := range e.Breaks {
		if b.Status == BreakStatusCompleted && b.EndTime != nil {
			total += b.EndTime.Sub(b.StartTime)
		}
	}
	return RoundMinutes(total)
}

// CanStartBreak checks the break-start preconditions.
func (e *TimeEntry) CanStartBreak() error {
	if !e.IsActive() {
		return ErrNotClockedIn
	}
	if e.ActiveBreak() != nil {
		return ErrAlreadyOnBreak
	}
	return nil
}

// ApplyStartBreak opens a new active break. Call CanStartBreak first.
func (e *TimeEntry) ApplyStartBreak(breakID id.BreakID, now time.Time) *BreakPeriod {
	b := &BreakPeriod{
		UUID:        breakID,
		TimeEntryID: e.ID,
		StartTime:   now,
		Status:      BreakStatusActive,
		CreatedAt:   now,
	}
	e.Breaks = append(e.Breaks, b)
	return b
}

// CanEndBreak checks the break-end preconditions.
func (e *TimeEntry) CanEndBreak() error {
	if !e.IsActive() {
		return ErrNotClockedIn
	}
	if e.ActiveBreak() == nil {
		return ErrNotOnBreak
	}
	return nil
}

// ApplyEndBreak completes the active break and returns it. The entry's
// TotalBreakMinutes is deliberately left untouched; it is rolled up at
// clock-out.
func (e *TimeEntry) ApplyEndBreak(now time.Time) *BreakPeriod {
	b := e.ActiveBreak()
	end := now
	b.EndTime = &end
	b.Status = BreakStatusCompleted
	return b
}

// ForceClockOut sets an explicit clock-out time and completes the entry
// regardless of prior status. Used by manager edits.
func (e *TimeEntry) ForceClockOut(t time.Time, now time.Time) {
	out := t
	e.ClockOutTime = &out
	e.Status = EntryStatusCompleted
	e.UpdatedAt = now
}

// WorkedDuration is the span from clock-in to clock-out, using now for
// entries still active.
func (e *TimeEntry) WorkedDuration(now time.Time) time.Duration {
	end := now
	if e.ClockOutTime != nil {
		end = *e.ClockOutTime
	}
	return end.Sub(e.ClockInTime)
}

func (b *BreakPeriod) IsActive() bool {
	return b.Status == BreakStatusActive
}

// Duration is the break's span, using now while the break is still open.
func (b *BreakPeriod) Duration(now time.Time) time.Duration {
	end := now
	if b.EndTime != nil {
		end = *b.EndTime
	}
	return end.Sub(b.StartTime)
}

// RoundMinutes converts a duration to whole minutes, rounded to nearest.
func RoundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

// RoundHours converts net minutes to hours with two-decimal precision.
func RoundHours(minutes int) float64 {
	return math.Round(float64(minutes)/60*100) / 100
}
