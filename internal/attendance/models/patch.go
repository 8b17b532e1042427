package models

import "time"

// Field is an explicit present-or-absent patch value. It distinguishes
// "set this field to v" from "leave this field alone", which a plain pointer
// would conflate with "clear this field".
type Field[T any] struct {
	Value T
	Set   bool
}

// NewField marks a field as present with the given value.
func NewField[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// EntryPatch is a manager edit payload. Absent fields are not touched.
// Clock time edits are audited per field; notes edits are applied silently.
type EntryPatch struct {
	ClockInTime  Field[time.Time]
	ClockOutTime Field[time.Time]
	Notes        Field[string]
}

// Empty reports whether the patch touches nothing.
func (p EntryPatch) Empty() bool {
	return !p.ClockInTime.Set && !p.ClockOutTime.Set && !p.Notes.Set
}
