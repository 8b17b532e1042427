package models

import (
	"time"

	id "timeclock/pkg/domain"
)

// EntryFilter selects entries by owner and clock-in range [Start, End).
// A nil UserID means all users. Limit <= 0 disables pagination.
type EntryFilter struct {
	UserID *id.UserID
	Start  time.Time
	End    time.Time
	Limit  int
	Offset int
}
