package models

import "time"

// CurrentStatus is the live clock state derived purely from the active entry
// and its breaks; no separate status flag is persisted.
type CurrentStatus struct {
	IsClockedIn    bool         `json:"is_clocked_in"`
	ActiveEntry    *TimeEntry   `json:"active_entry,omitempty"`
	HasActiveBreak bool         `json:"has_active_break"`
	CurrentBreak   *BreakPeriod `json:"current_break,omitempty"`
}

// Summary aggregates worked and break time over a set of entries. Minute
// values are rounded once at the point of aggregation.
type Summary struct {
	TotalWorkedMinutes int     `json:"total_worked_minutes"`
	TotalBreakMinutes  int     `json:"total_break_minutes"`
	NetWorkedMinutes   int     `json:"net_worked_minutes"`
	TotalWorkedHours   float64 `json:"total_worked_hours"`
}

// DaySummary is one calendar day's bucket in a weekly summary. Sessions are
// attributed to the day they clocked in, even if they span midnight.
type DaySummary struct {
	Date             string  `json:"date"`
	WorkedMinutes    int     `json:"worked_minutes"`
	BreakMinutes     int     `json:"break_minutes"`
	NetWorkedMinutes int     `json:"net_worked_minutes"`
	NetWorkedHours   float64 `json:"net_worked_hours"`
}

// WeeklySummary covers a fixed Monday-anchored 7-day window. Every day is
// present, zero-valued when no sessions exist.
type WeeklySummary struct {
	WeekStart time.Time    `json:"week_start"`
	Days      []DaySummary `json:"days"`
	Totals    Summary      `json:"totals"`
}

// HistoryPage is one page of entries ordered by clock-in time descending.
type HistoryPage struct {
	Entries    []*TimeEntry `json:"entries"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
}
