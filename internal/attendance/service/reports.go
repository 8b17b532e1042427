package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	dErrors "timeclock/pkg/domain-errors"
	"timeclock/pkg/requestcontext"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// TodaySummary aggregates the user's sessions whose clock-in falls on the
// current calendar day. Active sessions contribute worked time up to now and
// the live duration of an open break on top of their stored break total. All
// durations are summed first and rounded once.
func (s *Service) TodaySummary(ctx context.Context, userID id.UserID) (*models.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.TodaySummary")
	defer span.End()

	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}

	now := requestcontext.Now(ctx)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	entries, _, err := s.entries.List(ctx, models.EntryFilter{
		UserID: &userID,
		Start:  dayStart,
		End:    dayStart.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "entry listing failed")
	}

	worked, breaks := sumEntries(entries, now)
	return newSummary(worked, breaks), nil
}

// WeeklySummary buckets the user's sessions into a Monday-anchored 7-day
// window. weekStart, when given, is normalized to the midnight of its own
// day; nil means the week containing today. Every day appears in the result,
// zero-valued when empty; sessions spanning midnight count wholly toward
// their clock-in day.
func (s *Service) WeeklySummary(ctx context.Context, userID id.UserID, weekStart *time.Time) (*models.WeeklySummary, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.WeeklySummary")
	defer span.End()

	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}

	now := requestcontext.Now(ctx)
	monday := mondayOf(now)
	if weekStart != nil {
		monday = mondayOf(*weekStart)
	}
	weekEnd := monday.AddDate(0, 0, 7)

	entries, _, err := s.entries.List(ctx, models.EntryFilter{
		UserID: &userID,
		Start:  monday,
		End:    weekEnd,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "entry listing failed")
	}

	type bucket struct {
		worked time.Duration
		breaks time.Duration
	}
	buckets := make(map[string]*bucket, 7)
	for _, e := range entries {
		key := e.ClockInTime.In(monday.Location()).Format(time.DateOnly)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		w, br := entryDurations(e, now)
		b.worked += w
		b.breaks += br
	}

	summary := &models.WeeklySummary{
		WeekStart: monday,
		Days:      make([]models.DaySummary, 0, 7),
	}
	for i := 0; i < 7; i++ {
		day := monday.AddDate(0, 0, i)
		key := day.Format(time.DateOnly)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
		}
		worked := models.RoundMinutes(b.worked)
		breaks := models.RoundMinutes(b.breaks)
		net := worked - breaks
		summary.Days = append(summary.Days, models.DaySummary{
			Date:             key,
			WorkedMinutes:    worked,
			BreakMinutes:     breaks,
			NetWorkedMinutes: net,
			NetWorkedHours:   models.RoundHours(net),
		})
		summary.Totals.TotalWorkedMinutes += worked
		summary.Totals.TotalBreakMinutes += breaks
		summary.Totals.NetWorkedMinutes += net
	}
	summary.Totals.TotalWorkedHours = models.RoundHours(summary.Totals.NetWorkedMinutes)
	return summary, nil
}

// History returns a page of entries, newest clock-in first, optionally
// restricted to a clock-in range. A nil userID means all users; the caller
// must restrict that to managers. Breaks come hydrated.
func (s *Service) History(ctx context.Context, userID *id.UserID, start, end time.Time, page, limit int) (*models.HistoryPage, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.History")
	defer span.End()

	if userID != nil && userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id must not be the zero uuid")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, total, err := s.entries.List(ctx, models.EntryFilter{
		UserID: userID,
		Start:  start,
		End:    end,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "entry listing failed")
	}

	return &models.HistoryPage{
		Entries:    entries,
		Total:      total,
		Page:       page,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// Export returns all entries in a clock-in range without pagination, for
// rendering into a report. Managers may export any user or everyone (nil
// userID); for non-managers the scope is silently forced to their own
// entries regardless of what was asked for.
func (s *Service) Export(ctx context.Context, userID *id.UserID, start, end time.Time, requestedBy id.UserID, isManager bool) ([]*models.TimeEntry, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.Export")
	defer span.End()
	span.SetAttributes(attribute.Bool("manager", isManager))

	if requestedBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "requesting user id is required")
	}
	if !isManager {
		scope := requestedBy
		userID = &scope
	}

	entries, _, err := s.entries.List(ctx, models.EntryFilter{
		UserID: userID,
		Start:  start,
		End:    end,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "entry listing failed")
	}
	return entries, nil
}

// entryDurations returns an entry's worked span and its break time: the
// stored rolled-up total plus, for active entries, the live duration of the
// open break. Breaks already completed within a still-active entry stay
// invisible until clock-out rolls them up; live totals understate by that
// amount on purpose.
func entryDurations(e *models.TimeEntry, now time.Time) (worked, breaks time.Duration) {
	worked = e.WorkedDuration(now)
	breaks = time.Duration(e.TotalBreakMinutes) * time.Minute
	if e.IsActive() {
		if b := e.ActiveBreak(); b != nil {
			breaks += b.Duration(now)
		}
	}
	return worked, breaks
}

func sumEntries(entries []*models.TimeEntry, now time.Time) (worked, breaks time.Duration) {
	for _, e := range entries {
		w, b := entryDurations(e, now)
		worked += w
		breaks += b
	}
	return worked, breaks
}

func newSummary(worked, breaks time.Duration) *models.Summary {
	workedMin := models.RoundMinutes(worked)
	breakMin := models.RoundMinutes(breaks)
	net := workedMin - breakMin
	return &models.Summary{
		TotalWorkedMinutes: workedMin,
		TotalBreakMinutes:  breakMin,
		NetWorkedMinutes:   net,
		TotalWorkedHours:   models.RoundHours(net),
	}
}

// mondayOf returns midnight of the Monday on or before t, in t's location.
func mondayOf(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}
