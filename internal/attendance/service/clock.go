package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	dErrors "timeclock/pkg/domain-errors"
	"timeclock/pkg/platform/sentinel"
	"timeclock/pkg/requestcontext"
)

// ClockIn opens a new active time entry for userID. Fails with
// ErrAlreadyClockedIn if an active entry already exists; the check runs under
// the per-user lock and the storage layer's partial unique index backstops
// any race that slips past it.
func (s *Service) ClockIn(ctx context.Context, userID id.UserID) (*models.TimeEntry, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.ClockIn")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}

	release, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "could not acquire user lock")
	}
	defer release()

	var entry *models.TimeEntry
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := s.entries.FindActiveByUser(txCtx, userID)
		switch {
		case err == nil:
			return models.ErrAlreadyClockedIn
		case !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "active entry lookup failed")
		}

		now := requestcontext.Now(txCtx)
		entry = models.NewTimeEntry(id.NewEntryID(), userID, now)
		if err := s.entries.Create(txCtx, entry); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return models.ErrAlreadyClockedIn
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not create time entry")
		}
		return s.appendAudit(txCtx, models.NewTransitionAudit(entry, userID, models.ActionClockIn, now))
	})
	if err != nil {
		if errors.Is(err, models.ErrAlreadyClockedIn) {
			s.incStateConflicts()
		}
		return nil, err
	}

	s.incClockIns()
	s.logger.InfoContext(ctx, "user clocked in",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"entry_id", entry.UUID.String(),
	)
	return entry, nil
}

// ClockOut completes the user's active entry and rolls up completed break
// time into total_break_minutes.
func (s *Service) ClockOut(ctx context.Context, userID id.UserID) (*models.TimeEntry, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.ClockOut")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}

	release, err := s.locker.Acquire(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "could not acquire user lock")
	}
	defer release()

	var entry *models.TimeEntry
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.findActive(txCtx, userID)
		if err != nil {
			return err
		}
		if err := e.CanClockOut(); err != nil {
			return err
		}

		now := requestcontext.Now(txCtx)
		e.ApplyClockOut(now)
		if err := s.entries.Update(txCtx, e); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not update time entry")
		}
		if err := s.appendAudit(txCtx, models.NewTransitionAudit(e, userID, models.ActionClockOut, now)); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.incStateConflicts()
		}
		return nil, err
	}

	s.incClockOuts()
	s.logger.InfoContext(ctx, "user clocked out",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"entry_id", entry.UUID.String(),
		"total_break_minutes", entry.TotalBreakMinutes,
	)
	return entry, nil
}

// CurrentStatus derives the user's live clock state from the active entry, if
// any. Absence of an active entry is a valid clocked-out status, not an error.
func (s *Service) CurrentStatus(ctx context.Context, userID id.UserID) (*models.CurrentStatus, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.CurrentStatus")
	defer span.End()

	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}

	entry, err := s.entries.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.CurrentStatus{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "active entry lookup failed")
	}

	status := &models.CurrentStatus{
		IsClockedIn: true,
		ActiveEntry: entry,
	}
	if b := entry.ActiveBreak(); b != nil {
		status.HasActiveBreak = true
		status.CurrentBreak = b
	}
	return status, nil
}

// findActive loads the user's active entry, mapping absence to the
// not-clocked-in business error.
func (s *Service) findActive(ctx context.Context, userID id.UserID) (*models.TimeEntry, error) {
	e, err := s.entries.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrNotClockedIn
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "active entry lookup failed")
	}
	return e, nil
}

// appendAudit writes an audit row inside the caller's transaction. Any
// failure propagates and aborts the state transition with it.
func (s *Service) appendAudit(ctx context.Context, a *models.AuditEntry) error {
	if err := s.audits.Append(ctx, a); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not write audit record")
	}
	return nil
}
