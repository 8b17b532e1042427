package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	dErrors "timeclock/pkg/domain-errors"
	"timeclock/pkg/platform/sentinel"
	"timeclock/pkg/requestcontext"
)

// UpdateEntry applies a manager edit to an entry. Each changed clock time
// writes its own audit row carrying the old value, new value, and the
// mandatory reason; setting a field to its current value is a no-op and
// leaves no trail. Notes changes are applied without audit.
//
// Authorization is the caller's job; modifiedBy is recorded as the actor.
func (s *Service) UpdateEntry(ctx context.Context, entryID id.EntryID, patch models.EntryPatch, modifiedBy id.UserID, reason string) (*models.TimeEntry, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.UpdateEntry")
	defer span.End()
	span.SetAttributes(attribute.String("entry_id", entryID.String()))

	if entryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "entry id is required")
	}
	if modifiedBy.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "modifying user id is required")
	}
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "reason is required for manager edits")
	}

	var entry *models.TimeEntry
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.findByUUID(txCtx, entryID)
		if err != nil {
			return err
		}
		now := requestcontext.Now(txCtx)

		changed := false
		if patch.ClockInTime.Set && !patch.ClockInTime.Value.Equal(e.ClockInTime) {
			old := formatAuditTime(e.ClockInTime)
			next := formatAuditTime(patch.ClockInTime.Value)
			audit := models.NewEditAudit(e, modifiedBy, models.ActionEditClockIn, "clock_in_time", &old, &next, reason, now)
			if err := s.appendAudit(txCtx, audit); err != nil {
				return err
			}
			e.ClockInTime = patch.ClockInTime.Value
			changed = true
		}
		if patch.ClockOutTime.Set && !sameClockOut(e.ClockOutTime, patch.ClockOutTime.Value) {
			var old *string
			if e.ClockOutTime != nil {
				v := formatAuditTime(*e.ClockOutTime)
				old = &v
			}
			next := formatAuditTime(patch.ClockOutTime.Value)
			audit := models.NewEditAudit(e, modifiedBy, models.ActionEditClockOut, "clock_out_time", old, &next, reason, now)
			if err := s.appendAudit(txCtx, audit); err != nil {
				return err
			}
			e.ForceClockOut(patch.ClockOutTime.Value, now)
			changed = true
		}
		if patch.Notes.Set && patch.Notes.Value != e.Notes {
			e.Notes = patch.Notes.Value
			changed = true
		}

		if changed {
			e.UpdatedAt = now
			if err := s.entries.Update(txCtx, e); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "could not update time entry")
			}
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.incManagerEdits()
	s.logger.InfoContext(ctx, "time entry edited",
		"request_id", requestcontext.RequestID(ctx),
		"entry_id", entryID.String(),
		"modified_by", modifiedBy.String(),
	)
	return entry, nil
}

// DeleteEntry removes an entry and its breaks. The audit row capturing the
// deleted state is written in the same transaction, before the delete, and
// survives it: audits carry no foreign key to the entry.
func (s *Service) DeleteEntry(ctx context.Context, entryID id.EntryID, modifiedBy id.UserID, reason string) error {
	ctx, span := s.tracer.Start(ctx, "attendance.DeleteEntry")
	defer span.End()
	span.SetAttributes(attribute.String("entry_id", entryID.String()))

	if entryID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "entry id is required")
	}
	if modifiedBy.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "modifying user id is required")
	}
	if reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required for manager deletions")
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.findByUUID(txCtx, entryID)
		if err != nil {
			return err
		}

		audit, err := models.NewDeleteAudit(e, modifiedBy, reason, requestcontext.Now(txCtx))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not snapshot entry for deletion")
		}
		if err := s.appendAudit(txCtx, audit); err != nil {
			return err
		}
		if err := s.entries.Delete(txCtx, e.ID); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not delete time entry")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.incManagerDeletes()
	s.logger.InfoContext(ctx, "time entry deleted",
		"request_id", requestcontext.RequestID(ctx),
		"entry_id", entryID.String(),
		"modified_by", modifiedBy.String(),
	)
	return nil
}

// GetAuditHistory returns an entry's audit trail, most recent first. Trails
// of deleted entries are retained in storage but unreachable here: the entry
// lookup fails first.
func (s *Service) GetAuditHistory(ctx context.Context, entryID id.EntryID) ([]*models.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.GetAuditHistory")
	defer span.End()

	if entryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "entry id is required")
	}

	e, err := s.findByUUID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	audits, err := s.audits.ListByEntry(ctx, e.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "audit lookup failed")
	}
	return audits, nil
}

func (s *Service) findByUUID(ctx context.Context, entryID id.EntryID) (*models.TimeEntry, error) {
	e, err := s.entries.FindByUUID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrEntryNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "entry lookup failed")
	}
	return e, nil
}

func sameClockOut(current *time.Time, next time.Time) bool {
	return current != nil && current.Equal(next)
}

func formatAuditTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
