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

// StartBreak opens a break on the user's active entry. Requires an active
// entry with no break already running.
func (s *Service) StartBreak(ctx context.Context, userID id.UserID) (*models.BreakPeriod, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.StartBreak")
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

	var brk *models.BreakPeriod
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.findActive(txCtx, userID)
		if err != nil {
			return err
		}
		if err := e.CanStartBreak(); err != nil {
			return err
		}

		now := requestcontext.Now(txCtx)
		b := e.ApplyStartBreak(id.NewBreakID(), now)
		if err := s.entries.CreateBreak(txCtx, b); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return models.ErrAlreadyOnBreak
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not create break")
		}
		if err := s.appendAudit(txCtx, models.NewTransitionAudit(e, userID, models.ActionBreakStart, now)); err != nil {
			return err
		}
		brk = b
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.incStateConflicts()
		}
		return nil, err
	}

	s.incBreaksStarted()
	s.logger.InfoContext(ctx, "break started",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"break_id", brk.UUID.String(),
	)
	return brk, nil
}

// EndBreak completes the active break on the user's active entry. The entry's
// rolled-up break total is left untouched until clock-out.
func (s *Service) EndBreak(ctx context.Context, userID id.UserID) (*models.BreakPeriod, error) {
	ctx, span := s.tracer.Start(ctx, "attendance.EndBreak")
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

	var brk *models.BreakPeriod
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.findActive(txCtx, userID)
		if err != nil {
			return err
		}
		if err := e.CanEndBreak(); err != nil {
			return err
		}

		now := requestcontext.Now(txCtx)
		b := e.ApplyEndBreak(now)
		if err := s.entries.UpdateBreak(txCtx, b); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "could not update break")
		}
		if err := s.appendAudit(txCtx, models.NewTransitionAudit(e, userID, models.ActionBreakEnd, now)); err != nil {
			return err
		}
		brk = b
		return nil
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			s.incStateConflicts()
		}
		return nil, err
	}

	s.incBreaksEnded()
	s.logger.InfoContext(ctx, "break ended",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID.String(),
		"break_id", brk.UUID.String(),
	)
	return brk, nil
}
