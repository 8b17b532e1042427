package service

import (
	"time"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	dErrors "timeclock/pkg/domain-errors"
)

func (s *ServiceSuite) TestClockIn() {
	s.Run("creates active entry with audit row", func() {
		ctx := s.ctxAt(s.t0)

		entry, err := s.service.ClockIn(ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(models.EntryStatusActive, entry.Status)
		s.True(entry.ClockInTime.Equal(s.t0))
		s.Nil(entry.ClockOutTime)
		s.Zero(entry.TotalBreakMinutes)

		audits, err := s.audits.ListByEntry(ctx, entry.ID)
		s.Require().NoError(err)
		s.Require().Len(audits, 1)
		s.Equal(models.ActionClockIn, audits[0].Action)
		s.Equal(s.userID, audits[0].ModifiedByUserID)
	})

	s.Run("second clock in conflicts", func() {
		ctx := s.ctxAt(s.t0.Add(time.Minute))

		_, err := s.service.ClockIn(ctx, s.userID)
		s.Require().Error(err)
		s.ErrorIs(err, models.ErrAlreadyClockedIn)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("other users are unaffected", func() {
		_, err := s.service.ClockIn(s.ctxAt(s.t0), id.NewUserID())
		s.NoError(err)
	})

	s.Run("nil user id rejected", func() {
		_, err := s.service.ClockIn(s.ctxAt(s.t0), id.UserID{})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestClockOut() {
	s.Run("without active entry conflicts", func() {
		_, err := s.service.ClockOut(s.ctxAt(s.t0), s.userID)
		s.ErrorIs(err, models.ErrNotClockedIn)
	})

	s.Run("completes entry and rolls up breaks", func() {
		_, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)
		_, err = s.service.StartBreak(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
		s.Require().NoError(err)
		_, err = s.service.EndBreak(s.ctxAt(s.t0.Add(time.Hour+15*time.Minute)), s.userID)
		s.Require().NoError(err)

		out := s.t0.Add(9 * time.Hour)
		entry, err := s.service.ClockOut(s.ctxAt(out), s.userID)
		s.Require().NoError(err)
		s.Equal(models.EntryStatusCompleted, entry.Status)
		s.True(entry.ClockOutTime.Equal(out))
		s.Equal(15, entry.TotalBreakMinutes)

		audits, err := s.audits.ListByEntry(s.ctxAt(out), entry.ID)
		s.Require().NoError(err)
		s.Require().Len(audits, 4)
		s.Equal(models.ActionClockOut, audits[0].Action)
	})

	s.Run("blocked while break is active", func() {
		userID := id.NewUserID()
		_, err := s.service.ClockIn(s.ctxAt(s.t0), userID)
		s.Require().NoError(err)
		_, err = s.service.StartBreak(s.ctxAt(s.t0.Add(time.Hour)), userID)
		s.Require().NoError(err)

		_, err = s.service.ClockOut(s.ctxAt(s.t0.Add(2*time.Hour)), userID)
		s.ErrorIs(err, models.ErrClockOutDuringBreak)

		// Ending the break unblocks the clock-out.
		_, err = s.service.EndBreak(s.ctxAt(s.t0.Add(2*time.Hour)), userID)
		s.Require().NoError(err)
		_, err = s.service.ClockOut(s.ctxAt(s.t0.Add(3*time.Hour)), userID)
		s.NoError(err)
	})

	s.Run("clock in allowed again after clock out", func() {
		_, err := s.service.ClockIn(s.ctxAt(s.t0.Add(10*time.Hour)), s.userID)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestCurrentStatus() {
	s.Run("clocked out when no active entry", func() {
		status, err := s.service.CurrentStatus(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)
		s.False(status.IsClockedIn)
		s.Nil(status.ActiveEntry)
		s.False(status.HasActiveBreak)
	})

	s.Run("reflects clock in immediately", func() {
		entry, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)

		status, err := s.service.CurrentStatus(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)
		s.True(status.IsClockedIn)
		s.Equal(entry.UUID, status.ActiveEntry.UUID)
		s.False(status.HasActiveBreak)
	})

	s.Run("reflects started break immediately", func() {
		brk, err := s.service.StartBreak(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
		s.Require().NoError(err)

		status, err := s.service.CurrentStatus(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
		s.Require().NoError(err)
		s.True(status.IsClockedIn)
		s.True(status.HasActiveBreak)
		s.Require().NotNil(status.CurrentBreak)
		s.Equal(brk.UUID, status.CurrentBreak.UUID)
	})
}
