package service

import (
	"time"

	"timeclock/internal/attendance/models"
	dErrors "timeclock/pkg/domain-errors"
)

func (s *ServiceSuite) TestStartBreak() {
	s.Run("without active entry conflicts", func() {
		_, err := s.service.StartBreak(s.ctxAt(s.t0), s.userID)
		s.ErrorIs(err, models.ErrNotClockedIn)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("opens a break on the active entry", func() {
		entry, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)

		brk, err := s.service.StartBreak(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
		s.Require().NoError(err)
		s.Equal(models.BreakStatusActive, brk.Status)
		s.True(brk.StartTime.Equal(s.t0.Add(time.Hour)))
		s.Nil(brk.EndTime)

		audits, err := s.audits.ListByEntry(s.ctxAt(s.t0), entry.ID)
		s.Require().NoError(err)
		s.Require().Len(audits, 2)
		s.Equal(models.ActionBreakStart, audits[0].Action)
	})

	s.Run("second break while one is active conflicts", func() {
		_, err := s.service.StartBreak(s.ctxAt(s.t0.Add(2*time.Hour)), s.userID)
		s.ErrorIs(err, models.ErrAlreadyOnBreak)
	})
}

func (s *ServiceSuite) TestEndBreak() {
	s.Run("without active entry conflicts", func() {
		_, err := s.service.EndBreak(s.ctxAt(s.t0), s.userID)
		s.ErrorIs(err, models.ErrNotClockedIn)
	})

	s.Run("without active break conflicts", func() {
		_, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)

		_, err = s.service.EndBreak(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
		s.ErrorIs(err, models.ErrNotOnBreak)
	})

	s.Run("completes the break without touching the rolled-up total", func() {
		_, err := s.service.StartBreak(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
		s.Require().NoError(err)

		brk, err := s.service.EndBreak(s.ctxAt(s.t0.Add(80*time.Minute)), s.userID)
		s.Require().NoError(err)
		s.Equal(models.BreakStatusCompleted, brk.Status)
		s.Require().NotNil(brk.EndTime)
		s.True(brk.EndTime.Equal(s.t0.Add(80 * time.Minute)))

		entry, err := s.entries.FindActiveByUser(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)
		s.Zero(entry.TotalBreakMinutes) // rolled up only at clock-out
	})

	s.Run("sequential breaks on one entry are allowed", func() {
		_, err := s.service.StartBreak(s.ctxAt(s.t0.Add(3*time.Hour)), s.userID)
		s.Require().NoError(err)
		_, err = s.service.EndBreak(s.ctxAt(s.t0.Add(3*time.Hour+10*time.Minute)), s.userID)
		s.Require().NoError(err)

		entry, err := s.service.ClockOut(s.ctxAt(s.t0.Add(8*time.Hour)), s.userID)
		s.Require().NoError(err)
		s.Equal(30, entry.TotalBreakMinutes)
	})
}
