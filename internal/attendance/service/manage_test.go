package service

import (
	"encoding/json"
	"time"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	dErrors "timeclock/pkg/domain-errors"
)

func (s *ServiceSuite) TestUpdateEntry() {
	manager := id.NewUserID()

	entry, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
	s.Require().NoError(err)
	_, err = s.service.ClockOut(s.ctxAt(s.t0.Add(8*time.Hour)), s.userID)
	s.Require().NoError(err)

	s.Run("reason is mandatory", func() {
		patch := models.EntryPatch{Notes: models.NewField("forgot badge")}
		_, err := s.service.UpdateEntry(s.ctxAt(s.t0), entry.UUID, patch, manager, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown entry fails", func() {
		patch := models.EntryPatch{Notes: models.NewField("x")}
		_, err := s.service.UpdateEntry(s.ctxAt(s.t0), id.NewEntryID(), patch, manager, "correction")
		s.ErrorIs(err, models.ErrEntryNotFound)
	})

	s.Run("changing both clock times writes one audit row per field", func() {
		editTime := s.t0.Add(24 * time.Hour)
		newIn := s.t0.Add(30 * time.Minute)
		newOut := s.t0.Add(9 * time.Hour)
		patch := models.EntryPatch{
			ClockInTime:  models.NewField(newIn),
			ClockOutTime: models.NewField(newOut),
		}

		updated, err := s.service.UpdateEntry(s.ctxAt(editTime), entry.UUID, patch, manager, "badge reader outage")
		s.Require().NoError(err)
		s.True(updated.ClockInTime.Equal(newIn))
		s.True(updated.ClockOutTime.Equal(newOut))
		s.Equal(models.EntryStatusCompleted, updated.Status)

		audits, err := s.audits.ListByEntry(s.ctxAt(editTime), entry.ID)
		s.Require().NoError(err)
		s.Require().Len(audits, 4) // clock_in, clock_out, then one per edited field

		var edits []*models.AuditEntry
		for _, a := range audits {
			if a.Action == models.ActionEditClockIn || a.Action == models.ActionEditClockOut {
				edits = append(edits, a)
			}
		}
		s.Require().Len(edits, 2)
		for _, a := range edits {
			s.Equal(manager, a.ModifiedByUserID)
			s.Require().NotNil(a.Reason)
			s.Equal("badge reader outage", *a.Reason)
			s.Require().NotNil(a.FieldName)
			s.NotNil(a.OldValue)
			s.NotNil(a.NewValue)
		}
	})

	s.Run("setting a field to its current value leaves no trail", func() {
		current, err := s.service.GetAuditHistory(s.ctxAt(s.t0), entry.UUID)
		s.Require().NoError(err)
		before := len(current)

		fresh, err := s.entries.FindByUUID(s.ctxAt(s.t0), entry.UUID)
		s.Require().NoError(err)
		patch := models.EntryPatch{ClockInTime: models.NewField(fresh.ClockInTime)}
		_, err = s.service.UpdateEntry(s.ctxAt(s.t0), entry.UUID, patch, manager, "no-op")
		s.Require().NoError(err)

		after, err := s.service.GetAuditHistory(s.ctxAt(s.t0), entry.UUID)
		s.Require().NoError(err)
		s.Len(after, before)
	})

	s.Run("notes change applies without audit", func() {
		before, err := s.service.GetAuditHistory(s.ctxAt(s.t0), entry.UUID)
		s.Require().NoError(err)

		patch := models.EntryPatch{Notes: models.NewField("covered for on-call")}
		updated, err := s.service.UpdateEntry(s.ctxAt(s.t0), entry.UUID, patch, manager, "shift swap")
		s.Require().NoError(err)
		s.Equal("covered for on-call", updated.Notes)

		after, err := s.service.GetAuditHistory(s.ctxAt(s.t0), entry.UUID)
		s.Require().NoError(err)
		s.Len(after, len(before))
	})

	s.Run("setting clock out completes an active entry", func() {
		worker := id.NewUserID()
		active, err := s.service.ClockIn(s.ctxAt(s.t0), worker)
		s.Require().NoError(err)

		patch := models.EntryPatch{ClockOutTime: models.NewField(s.t0.Add(4 * time.Hour))}
		updated, err := s.service.UpdateEntry(s.ctxAt(s.t0.Add(26*time.Hour)), active.UUID, patch, manager, "forgot to clock out")
		s.Require().NoError(err)
		s.Equal(models.EntryStatusCompleted, updated.Status)
		s.Require().NotNil(updated.ClockOutTime)
		s.True(updated.ClockOutTime.Equal(s.t0.Add(4 * time.Hour)))

		// Entry completed by edit no longer blocks a new clock-in.
		_, err = s.service.ClockIn(s.ctxAt(s.t0.Add(27*time.Hour)), worker)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestDeleteEntry() {
	manager := id.NewUserID()

	entry, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
	s.Require().NoError(err)
	_, err = s.service.StartBreak(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
	s.Require().NoError(err)
	_, err = s.service.EndBreak(s.ctxAt(s.t0.Add(time.Hour+15*time.Minute)), s.userID)
	s.Require().NoError(err)
	_, err = s.service.ClockOut(s.ctxAt(s.t0.Add(8*time.Hour)), s.userID)
	s.Require().NoError(err)

	s.Run("reason is mandatory", func() {
		err := s.service.DeleteEntry(s.ctxAt(s.t0), entry.UUID, manager, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown entry fails", func() {
		err := s.service.DeleteEntry(s.ctxAt(s.t0), id.NewEntryID(), manager, "duplicate")
		s.ErrorIs(err, models.ErrEntryNotFound)
	})

	s.Run("removes entry and snapshots it in the audit row", func() {
		err := s.service.DeleteEntry(s.ctxAt(s.t0.Add(48*time.Hour)), entry.UUID, manager, "duplicate entry")
		s.Require().NoError(err)

		_, err = s.entries.FindByUUID(s.ctxAt(s.t0), entry.UUID)
		s.Error(err)

		// Rows survive in the audit store even though the entry is gone.
		audits, err := s.audits.ListByEntry(s.ctxAt(s.t0), entry.ID)
		s.Require().NoError(err)
		s.Require().Len(audits, 5)
		s.Equal(models.ActionDelete, audits[0].Action)
		s.Require().NotNil(audits[0].OldValue)

		var snapshot struct {
			ClockInTime       time.Time  `json:"clock_in_time"`
			ClockOutTime      *time.Time `json:"clock_out_time"`
			TotalBreakMinutes int        `json:"total_break_minutes"`
		}
		s.Require().NoError(json.Unmarshal([]byte(*audits[0].OldValue), &snapshot))
		s.True(snapshot.ClockInTime.Equal(s.t0))
		s.Require().NotNil(snapshot.ClockOutTime)
		s.Equal(15, snapshot.TotalBreakMinutes)
	})

	s.Run("audit trail is unreachable through the facade after delete", func() {
		_, err := s.service.GetAuditHistory(s.ctxAt(s.t0), entry.UUID)
		s.ErrorIs(err, models.ErrEntryNotFound)
	})
}

func (s *ServiceSuite) TestGetAuditHistory() {
	entry, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
	s.Require().NoError(err)
	_, err = s.service.StartBreak(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
	s.Require().NoError(err)
	_, err = s.service.EndBreak(s.ctxAt(s.t0.Add(90*time.Minute)), s.userID)
	s.Require().NoError(err)

	audits, err := s.service.GetAuditHistory(s.ctxAt(s.t0), entry.UUID)
	s.Require().NoError(err)
	s.Require().Len(audits, 3)
	s.Equal(models.ActionBreakEnd, audits[0].Action)
	s.Equal(models.ActionBreakStart, audits[1].Action)
	s.Equal(models.ActionClockIn, audits[2].Action)
}
