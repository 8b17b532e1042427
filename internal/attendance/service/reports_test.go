package service

import (
	"time"

	id "timeclock/pkg/domain"
)

func (s *ServiceSuite) TestTodaySummary() {
	s.Run("empty day is all zeros", func() {
		summary, err := s.service.TodaySummary(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)
		s.Zero(summary.TotalWorkedMinutes)
		s.Zero(summary.NetWorkedMinutes)
		s.Zero(summary.TotalWorkedHours)
	})

	s.Run("completed day with one break", func() {
		// Clock in 09:00, break 10:00-10:15, clock out 18:00.
		_, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
		s.Require().NoError(err)
		_, err = s.service.StartBreak(s.ctxAt(s.t0.Add(time.Hour)), s.userID)
		s.Require().NoError(err)
		_, err = s.service.EndBreak(s.ctxAt(s.t0.Add(time.Hour+15*time.Minute)), s.userID)
		s.Require().NoError(err)
		_, err = s.service.ClockOut(s.ctxAt(s.t0.Add(9*time.Hour)), s.userID)
		s.Require().NoError(err)

		summary, err := s.service.TodaySummary(s.ctxAt(s.t0.Add(10*time.Hour)), s.userID)
		s.Require().NoError(err)
		s.Equal(540, summary.TotalWorkedMinutes)
		s.Equal(15, summary.TotalBreakMinutes)
		s.Equal(525, summary.NetWorkedMinutes)
		s.Equal(8.75, summary.TotalWorkedHours)
	})

	s.Run("active session counts live work and live break", func() {
		worker := id.NewUserID()
		_, err := s.service.ClockIn(s.ctxAt(s.t0), worker)
		s.Require().NoError(err)
		_, err = s.service.StartBreak(s.ctxAt(s.t0.Add(150*time.Minute)), worker)
		s.Require().NoError(err)

		now := s.t0.Add(3 * time.Hour)
		summary, err := s.service.TodaySummary(s.ctxAt(now), worker)
		s.Require().NoError(err)
		s.Equal(180, summary.TotalWorkedMinutes)
		s.Equal(30, summary.TotalBreakMinutes)
		s.Equal(150, summary.NetWorkedMinutes)
		s.Equal(2.5, summary.TotalWorkedHours)
	})

	s.Run("yesterday's sessions are excluded", func() {
		nextDay := s.t0.Add(24 * time.Hour)
		summary, err := s.service.TodaySummary(s.ctxAt(nextDay), s.userID)
		s.Require().NoError(err)
		s.Zero(summary.TotalWorkedMinutes)
	})
}

func (s *ServiceSuite) TestWeeklySummary() {
	// s.t0 is Monday 2024-01-01 09:00 UTC.
	workDay := func(start time.Time, hours int) {
		_, err := s.service.ClockIn(s.ctxAt(start), s.userID)
		s.Require().NoError(err)
		_, err = s.service.ClockOut(s.ctxAt(start.Add(time.Duration(hours)*time.Hour)), s.userID)
		s.Require().NoError(err)
	}
	workDay(s.t0, 8)                    // Monday
	workDay(s.t0.AddDate(0, 0, 2), 6)    // Wednesday
	workDay(s.t0.AddDate(0, 0, 4), 4)    // Friday

	s.Run("current week from now when week start omitted", func() {
		now := s.t0.AddDate(0, 0, 3) // Thursday
		summary, err := s.service.WeeklySummary(s.ctxAt(now), s.userID, nil)
		s.Require().NoError(err)
		s.True(summary.WeekStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

		s.Require().Len(summary.Days, 7)
		s.Equal("2024-01-01", summary.Days[0].Date)
		s.Equal(480, summary.Days[0].WorkedMinutes)
		s.Equal(360, summary.Days[2].WorkedMinutes)
		s.Equal(240, summary.Days[4].WorkedMinutes)

		// Days without sessions are present and zero.
		s.Zero(summary.Days[1].WorkedMinutes)
		s.Zero(summary.Days[6].WorkedMinutes)

		s.Equal(1080, summary.Totals.TotalWorkedMinutes)
		s.Equal(1080, summary.Totals.NetWorkedMinutes)
		s.Equal(18.0, summary.Totals.TotalWorkedHours)
	})

	s.Run("explicit week start is normalized to its monday", func() {
		thursday := s.t0.AddDate(0, 0, 3)
		summary, err := s.service.WeeklySummary(s.ctxAt(s.t0), s.userID, &thursday)
		s.Require().NoError(err)
		s.True(summary.WeekStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	})

	s.Run("session spanning midnight counts toward its start day", func() {
		worker := id.NewUserID()
		// Sunday 22:00 to Monday 02:00 of the following week.
		sundayNight := time.Date(2024, 1, 7, 22, 0, 0, 0, time.UTC)
		_, err := s.service.ClockIn(s.ctxAt(sundayNight), worker)
		s.Require().NoError(err)
		_, err = s.service.ClockOut(s.ctxAt(sundayNight.Add(4*time.Hour)), worker)
		s.Require().NoError(err)

		summary, err := s.service.WeeklySummary(s.ctxAt(sundayNight), worker, nil)
		s.Require().NoError(err)
		s.Equal(240, summary.Days[6].WorkedMinutes)

		nextWeek, err := s.service.WeeklySummary(s.ctxAt(sundayNight.AddDate(0, 0, 1)), worker, nil)
		s.Require().NoError(err)
		s.Zero(nextWeek.Totals.TotalWorkedMinutes)
	})

	s.Run("empty week is seven zero days", func() {
		farFuture := s.t0.AddDate(0, 6, 0)
		summary, err := s.service.WeeklySummary(s.ctxAt(farFuture), s.userID, nil)
		s.Require().NoError(err)
		s.Require().Len(summary.Days, 7)
		for _, day := range summary.Days {
			s.Zero(day.WorkedMinutes)
			s.Zero(day.NetWorkedHours)
		}
	})
}

func (s *ServiceSuite) TestHistory() {
	other := id.NewUserID()
	for day := 0; day < 5; day++ {
		start := s.t0.AddDate(0, 0, day)
		_, err := s.service.ClockIn(s.ctxAt(start), s.userID)
		s.Require().NoError(err)
		_, err = s.service.ClockOut(s.ctxAt(start.Add(8*time.Hour)), s.userID)
		s.Require().NoError(err)
	}
	_, err := s.service.ClockIn(s.ctxAt(s.t0), other)
	s.Require().NoError(err)

	s.Run("pages newest first", func() {
		page, err := s.service.History(s.ctxAt(s.t0), &s.userID, time.Time{}, time.Time{}, 1, 2)
		s.Require().NoError(err)
		s.Equal(5, page.Total)
		s.Equal(3, page.TotalPages)
		s.Require().Len(page.Entries, 2)
		s.True(page.Entries[0].ClockInTime.After(page.Entries[1].ClockInTime))
		s.True(page.Entries[0].ClockInTime.Equal(s.t0.AddDate(0, 0, 4)))

		last, err := s.service.History(s.ctxAt(s.t0), &s.userID, time.Time{}, time.Time{}, 3, 2)
		s.Require().NoError(err)
		s.Len(last.Entries, 1)
	})

	s.Run("range filter is half open on clock in", func() {
		page, err := s.service.History(s.ctxAt(s.t0), &s.userID, s.t0.AddDate(0, 0, 1), s.t0.AddDate(0, 0, 3), 1, 10)
		s.Require().NoError(err)
		s.Equal(2, page.Total)
	})

	s.Run("nil user id spans all users", func() {
		page, err := s.service.History(s.ctxAt(s.t0), nil, time.Time{}, time.Time{}, 1, 10)
		s.Require().NoError(err)
		s.Equal(6, page.Total)
	})

	s.Run("defaults applied to page and limit", func() {
		page, err := s.service.History(s.ctxAt(s.t0), &s.userID, time.Time{}, time.Time{}, 0, 0)
		s.Require().NoError(err)
		s.Equal(1, page.Page)
		s.Equal(1, page.TotalPages)
	})
}

func (s *ServiceSuite) TestExport() {
	other := id.NewUserID()
	_, err := s.service.ClockIn(s.ctxAt(s.t0), s.userID)
	s.Require().NoError(err)
	_, err = s.service.ClockOut(s.ctxAt(s.t0.Add(8*time.Hour)), s.userID)
	s.Require().NoError(err)
	_, err = s.service.ClockIn(s.ctxAt(s.t0.Add(time.Hour)), other)
	s.Require().NoError(err)

	s.Run("manager exports everyone with nil scope", func() {
		entries, err := s.service.Export(s.ctxAt(s.t0), nil, time.Time{}, time.Time{}, id.NewUserID(), true)
		s.Require().NoError(err)
		s.Len(entries, 2)
	})

	s.Run("manager exports a chosen user", func() {
		entries, err := s.service.Export(s.ctxAt(s.t0), &other, time.Time{}, time.Time{}, id.NewUserID(), true)
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(other, entries[0].UserID)
	})

	s.Run("non-manager is silently scoped to self", func() {
		entries, err := s.service.Export(s.ctxAt(s.t0), &other, time.Time{}, time.Time{}, s.userID, false)
		s.Require().NoError(err)
		s.Require().Len(entries, 1)
		s.Equal(s.userID, entries[0].UserID)
	})
}
