package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	dErrors "timeclock/pkg/domain-errors"
)

// UpdateEntryRequest is the HTTP request body for PATCH /attendance/entries/{entryID}.
// Absent fields are left untouched; a supplied clock time must be RFC 3339.
type UpdateEntryRequest struct {
	ClockInTime  *string `json:"clock_in_time"`
	ClockOutTime *string `json:"clock_out_time"`
	Notes        *string `json:"notes"`
	Reason       string  `json:"reason"`

	// Parsed values (populated by Validate)
	parsedPatch models.EntryPatch
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpdateEntryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}

	if r.ClockInTime != nil {
		t, err := parseRFC3339("clock_in_time", *r.ClockInTime)
		if err != nil {
			return err
		}
		r.parsedPatch.ClockInTime = models.NewField(t)
	}
	if r.ClockOutTime != nil {
		t, err := parseRFC3339("clock_out_time", *r.ClockOutTime)
		if err != nil {
			return err
		}
		r.parsedPatch.ClockOutTime = models.NewField(t)
	}
	if r.Notes != nil {
		r.parsedPatch.Notes = models.NewField(*r.Notes)
	}

	if r.parsedPatch.Empty() {
		return dErrors.New(dErrors.CodeValidation, "at least one of clock_in_time, clock_out_time, notes must be supplied")
	}
	return nil
}

// ParsedPatch returns the validated patch.
func (r *UpdateEntryRequest) ParsedPatch() models.EntryPatch {
	return r.parsedPatch
}

// DeleteEntryRequest is the HTTP request body for DELETE /attendance/entries/{entryID}.
type DeleteEntryRequest struct {
	Reason string `json:"reason"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *DeleteEntryRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Reason = strings.TrimSpace(r.Reason)
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "reason is required")
	}
	return nil
}

func parseRFC3339(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" must be an RFC 3339 timestamp")
	}
	return t, nil
}

// rangeQuery reads the optional start/end query parameters ("2006-01-02"
// dates or RFC 3339 timestamps). A bare end date is bumped to the following
// midnight so the whole day falls inside the [start, end) range.
func rangeQuery(r *http.Request) (start, end time.Time, err error) {
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, _, err = parseDateOrTime("start", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		var bare bool
		end, bare, err = parseDateOrTime("end", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if bare {
			end = end.AddDate(0, 0, 1)
		}
	}
	return start, end, nil
}

func parseDateOrTime(field, value string) (t time.Time, bareDate bool, err error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, dErrors.New(dErrors.CodeValidation, field+" must be a date (2006-01-02) or RFC 3339 timestamp")
}

// userScopeQuery resolves the optional user_id query parameter against the
// caller. Managers may target any user or all users (absent parameter);
// everyone else is silently scoped to themselves.
func userScopeQuery(r *http.Request, callerID id.UserID, isManager bool) (*id.UserID, error) {
	if !isManager {
		scope := callerID
		return &scope, nil
	}
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return nil, nil
	}
	userID, err := id.ParseUserID(raw)
	if err != nil {
		return nil, err
	}
	return &userID, nil
}

func pageQuery(r *http.Request) (page, limit int, err error) {
	page, err = intQuery(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err = intQuery(r, "limit", 0)
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, name+" must be a non-negative integer")
	}
	return v, nil
}
