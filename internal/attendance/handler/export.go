package handler

import (
	"context"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"timeclock/internal/attendance/models"
	dErrors "timeclock/pkg/domain-errors"
	"timeclock/pkg/platform/httputil"
	"timeclock/pkg/requestcontext"
)

var exportHeader = []string{
	"entry_id", "user_id", "clock_in_time", "clock_out_time",
	"status", "total_break_minutes", "worked_minutes", "notes",
}

// HandleExport handles GET /attendance/export requests. Renders CSV by
// default, JSON with ?format=json. Non-managers always export their own
// entries no matter what user_id asks for.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	isManager := requestcontext.IsManager(ctx)
	scope, err := userScopeQuery(r, callerID, isManager)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	start, end, err := rangeQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.Export(ctx, scope, start, end, callerID, isManager)
	if err != nil {
		h.writeFailure(w, ctx, "export failed", err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		h.writeCSV(w, ctx, entries)
	case "json":
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "format must be csv or json"))
	}
}

func (h *Handler) writeCSV(w http.ResponseWriter, ctx context.Context, entries []*models.TimeEntry) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance-export.csv"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return
	}
	now := requestcontext.Now(ctx)
	for _, e := range entries {
		record := []string{
			e.UUID.String(),
			e.UserID.String(),
			e.ClockInTime.Format(time.RFC3339),
			"",
			string(e.Status),
			strconv.Itoa(e.TotalBreakMinutes),
			strconv.Itoa(models.RoundMinutes(e.WorkedDuration(now))),
			e.Notes,
		}
		if e.ClockOutTime != nil {
			record[3] = e.ClockOutTime.Format(time.RFC3339)
		}
		if err := cw.Write(record); err != nil {
			return
		}
	}
	cw.Flush()
}
