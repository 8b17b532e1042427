// Package handler exposes the attendance service over HTTP. Routes assume
// the auth middleware already resolved the caller's identity into the
// request context; manager-only routes additionally sit behind the manager
// middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	dErrors "timeclock/pkg/domain-errors"
	"timeclock/pkg/platform/httputil"
	"timeclock/pkg/requestcontext"
)

// Service defines the attendance operations the handler needs.
type Service interface {
	ClockIn(ctx context.Context, userID id.UserID) (*models.TimeEntry, error)
	ClockOut(ctx context.Context, userID id.UserID) (*models.TimeEntry, error)
	CurrentStatus(ctx context.Context, userID id.UserID) (*models.CurrentStatus, error)
	StartBreak(ctx context.Context, userID id.UserID) (*models.BreakPeriod, error)
	EndBreak(ctx context.Context, userID id.UserID) (*models.BreakPeriod, error)
	TodaySummary(ctx context.Context, userID id.UserID) (*models.Summary, error)
	WeeklySummary(ctx context.Context, userID id.UserID, weekStart *time.Time) (*models.WeeklySummary, error)
	History(ctx context.Context, userID *id.UserID, start, end time.Time, page, limit int) (*models.HistoryPage, error)
	Export(ctx context.Context, userID *id.UserID, start, end time.Time, requestedBy id.UserID, isManager bool) ([]*models.TimeEntry, error)
	UpdateEntry(ctx context.Context, entryID id.EntryID, patch models.EntryPatch, modifiedBy id.UserID, reason string) (*models.TimeEntry, error)
	DeleteEntry(ctx context.Context, entryID id.EntryID, modifiedBy id.UserID, reason string) error
	GetAuditHistory(ctx context.Context, entryID id.EntryID) ([]*models.AuditEntry, error)
}

// Handler wires attendance endpoints to the attendance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an attendance handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the employee-facing attendance endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/attendance/status", h.HandleStatus)
	r.Post("/attendance/clock-in", h.HandleClockIn)
	r.Post("/attendance/clock-out", h.HandleClockOut)
	r.Post("/attendance/breaks/start", h.HandleStartBreak)
	r.Post("/attendance/breaks/end", h.HandleEndBreak)
	r.Get("/attendance/summary/today", h.HandleTodaySummary)
	r.Get("/attendance/summary/week", h.HandleWeeklySummary)
	r.Get("/attendance/history", h.HandleHistory)
	r.Get("/attendance/export", h.HandleExport)
}

// RegisterManager mounts the manager-only entry administration endpoints.
// The router must guard them with the manager middleware.
func (h *Handler) RegisterManager(r chi.Router) {
	r.Patch("/attendance/entries/{entryID}", h.HandleUpdateEntry)
	r.Delete("/attendance/entries/{entryID}", h.HandleDeleteEntry)
	r.Get("/attendance/entries/{entryID}/audit", h.HandleAuditHistory)
}

// HandleClockIn handles POST /attendance/clock-in requests.
func (h *Handler) HandleClockIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	entry, err := h.service.ClockIn(ctx, userID)
	if err != nil {
		h.writeFailure(w, ctx, "clock in failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

// HandleClockOut handles POST /attendance/clock-out requests.
func (h *Handler) HandleClockOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	entry, err := h.service.ClockOut(ctx, userID)
	if err != nil {
		h.writeFailure(w, ctx, "clock out failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

// HandleStatus handles GET /attendance/status requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	status, err := h.service.CurrentStatus(ctx, userID)
	if err != nil {
		h.writeFailure(w, ctx, "status lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// HandleStartBreak handles POST /attendance/breaks/start requests.
func (h *Handler) HandleStartBreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	brk, err := h.service.StartBreak(ctx, userID)
	if err != nil {
		h.writeFailure(w, ctx, "break start failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, brk)
}

// HandleEndBreak handles POST /attendance/breaks/end requests.
func (h *Handler) HandleEndBreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	brk, err := h.service.EndBreak(ctx, userID)
	if err != nil {
		h.writeFailure(w, ctx, "break end failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, brk)
}

// HandleTodaySummary handles GET /attendance/summary/today requests.
func (h *Handler) HandleTodaySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	summary, err := h.service.TodaySummary(ctx, userID)
	if err != nil {
		h.writeFailure(w, ctx, "today summary failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// HandleWeeklySummary handles GET /attendance/summary/week requests. The
// optional week_start parameter picks any week; it is normalized to its
// Monday.
func (h *Handler) HandleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	var weekStart *time.Time
	if raw := r.URL.Query().Get("week_start"); raw != "" {
		t, _, err := parseDateOrTime("week_start", raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		weekStart = &t
	}

	summary, err := h.service.WeeklySummary(ctx, userID, weekStart)
	if err != nil {
		h.writeFailure(w, ctx, "weekly summary failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// HandleHistory handles GET /attendance/history requests. Managers may scope
// to any user via ?user_id= or to all users by omitting it; everyone else
// sees their own history regardless of the parameter.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callerID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	scope, err := userScopeQuery(r, callerID, requestcontext.IsManager(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	start, end, err := rangeQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	page, limit, err := pageQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	history, err := h.service.History(ctx, scope, start, end, page, limit)
	if err != nil {
		h.writeFailure(w, ctx, "history lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, history)
}

// HandleUpdateEntry handles PATCH /attendance/entries/{entryID} requests.
func (h *Handler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	managerID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateEntryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry, err := h.service.UpdateEntry(ctx, entryID, req.ParsedPatch(), managerID, req.Reason)
	if err != nil {
		h.writeFailure(w, ctx, "entry update failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

// HandleDeleteEntry handles DELETE /attendance/entries/{entryID} requests.
func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	managerID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[DeleteEntryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(ctx, entryID, managerID, req.Reason); err != nil {
		h.writeFailure(w, ctx, "entry deletion failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAuditHistory handles GET /attendance/entries/{entryID}/audit requests.
func (h *Handler) HandleAuditHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireUser(w, ctx); !ok {
		return
	}
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audits, err := h.service.GetAuditHistory(ctx, entryID)
	if err != nil {
		h.writeFailure(w, ctx, "audit lookup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"audits": audits})
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func (h *Handler) writeFailure(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.LogAttrs(ctx, level, msg,
		slog.String("request_id", requestcontext.RequestID(ctx)),
		slog.Any("error", err),
	)
	httputil.WriteError(w, err)
}
