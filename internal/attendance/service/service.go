// Package service implements the attendance facade: the clock-in/clock-out
// state machine, the break sub-machine, manager edits with their audit trail,
// and the read-side aggregations.
//
// Every mutating operation runs inside one transaction spanning the
// state-machine check, the row write, and the audit write. A failed audit
// write aborts the whole transaction: a state transition is never persisted
// without its audit row.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"timeclock/internal/attendance/metrics"
	"timeclock/internal/attendance/models"
	"timeclock/internal/platform/lock"
	id "timeclock/pkg/domain"
)

// EntryStore persists time entries and their breaks. Implementations must
// enforce the active-row uniqueness guards at the storage layer and report
// violations as sentinel.ErrConflict.
type EntryStore interface {
	Create(ctx context.Context, e *models.TimeEntry) error
	Update(ctx context.Context, e *models.TimeEntry) error
	Delete(ctx context.Context, entryID int64) error
	FindActiveByUser(ctx context.Context, userID id.UserID) (*models.TimeEntry, error)
	FindByUUID(ctx context.Context, entryID id.EntryID) (*models.TimeEntry, error)
	CreateBreak(ctx context.Context, b *models.BreakPeriod) error
	UpdateBreak(ctx context.Context, b *models.BreakPeriod) error
	List(ctx context.Context, filter models.EntryFilter) ([]*models.TimeEntry, int, error)
}

// AuditStore appends and reads the append-only audit trail.
type AuditStore interface {
	Append(ctx context.Context, a *models.AuditEntry) error
	ListByEntry(ctx context.Context, timeEntryID int64) ([]*models.AuditEntry, error)
}

// StoreTx provides a transactional boundary for attendance mutations.
// Implementations may wrap a database transaction or, in-memory, run the
// callback directly.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// noopTx runs the callback without a transaction. In-memory stores are
// internally consistent, so unit tests and single-store setups need no more.
type noopTx struct{}

func (noopTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// Service is the attendance facade. Authorization happens in the caller
// layer: manager-only operations assume the manager check already passed.
type Service struct {
	entries EntryStore
	audits  AuditStore
	tx      StoreTx
	locker  lock.Locker
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type serviceConfig struct {
	tx      StoreTx
	locker  lock.Locker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*serviceConfig)

// WithTx sets the transactional boundary. Production wiring passes the
// postgres implementation; the default runs callbacks directly.
func WithTx(tx StoreTx) Option {
	return func(cfg *serviceConfig) { cfg.tx = tx }
}

// WithLocker sets the per-user locker. Production multi-instance wiring
// passes the Redis locker; the default is process-local.
func WithLocker(locker lock.Locker) Option {
	return func(cfg *serviceConfig) { cfg.locker = locker }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

// WithMetrics sets the Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// New constructs the attendance service.
func New(entries EntryStore, audits AuditStore, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tx == nil {
		cfg.tx = noopTx{}
	}
	if cfg.locker == nil {
		cfg.locker = lock.NewMemory()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		entries: entries,
		audits:  audits,
		tx:      cfg.tx,
		locker:  cfg.locker,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		tracer:  otel.Tracer("timeclock/attendance"),
	}
}

func (s *Service) incClockIns() {
	if s.metrics != nil {
		s.metrics.ClockIns.Inc()
	}
}

func (s *Service) incClockOuts() {
	if s.metrics != nil {
		s.metrics.ClockOuts.Inc()
	}
}

func (s *Service) incBreaksStarted() {
	if s.metrics != nil {
		s.metrics.BreaksStarted.Inc()
	}
}

func (s *Service) incBreaksEnded() {
	if s.metrics != nil {
		s.metrics.BreaksEnded.Inc()
	}
}

func (s *Service) incManagerEdits() {
	if s.metrics != nil {
		s.metrics.ManagerEdits.Inc()
	}
}

func (s *Service) incManagerDeletes() {
	if s.metrics != nil {
		s.metrics.ManagerDeletes.Inc()
	}
}

func (s *Service) incStateConflicts() {
	if s.metrics != nil {
		s.metrics.StateConflicts.Inc()
	}
}
