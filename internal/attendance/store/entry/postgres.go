package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	"timeclock/pkg/platform/sentinel"
	txcontext "timeclock/pkg/platform/tx"
)

// uniqueViolation is the PostgreSQL error code raised when the partial unique
// indexes on active rows reject a write.
const uniqueViolation = "23505"

// Postgres persists time entries and their breaks. Writes join the caller's
// transaction when one is carried in the context.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed entry store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const entryColumns = `id, uuid, user_id, clock_in_time, clock_out_time, status, total_break_minutes, notes, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, e *models.TimeEntry) error {
	query := `
		INSERT INTO time_entries (uuid, user_id, clock_in_time, clock_out_time, status, total_break_minutes, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(e.UUID),
		uuid.UUID(e.UserID),
		e.ClockInTime,
		nullTimePtr(e.ClockOutTime),
		string(e.Status),
		e.TotalBreakMinutes,
		nullString(e.Notes),
		e.CreatedAt,
		e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create entry: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, e *models.TimeEntry) error {
	query := `
		UPDATE time_entries
		SET clock_in_time = $2, clock_out_time = $3, status = $4,
		    total_break_minutes = $5, notes = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		e.ID,
		e.ClockInTime,
		nullTimePtr(e.ClockOutTime),
		string(e.Status),
		e.TotalBreakMinutes,
		nullString(e.Notes),
		e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update entry: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("update entry: %w", err)
	}
	return requireRowAffected(result, "update entry")
}

// Delete hard-removes the entry; breaks cascade at the schema level. Audit
// rows are kept by design.
func (s *Postgres) Delete(ctx context.Context, entryID int64) error {
	result, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM time_entries WHERE id = $1`, entryID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireRowAffected(result, "delete entry")
}

func (s *Postgres) FindActiveByUser(ctx context.Context, userID id.UserID) (*models.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE user_id = $1 AND status = 'active'`
	e, err := s.scanEntry(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(userID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find active entry: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find active entry: %w", err)
	}
	if err := s.attachBreaks(ctx, []*models.TimeEntry{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Postgres) FindByUUID(ctx context.Context, entryID id.EntryID) (*models.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE uuid = $1`
	e, err := s.scanEntry(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(entryID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("find entry by uuid: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find entry by uuid: %w", err)
	}
	if err := s.attachBreaks(ctx, []*models.TimeEntry{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Postgres) CreateBreak(ctx context.Context, b *models.BreakPeriod) error {
	query := `
		INSERT INTO break_periods (uuid, time_entry_id, start_time, end_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(b.UUID),
		b.TimeEntryID,
		b.StartTime,
		nullTimePtr(b.EndTime),
		string(b.Status),
		b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create break: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create break: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateBreak(ctx context.Context, b *models.BreakPeriod) error {
	query := `
		UPDATE break_periods
		SET start_time = $2, end_time = $3, status = $4
		WHERE id = $1
	`
	result, err := s.execer(ctx).ExecContext(ctx, query,
		b.ID,
		b.StartTime,
		nullTimePtr(b.EndTime),
		string(b.Status),
	)
	if err != nil {
		return fmt.Errorf("update break: %w", err)
	}
	return requireRowAffected(result, "update break")
}

// List returns entries matching the filter ordered by clock-in time
// descending, hydrated with their breaks, plus the unpaginated total.
func (s *Postgres) List(ctx context.Context, filter models.EntryFilter) ([]*models.TimeEntry, int, error) {
	where, args := buildFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM time_entries` + where
	if err := s.execer(ctx).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	query := `SELECT ` + entryColumns + ` FROM time_entries` + where + ` ORDER BY clock_in_time DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(filter.Limit) + ` OFFSET ` + strconv.Itoa(filter.Offset)
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		e, err := s.scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list entries: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}

	if err := s.attachBreaks(ctx, entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func buildFilter(filter models.EntryFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.UserID != nil {
		args = append(args, uuid.UUID(*filter.UserID))
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if !filter.Start.IsZero() {
		args = append(args, filter.Start)
		clauses = append(clauses, fmt.Sprintf("clock_in_time >= $%d", len(args)))
	}
	if !filter.End.IsZero() {
		args = append(args, filter.End)
		clauses = append(clauses, fmt.Sprintf("clock_in_time < $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanEntry(row rowScanner) (*models.TimeEntry, error) {
	var e models.TimeEntry
	var entryUUID, userUUID uuid.UUID
	var clockOut sql.NullTime
	var status string
	var notes sql.NullString

	err := row.Scan(&e.ID, &entryUUID, &userUUID, &e.ClockInTime, &clockOut,
		&status, &e.TotalBreakMinutes, &notes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}

	e.UUID = id.EntryID(entryUUID)
	e.UserID = id.UserID(userUUID)
	e.Status = models.EntryStatus(status)
	if clockOut.Valid {
		t := clockOut.Time
		e.ClockOutTime = &t
	}
	if notes.Valid {
		e.Notes = notes.String
	}
	return &e, nil
}

func (s *Postgres) attachBreaks(ctx context.Context, entries []*models.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	byID := make(map[int64]*models.TimeEntry, len(entries))
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	query := `
		SELECT id, uuid, time_entry_id, start_time, end_time, status, created_at
		FROM break_periods
		WHERE time_entry_id = ANY($1)
		ORDER BY start_time ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b models.BreakPeriod
		var breakUUID uuid.UUID
		var endTime sql.NullTime
		var status string
		if err := rows.Scan(&b.ID, &breakUUID, &b.TimeEntryID, &b.StartTime, &endTime, &status, &b.CreatedAt); err != nil {
			return fmt.Errorf("scan break: %w", err)
		}
		b.UUID = id.BreakID(breakUUID)
		b.Status = models.BreakStatus(status)
		if endTime.Valid {
			t := endTime.Time
			b.EndTime = &t
		}
		if e, ok := byID[b.TimeEntryID]; ok {
			e.Breaks = append(e.Breaks, &b)
		}
	}
	return rows.Err()
}

func requireRowAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, sentinel.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullTimePtr(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
