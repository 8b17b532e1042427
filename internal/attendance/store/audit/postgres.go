package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"timeclock/internal/attendance/models"
	id "timeclock/pkg/domain"
	txcontext "timeclock/pkg/platform/tx"
)

// Postgres persists audit rows. Append joins the caller's transaction when
// one is carried in the context, which is how a state transition and its
// audit row commit or roll back together.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
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

func (s *Postgres) Append(ctx context.Context, a *models.AuditEntry) error {
	query := `
		INSERT INTO time_entry_audits (uuid, time_entry_id, modified_by_user_id, action, field_name, old_value, new_value, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.execer(ctx).QueryRowContext(ctx, query,
		uuid.UUID(a.UUID),
		a.TimeEntryID,
		uuid.UUID(a.ModifiedByUserID),
		string(a.Action),
		a.FieldName,
		a.OldValue,
		a.NewValue,
		a.Reason,
		a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListByEntry returns all audit rows for an entry, most recent first.
func (s *Postgres) ListByEntry(ctx context.Context, timeEntryID int64) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, uuid, time_entry_id, modified_by_user_id, action, field_name, old_value, new_value, reason, created_at
		FROM time_entry_audits
		WHERE time_entry_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, timeEntryID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*models.AuditEntry
	for rows.Next() {
		var a models.AuditEntry
		var auditUUID, actorUUID uuid.UUID
		var action string
		if err := rows.Scan(&a.ID, &auditUUID, &a.TimeEntryID, &actorUUID, &action,
			&a.FieldName, &a.OldValue, &a.NewValue, &a.Reason, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		a.UUID = id.AuditID(auditUUID)
		a.ModifiedByUserID = id.UserID(actorUUID)
		a.Action = models.AuditAction(action)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return out, nil
}
