// internal/repository/postgres/audit_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rbadmin/internal/domain/auth"
)

const auditSchema = `
	CREATE TABLE IF NOT EXISTS console_audit (
		id          BIGSERIAL PRIMARY KEY,
		event       TEXT NOT NULL,
		email       TEXT NOT NULL DEFAULT '',
		subject     TEXT NOT NULL DEFAULT '',
		role        TEXT NOT NULL DEFAULT '',
		ip_address  TEXT NOT NULL DEFAULT '',
		user_agent  TEXT NOT NULL DEFAULT '',
		reason      TEXT NOT NULL DEFAULT '',
		request_id  TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS console_audit_created_at_idx ON console_audit (created_at DESC);
`

// DBTX is the part of *pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet.
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, auditSchema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Record inserts ev and fills in its id and timestamp.
func (r *AuditRepository) Record(ctx context.Context, ev *auth.AuditEvent) error {
	query := `
		INSERT INTO console_audit (event, email, subject, role, ip_address, user_agent, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		ev.Event, ev.Email, ev.Subject, ev.Role, ev.IPAddress, ev.UserAgent, ev.Reason, ev.RequestID,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// Recent returns the newest events first, optionally for one email.
func (r *AuditRepository) Recent(ctx context.Context, email string, limit int) ([]auth.AuditEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, event, email, subject, role, ip_address, user_agent, reason, request_id, created_at
		FROM console_audit
		WHERE ($1 = '' OR LOWER(email) = LOWER($1))
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (auth.AuditEvent, error) {
		var ev auth.AuditEvent
		err := row.Scan(
			&ev.ID, &ev.Event, &ev.Email, &ev.Subject, &ev.Role,
			&ev.IPAddress, &ev.UserAgent, &ev.Reason, &ev.RequestID, &ev.CreatedAt,
		)
		return ev, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit events: %w", err)
	}
	return events, nil
}
