package repository

import (
	"context"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository handles the append-only audit log.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Append inserts an immutable audit entry. There are no update or delete
// operations on this table.
func (r *AuditRepository) Append(ctx context.Context, e *model.AuditEntry) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO audit_log (actor_id, action, target, details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.ActorID, e.Action, e.Target, e.Details,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListRecent retrieves the newest entries with pagination.
func (r *AuditRepository) ListRecent(ctx context.Context, limit, offset int) ([]model.AuditEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_id, action, target, details, created_at
		 FROM audit_log ORDER BY id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Target, &e.Details, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
