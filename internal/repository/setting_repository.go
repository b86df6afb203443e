package repository

import (
	"context"
	"time"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingRepository handles the singleton intake setting row.
type SettingRepository struct {
	pool *pgxpool.Pool
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepository {
	return &SettingRepository{pool: pool}
}

// Pool exposes the underlying pool for callers reading outside a transaction.
func (r *SettingRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Get retrieves the intake setting. The migration seeds the single row, so a
// missing row is an error.
func (r *SettingRepository) Get(ctx context.Context, q Querier) (*model.IntakeSetting, error) {
	s := &model.IntakeSetting{}
	err := q.QueryRow(ctx,
		`SELECT status, closed_message, reopen_at, updated_at
		 FROM intake_settings WHERE id = 1`,
	).Scan(&s.Status, &s.ClosedMessage, &s.ReopenAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SetOpen opens intake and clears closure fields.
func (r *SettingRepository) SetOpen(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx,
		`UPDATE intake_settings
		 SET status = $1, closed_message = NULL, reopen_at = NULL, updated_at = NOW()
		 WHERE id = 1`, model.IntakeOpen)
	return err
}

// SetClosed closes intake with an optional message and reopen time.
func (r *SettingRepository) SetClosed(ctx context.Context, q Querier, message *string, reopenAt *time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE intake_settings
		 SET status = $1, closed_message = $2, reopen_at = $3, updated_at = NOW()
		 WHERE id = 1`, model.IntakeClosed, message, reopenAt)
	return err
}
