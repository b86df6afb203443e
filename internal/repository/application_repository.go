package repository

import (
	"context"
	"errors"
	"time"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateDiscordID = errors.New("application for this discord identity already exists")

// ApplicationRepository handles candidate application data access.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `id, discord_id, character_name, status, submitted_at,
	test_started_at, closed_message, reopen_at, is_hidden, fallback_note`

func scanApplication(row pgx.Row) (*model.Application, error) {
	a := &model.Application{}
	err := row.Scan(&a.ID, &a.DiscordID, &a.CharacterName, &a.Status, &a.SubmittedAt,
		&a.TestStartedAt, &a.ClosedMessage, &a.ReopenAt, &a.IsHidden, &a.FallbackNote)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an application by ID using the given querier (pool or tx).
func (r *ApplicationRepository) GetByID(ctx context.Context, q Querier, id int) (*model.Application, error) {
	return scanApplication(q.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves an application with a row lock, for use inside a
// transaction that will mutate it.
func (r *ApplicationRepository) GetByIDForUpdate(ctx context.Context, q Querier, id int) (*model.Application, error) {
	return scanApplication(q.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id))
}

// GetByDiscordID retrieves an application by its Discord identity.
func (r *ApplicationRepository) GetByDiscordID(ctx context.Context, discordID string) (*model.Application, error) {
	return scanApplication(r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE discord_id = $1`, discordID))
}

// Create inserts a new application. The unique index on discord_id enforces
// the one-lifetime-submission rule.
func (r *ApplicationRepository) Create(ctx context.Context, a *model.Application) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO applications (discord_id, character_name, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, submitted_at`,
		a.DiscordID, a.CharacterName, model.ApplicationStatusOpen,
	).Scan(&a.ID, &a.SubmittedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateDiscordID
	}
	if err == nil {
		a.Status = model.ApplicationStatusOpen
	}
	return err
}

// List retrieves applications, optionally including hidden ones and filtered
// by a case-insensitive character name search.
func (r *ApplicationRepository) List(ctx context.Context, includeHidden bool, search string) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications`
	var args []any
	where := ""
	if !includeHidden {
		where = ` WHERE is_hidden = FALSE`
	}
	if search != "" {
		if where == "" {
			where = ` WHERE character_name ILIKE $1`
		} else {
			where += ` AND character_name ILIKE $1`
		}
		args = append(args, "%"+search+"%")
	}
	query += where + ` ORDER BY submitted_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

// UpdateStatus sets the lifecycle status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, q Querier, id int, status model.ApplicationStatus) error {
	_, err := q.Exec(ctx, `UPDATE applications SET status = $1 WHERE id = $2`, status, id)
	return err
}

// MarkTesting stamps the one-time exam start inside the caller's transaction.
func (r *ApplicationRepository) MarkTesting(ctx context.Context, q Querier, id int, startedAt time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE applications SET status = $1, test_started_at = $2 WHERE id = $3`,
		model.ApplicationStatusTesting, startedAt, id)
	return err
}

// Close sets status closed with an optional message and reopen time.
func (r *ApplicationRepository) Close(ctx context.Context, q Querier, id int, message *string, reopenAt *time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE applications SET status = $1, closed_message = $2, reopen_at = $3 WHERE id = $4`,
		model.ApplicationStatusClosed, message, reopenAt, id)
	return err
}

// Reopen sets status open and clears closure fields.
func (r *ApplicationRepository) Reopen(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE applications SET status = $1, closed_message = NULL, reopen_at = NULL WHERE id = $2`,
		model.ApplicationStatusOpen, id)
	return err
}

// SetHidden toggles the hidden flag.
func (r *ApplicationRepository) SetHidden(ctx context.Context, id int, hidden bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE applications SET is_hidden = $1 WHERE id = $2`, hidden, id)
	return err
}

// SetFallbackNote stores content that could not be delivered externally.
func (r *ApplicationRepository) SetFallbackNote(ctx context.Context, id int, note string) error {
	_, err := r.pool.Exec(ctx, `UPDATE applications SET fallback_note = $1 WHERE id = $2`, note, id)
	return err
}

// Delete removes an application. Sessions and answers cascade.
func (r *ApplicationRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	return err
}
