package repository

import (
	"context"
	"errors"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateAssignment = errors.New("this trainer is already assigned to this cadet")

// EvaluationRepository handles assignments and evaluations between trainers
// and cadets.
type EvaluationRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRepository creates a new EvaluationRepository.
func NewEvaluationRepository(pool *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{pool: pool}
}

// ─── Assignments ────────────────────────────────────────────────────

// CreateAssignment pairs a trainer with a cadet. The pair is unique.
func (r *EvaluationRepository) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assignments (trainer_id, cadet_id) VALUES ($1, $2) RETURNING id`,
		a.TrainerID, a.CadetID,
	).Scan(&a.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateAssignment
	}
	return err
}

// DeleteAssignment removes a pairing.
func (r *EvaluationRepository) DeleteAssignment(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	return err
}

// ListAssignments retrieves all pairings, optionally filtered to one user on
// either side of the pair.
func (r *EvaluationRepository) ListAssignments(ctx context.Context, userID *int) ([]model.Assignment, error) {
	query := `SELECT id, trainer_id, cadet_id FROM assignments`
	var args []any
	if userID != nil {
		query += ` WHERE trainer_id = $1 OR cadet_id = $1`
		args = append(args, *userID)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.ID, &a.TrainerID, &a.CadetID); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// IsAssigned reports whether the two users are paired, in either direction.
func (r *EvaluationRepository) IsAssigned(ctx context.Context, userA, userB int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM assignments
			WHERE (trainer_id = $1 AND cadet_id = $2) OR (trainer_id = $2 AND cadet_id = $1)
		)`, userA, userB,
	).Scan(&exists)
	return exists, err
}

// ─── Evaluations ────────────────────────────────────────────────────

// CreateEvaluation records a trainer's review of a cadet.
func (r *EvaluationRepository) CreateEvaluation(ctx context.Context, e *model.Evaluation) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO evaluations (trainer_id, cadet_id, score, comments)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		e.TrainerID, e.CadetID, e.Score, e.Comments,
	).Scan(&e.ID, &e.CreatedAt)
}

// ListEvaluationsFor retrieves evaluations given by a trainer or received by
// a cadet, depending on the user's side of the pairing.
func (r *EvaluationRepository) ListEvaluationsFor(ctx context.Context, userID int, asTrainer bool) ([]model.Evaluation, error) {
	column := "cadet_id"
	if asTrainer {
		column = "trainer_id"
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, trainer_id, cadet_id, score, comments, created_at
		 FROM evaluations WHERE `+column+` = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []model.Evaluation
	for rows.Next() {
		var e model.Evaluation
		if err := rows.Scan(&e.ID, &e.TrainerID, &e.CadetID, &e.Score, &e.Comments, &e.CreatedAt); err != nil {
			return nil, err
		}
		evals = append(evals, e)
	}
	return evals, rows.Err()
}
