package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository handles test session and answer data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Pool exposes the underlying pool so the exam service can open transactions.
func (r *SessionRepository) Pool() *pgxpool.Pool {
	return r.pool
}

const sessionColumns = `id, application_id, session_token, discord_id,
	started_at, finished_at, is_active, score, questions_order`

func scanSession(row pgx.Row) (*model.TestSession, error) {
	s := &model.TestSession{}
	var order string
	err := row.Scan(&s.ID, &s.AppID, &s.Token, &s.DiscordID,
		&s.StartedAt, &s.FinishedAt, &s.IsActive, &s.Score, &order)
	if err != nil {
		return nil, err
	}
	s.QuestionIDs = parseQuestionOrder(order)
	return s, nil
}

// parseQuestionOrder decodes the stored comma-separated question id list.
func parseQuestionOrder(order string) []int {
	if order == "" {
		return nil
	}
	parts := strings.Split(order, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}

func encodeQuestionOrder(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// Create inserts a new session inside the caller's transaction.
func (r *SessionRepository) Create(ctx context.Context, q Querier, s *model.TestSession) error {
	return q.QueryRow(ctx,
		`INSERT INTO test_sessions (application_id, session_token, discord_id, started_at, is_active, score, questions_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		s.AppID, s.Token, s.DiscordID, s.StartedAt, s.IsActive, s.Score, encodeQuestionOrder(s.QuestionIDs),
	).Scan(&s.ID)
}

// GetByID retrieves a session.
func (r *SessionRepository) GetByID(ctx context.Context, q Querier, id int) (*model.TestSession, error) {
	return scanSession(q.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id))
}

// GetByIDForUpdate retrieves a session with a row lock.
func (r *SessionRepository) GetByIDForUpdate(ctx context.Context, q Querier, id int) (*model.TestSession, error) {
	return scanSession(q.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1 FOR UPDATE`, id))
}

// GetLatestByApplication retrieves the most recent session for a candidate,
// or pgx.ErrNoRows if none exists.
func (r *SessionRepository) GetLatestByApplication(ctx context.Context, appID int) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions
		 WHERE application_id = $1
		 ORDER BY id DESC LIMIT 1`, appID))
}

// ListByApplication retrieves all historical sessions for a candidate.
func (r *SessionRepository) ListByApplication(ctx context.Context, appID int) ([]model.TestSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions
		 WHERE application_id = $1 ORDER BY id DESC`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.TestSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Finish marks a session completed with its final score.
func (r *SessionRepository) Finish(ctx context.Context, q Querier, id int, score float64, finishedAt time.Time) error {
	_, err := q.Exec(ctx,
		`UPDATE test_sessions SET is_active = FALSE, finished_at = $1, score = $2 WHERE id = $3`,
		finishedAt, score, id)
	return err
}

// UpdateScore stores the running score.
func (r *SessionRepository) UpdateScore(ctx context.Context, q Querier, id int, score float64) error {
	_, err := q.Exec(ctx, `UPDATE test_sessions SET score = $1 WHERE id = $2`, score, id)
	return err
}

// InterruptActive force-closes an active session without a finish timestamp.
// The (is_active=false, finished_at IS NULL, started_at set) combination is
// how interrupted sessions stay distinguishable from completed ones.
func (r *SessionRepository) InterruptActive(ctx context.Context, q Querier, appID int) error {
	_, err := q.Exec(ctx,
		`UPDATE test_sessions SET is_active = FALSE
		 WHERE application_id = $1 AND is_active = TRUE`, appID)
	return err
}

// InterruptAllActive force-closes every active session.
func (r *SessionRepository) InterruptAllActive(ctx context.Context, q Querier) ([]int, error) {
	rows, err := q.Query(ctx,
		`UPDATE test_sessions SET is_active = FALSE
		 WHERE is_active = TRUE
		 RETURNING application_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		appIDs = append(appIDs, id)
	}
	return appIDs, rows.Err()
}

// ListActiveIDsStartedBefore returns ids of active sessions that started
// before the cutoff. Used by the expiry sweeper to find overdue sessions.
func (r *SessionRepository) ListActiveIDsStartedBefore(ctx context.Context, cutoff time.Time) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM test_sessions
		 WHERE is_active = TRUE AND started_at < $1`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountActiveReferencing reports how many active sessions carry the question
// in their fixed presentation order.
func (r *SessionRepository) CountActiveReferencing(ctx context.Context, questionID int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_sessions
		 WHERE is_active = TRUE
		   AND $1 = ANY(string_to_array(questions_order, ',')::int[])`, questionID,
	).Scan(&n)
	return n, err
}

// ─── Answers ────────────────────────────────────────────────────────

// UpsertAnswer records an answer, replacing any previous answer for the same
// (session, question) pair. Re-answering is idempotent.
func (r *SessionRepository) UpsertAnswer(ctx context.Context, q Querier, a *model.Answer) error {
	return q.QueryRow(ctx,
		`INSERT INTO applicant_answers (session_id, question_id, selected_index, is_correct)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET selected_index = EXCLUDED.selected_index,
		               is_correct = EXCLUDED.is_correct,
		               answered_at = NOW()
		 RETURNING id, answered_at`,
		a.SessionID, a.QuestionID, a.SelectedIndex, a.IsCorrect,
	).Scan(&a.ID, &a.AnsweredAt)
}

// CountAnswers returns total and correct answer counts for a session.
func (r *SessionRepository) CountAnswers(ctx context.Context, q Querier, sessionID int) (total, correct int, err error) {
	err = q.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct)
		 FROM applicant_answers WHERE session_id = $1`, sessionID,
	).Scan(&total, &correct)
	return total, correct, err
}

// ListAnswers retrieves all answers for a session.
func (r *SessionRepository) ListAnswers(ctx context.Context, q Querier, sessionID int) ([]model.Answer, error) {
	rows, err := q.Query(ctx,
		`SELECT id, session_id, question_id, selected_index, is_correct, answered_at
		 FROM applicant_answers WHERE session_id = $1 ORDER BY answered_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.SelectedIndex, &a.IsCorrect, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
