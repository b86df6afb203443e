package repository

import (
	"context"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, text, option_a, option_b, option_c, option_d, correct_index`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.Text, &q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.CorrectIndex)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Count returns the number of questions in the bank.
func (r *QuestionRepository) Count(ctx context.Context, q Querier) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

// PickRandom selects n distinct questions uniformly at random. The returned
// order is the presentation order for the session.
func (r *QuestionRepository) PickRandom(ctx context.Context, q Querier, n int) ([]model.Question, error) {
	rows, err := q.Query(ctx,
		`SELECT `+questionColumns+` FROM questions ORDER BY random() LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, q Querier, id int) (*model.Question, error) {
	return scanQuestion(q.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// GetByIDs retrieves questions by id, preserving the order of ids.
func (r *QuestionRepository) GetByIDs(ctx context.Context, q Querier, ids []int) ([]model.Question, error) {
	rows, err := q.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fetched, err := collectQuestions(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]model.Question, len(fetched))
	for _, question := range fetched {
		byID[question.ID] = question
	}
	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if question, ok := byID[id]; ok {
			ordered = append(ordered, question)
		}
	}
	return ordered, nil
}

// List retrieves the whole question bank.
func (r *QuestionRepository) List(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (text, option_a, option_b, option_c, option_d, correct_index)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectIndex,
	).Scan(&q.ID)
}

// Delete removes a question from the bank.
func (r *QuestionRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}
