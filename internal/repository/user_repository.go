package repository

import (
	"context"
	"errors"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateUsername = errors.New("user with this username already exists")

// UserRepository handles staff user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, full_name, rank, password_hash, created_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.Rank, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByUsername retrieves a user by their unique username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, full_name, rank, password_hash, created_at
		 FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.FullName, &u.Rank, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// List retrieves users, optionally filtered by rank, ordered by rank then name.
func (r *UserRepository) List(ctx context.Context, rank *model.Rank) ([]model.User, error) {
	query := `SELECT id, username, full_name, rank, password_hash, created_at FROM users`
	var args []any
	if rank != nil {
		query += ` WHERE rank = $1`
		args = append(args, *rank)
	}
	query += ` ORDER BY rank, username`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.FullName, &u.Rank, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, full_name, rank, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Username, u.FullName, u.Rank, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	return err
}

// Update modifies full name, rank and optionally the password hash.
// An empty passwordHash keeps the current one.
func (r *UserRepository) Update(ctx context.Context, id int, fullName string, rank model.Rank, passwordHash string) error {
	if passwordHash != "" {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET full_name = $1, rank = $2, password_hash = $3 WHERE id = $4`,
			fullName, rank, passwordHash, id)
		return err
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET full_name = $1, rank = $2 WHERE id = $3`,
		fullName, rank, id)
	return err
}

// Delete removes a user. Assignments, evaluations, messages and
// notifications cascade at the schema level.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
