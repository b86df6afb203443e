package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// User management errors.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrRankNotAllowed    = errors.New("rank outside your authority")
	ErrCannotManageUser  = errors.New("cannot manage this user")
)

// UserService handles staff account management and login. Every mutation is
// guarded by the rank hierarchy: actors manage only strictly lower ranks and
// never themselves.
type UserService struct {
	users *repository.UserRepository
	auth  *AuthService
	audit *AuditService
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository, auth *AuthService, audit *AuditService, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		auth:  auth,
		audit: audit,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// Login authenticates a staff user and issues a token. Unknown usernames and
// wrong passwords both return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := s.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.auth.GenerateStaffToken(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info().Int("user_id", user.ID).Str("rank", string(user.Rank)).Msg("Staff login")
	return &model.LoginResponse{Token: token, User: *user}, nil
}

// Logout invalidates the user's active session.
func (s *UserService) Logout(ctx context.Context, userID int) error {
	return s.auth.ClearStaffSession(ctx, userID)
}

// GetByID retrieves one staff user.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// List retrieves staff users, optionally filtered by rank.
func (s *UserService) List(ctx context.Context, rank *model.Rank) ([]model.User, error) {
	return s.users.List(ctx, rank)
}

// Create provisions a new staff account. The actor may only assign ranks
// strictly below their own.
func (s *UserService) Create(ctx context.Context, actor *model.User, req *model.CreateUserRequest) (*model.User, error) {
	if !req.Rank.Valid() || req.Rank.Level() >= actor.Rank.Level() {
		return nil, ErrRankNotAllowed
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     req.Username,
		FullName:     req.FullName,
		Rank:         req.Rank,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.AuditUserCreate,
		fmt.Sprintf("user %q (%s)", user.Username, user.Rank.Label()), "")
	return user, nil
}

// Update edits a staff account. The actor must outrank the target and any
// newly assigned rank must stay strictly below the actor's own.
func (s *UserService) Update(ctx context.Context, actor *model.User, id int, req *model.UpdateUserRequest) (*model.User, error) {
	target, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Rank.CanManage(actor.ID, target) {
		return nil, ErrCannotManageUser
	}

	newRank := target.Rank
	if req.Rank != "" {
		if !req.Rank.Valid() || req.Rank.Level() >= actor.Rank.Level() {
			return nil, ErrRankNotAllowed
		}
		newRank = req.Rank
	}

	hash := ""
	if req.Password != "" {
		if hash, err = s.auth.HashPassword(req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.users.Update(ctx, id, req.FullName, newRank, hash); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.AuditUserUpdate,
		fmt.Sprintf("user %q", target.Username), "")
	return s.GetByID(ctx, id)
}

// Delete removes a staff account and clears its session.
func (s *UserService) Delete(ctx context.Context, actor *model.User, id int) error {
	target, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Rank.CanManage(actor.ID, target) {
		return ErrCannotManageUser
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.auth.ClearStaffSession(ctx, id); err != nil {
		s.log.Warn().Err(err).Int("user_id", id).Msg("Failed to clear session of deleted user")
	}

	s.audit.Record(ctx, &actor.ID, model.AuditUserDelete,
		fmt.Sprintf("user %q", target.Username), "")
	return nil
}
