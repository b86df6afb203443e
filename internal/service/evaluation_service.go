package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Assignment and evaluation errors.
var (
	ErrInvalidPairing      = errors.New("assignments pair one trainer with one cadet")
	ErrDuplicateAssignment = errors.New("this trainer is already assigned to this cadet")
	ErrNotAssigned         = errors.New("trainer is not assigned to this cadet")
)

// lowScoreThreshold triggers a notification to command staff when a cadet
// scores below it.
const lowScoreThreshold = 50

// EvaluationService pairs trainers with cadets and records performance
// evaluations.
type EvaluationService struct {
	evals     *repository.EvaluationRepository
	users     *repository.UserRepository
	messaging *MessagingService
	log       zerolog.Logger
}

// NewEvaluationService creates a new EvaluationService.
func NewEvaluationService(evals *repository.EvaluationRepository, users *repository.UserRepository, messaging *MessagingService, log zerolog.Logger) *EvaluationService {
	return &EvaluationService{
		evals:     evals,
		users:     users,
		messaging: messaging,
		log:       log.With().Str("component", "evaluation_service").Logger(),
	}
}

// CreateAssignment pairs a trainer with a cadet. Both sides must hold the
// matching rank.
func (s *EvaluationService) CreateAssignment(ctx context.Context, req *model.CreateAssignmentRequest) (*model.Assignment, error) {
	trainer, err := s.users.GetByID(ctx, req.TrainerID)
	if err != nil {
		return nil, ErrInvalidPairing
	}
	cadet, err := s.users.GetByID(ctx, req.CadetID)
	if err != nil {
		return nil, ErrInvalidPairing
	}
	if trainer.Rank != model.RankTrainer || cadet.Rank != model.RankCadet {
		return nil, ErrInvalidPairing
	}

	assignment := &model.Assignment{TrainerID: trainer.ID, CadetID: cadet.ID}
	if err := s.evals.CreateAssignment(ctx, assignment); err != nil {
		if errors.Is(err, repository.ErrDuplicateAssignment) {
			return nil, ErrDuplicateAssignment
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	return assignment, nil
}

// DeleteAssignment removes a pairing.
func (s *EvaluationService) DeleteAssignment(ctx context.Context, id int) error {
	return s.evals.DeleteAssignment(ctx, id)
}

// ListAssignments retrieves pairings, optionally filtered to one user.
func (s *EvaluationService) ListAssignments(ctx context.Context, userID *int) ([]model.Assignment, error) {
	return s.evals.ListAssignments(ctx, userID)
}

// CreateEvaluation records a trainer's review of a cadet they are assigned
// to. A score below the threshold notifies the cadet's account so command
// staff reviewing the member see it flagged.
func (s *EvaluationService) CreateEvaluation(ctx context.Context, trainer *model.User, cadetID int, req *model.CreateEvaluationRequest) (*model.Evaluation, error) {
	assigned, err := s.evals.IsAssigned(ctx, trainer.ID, cadetID)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrNotAssigned
	}

	eval := &model.Evaluation{
		TrainerID: trainer.ID,
		CadetID:   cadetID,
		Score:     req.Score,
		Comments:  req.Comments,
	}
	if err := s.evals.CreateEvaluation(ctx, eval); err != nil {
		return nil, fmt.Errorf("create evaluation: %w", err)
	}

	if eval.Score < lowScoreThreshold {
		notice := fmt.Sprintf("You received an evaluation score of %d. Your trainer left comments for you.", eval.Score)
		if err := s.messaging.Notify(ctx, cadetID, notice); err != nil {
			s.log.Warn().Err(err).Int("cadet_id", cadetID).Msg("Failed to create low-score notification")
		}
	}

	s.log.Info().Int("trainer_id", trainer.ID).Int("cadet_id", cadetID).Int("score", eval.Score).Msg("Evaluation recorded")
	return eval, nil
}

// ListEvaluations returns evaluations for a user: given ones for trainers,
// received ones for cadets.
func (s *EvaluationService) ListEvaluations(ctx context.Context, user *model.User) ([]model.Evaluation, error) {
	return s.evals.ListEvaluationsFor(ctx, user.ID, user.Rank != model.RankCadet)
}
