package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/rs/zerolog"
)

// Question bank errors.
var (
	ErrInvalidQuestion = errors.New("question options must all be non-empty")
	ErrQuestionInUse   = errors.New("question is referenced by an active test session")
)

// QuestionService curates the test question bank.
type QuestionService struct {
	questions *repository.QuestionRepository
	sessions  *repository.SessionRepository
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions *repository.QuestionRepository, sessions *repository.SessionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		sessions:  sessions,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// List returns the whole question bank, answer keys included.
func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	return s.questions.List(ctx)
}

// Create adds a question after checking every option is filled.
func (s *QuestionService) Create(ctx context.Context, req *model.AddQuestionRequest) (*model.Question, error) {
	for _, opt := range req.Options {
		if strings.TrimSpace(opt) == "" {
			return nil, ErrInvalidQuestion
		}
	}

	question := &model.Question{
		Text:         req.Text,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.log.Info().Int("question_id", question.ID).Msg("Question added to bank")
	return question, nil
}

// Delete removes a question. Questions still referenced by an active session
// are refused; graded answers referencing a removed question keep their
// result.
func (s *QuestionService) Delete(ctx context.Context, id int) error {
	active, err := s.sessions.CountActiveReferencing(ctx, id)
	if err != nil {
		return fmt.Errorf("check active sessions: %w", err)
	}
	if active > 0 {
		return ErrQuestionInUse
	}
	return s.questions.Delete(ctx, id)
}
