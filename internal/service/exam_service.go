package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Exam flow errors. ErrExamNotAuthorized deliberately covers every access
// failure (unknown token, wrong identity, foreign session) so responses never
// reveal which check failed.
var (
	ErrExamNotAuthorized   = errors.New("not authorized for this test")
	ErrAlreadyAttempted    = errors.New("test already attempted")
	ErrSessionInactive     = errors.New("test session is not active")
	ErrInsufficientContent = errors.New("not enough questions available")
	ErrApplicationClosed   = errors.New("application is closed")
)

// ExamService implements the timed test session state machine. Every state
// transition runs in a single transaction with the session row locked.
type ExamService struct {
	cfg       *config.Config
	apps      *repository.ApplicationRepository
	sessions  *repository.SessionRepository
	questions *repository.QuestionRepository
	settings  *repository.SettingRepository
	rdb       *redis.Client
	audit     *AuditService
	log       zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	cfg *config.Config,
	apps *repository.ApplicationRepository,
	sessions *repository.SessionRepository,
	questions *repository.QuestionRepository,
	settings *repository.SettingRepository,
	rdb *redis.Client,
	audit *AuditService,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		cfg:       cfg,
		apps:      apps,
		sessions:  sessions,
		questions: questions,
		settings:  settings,
		rdb:       rdb,
		audit:     audit,
		log:       log.With().Str("component", "exam_service").Logger(),
	}
}

// newSessionToken returns a 256-bit random token in hex.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// StartResult is returned once, at session creation. The token is never
// readable again afterwards.
type StartResult struct {
	SessionID        int     `json:"session_id"`
	Token            string  `json:"token"`
	CountdownSeconds float64 `json:"countdown_seconds"`
}

// Start begins the one and only test attempt for a candidate. The application
// row is locked so concurrent starts cannot race past the attempt check.
func (s *ExamService) Start(ctx context.Context, discordID string) (*StartResult, error) {
	app, err := s.apps.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotAuthorized
		}
		return nil, fmt.Errorf("load application: %w", err)
	}

	tx, err := s.sessions.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.apps.GetByIDForUpdate(ctx, tx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("lock application: %w", err)
	}

	if locked.TestStartedAt != nil {
		return nil, ErrAlreadyAttempted
	}
	if locked.Status == model.ApplicationStatusClosed {
		if locked.ReopenAt == nil || locked.ReopenAt.After(time.Now()) {
			return nil, ErrApplicationClosed
		}
	}

	setting, err := s.settings.Get(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load intake setting: %w", err)
	}
	if !setting.EffectivelyOpen(time.Now()) {
		return nil, ErrApplicationClosed
	}

	picked, err := s.questions.PickRandom(ctx, tx, s.cfg.ExamQuestionCount)
	if err != nil {
		return nil, fmt.Errorf("pick questions: %w", err)
	}
	if len(picked) < s.cfg.ExamQuestionCount {
		return nil, ErrInsufficientContent
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	questionIDs := make([]int, len(picked))
	for i, q := range picked {
		questionIDs[i] = q.ID
	}

	session := &model.TestSession{
		AppID:       locked.ID,
		Token:       token,
		DiscordID:   discordID,
		StartedAt:   &now,
		IsActive:    true,
		QuestionIDs: questionIDs,
	}
	if err := s.sessions.Create(ctx, tx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.apps.MarkTesting(ctx, tx, locked.ID, now); err != nil {
		return nil, fmt.Errorf("mark testing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.audit.Record(ctx, nil, model.AuditStartTest,
		fmt.Sprintf("application #%d (%s)", locked.ID, locked.CharacterName), "")
	s.log.Info().Int("application_id", locked.ID).Int("session_id", session.ID).Msg("Test session started")

	return &StartResult{
		SessionID:        session.ID,
		Token:            token,
		CountdownSeconds: s.cfg.ExamCountdown.Seconds(),
	}, nil
}

// authorize resolves the candidate's current session and verifies the access
// token. All failure modes collapse into ErrExamNotAuthorized.
func (s *ExamService) authorize(ctx context.Context, discordID, token string) (*model.TestSession, error) {
	app, err := s.apps.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotAuthorized
		}
		return nil, fmt.Errorf("load application: %w", err)
	}

	session, err := s.sessions.GetLatestByApplication(ctx, app.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotAuthorized
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(session.Token), []byte(token)) != 1 {
		return nil, ErrExamNotAuthorized
	}
	if session.DiscordID != discordID {
		return nil, ErrExamNotAuthorized
	}
	return session, nil
}

// bindContext binds the session to the first client context that touches it.
// First write wins; later contexts with a different id are turned away. The
// binding expires with the exam window, so a Redis flush degrades to no
// binding rather than a lockout.
func (s *ExamService) bindContext(ctx context.Context, sessionID int, contextID string) error {
	if contextID == "" {
		return ErrExamNotAuthorized
	}
	key := config.CacheKey.SessionContextKey(sessionID)
	ttl := s.cfg.TotalExamWindow() + 10*time.Minute

	set, err := s.rdb.SetNX(ctx, key, contextID, ttl).Result()
	if err != nil {
		s.log.Warn().Err(err).Int("session_id", sessionID).Msg("Context binding unavailable")
		return nil
	}
	if set {
		return nil
	}

	bound, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	if bound != contextID {
		return ErrExamNotAuthorized
	}
	return nil
}

// windowDeadline is the instant the whole session expires.
func (s *ExamService) windowDeadline(session *model.TestSession) time.Time {
	return session.StartedAt.Add(s.cfg.TotalExamWindow())
}

// countdownRemaining is the unelapsed part of the initial reading countdown,
// clamped at zero so a reload never resets or extends it.
func (s *ExamService) countdownRemaining(session *model.TestSession, now time.Time) float64 {
	remaining := s.cfg.ExamCountdown.Seconds() - now.Sub(*session.StartedAt).Seconds()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// expireIfNeeded finishes an active session whose window has elapsed, scoring
// whatever was answered. Must run inside the caller's transaction with the
// session row locked.
func (s *ExamService) expireIfNeeded(ctx context.Context, tx pgx.Tx, session *model.TestSession, now time.Time) (bool, error) {
	if session.State() != model.SessionActive || now.Before(s.windowDeadline(session)) {
		return false, nil
	}

	_, correct, err := s.sessions.CountAnswers(ctx, tx, session.ID)
	if err != nil {
		return false, fmt.Errorf("count answers: %w", err)
	}
	score := float64(correct)
	deadline := s.windowDeadline(session)
	if err := s.sessions.Finish(ctx, tx, session.ID, score, deadline); err != nil {
		return false, fmt.Errorf("finish expired session: %w", err)
	}
	if err := s.apps.UpdateStatus(ctx, tx, session.AppID, model.ApplicationStatusCompleted); err != nil {
		return false, fmt.Errorf("complete application: %w", err)
	}

	session.IsActive = false
	session.FinishedAt = &deadline
	session.Score = score
	return true, nil
}

// Access returns the candidate's view of their session: the fixed question
// order, answers so far and remaining time. Expired sessions are finalized on
// the way through.
func (s *ExamService) Access(ctx context.Context, discordID, token, contextID string) (*model.SessionView, error) {
	session, err := s.authorize(ctx, discordID, token)
	if err != nil {
		return nil, err
	}
	if err := s.bindContext(ctx, session.ID, contextID); err != nil {
		return nil, err
	}

	tx, err := s.sessions.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err = s.sessions.GetByIDForUpdate(ctx, tx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}

	expired, err := s.expireIfNeeded(ctx, tx, session, time.Now())
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.GetByIDs(ctx, tx, session.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	answers, err := s.sessions.ListAnswers(ctx, tx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	if expired {
		s.audit.Record(ctx, nil, model.AuditFinishTest,
			fmt.Sprintf("application #%d", session.AppID), "window elapsed")
	}

	view := &model.SessionView{
		SessionID: session.ID,
		State:     session.State(),
		Questions: make([]model.PublicQuestion, 0, len(questions)),
		Answered:  make(map[int]int),
	}
	for _, q := range questions {
		view.Questions = append(view.Questions, q.Public())
	}
	for _, a := range answers {
		if a.SelectedIndex != nil {
			view.Answered[a.QuestionID] = *a.SelectedIndex
		}
	}
	if session.State() == model.SessionActive {
		now := time.Now()
		view.RemainingSeconds = s.windowDeadline(session).Sub(now).Seconds()
		if view.RemainingSeconds < 0 {
			view.RemainingSeconds = 0
		}
		view.CountdownRemaining = s.countdownRemaining(session, now)
	}
	return view, nil
}

// AnswerResult reports the outcome of one answer submission.
type AnswerResult struct {
	Answered         int     `json:"answered"`
	Total            int     `json:"total"`
	Finished         bool    `json:"finished"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

// SubmitAnswer records one answer. Re-answering the same question replaces
// the earlier answer. Recording the last unanswered question finishes the
// session and completes the application in the same transaction.
func (s *ExamService) SubmitAnswer(ctx context.Context, discordID, token, contextID string, req *model.SubmitAnswerRequest) (*AnswerResult, error) {
	session, err := s.authorize(ctx, discordID, token)
	if err != nil {
		return nil, err
	}
	if err := s.bindContext(ctx, session.ID, contextID); err != nil {
		return nil, err
	}

	tx, err := s.sessions.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err = s.sessions.GetByIDForUpdate(ctx, tx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}

	now := time.Now()
	if expired, err := s.expireIfNeeded(ctx, tx, session, now); err != nil {
		return nil, err
	} else if expired {
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		return nil, ErrSessionInactive
	}
	if session.State() != model.SessionActive {
		return nil, ErrSessionInactive
	}

	if !containsID(session.QuestionIDs, req.QuestionID) {
		return nil, ErrExamNotAuthorized
	}

	question, err := s.questions.GetByID(ctx, tx, req.QuestionID)
	isCorrect := false
	switch {
	case err == nil:
		isCorrect = req.SelectedIndex != nil && *req.SelectedIndex == question.CorrectIndex
	case errors.Is(err, pgx.ErrNoRows):
		// Question removed from the bank mid-session; the slot grades as
		// incorrect instead of failing the submission.
	default:
		return nil, fmt.Errorf("load question: %w", err)
	}

	answer := &model.Answer{
		SessionID:     session.ID,
		QuestionID:    req.QuestionID,
		SelectedIndex: req.SelectedIndex,
		IsCorrect:     isCorrect,
	}
	if err := s.sessions.UpsertAnswer(ctx, tx, answer); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	total, correct, err := s.sessions.CountAnswers(ctx, tx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("count answers: %w", err)
	}

	score := float64(correct)
	finished := total >= len(session.QuestionIDs)
	if finished {
		if err := s.sessions.Finish(ctx, tx, session.ID, score, now); err != nil {
			return nil, fmt.Errorf("finish session: %w", err)
		}
		if err := s.apps.UpdateStatus(ctx, tx, session.AppID, model.ApplicationStatusCompleted); err != nil {
			return nil, fmt.Errorf("complete application: %w", err)
		}
	} else {
		if err := s.sessions.UpdateScore(ctx, tx, session.ID, score); err != nil {
			return nil, fmt.Errorf("update score: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if finished {
		s.audit.Record(ctx, nil, model.AuditFinishTest,
			fmt.Sprintf("application #%d", session.AppID),
			fmt.Sprintf("score %.0f/%d", score, len(session.QuestionIDs)))
		s.log.Info().Int("session_id", session.ID).Float64("score", score).Msg("Test session finished")
	}

	result := &AnswerResult{
		Answered: total,
		Total:    len(session.QuestionIDs),
		Finished: finished,
	}
	if !finished {
		result.RemainingSeconds = s.windowDeadline(session).Sub(now).Seconds()
		if result.RemainingSeconds < 0 {
			result.RemainingSeconds = 0
		}
	}
	return result, nil
}

// ExpireOverdue finalizes every active session whose window has elapsed,
// even if the candidate never came back. Each session is expired in its own
// transaction so one failure does not block the rest of the sweep.
func (s *ExamService) ExpireOverdue(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.cfg.TotalExamWindow())
	ids, err := s.sessions.ListActiveIDsStartedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list overdue sessions: %w", err)
	}

	expiredCount := 0
	for _, id := range ids {
		expired, err := s.expireSession(ctx, id)
		if err != nil {
			s.log.Error().Err(err).Int("session_id", id).Msg("Failed to expire session")
			continue
		}
		if expired {
			expiredCount++
		}
	}
	return expiredCount, nil
}

func (s *ExamService) expireSession(ctx context.Context, sessionID int) (bool, error) {
	tx, err := s.sessions.Pool().Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	session, err := s.sessions.GetByIDForUpdate(ctx, tx, sessionID)
	if err != nil {
		return false, fmt.Errorf("lock session: %w", err)
	}
	expired, err := s.expireIfNeeded(ctx, tx, session, time.Now())
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	if expired {
		s.audit.Record(ctx, nil, model.AuditFinishTest,
			fmt.Sprintf("application #%d", session.AppID), "window elapsed")
	}
	return expired, nil
}

// Interrupt force-closes a candidate's active session without a finish
// timestamp, leaving it distinguishable from a completed one.
func (s *ExamService) Interrupt(ctx context.Context, appID int) error {
	tx, err := s.sessions.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.sessions.InterruptActive(ctx, tx, appID); err != nil {
		return fmt.Errorf("interrupt session: %w", err)
	}
	return tx.Commit(ctx)
}

// InterruptAll force-closes every active session and closes the owning
// applications with the given closure message and reopen time, all in one
// transaction. It returns the affected application ids.
func (s *ExamService) InterruptAll(ctx context.Context, message *string, reopenAt *time.Time) ([]int, error) {
	tx, err := s.sessions.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	appIDs, err := s.sessions.InterruptAllActive(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("interrupt sessions: %w", err)
	}
	for _, appID := range appIDs {
		if err := s.apps.Close(ctx, tx, appID, message, reopenAt); err != nil {
			return nil, fmt.Errorf("close application %d: %w", appID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return appIDs, nil
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
