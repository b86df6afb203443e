package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/discord"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Review errors.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidAction       = errors.New("unknown review action")
	ErrMissingMessage      = errors.New("this action requires a message")
	ErrMissingReopenTime   = errors.New("this action requires a future reopen time")
)

// ReviewService implements the operator candidate-review workflow.
type ReviewService struct {
	cfg       *config.Config
	apps      *repository.ApplicationRepository
	sessions  *repository.SessionRepository
	questions *repository.QuestionRepository
	settings  *repository.SettingRepository
	users     *repository.UserRepository
	exam      *ExamService
	auth      *AuthService
	bot       *discord.Client
	audit     *AuditService
	log       zerolog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	cfg *config.Config,
	apps *repository.ApplicationRepository,
	sessions *repository.SessionRepository,
	questions *repository.QuestionRepository,
	settings *repository.SettingRepository,
	users *repository.UserRepository,
	exam *ExamService,
	auth *AuthService,
	bot *discord.Client,
	audit *AuditService,
	log zerolog.Logger,
) *ReviewService {
	return &ReviewService{
		cfg:       cfg,
		apps:      apps,
		sessions:  sessions,
		questions: questions,
		settings:  settings,
		users:     users,
		exam:      exam,
		auth:      auth,
		bot:       bot,
		audit:     audit,
		log:       log.With().Str("component", "review_service").Logger(),
	}
}

// ListCandidates returns applications enriched with latest-session facts.
func (s *ReviewService) ListCandidates(ctx context.Context, includeHidden bool, search string) ([]model.CandidateSummary, error) {
	apps, err := s.apps.List(ctx, includeHidden, search)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	summaries := make([]model.CandidateSummary, 0, len(apps))
	for _, app := range apps {
		summary := model.CandidateSummary{Application: app}
		session, err := s.sessions.GetLatestByApplication(ctx, app.ID)
		switch {
		case err == nil:
			switch session.State() {
			case model.SessionActive:
				summary.CurrentlyTesting = true
			case model.SessionFinished:
				score := session.Score
				summary.LastScore = &score
			case model.SessionInterrupted:
				summary.Interrupted = true
			}
		case errors.Is(err, pgx.ErrNoRows):
			// Candidate has not started yet.
		default:
			return nil, fmt.Errorf("load session for application %d: %w", app.ID, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// CandidateDetail is the full operator view of one candidate.
type CandidateDetail struct {
	Application model.Application       `json:"application"`
	Sessions    []model.TestSession     `json:"sessions"`
	Breakdown   []model.AnswerBreakdown `json:"breakdown,omitempty"`
}

// GetCandidate returns one candidate with session history and, when a session
// exists, the per-question answer breakdown of the latest attempt.
func (s *ReviewService) GetCandidate(ctx context.Context, appID int) (*CandidateDetail, error) {
	app, err := s.apps.GetByID(ctx, s.sessions.Pool(), appID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("load application: %w", err)
	}

	detail := &CandidateDetail{Application: *app}

	detail.Sessions, err = s.sessions.ListByApplication(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(detail.Sessions) == 0 {
		return detail, nil
	}

	latest := detail.Sessions[0]
	answers, err := s.sessions.ListAnswers(ctx, s.sessions.Pool(), latest.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	questions, err := s.questions.GetByIDs(ctx, s.sessions.Pool(), latest.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	answerByQuestion := make(map[int]model.Answer, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
	}
	for _, q := range questions {
		row := model.AnswerBreakdown{
			Question:     q.Public(),
			CorrectIndex: q.CorrectIndex,
		}
		if a, ok := answerByQuestion[q.ID]; ok {
			row.SelectedIndex = a.SelectedIndex
			row.IsCorrect = a.IsCorrect
		}
		detail.Breakdown = append(detail.Breakdown, row)
	}
	return detail, nil
}

// Act applies one review action to a candidate.
func (s *ReviewService) Act(ctx context.Context, actor *model.User, appID int, req *model.ReviewActionRequest) error {
	if !req.Action.Valid() {
		return ErrInvalidAction
	}

	app, err := s.apps.GetByID(ctx, s.sessions.Pool(), appID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrApplicationNotFound
		}
		return fmt.Errorf("load application: %w", err)
	}

	switch req.Action {
	case model.ActionPreliminaryAccept:
		return s.preliminaryAccept(ctx, actor, app, req.Message)
	case model.ActionFinalAccept:
		return s.finalAccept(ctx, actor, app)
	case model.ActionReject:
		return s.reject(ctx, actor, app, req.Message)
	case model.ActionSendCustomMessage:
		return s.sendCustomMessage(ctx, actor, app, req.Message)
	case model.ActionCloseWithMessage:
		if strings.TrimSpace(req.Message) == "" {
			return ErrMissingMessage
		}
		return s.close(ctx, actor, app, &req.Message, nil)
	case model.ActionCloseWithTimer:
		reopenAt, err := reopenTime(req.ReopenEpoch)
		if err != nil {
			return err
		}
		var msg *string
		if req.Message != "" {
			msg = &req.Message
		}
		return s.close(ctx, actor, app, msg, reopenAt)
	case model.ActionOpen:
		return s.open(ctx, actor, app)
	case model.ActionHide:
		return s.setHidden(ctx, actor, app, true)
	case model.ActionUnhide:
		return s.setHidden(ctx, actor, app, false)
	case model.ActionDelete:
		return s.delete(ctx, actor, app)
	}
	return ErrInvalidAction
}

func reopenTime(epoch *int64) (*time.Time, error) {
	if epoch == nil {
		return nil, ErrMissingReopenTime
	}
	t := time.Unix(*epoch, 0)
	if !t.After(time.Now()) {
		return nil, ErrMissingReopenTime
	}
	return &t, nil
}

func (s *ReviewService) preliminaryAccept(ctx context.Context, actor *model.User, app *model.Application, message string) error {
	if message == "" {
		message = "Congratulations! Your application has passed the preliminary review. Further instructions will follow."
	}
	s.dmBestEffort(ctx, app, message)

	s.audit.Record(ctx, &actor.ID, model.AuditPreliminaryAccept, s.target(app), "")
	return nil
}

// finalAccept provisions the cadet's portal account, grants the guild role and
// delivers the credentials over DM. Credentials that cannot be delivered are
// stored on the application for manual handover.
func (s *ReviewService) finalAccept(ctx context.Context, actor *model.User, app *model.Application) error {
	password, err := randomPassword()
	if err != nil {
		return err
	}
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	username := s.cadetUsername(ctx, app)
	user := &model.User{
		Username:     username,
		FullName:     app.CharacterName,
		PasswordHash: hash,
		Rank:         model.RankCadet,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			// Retry once with a numeric suffix before giving up.
			user.Username = fmt.Sprintf("%s_%d", username, app.ID)
			err = s.users.Create(ctx, user)
		}
		if err != nil {
			return fmt.Errorf("create cadet account: %w", err)
		}
	}

	if s.cfg.DiscordCadetRoleID != "" {
		if err := s.bot.AddRole(ctx, app.DiscordID, s.cfg.DiscordCadetRoleID); err != nil {
			s.log.Warn().Err(err).Int("application_id", app.ID).Msg("Failed to grant cadet role")
		}
	}

	credentials := fmt.Sprintf(
		"Welcome to the academy! Your portal account is ready.\nUsername: %s\nPassword: %s\nChange the password after your first login.",
		user.Username, password)
	if err := s.bot.SendDM(ctx, app.DiscordID, credentials); err != nil {
		s.log.Warn().Err(err).Int("application_id", app.ID).Msg("Credential DM failed, storing fallback note")
		note := fmt.Sprintf("Credential delivery failed. Username: %s Password: %s", user.Username, password)
		if err := s.apps.SetFallbackNote(ctx, app.ID, note); err != nil {
			return fmt.Errorf("store fallback note: %w", err)
		}
	}

	if err := s.apps.UpdateStatus(ctx, s.sessions.Pool(), app.ID, model.ApplicationStatusCompleted); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.AuditFinalAccept, s.target(app),
		fmt.Sprintf("cadet account %q created", user.Username))
	s.log.Info().Int("application_id", app.ID).Str("username", user.Username).Msg("Candidate finally accepted")
	return nil
}

func (s *ReviewService) reject(ctx context.Context, actor *model.User, app *model.Application, message string) error {
	if message == "" {
		message = "Thank you for your interest in the academy. Unfortunately your application was not successful this time."
	}
	s.dmBestEffort(ctx, app, message)

	closedMsg := "Application rejected."
	if err := s.apps.Close(ctx, s.sessions.Pool(), app.ID, &closedMsg, nil); err != nil {
		return fmt.Errorf("close application: %w", err)
	}
	if err := s.exam.Interrupt(ctx, app.ID); err != nil {
		return fmt.Errorf("interrupt session: %w", err)
	}

	s.audit.Record(ctx, &actor.ID, model.AuditReject, s.target(app), "")
	return nil
}

func (s *ReviewService) sendCustomMessage(ctx context.Context, actor *model.User, app *model.Application, message string) error {
	if strings.TrimSpace(message) == "" {
		return ErrMissingMessage
	}
	if err := s.bot.SendDM(ctx, app.DiscordID, message); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	s.audit.Record(ctx, &actor.ID, model.AuditSendMessage, s.target(app), "")
	return nil
}

func (s *ReviewService) close(ctx context.Context, actor *model.User, app *model.Application, message *string, reopenAt *time.Time) error {
	if err := s.apps.Close(ctx, s.sessions.Pool(), app.ID, message, reopenAt); err != nil {
		return fmt.Errorf("close application: %w", err)
	}
	if err := s.exam.Interrupt(ctx, app.ID); err != nil {
		return fmt.Errorf("interrupt session: %w", err)
	}
	if message != nil {
		s.dmBestEffort(ctx, app, *message)
	}

	details := ""
	if reopenAt != nil {
		details = "reopens " + reopenAt.UTC().Format(time.RFC3339)
	}
	s.audit.Record(ctx, &actor.ID, model.AuditCloseApplication, s.target(app), details)
	return nil
}

func (s *ReviewService) open(ctx context.Context, actor *model.User, app *model.Application) error {
	if err := s.apps.Reopen(ctx, app.ID); err != nil {
		return fmt.Errorf("reopen application: %w", err)
	}
	s.audit.Record(ctx, &actor.ID, model.AuditOpenApplication, s.target(app), "")
	return nil
}

func (s *ReviewService) setHidden(ctx context.Context, actor *model.User, app *model.Application, hidden bool) error {
	if err := s.apps.SetHidden(ctx, app.ID, hidden); err != nil {
		return fmt.Errorf("set hidden: %w", err)
	}
	details := "unhidden"
	if hidden {
		details = "hidden"
	}
	s.audit.Record(ctx, &actor.ID, model.AuditHideApplication, s.target(app), details)
	return nil
}

func (s *ReviewService) delete(ctx context.Context, actor *model.User, app *model.Application) error {
	if err := s.exam.Interrupt(ctx, app.ID); err != nil {
		return fmt.Errorf("interrupt session: %w", err)
	}
	if err := s.apps.Delete(ctx, app.ID); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	s.audit.Record(ctx, &actor.ID, model.AuditDeleteApplication, s.target(app), "")
	return nil
}

// GlobalControl applies the global intake switch: open everything, or close
// intake with a message or a reopen timer. Closing interrupts every active
// test session.
func (s *ReviewService) GlobalControl(ctx context.Context, actor *model.User, req *model.GlobalControlRequest) error {
	if !req.Control.Valid() {
		return ErrInvalidAction
	}

	switch req.Control {
	case model.ControlOpenAll:
		if err := s.settings.SetOpen(ctx, s.settings.Pool()); err != nil {
			return fmt.Errorf("open intake: %w", err)
		}
		s.audit.Record(ctx, &actor.ID, model.AuditGlobalControl, "intake", "opened")
		return nil

	case model.ControlCloseAllWithMessage:
		if strings.TrimSpace(req.Message) == "" {
			return ErrMissingMessage
		}
		return s.closeAll(ctx, actor, &req.Message, nil)

	case model.ControlCloseAllWithTimer:
		reopenAt, err := reopenTime(req.ReopenEpoch)
		if err != nil {
			return err
		}
		var msg *string
		if req.Message != "" {
			msg = &req.Message
		}
		return s.closeAll(ctx, actor, msg, reopenAt)
	}
	return ErrInvalidAction
}

func (s *ReviewService) closeAll(ctx context.Context, actor *model.User, message *string, reopenAt *time.Time) error {
	if err := s.settings.SetClosed(ctx, s.settings.Pool(), message, reopenAt); err != nil {
		return fmt.Errorf("close intake: %w", err)
	}
	interrupted, err := s.exam.InterruptAll(ctx, message, reopenAt)
	if err != nil {
		return fmt.Errorf("interrupt sessions: %w", err)
	}

	details := fmt.Sprintf("closed, %d active session(s) interrupted", len(interrupted))
	if reopenAt != nil {
		details += ", reopens " + reopenAt.UTC().Format(time.RFC3339)
	}
	s.audit.Record(ctx, &actor.ID, model.AuditGlobalControl, "intake", details)
	s.log.Info().Int("interrupted", len(interrupted)).Msg("Intake closed globally")
	return nil
}

// dmBestEffort delivers a DM and logs delivery failures without failing the
// surrounding action.
func (s *ReviewService) dmBestEffort(ctx context.Context, app *model.Application, message string) {
	if err := s.bot.SendDM(ctx, app.DiscordID, message); err != nil {
		s.log.Warn().Err(err).Int("application_id", app.ID).Msg("DM delivery failed")
	}
}

// cadetUsername derives a portal username, preferring the Discord account
// name and falling back to the character name.
func (s *ReviewService) cadetUsername(ctx context.Context, app *model.Application) string {
	if name, err := s.bot.GuildMemberUsername(ctx, app.DiscordID); err == nil {
		return sanitizeUsername(name)
	}
	return sanitizeUsername(app.CharacterName)
}

func sanitizeUsername(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '#':
			return '_'
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		cleaned = "cadet"
	}
	return cleaned
}

func randomPassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *ReviewService) target(app *model.Application) string {
	return fmt.Sprintf("application #%d (%s)", app.ID, app.CharacterName)
}
