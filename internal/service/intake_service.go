package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/discord"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Intake errors.
var (
	ErrDuplicateSubmission = errors.New("an application for this identity already exists")
	ErrIntakeClosed        = errors.New("applications are currently closed")
	ErrInvalidOAuthState   = errors.New("invalid or expired oauth state")
)

const oauthStateTTL = 10 * time.Minute

// IntakeService handles the public application flow: intake status, Discord
// OAuth login and submission.
type IntakeService struct {
	cfg      *config.Config
	apps     *repository.ApplicationRepository
	settings *repository.SettingRepository
	sessions *repository.SessionRepository
	oauth    *discord.OAuth
	auth     *AuthService
	rdb      *redis.Client
	audit    *AuditService
	log      zerolog.Logger
}

// NewIntakeService creates a new IntakeService.
func NewIntakeService(
	cfg *config.Config,
	apps *repository.ApplicationRepository,
	settings *repository.SettingRepository,
	sessions *repository.SessionRepository,
	oauth *discord.OAuth,
	auth *AuthService,
	rdb *redis.Client,
	audit *AuditService,
	log zerolog.Logger,
) *IntakeService {
	return &IntakeService{
		cfg:      cfg,
		apps:     apps,
		settings: settings,
		sessions: sessions,
		oauth:    oauth,
		auth:     auth,
		rdb:      rdb,
		audit:    audit,
		log:      log.With().Str("component", "intake_service").Logger(),
	}
}

// Status returns the public intake status payload.
func (s *IntakeService) Status(ctx context.Context) (*model.IntakeStatusResponse, error) {
	setting, err := s.settings.Get(ctx, s.settings.Pool())
	if err != nil {
		return nil, fmt.Errorf("load intake setting: %w", err)
	}

	resp := &model.IntakeStatusResponse{Open: setting.EffectivelyOpen(time.Now())}
	if !resp.Open {
		if setting.ClosedMessage != nil {
			resp.ClosedMessage = *setting.ClosedMessage
		}
		if setting.ReopenAt != nil {
			epoch := setting.ReopenAt.Unix()
			resp.ReopenEpoch = &epoch
		}
	}
	return resp, nil
}

// BeginLogin creates an anti-forgery state, stores it in Redis and returns
// the Discord consent URL.
func (s *IntakeService) BeginLogin(ctx context.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	state := hex.EncodeToString(buf)

	if err := s.rdb.Set(ctx, config.CacheKey.OAuthStateKey(state), "1", oauthStateTTL).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return s.oauth.AuthorizeURL(state), nil
}

// CompleteLogin consumes the state and authorization code, fetches the Discord
// identity and issues an applicant token. A code replayed within the state TTL
// yields ErrInvalidOAuthState without hitting Discord again.
func (s *IntakeService) CompleteLogin(ctx context.Context, state, code string) (string, *discord.Identity, error) {
	deleted, err := s.rdb.Del(ctx, config.CacheKey.OAuthStateKey(state)).Result()
	if err != nil {
		return "", nil, fmt.Errorf("consume oauth state: %w", err)
	}
	if deleted == 0 {
		return "", nil, ErrInvalidOAuthState
	}

	codeHash := sha256.Sum256([]byte(code))
	fresh, err := s.rdb.SetNX(ctx, config.CacheKey.OAuthCodeKey(hex.EncodeToString(codeHash[:])), "1", oauthStateTTL).Result()
	if err != nil {
		return "", nil, fmt.Errorf("mark code consumed: %w", err)
	}
	if !fresh {
		return "", nil, ErrInvalidOAuthState
	}

	accessToken, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("exchange code: %w", err)
	}
	identity, err := s.oauth.FetchIdentity(ctx, accessToken)
	if err != nil {
		return "", nil, fmt.Errorf("fetch identity: %w", err)
	}

	token, err := s.auth.GenerateApplicantToken(identity.ID, identity.Username)
	if err != nil {
		return "", nil, fmt.Errorf("issue applicant token: %w", err)
	}

	s.log.Info().Str("discord_id", identity.ID).Msg("Applicant authenticated via Discord")
	return token, identity, nil
}

// Submit creates the candidate's application. One submission per Discord
// identity, ever; intake must be effectively open.
func (s *IntakeService) Submit(ctx context.Context, discordID string, req *model.SubmitApplicationRequest) (*model.Application, error) {
	setting, err := s.settings.Get(ctx, s.settings.Pool())
	if err != nil {
		return nil, fmt.Errorf("load intake setting: %w", err)
	}
	if !setting.EffectivelyOpen(time.Now()) {
		return nil, ErrIntakeClosed
	}

	app := &model.Application{
		DiscordID:     discord.NormalizeID(discordID),
		CharacterName: req.CharacterName,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicateDiscordID) {
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.audit.Record(ctx, nil, model.AuditApplySubmit,
		fmt.Sprintf("application #%d (%s)", app.ID, app.CharacterName), "")
	s.log.Info().Int("application_id", app.ID).Msg("Application submitted")
	return app, nil
}

// MyApplication returns the applicant's own application and latest session
// state, for the candidate-facing status page.
func (s *IntakeService) MyApplication(ctx context.Context, discordID string) (*model.Application, model.SessionState, error) {
	app, err := s.apps.GetByDiscordID(ctx, discord.NormalizeID(discordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.SessionNotStarted, nil
		}
		return nil, "", fmt.Errorf("load application: %w", err)
	}

	session, err := s.sessions.GetLatestByApplication(ctx, app.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return app, model.SessionNotStarted, nil
		}
		return nil, "", fmt.Errorf("load session: %w", err)
	}
	return app, session.State(), nil
}
