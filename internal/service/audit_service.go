package service

import (
	"context"
	"fmt"
	"time"

	"github.com/akadimia/academy-backend/internal/discord"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/rs/zerolog"
)

// auditRelayFormat maps each action to the icon and label used in the Discord
// log channel. Unknown actions fall back to a plain rendering.
var auditRelayFormat = map[model.AuditAction]struct {
	Icon  string
	Label string
}{
	model.AuditApplySubmit:       {"📥", "Application submitted"},
	model.AuditStartTest:         {"▶️", "Test started"},
	model.AuditFinishTest:        {"🏁", "Test finished"},
	model.AuditPreliminaryAccept: {"✅", "Preliminary accept"},
	model.AuditFinalAccept:       {"🎓", "Final accept"},
	model.AuditReject:            {"❌", "Rejected"},
	model.AuditSendMessage:       {"✉️", "Message sent"},
	model.AuditCloseApplication:  {"🔒", "Application closed"},
	model.AuditOpenApplication:   {"🔓", "Application opened"},
	model.AuditHideApplication:   {"🙈", "Application visibility changed"},
	model.AuditDeleteApplication: {"🗑️", "Application deleted"},
	model.AuditGlobalControl:     {"🌐", "Global intake control"},
	model.AuditUserCreate:        {"👤", "Staff account created"},
	model.AuditUserUpdate:        {"✏️", "Staff account updated"},
	model.AuditUserDelete:        {"🚫", "Staff account deleted"},
}

// AuditService appends immutable audit entries and relays them to the Discord
// log channel. Relay failures never fail the audited operation.
type AuditService struct {
	repo         *repository.AuditRepository
	bot          *discord.Client
	logChannelID string
	log          zerolog.Logger
}

// NewAuditService creates a new AuditService. An empty logChannelID disables
// the Discord relay.
func NewAuditService(repo *repository.AuditRepository, bot *discord.Client, logChannelID string, log zerolog.Logger) *AuditService {
	return &AuditService{
		repo:         repo,
		bot:          bot,
		logChannelID: logChannelID,
		log:          log.With().Str("component", "audit_service").Logger(),
	}
}

// Record appends an audit entry and relays it asynchronously.
func (s *AuditService) Record(ctx context.Context, actorID *int, action model.AuditAction, target, details string) {
	entry := &model.AuditEntry{
		ActorID: actorID,
		Action:  action,
		Target:  target,
		Details: details,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("action", string(action)).Msg("Failed to append audit entry")
		return
	}

	if s.logChannelID == "" {
		return
	}
	go s.relay(entry)
}

// relay posts the entry to the Discord log channel on its own deadline.
func (s *AuditService) relay(entry *model.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	format, ok := auditRelayFormat[entry.Action]
	if !ok {
		format.Icon = "📌"
		format.Label = string(entry.Action)
	}

	msg := fmt.Sprintf("%s **%s** | %s", format.Icon, format.Label, entry.Target)
	if entry.Details != "" {
		msg += "\n" + entry.Details
	}

	if err := s.bot.SendChannelMessage(ctx, s.logChannelID, msg); err != nil {
		s.log.Warn().Err(err).Str("action", string(entry.Action)).Msg("Audit relay to Discord failed")
	}
}

// ListRecent returns the newest audit entries with pagination.
func (s *AuditService) ListRecent(ctx context.Context, page, limit int) ([]model.AuditEntry, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, limit, (page-1)*limit)
}
