package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/model"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Messaging errors.
var (
	ErrNotConversable = errors.New("you can only message users you are paired with")
	ErrSelfMessage    = errors.New("cannot message yourself")
)

// MessagingService handles staff chat, unread counters and in-app
// notifications. New messages fan out over Redis PubSub so WebSocket
// subscribers see them without polling.
type MessagingService struct {
	messages *repository.MessageRepository
	notifs   *repository.NotificationRepository
	evals    *repository.EvaluationRepository
	users    *repository.UserRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewMessagingService creates a new MessagingService.
func NewMessagingService(
	messages *repository.MessageRepository,
	notifs *repository.NotificationRepository,
	evals *repository.EvaluationRepository,
	users *repository.UserRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *MessagingService {
	return &MessagingService{
		messages: messages,
		notifs:   notifs,
		evals:    evals,
		users:    users,
		rdb:      rdb,
		log:      log.With().Str("component", "messaging_service").Logger(),
	}
}

// canConverse checks whether two staff users may chat. Ranks above trainer
// talk to anyone; trainers and cadets only talk within their pairings.
func (s *MessagingService) canConverse(ctx context.Context, sender *model.User, receiverID int) error {
	if sender.ID == receiverID {
		return ErrSelfMessage
	}
	if sender.Rank.HasDashboardAccess() {
		return nil
	}
	assigned, err := s.evals.IsAssigned(ctx, sender.ID, receiverID)
	if err != nil {
		return fmt.Errorf("check assignment: %w", err)
	}
	if !assigned {
		return ErrNotConversable
	}
	return nil
}

// Send stores a message and publishes it to the conversation channel.
func (s *MessagingService) Send(ctx context.Context, sender *model.User, receiverID int, req *model.SendMessageRequest) (*model.Message, error) {
	if err := s.canConverse(ctx, sender, receiverID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Content:    req.Content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	s.publish(ctx, msg)
	return msg, nil
}

// publish fans the message out to the conversation's PubSub channel.
// Delivery is best-effort; the message is already persisted.
func (s *MessagingService) publish(ctx context.Context, msg *model.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	channel := config.CacheKey.ChatChannel(msg.SenderID, msg.ReceiverID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("Failed to publish chat message")
	}
}

// Subscribe opens a PubSub subscription for the conversation between two
// users. The caller owns the returned subscription and must close it.
func (s *MessagingService) Subscribe(ctx context.Context, userA, userB int) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ChatChannel(userA, userB))
}

// Conversation returns messages between the requesting user and a partner,
// newer than afterID, and marks the partner's messages as read.
func (s *MessagingService) Conversation(ctx context.Context, user *model.User, partnerID, afterID int) ([]model.Message, error) {
	if err := s.canConverse(ctx, user, partnerID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListConversation(ctx, user.ID, partnerID, afterID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	if err := s.messages.MarkRead(ctx, partnerID, user.ID); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}
	return msgs, nil
}

// UnreadCounts returns per-sender unread totals for the user.
func (s *MessagingService) UnreadCounts(ctx context.Context, userID int) ([]model.UnreadCount, error) {
	return s.messages.UnreadCounts(ctx, userID)
}

// Notify stores an in-app notification for a user.
func (s *MessagingService) Notify(ctx context.Context, userID int, message string) error {
	n := &model.Notification{UserID: userID, Message: message}
	if err := s.notifs.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// UnreadNotifications returns the user's unread notifications, newest first.
func (s *MessagingService) UnreadNotifications(ctx context.Context, userID int) ([]model.Notification, error) {
	return s.notifs.ListUnread(ctx, userID)
}

// MarkNotificationRead marks one notification read, scoped to its owner.
func (s *MessagingService) MarkNotificationRead(ctx context.Context, id, userID int) error {
	return s.notifs.MarkRead(ctx, id, userID)
}
