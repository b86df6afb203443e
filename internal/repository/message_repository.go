package repository

import (
	"context"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles chat message data access.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create inserts a new message.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO messages (sender_id, receiver_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		m.SenderID, m.ReceiverID, m.Content,
	).Scan(&m.ID, &m.CreatedAt)
}

// ListConversation retrieves messages between two users newer than afterID,
// oldest first.
func (r *MessageRepository) ListConversation(ctx context.Context, userA, userB, afterID int) ([]model.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sender_id, receiver_id, content, is_read, created_at
		 FROM messages
		 WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		   AND id > $3
		 ORDER BY created_at`, userA, userB, afterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListForUser retrieves every message sent or received by a user, oldest
// first. Used by the member detail view to rebuild conversations.
func (r *MessageRepository) ListForUser(ctx context.Context, userID int) ([]model.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sender_id, receiver_id, content, is_read, created_at
		 FROM messages
		 WHERE sender_id = $1 OR receiver_id = $1
		 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// MarkRead marks all messages from sender to receiver as read.
func (r *MessageRepository) MarkRead(ctx context.Context, senderID, receiverID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET is_read = TRUE
		 WHERE sender_id = $1 AND receiver_id = $2 AND is_read = FALSE`,
		senderID, receiverID)
	return err
}

// UnreadCounts returns unread message counts for a receiver, grouped by sender.
func (r *MessageRepository) UnreadCounts(ctx context.Context, receiverID int) ([]model.UnreadCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sender_id, COUNT(*) FROM messages
		 WHERE receiver_id = $1 AND is_read = FALSE
		 GROUP BY sender_id`, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []model.UnreadCount
	for rows.Next() {
		var c model.UnreadCount
		if err := rows.Scan(&c.SenderID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func collectMessages(rows pgx.Rows) ([]model.Message, error) {
	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
