package repository

import (
	"context"

	"github.com/akadimia/academy-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository handles in-app notifications.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a notification for a user.
func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO notifications (user_id, message) VALUES ($1, $2)
		 RETURNING id, created_at`,
		n.UserID, n.Message,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListUnread retrieves unread notifications for a user, newest first.
func (r *NotificationRepository) ListUnread(ctx context.Context, userID int) ([]model.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, message, is_read, created_at
		 FROM notifications
		 WHERE user_id = $1 AND is_read = FALSE
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkRead marks one notification read, scoped to its owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
