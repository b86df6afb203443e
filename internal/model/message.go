package model

import "time"

// Message is one chat message between two staff users.
type Message struct {
	ID         int       `json:"id"`
	SenderID   int       `json:"sender_id"`
	ReceiverID int       `json:"receiver_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// SendMessageRequest is the payload for sending a chat message.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=4000"`
}

// UnreadCount pairs a conversation partner with the number of unread
// messages they have sent.
type UnreadCount struct {
	SenderID int `json:"sender_id"`
	Count    int `json:"count"`
}

// Notification is a one-way in-app notice for a staff user.
type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
