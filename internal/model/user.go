package model

import "time"

// User represents a staff portal account (cadet through dev).
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Rank         Rank      `json:"rank"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for staff authentication.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}

// LoginResponse is returned after successful staff login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// CreateUserRequest is the payload for creating a new staff account.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=2,max=50"`
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Rank     Rank   `json:"rank" binding:"required"`
}

// UpdateUserRequest is the payload for editing an existing staff account.
// Password is optional; empty keeps the current hash.
type UpdateUserRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
	Rank     Rank   `json:"rank" binding:"omitempty"`
}
