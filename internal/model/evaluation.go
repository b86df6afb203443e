package model

import "time"

// Assignment pairs one trainer with one cadet. The pair is unique.
type Assignment struct {
	ID        int `json:"id"`
	TrainerID int `json:"trainer_id"`
	CadetID   int `json:"cadet_id"`
}

// CreateAssignmentRequest is the payload for pairing a trainer and a cadet.
type CreateAssignmentRequest struct {
	TrainerID int `json:"trainer_id" binding:"required"`
	CadetID   int `json:"cadet_id" binding:"required"`
}

// Evaluation is a trainer's performance review of an assigned cadet.
type Evaluation struct {
	ID        int       `json:"id"`
	TrainerID int       `json:"trainer_id"`
	CadetID   int       `json:"cadet_id"`
	Score     int       `json:"score"`
	Comments  string    `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateEvaluationRequest is the payload for submitting an evaluation.
type CreateEvaluationRequest struct {
	Score    int    `json:"score" binding:"min=0,max=100"`
	Comments string `json:"comments" binding:"required,min=1,max=4000"`
}
