package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChallengeRequest struct {
	CircleID    string `json:"circle_id" binding:"required,uuid"`
	Title       string `json:"title" binding:"required,max=120"`
	Description string `json:"description" binding:"max=10000"`
	Points      int    `json:"points" binding:"required,gt=0"`
}

type ParticipationStatusResponse struct {
	ChallengeID    uuid.UUID `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title,omitempty"`
	Points         int       `json:"points,omitempty"`
	Status         string    `json:"status"`
	JoinedAt       time.Time `json:"joined_at"`
}

// ChallengeDoc is the search index document for a challenge.
type ChallengeDoc struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Points     int    `json:"points"`
	CircleID   string `json:"circle_id"`
	CircleName string `json:"circle_name"`
	CreatedAt  int64  `json:"created_at"`
}
