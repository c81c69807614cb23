package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCircleRequest struct {
	Name        string `json:"name" binding:"required,max=120"`
	Description string `json:"description" binding:"max=2000"`
}

type CircleMemberResponse struct {
	ParticipationID uuid.UUID `json:"participation_id"`
	UserID          uuid.UUID `json:"user_id"`
	Username        string    `json:"username"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	JoinedAt        time.Time `json:"joined_at"`
}
