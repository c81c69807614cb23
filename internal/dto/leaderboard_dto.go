package dto

import (
	"time"

	"github.com/google/uuid"
)

type LeaderboardEntry struct {
	Position    int       `json:"position"`
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	TotalPoints int       `json:"total_points"`
}

type LedgerEntryResponse struct {
	ChallengeID    uuid.UUID `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title"`
	Points         int       `json:"points"`
	AwardedAt      time.Time `json:"awarded_at"`
}
