package model

import (
	"time"

	"github.com/google/uuid"
)

// PointsLedgerEntry credits a user with a challenge's point value. Entries
// are append-only and never edited or revoked; the unique index guarantees
// at most one award per (user, challenge) pair, ever.
type PointsLedgerEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_single_award" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	ChallengeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_single_award" json:"challenge_id"`
	Challenge   Challenge `gorm:"foreignKey:ChallengeID" json:"-"`
	Points      int       `gorm:"not null" json:"points"`
	AwardedAt   time.Time `gorm:"autoCreateTime;index" json:"awarded_at"`
}

// UserStats holds the running total. It is only ever written inside the same
// transaction that creates a ledger entry, so the two cannot diverge.
type UserStats struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	TotalPoints   int       `gorm:"default:0" json:"total_points"`
	LastUpdatedAt time.Time `gorm:"autoUpdateTime" json:"last_updated_at"`
}
