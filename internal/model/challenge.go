package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Challenge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CircleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"circle_id"`
	Circle      Circle    `gorm:"constraint:OnDelete:CASCADE" json:"circle,omitempty"`
	Title       string    `gorm:"size:120;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Points      int       `gorm:"not null" json:"points"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Challenge) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

const (
	ParticipationPending   = "pending"
	ParticipationCompleted = "completed"
)

// ChallengeParticipation records that a user joined a challenge. Status only
// ever moves pending -> completed, and only as a side effect of an approved
// submission. There is no way back and no explicit leave.
type ChallengeParticipation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_participant" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ChallengeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_participant" json:"challenge_id"`
	Challenge   Challenge `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Status      string    `gorm:"size:20;not null;default:pending" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *ChallengeParticipation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
