package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationSubmissionApproved = "submission_approved"
	NotificationSubmissionRejected = "submission_rejected"
	NotificationChallengeCompleted = "challenge_completed"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ActorID    uuid.UUID `gorm:"type:uuid" json:"actor_id"`
	Actor      *User     `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	EntityID   uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	EntityType string    `gorm:"size:50" json:"entity_type"` // "submission" or "challenge"
	Type       string    `gorm:"size:50" json:"type"`
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
