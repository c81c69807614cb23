package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Submission is one piece of evidence for a challenge. A user can have at
// most one pending submission per challenge (partial unique index); a
// submission is immutable once approved or rejected.
type Submission struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_open_submission,unique,where:status = 'pending'" json:"user_id"`
	User        User       `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ChallengeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_open_submission,unique" json:"challenge_id"`
	Challenge   Challenge  `gorm:"constraint:OnDelete:CASCADE" json:"challenge,omitempty"`
	FileRef     string     `gorm:"size:500;not null" json:"file_ref"`
	Status      string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	Feedback    *string    `gorm:"type:text" json:"feedback,omitempty"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
