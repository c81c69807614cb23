package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSubmissionRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required,uuid"`
	FileRef     string `json:"file_ref" binding:"required,max=500"`
}

type ReviewRequest struct {
	Feedback string `json:"feedback" binding:"max=2000"`
}

// PendingSubmissionFilter drives the moderator queue. Sort falls back to
// newest-first when empty.
type PendingSubmissionFilter struct {
	Challenge string `form:"challenge"`
	Circle    string `form:"circle"`
	Submitter string `form:"submitter"`
	Sort      string `form:"sort" binding:"omitempty,oneof=newest oldest challenge circle submitter"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type PendingSubmissionResponse struct {
	ID             uuid.UUID `json:"id"`
	ChallengeID    uuid.UUID `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title"`
	CircleName     string    `json:"circle_name"`
	Points         int       `json:"points"`
	Submitter      string    `json:"submitter"`
	FileRef        string    `json:"file_ref"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type PendingSubmissionList struct {
	Items []PendingSubmissionResponse `json:"items"`
	Total int64                       `json:"total"`
	Page  int                         `json:"page"`
	Limit int                         `json:"limit"`
}
