package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/pkg/apperror"
)

type SubmissionRepository interface {
	// Create inserts a pending submission after verifying, in the same
	// transaction, that the submitter has an open participation and no other
	// pending submission for the challenge.
	Create(ctx context.Context, sub *model.Submission) error

	// Approve flips a pending submission to approved, completes the
	// participation and credits the ledger, all in one transaction. The
	// returned submission has Challenge preloaded.
	Approve(ctx context.Context, id, reviewerID uuid.UUID, feedback string) (*model.Submission, error)

	// Reject flips a pending submission to rejected. The participation stays
	// pending so the user can submit again.
	Reject(ctx context.Context, id, reviewerID uuid.UUID, feedback string) (*model.Submission, error)

	// Withdraw deletes the caller's own pending submission and returns it so
	// the stored evidence can be cleaned up. Reviewed submissions are
	// immutable and cannot be withdrawn.
	Withdraw(ctx context.Context, id, userID uuid.UUID) (*model.Submission, error)

	FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	ListPending(ctx context.Context, filter dto.PendingSubmissionFilter) ([]model.Submission, int64, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var participation model.ChallengeParticipation
		err := tx.Where("user_id = ? AND challenge_id = ?", sub.UserID, sub.ChallengeID).
			First(&participation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotParticipant
			}
			return err
		}
		if participation.Status != model.ParticipationPending {
			return apperror.ErrNotParticipant
		}

		var pending int64
		if err := tx.Model(&model.Submission{}).
			Where("user_id = ? AND challenge_id = ? AND status = ?",
				sub.UserID, sub.ChallengeID, model.SubmissionPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return apperror.ErrReviewInProgress
		}

		sub.Status = model.SubmissionPending
		if err := tx.Create(sub).Error; err != nil {
			// partial unique index on (user_id, challenge_id) where pending
			if isDuplicateKey(err) {
				return apperror.ErrReviewInProgress
			}
			return err
		}
		return nil
	})
}

func (r *submissionRepository) Approve(ctx context.Context, id, reviewerID uuid.UUID, feedback string) (*model.Submission, error) {
	var sub model.Submission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.claimReview(tx, id, reviewerID, model.SubmissionApproved, feedback); err != nil {
			return err
		}

		if err := tx.Preload("Challenge").First(&sub, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.ChallengeParticipation{}).
			Where("user_id = ? AND challenge_id = ?", sub.UserID, sub.ChallengeID).
			Update("status", model.ParticipationCompleted).Error; err != nil {
			return err
		}

		// One award per (user, challenge), ever. DoNothing makes a repeat
		// credit a no-op instead of an error, and the running total only
		// moves when a ledger row was actually written.
		entry := model.PointsLedgerEntry{
			UserID:      sub.UserID,
			ChallengeID: sub.ChallengeID,
			Points:      sub.Challenge.Points,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
			DoNothing: true,
		}).Create(&entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_points": gorm.Expr("user_stats.total_points + ?", sub.Challenge.Points),
			}),
		}).Create(&model.UserStats{
			UserID:      sub.UserID,
			TotalPoints: sub.Challenge.Points,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *submissionRepository) Reject(ctx context.Context, id, reviewerID uuid.UUID, feedback string) (*model.Submission, error) {
	var sub model.Submission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.claimReview(tx, id, reviewerID, model.SubmissionRejected, feedback); err != nil {
			return err
		}
		return tx.Preload("Challenge").First(&sub, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// claimReview is the single-use gate on a review decision: a conditional
// update keyed on the current status, so of two concurrent decisions exactly
// one sees RowsAffected == 1 and the other gets ErrAlreadyReviewed.
func (r *submissionRepository) claimReview(tx *gorm.DB, id, reviewerID uuid.UUID, status, feedback string) error {
	now := time.Now()
	res := tx.Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, model.SubmissionPending).
		Updates(map[string]interface{}{
			"status":      status,
			"feedback":    feedback,
			"reviewed_by": reviewerID,
			"reviewed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&model.Submission{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperror.ErrNotFound
		}
		return apperror.ErrAlreadyReviewed
	}
	return nil
}

func (r *submissionRepository) Withdraw(ctx context.Context, id, userID uuid.UUID) (*model.Submission, error) {
	var sub model.Submission

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrNotFound
			}
			return err
		}
		if sub.UserID != userID {
			return apperror.ErrForbidden
		}
		if sub.Status != model.SubmissionPending {
			return apperror.ErrAlreadyReviewed
		}

		// Keyed on status again so a decision that landed between the read
		// and the delete wins.
		res := tx.Where("id = ? AND status = ?", id, model.SubmissionPending).
			Delete(&model.Submission{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrAlreadyReviewed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *submissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	var sub model.Submission
	if err := r.db.WithContext(ctx).
		Preload("Challenge").
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Where("id = ?", id).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) ListPending(ctx context.Context, filter dto.PendingSubmissionFilter) ([]model.Submission, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Submission{}).
		Joins("JOIN challenges ON challenges.id = submissions.challenge_id").
		Joins("JOIN circles ON circles.id = challenges.circle_id").
		Joins("JOIN users ON users.id = submissions.user_id").
		Where("submissions.status = ?", model.SubmissionPending)

	if filter.Challenge != "" {
		q = q.Where("LOWER(challenges.title) LIKE LOWER(?)", "%"+filter.Challenge+"%")
	}
	if filter.Circle != "" {
		q = q.Where("LOWER(circles.name) LIKE LOWER(?)", "%"+filter.Circle+"%")
	}
	if filter.Submitter != "" {
		q = q.Where("LOWER(users.username) LIKE LOWER(?)", "%"+filter.Submitter+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "oldest":
		q = q.Order("submissions.created_at asc")
	case "challenge":
		q = q.Order("challenges.title asc")
	case "circle":
		q = q.Order("circles.name asc")
	case "submitter":
		q = q.Order("users.username asc")
	default:
		q = q.Order("submissions.created_at desc")
	}

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		q = q.Limit(filter.Limit).Offset((page - 1) * filter.Limit)
	}

	var subs []model.Submission
	err := q.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Preload("Challenge").
		Preload("Challenge.Circle").
		Find(&subs).Error
	return subs, total, err
}
