package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/pkg/apperror"
)

type ChallengeRepository interface {
	Create(ctx context.Context, challenge *model.Challenge) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Challenge, error)
	ListByCircle(ctx context.Context, circleID uuid.UUID) ([]model.Challenge, error)

	// Delete removes a challenge with its participations and submissions.
	// Refused once any points were awarded for it: the ledger is append-only
	// and must keep pointing at a real challenge.
	Delete(ctx context.Context, id uuid.UUID) error

	CreateParticipation(ctx context.Context, p *model.ChallengeParticipation) error
	FindParticipation(ctx context.Context, userID, challengeID uuid.UUID) (*model.ChallengeParticipation, error)
	ListParticipations(ctx context.Context, userID uuid.UUID) ([]model.ChallengeParticipation, error)
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *model.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Challenge, error) {
	var challenge model.Challenge
	if err := r.db.WithContext(ctx).
		Preload("Circle").
		Where("id = ?", id).
		First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]model.Challenge, error) {
	var challenges []model.Challenge
	err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Order("created_at desc").
		Find(&challenges).Error
	return challenges, err
}

// CreateParticipation inserts the join row with status pending. Check and
// insert share one transaction; the (user_id, challenge_id) unique index is
// the backstop for concurrent joins.
func (r *challengeRepository) CreateParticipation(ctx context.Context, p *model.ChallengeParticipation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.ChallengeParticipation{}).
			Where("user_id = ? AND challenge_id = ?", p.UserID, p.ChallengeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.ErrAlreadyJoined
		}

		if err := tx.Create(p).Error; err != nil {
			if isDuplicateKey(err) {
				return apperror.ErrAlreadyJoined
			}
			return err
		}
		return nil
	})
}

func (r *challengeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var awards int64
		if err := tx.Model(&model.PointsLedgerEntry{}).
			Where("challenge_id = ?", id).
			Count(&awards).Error; err != nil {
			return err
		}
		if awards > 0 {
			return fmt.Errorf("%w: challenge has awarded points", apperror.ErrForbidden)
		}

		if err := tx.Where("challenge_id = ?", id).Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("challenge_id = ?", id).Delete(&model.ChallengeParticipation{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Challenge{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrNotFound
		}
		return nil
	})
}

func (r *challengeRepository) FindParticipation(ctx context.Context, userID, challengeID uuid.UUID) (*model.ChallengeParticipation, error) {
	var p model.ChallengeParticipation
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *challengeRepository) ListParticipations(ctx context.Context, userID uuid.UUID) ([]model.ChallengeParticipation, error) {
	var participations []model.ChallengeParticipation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Challenge").
		Order("created_at desc").
		Find(&participations).Error
	return participations, err
}
