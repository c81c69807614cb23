package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/pkg/apperror"
)

type CircleRepository interface {
	Create(ctx context.Context, circle *model.Circle) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Circle, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Circle, error)

	CreateParticipation(ctx context.Context, p *model.CircleParticipation) error
	DeleteParticipation(ctx context.Context, id uuid.UUID) error
	IsMember(ctx context.Context, userID, circleID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, circleID uuid.UUID) ([]model.CircleParticipation, error)
}

type circleRepository struct {
	db *gorm.DB
}

func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db}
}

func (r *circleRepository) Create(ctx context.Context, circle *model.Circle) error {
	return r.db.WithContext(ctx).Create(circle).Error
}

func (r *circleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Circle, error) {
	var circle model.Circle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&circle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}
	return &circle, nil
}

func (r *circleRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Circle, error) {
	var circles []model.Circle
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc").
		Find(&circles).Error
	return circles, err
}

// CreateParticipation inserts the membership row. The existence check and
// the insert share one transaction, and the unique index on
// (user_id, circle_id) stops a concurrent writer that passed the same check.
func (r *circleRepository) CreateParticipation(ctx context.Context, p *model.CircleParticipation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.CircleParticipation{}).
			Where("user_id = ? AND circle_id = ?", p.UserID, p.CircleID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperror.ErrAlreadyMember
		}

		if err := tx.Create(p).Error; err != nil {
			if isDuplicateKey(err) {
				return apperror.ErrAlreadyMember
			}
			return err
		}
		return nil
	})
}

// DeleteParticipation hard-deletes the membership row. Challenge
// participations in the circle's challenges are left untouched.
func (r *circleRepository) DeleteParticipation(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CircleParticipation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *circleRepository) IsMember(ctx context.Context, userID, circleID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CircleParticipation{}).
		Where("user_id = ? AND circle_id = ?", userID, circleID).
		Count(&count).Error
	return count > 0, err
}

func (r *circleRepository) ListMembers(ctx context.Context, circleID uuid.UUID) ([]model.CircleParticipation, error) {
	var members []model.CircleParticipation
	err := r.db.WithContext(ctx).
		Where("circle_id = ?", circleID).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Order("created_at asc").
		Find(&members).Error
	return members, err
}
