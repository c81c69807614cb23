package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"kultura.id/engagehub/internal/model"
)

// PointsRepository is read-only. Ledger entries and stats are written
// exclusively by the submission review transaction.
type PointsRepository interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*model.UserStats, error)
	GetTopUsers(ctx context.Context, limit int) ([]model.UserStats, error)
	ListEntries(ctx context.Context, userID uuid.UUID) ([]model.PointsLedgerEntry, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) GetStats(ctx context.Context, userID uuid.UUID) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// no ledger entries yet
			return &model.UserStats{UserID: userID}, nil
		}
		return nil, err
	}
	return &stats, nil
}

// GetTopUsers ranks by total points descending; ties break on ascending
// user id so repeated calls return the same order.
func (r *pointsRepository) GetTopUsers(ctx context.Context, limit int) ([]model.UserStats, error) {
	var stats []model.UserStats
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Order("total_points DESC, user_id ASC").
		Limit(limit).
		Find(&stats).Error
	return stats, err
}

func (r *pointsRepository) ListEntries(ctx context.Context, userID uuid.UUID) ([]model.PointsLedgerEntry, error) {
	var entries []model.PointsLedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Challenge").
		Order("awarded_at desc").
		Find(&entries).Error
	return entries, err
}
