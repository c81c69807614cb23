package service

import (
	"context"

	"github.com/google/uuid"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/repository"
)

// PointsService is the read-projection over the ledger. All writes go
// through the review workflow's transaction; this service never mutates.
type PointsService interface {
	GetTotal(ctx context.Context, userID uuid.UUID) (int, error)
	GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error)
	GetLedger(ctx context.Context, userID uuid.UUID) ([]dto.LedgerEntryResponse, error)
}

type pointsService struct {
	repo repository.PointsRepository
}

func NewPointsService(repo repository.PointsRepository) PointsService {
	return &pointsService{repo: repo}
}

func (s *pointsService) GetTotal(ctx context.Context, userID uuid.UUID) (int, error) {
	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return 0, err
	}
	return stats.TotalPoints, nil
}

func (s *pointsService) GetLeaderboard(ctx context.Context, limit int) ([]dto.LeaderboardEntry, error) {
	if limit < 1 {
		limit = 10
	}

	stats, err := s.repo.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.LeaderboardEntry, 0, len(stats))
	for i, stat := range stats {
		entries = append(entries, dto.LeaderboardEntry{
			Position:    i + 1,
			UserID:      stat.UserID,
			Username:    stat.User.Username,
			AvatarURL:   stat.User.AvatarURL,
			TotalPoints: stat.TotalPoints,
		})
	}

	return entries, nil
}

func (s *pointsService) GetLedger(ctx context.Context, userID uuid.UUID) ([]dto.LedgerEntryResponse, error) {
	entries, err := s.repo.ListEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ChallengeID:    entry.ChallengeID,
			ChallengeTitle: entry.Challenge.Title,
			Points:         entry.Points,
			AwardedAt:      entry.AwardedAt,
		})
	}
	return out, nil
}
