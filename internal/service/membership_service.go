package service

import (
	"context"

	"github.com/google/uuid"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/internal/repository"
	"kultura.id/engagehub/pkg/apperror"
)

// MembershipService is the circle membership manager: it gates everything
// downstream (challenge joins, submissions) on tenant-scoped membership.
type MembershipService interface {
	CreateCircle(ctx context.Context, creatorID uuid.UUID, input dto.CreateCircleRequest) (*model.Circle, error)
	ListCircles(ctx context.Context, userID uuid.UUID) ([]model.Circle, error)

	JoinCircle(ctx context.Context, userID, circleID uuid.UUID) (*model.CircleParticipation, error)
	LeaveCircle(ctx context.Context, participationID uuid.UUID) error
	IsMember(ctx context.Context, userID, circleID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, circleID uuid.UUID) ([]dto.CircleMemberResponse, error)
}

type membershipService struct {
	circleRepo repository.CircleRepository
	userRepo   repository.UserRepository
}

func NewMembershipService(circleRepo repository.CircleRepository, userRepo repository.UserRepository) MembershipService {
	return &membershipService{
		circleRepo: circleRepo,
		userRepo:   userRepo,
	}
}

func (s *membershipService) CreateCircle(ctx context.Context, creatorID uuid.UUID, input dto.CreateCircleRequest) (*model.Circle, error) {
	creator, err := s.userRepo.FindByID(ctx, creatorID.String())
	if err != nil {
		return nil, err
	}
	if creator.TenantID == nil {
		return nil, apperror.ErrTenantMismatch
	}

	circle := &model.Circle{
		TenantID:    *creator.TenantID,
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   creator.ID,
	}
	if err := s.circleRepo.Create(ctx, circle); err != nil {
		return nil, err
	}
	return circle, nil
}

func (s *membershipService) ListCircles(ctx context.Context, userID uuid.UUID) ([]model.Circle, error) {
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}
	if user.TenantID == nil {
		return []model.Circle{}, nil
	}
	return s.circleRepo.ListByTenant(ctx, *user.TenantID)
}

// JoinCircle creates the membership row. A user without a tenant, or from a
// different tenant than the circle's, is rejected before any write.
func (s *membershipService) JoinCircle(ctx context.Context, userID, circleID uuid.UUID) (*model.CircleParticipation, error) {
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, err
	}

	circle, err := s.circleRepo.FindByID(ctx, circleID)
	if err != nil {
		return nil, err
	}

	if user.TenantID == nil || *user.TenantID != circle.TenantID {
		return nil, apperror.ErrTenantMismatch
	}

	participation := &model.CircleParticipation{
		UserID:   userID,
		CircleID: circleID,
	}
	if err := s.circleRepo.CreateParticipation(ctx, participation); err != nil {
		return nil, err
	}

	return participation, nil
}

// LeaveCircle hard-deletes the membership. Challenge participations in the
// circle's challenges are kept as history.
func (s *membershipService) LeaveCircle(ctx context.Context, participationID uuid.UUID) error {
	return s.circleRepo.DeleteParticipation(ctx, participationID)
}

func (s *membershipService) IsMember(ctx context.Context, userID, circleID uuid.UUID) (bool, error) {
	return s.circleRepo.IsMember(ctx, userID, circleID)
}

func (s *membershipService) ListMembers(ctx context.Context, circleID uuid.UUID) ([]dto.CircleMemberResponse, error) {
	if _, err := s.circleRepo.FindByID(ctx, circleID); err != nil {
		return nil, err
	}

	members, err := s.circleRepo.ListMembers(ctx, circleID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CircleMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.CircleMemberResponse{
			ParticipationID: m.ID,
			UserID:          m.UserID,
			Username:        m.User.Username,
			AvatarURL:       m.User.AvatarURL,
			JoinedAt:        m.CreatedAt,
		})
	}
	return out, nil
}
