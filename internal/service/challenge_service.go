package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/internal/repository"
	"kultura.id/engagehub/pkg/apperror"
)

// ChallengeService is the challenge participation manager. Joining a
// challenge is gated on circle membership; participation status moves to
// completed only through the review workflow.
type ChallengeService interface {
	CreateChallenge(ctx context.Context, creatorID uuid.UUID, input dto.CreateChallengeRequest) (*model.Challenge, error)
	GetChallenge(ctx context.Context, id uuid.UUID) (*model.Challenge, error)
	ListByCircle(ctx context.Context, circleID uuid.UUID) ([]model.Challenge, error)
	DeleteChallenge(ctx context.Context, actorID, challengeID uuid.UUID) error
	SearchChallenges(query string, limit int) ([]dto.ChallengeDoc, error)

	JoinChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*model.ChallengeParticipation, error)
	GetStatus(ctx context.Context, userID, challengeID uuid.UUID) (*dto.ParticipationStatusResponse, error)
	ListMyParticipations(ctx context.Context, userID uuid.UUID) ([]dto.ParticipationStatusResponse, error)
}

type challengeService struct {
	challengeRepo repository.ChallengeRepository
	circleRepo    repository.CircleRepository
	searchService SearchService
}

func NewChallengeService(challengeRepo repository.ChallengeRepository, circleRepo repository.CircleRepository, searchService SearchService) ChallengeService {
	return &challengeService{
		challengeRepo: challengeRepo,
		circleRepo:    circleRepo,
		searchService: searchService,
	}
}

func (s *challengeService) CreateChallenge(ctx context.Context, creatorID uuid.UUID, input dto.CreateChallengeRequest) (*model.Challenge, error) {
	circleID, err := uuid.Parse(input.CircleID)
	if err != nil {
		return nil, apperror.ErrBadRequest
	}

	circle, err := s.circleRepo.FindByID(ctx, circleID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.circleRepo.IsMember(ctx, creatorID, circleID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperror.ErrNotCircleMember
	}

	challenge := &model.Challenge{
		CircleID:    circleID,
		Title:       input.Title,
		Description: input.Description,
		Points:      input.Points,
		CreatedBy:   creatorID,
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	if s.searchService != nil {
		go func() {
			if err := s.searchService.IndexChallenge(challenge, circle.Name); err != nil {
				log.Printf("Failed to index challenge %s: %v", challenge.ID, err)
			}
		}()
	}

	return challenge, nil
}

func (s *challengeService) GetChallenge(ctx context.Context, id uuid.UUID) (*model.Challenge, error) {
	return s.challengeRepo.FindByID(ctx, id)
}

func (s *challengeService) ListByCircle(ctx context.Context, circleID uuid.UUID) ([]model.Challenge, error) {
	if _, err := s.circleRepo.FindByID(ctx, circleID); err != nil {
		return nil, err
	}
	return s.challengeRepo.ListByCircle(ctx, circleID)
}

// DeleteChallenge removes a challenge that has not awarded points yet. Only
// the creator may delete.
func (s *challengeService) DeleteChallenge(ctx context.Context, actorID, challengeID uuid.UUID) error {
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return err
	}
	if challenge.CreatedBy != actorID {
		return apperror.ErrForbidden
	}

	if err := s.challengeRepo.Delete(ctx, challengeID); err != nil {
		return err
	}

	if s.searchService != nil {
		go func() {
			if err := s.searchService.DeleteChallenge(challengeID.String()); err != nil {
				log.Printf("Failed to deindex challenge %s: %v", challengeID, err)
			}
		}()
	}
	return nil
}

func (s *challengeService) SearchChallenges(query string, limit int) ([]dto.ChallengeDoc, error) {
	if s.searchService == nil {
		return []dto.ChallengeDoc{}, nil
	}
	return s.searchService.SearchChallenges(query, limit)
}

// JoinChallenge resolves the challenge's circle and requires membership
// there before creating the pending participation.
func (s *challengeService) JoinChallenge(ctx context.Context, userID, challengeID uuid.UUID) (*model.ChallengeParticipation, error) {
	challenge, err := s.challengeRepo.FindByID(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	isMember, err := s.circleRepo.IsMember(ctx, userID, challenge.CircleID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, apperror.ErrNotCircleMember
	}

	participation := &model.ChallengeParticipation{
		UserID:      userID,
		ChallengeID: challengeID,
		Status:      model.ParticipationPending,
	}
	if err := s.challengeRepo.CreateParticipation(ctx, participation); err != nil {
		return nil, err
	}

	return participation, nil
}

func (s *challengeService) GetStatus(ctx context.Context, userID, challengeID uuid.UUID) (*dto.ParticipationStatusResponse, error) {
	p, err := s.challengeRepo.FindParticipation(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	return &dto.ParticipationStatusResponse{
		ChallengeID: p.ChallengeID,
		Status:      p.Status,
		JoinedAt:    p.CreatedAt,
	}, nil
}

func (s *challengeService) ListMyParticipations(ctx context.Context, userID uuid.UUID) ([]dto.ParticipationStatusResponse, error) {
	participations, err := s.challengeRepo.ListParticipations(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ParticipationStatusResponse, 0, len(participations))
	for _, p := range participations {
		out = append(out, dto.ParticipationStatusResponse{
			ChallengeID:    p.ChallengeID,
			ChallengeTitle: p.Challenge.Title,
			Points:         p.Challenge.Points,
			Status:         p.Status,
			JoinedAt:       p.CreatedAt,
		})
	}
	return out, nil
}
