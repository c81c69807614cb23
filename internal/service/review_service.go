package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/internal/repository"
	"kultura.id/engagehub/pkg/apperror"
	"kultura.id/engagehub/pkg/storage"
)

const actionSubmitProof = "submit_proof"

// ReviewService is the submission review workflow. It is the only writer
// that completes a participation and the only trigger for ledger credits;
// both happen inside the repository's review transaction.
type ReviewService interface {
	Submit(ctx context.Context, userID uuid.UUID, input dto.CreateSubmissionRequest) (*model.Submission, error)
	Withdraw(ctx context.Context, submissionID, userID uuid.UUID) error
	GetSubmission(ctx context.Context, submissionID, requesterID uuid.UUID) (*model.Submission, error)
	Approve(ctx context.Context, submissionID, reviewerID uuid.UUID, feedback string) (*model.Submission, error)
	Reject(ctx context.Context, submissionID, reviewerID uuid.UUID, feedback string) (*model.Submission, error)
	ListPending(ctx context.Context, filter dto.PendingSubmissionFilter) (*dto.PendingSubmissionList, error)
}

type reviewService struct {
	submissionRepo      repository.SubmissionRepository
	notificationService NotificationService
	proofStorage        storage.ProofStorage
	redisClient         *redis.Client
	submitLimit         time.Duration
}

func NewReviewService(submissionRepo repository.SubmissionRepository, notificationService NotificationService, proofStorage storage.ProofStorage, redisClient *redis.Client, submitLimit time.Duration) ReviewService {
	return &reviewService{
		submissionRepo:      submissionRepo,
		notificationService: notificationService,
		proofStorage:        proofStorage,
		redisClient:         redisClient,
		submitLimit:         submitLimit,
	}
}

func (s *reviewService) Submit(ctx context.Context, userID uuid.UUID, input dto.CreateSubmissionRequest) (*model.Submission, error) {
	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, userID, actionSubmitProof, s.submitLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		if ttl, ttlErr := GetRateLimitTTL(ctx, s.redisClient, userID, actionSubmitProof); ttlErr == nil && ttl > 0 {
			return nil, fmt.Errorf("%w, retry in %ds", apperror.ErrRateLimitExceeded, int(ttl.Seconds()))
		}
		return nil, apperror.ErrRateLimitExceeded
	}

	challengeID, err := uuid.Parse(input.ChallengeID)
	if err != nil {
		return nil, apperror.ErrBadRequest
	}

	sub := &model.Submission{
		UserID:      userID,
		ChallengeID: challengeID,
		FileRef:     input.FileRef,
	}
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

// Withdraw deletes the caller's own pending submission and cleans up the
// stored evidence best effort.
func (s *reviewService) Withdraw(ctx context.Context, submissionID, userID uuid.UUID) error {
	sub, err := s.submissionRepo.Withdraw(ctx, submissionID, userID)
	if err != nil {
		return err
	}

	if s.proofStorage != nil {
		go func() {
			if err := s.proofStorage.DeleteProof(context.Background(), sub.FileRef); err != nil {
				log.Printf("Failed to delete proof for withdrawn submission %s: %v", sub.ID, err)
			}
		}()
	}
	return nil
}

func (s *reviewService) GetSubmission(ctx context.Context, submissionID, requesterID uuid.UUID) (*model.Submission, error) {
	sub, err := s.submissionRepo.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	// The pending queue is the moderator view; this one is the submitter's.
	if sub.UserID != requesterID {
		return nil, apperror.ErrForbidden
	}
	return sub, nil
}

func (s *reviewService) Approve(ctx context.Context, submissionID, reviewerID uuid.UUID, feedback string) (*model.Submission, error) {
	sub, err := s.submissionRepo.Approve(ctx, submissionID, reviewerID, feedback)
	if err != nil {
		return nil, err
	}

	s.notifyReviewed(sub, reviewerID, true)
	return sub, nil
}

func (s *reviewService) Reject(ctx context.Context, submissionID, reviewerID uuid.UUID, feedback string) (*model.Submission, error) {
	sub, err := s.submissionRepo.Reject(ctx, submissionID, reviewerID, feedback)
	if err != nil {
		return nil, err
	}

	s.notifyReviewed(sub, reviewerID, false)
	return sub, nil
}

// notifyReviewed reports the decision to the submitter. Delivery is best
// effort and happens after the review transaction committed.
func (s *reviewService) notifyReviewed(sub *model.Submission, reviewerID uuid.UUID, approved bool) {
	if s.notificationService == nil {
		return
	}

	go func() {
		ctx := context.Background()

		notifType := model.NotificationSubmissionRejected
		msg := fmt.Sprintf("Your submission for %q was rejected", sub.Challenge.Title)
		if approved {
			notifType = model.NotificationSubmissionApproved
			msg = fmt.Sprintf("Your submission for %q was approved", sub.Challenge.Title)
		}

		notif := &model.Notification{
			UserID:     sub.UserID,
			ActorID:    reviewerID,
			EntityID:   sub.ID,
			EntityType: "submission",
			Type:       notifType,
			Message:    msg,
		}
		if err := s.notificationService.CreateNotification(ctx, notif); err != nil {
			log.Printf("Failed to notify user %s about review: %v", sub.UserID, err)
		}

		if approved {
			completed := &model.Notification{
				UserID:     sub.UserID,
				ActorID:    reviewerID,
				EntityID:   sub.ChallengeID,
				EntityType: "challenge",
				Type:       model.NotificationChallengeCompleted,
				Message:    fmt.Sprintf("Challenge %q completed, %d points awarded", sub.Challenge.Title, sub.Challenge.Points),
			}
			if err := s.notificationService.CreateNotification(ctx, completed); err != nil {
				log.Printf("Failed to notify user %s about completion: %v", sub.UserID, err)
			}
		}
	}()
}

func (s *reviewService) ListPending(ctx context.Context, filter dto.PendingSubmissionFilter) (*dto.PendingSubmissionList, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	subs, total, err := s.submissionRepo.ListPending(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PendingSubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		items = append(items, dto.PendingSubmissionResponse{
			ID:             sub.ID,
			ChallengeID:    sub.ChallengeID,
			ChallengeTitle: sub.Challenge.Title,
			CircleName:     sub.Challenge.Circle.Name,
			Points:         sub.Challenge.Points,
			Submitter:      sub.User.Username,
			FileRef:        sub.FileRef,
			SubmittedAt:    sub.CreatedAt,
		})
	}

	return &dto.PendingSubmissionList{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
