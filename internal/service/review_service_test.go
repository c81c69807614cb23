package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/internal/repository"
	"kultura.id/engagehub/pkg/apperror"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Role{},
		&model.Tenant{},
		&model.User{},
		&model.Circle{},
		&model.CircleParticipation{},
		&model.Challenge{},
		&model.ChallengeParticipation{},
		&model.Submission{},
		&model.PointsLedgerEntry{},
		&model.UserStats{},
		&model.Notification{},
	))

	return db
}

type testEnv struct {
	db         *gorm.DB
	membership MembershipService
	challenges ChallengeService
	review     ReviewService
	points     PointsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupServiceDB(t)
	userRepo := repository.NewUserRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	pointsRepo := repository.NewPointsRepository(db)

	// nil Redis disables rate limiting, nil search skips indexing.
	return &testEnv{
		db:         db,
		membership: NewMembershipService(circleRepo, userRepo),
		challenges: NewChallengeService(challengeRepo, circleRepo, nil),
		review:     NewReviewService(submissionRepo, nil, nil, nil, 0),
		points:     NewPointsService(pointsRepo),
	}
}

func (e *testEnv) createTenant(t *testing.T, name string) model.Tenant {
	t.Helper()
	tenant := model.Tenant{Name: name}
	require.NoError(t, e.db.Create(&tenant).Error)
	return tenant
}

func (e *testEnv) createUser(t *testing.T, username string, tenantID *uuid.UUID) model.User {
	t.Helper()
	user := model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		TenantID:     tenantID,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

// The whole path a participant walks: join a circle, join a challenge,
// submit proof, get rejected, resubmit, get approved, collect the points.
func TestReviewWorkflow_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tenant := env.createTenant(t, "acme")
	user := env.createUser(t, "u1", &tenant.ID)
	moderator := env.createUser(t, "mod", &tenant.ID)

	circle, err := env.membership.CreateCircle(ctx, user.ID, dto.CreateCircleRequest{
		Name: "fitness",
	})
	require.NoError(t, err)

	// Creating a circle does not make the creator a member.
	_, err = env.membership.JoinCircle(ctx, user.ID, circle.ID)
	require.NoError(t, err)

	challenge := model.Challenge{
		CircleID:  circle.ID,
		Title:     "10k steps",
		Points:    50,
		CreatedBy: user.ID,
	}
	require.NoError(t, env.db.Create(&challenge).Error)

	_, err = env.challenges.JoinChallenge(ctx, user.ID, challenge.ID)
	require.NoError(t, err)

	sub, err := env.review.Submit(ctx, user.ID, dto.CreateSubmissionRequest{
		ChallengeID: challenge.ID.String(),
		FileRef:     "https://cdn.example.com/steps1.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionPending, sub.Status)

	rejected, err := env.review.Reject(ctx, sub.ID, moderator.ID, "photo is too blurry")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionRejected, rejected.Status)

	// Rejection keeps the participation open.
	status, err := env.challenges.GetStatus(ctx, user.ID, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ParticipationPending, status.Status)

	total, err := env.points.GetTotal(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	resubmitted, err := env.review.Submit(ctx, user.ID, dto.CreateSubmissionRequest{
		ChallengeID: challenge.ID.String(),
		FileRef:     "https://cdn.example.com/steps2.jpg",
	})
	require.NoError(t, err)

	approved, err := env.review.Approve(ctx, resubmitted.ID, moderator.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionApproved, approved.Status)

	status, err = env.challenges.GetStatus(ctx, user.ID, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ParticipationCompleted, status.Status)

	total, err = env.points.GetTotal(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, total)

	// The decision is single use; a repeat changes nothing.
	_, err = env.review.Approve(ctx, resubmitted.ID, moderator.ID, "")
	assert.ErrorIs(t, err, apperror.ErrAlreadyReviewed)

	total, err = env.points.GetTotal(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, total)

	ledger, err := env.points.GetLedger(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, "10k steps", ledger[0].ChallengeTitle)
	assert.Equal(t, 50, ledger[0].Points)
}

func TestReviewService_Submit_RequiresParticipation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tenant := env.createTenant(t, "acme")
	user := env.createUser(t, "u1", &tenant.ID)

	circle := model.Circle{TenantID: tenant.ID, Name: "c", CreatedBy: user.ID}
	require.NoError(t, env.db.Create(&circle).Error)
	challenge := model.Challenge{CircleID: circle.ID, Title: "t", Points: 10, CreatedBy: user.ID}
	require.NoError(t, env.db.Create(&challenge).Error)

	_, err := env.review.Submit(ctx, user.ID, dto.CreateSubmissionRequest{
		ChallengeID: challenge.ID.String(),
		FileRef:     "https://cdn.example.com/p.jpg",
	})
	assert.ErrorIs(t, err, apperror.ErrNotParticipant)
}

func TestReviewService_Submit_OnePendingAtATime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tenant := env.createTenant(t, "acme")
	user := env.createUser(t, "u1", &tenant.ID)

	circle := model.Circle{TenantID: tenant.ID, Name: "c", CreatedBy: user.ID}
	require.NoError(t, env.db.Create(&circle).Error)
	require.NoError(t, env.db.Create(&model.CircleParticipation{UserID: user.ID, CircleID: circle.ID}).Error)
	challenge := model.Challenge{CircleID: circle.ID, Title: "t", Points: 10, CreatedBy: user.ID}
	require.NoError(t, env.db.Create(&challenge).Error)
	require.NoError(t, env.db.Create(&model.ChallengeParticipation{
		UserID: user.ID, ChallengeID: challenge.ID, Status: model.ParticipationPending,
	}).Error)

	_, err := env.review.Submit(ctx, user.ID, dto.CreateSubmissionRequest{
		ChallengeID: challenge.ID.String(),
		FileRef:     "https://cdn.example.com/1.jpg",
	})
	require.NoError(t, err)

	_, err = env.review.Submit(ctx, user.ID, dto.CreateSubmissionRequest{
		ChallengeID: challenge.ID.String(),
		FileRef:     "https://cdn.example.com/2.jpg",
	})
	assert.ErrorIs(t, err, apperror.ErrReviewInProgress)
}

func TestReviewService_Submit_BadChallengeID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.review.Submit(context.Background(), uuid.New(), dto.CreateSubmissionRequest{
		ChallengeID: "not-a-uuid",
		FileRef:     "https://cdn.example.com/p.jpg",
	})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestReviewService_ListPending_Defaults(t *testing.T) {
	env := newTestEnv(t)

	list, err := env.review.ListPending(context.Background(), dto.PendingSubmissionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)
	assert.Empty(t, list.Items)
	assert.Zero(t, list.Total)
}
