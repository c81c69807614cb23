package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kultura.id/engagehub/internal/dto"
	"kultura.id/engagehub/internal/model"
	"kultura.id/engagehub/pkg/apperror"
)

func TestMembershipService_CreateCircle_RequiresTenant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	unassigned := env.createUser(t, "floating", nil)

	_, err := env.membership.CreateCircle(ctx, unassigned.ID, dto.CreateCircleRequest{Name: "c"})
	assert.ErrorIs(t, err, apperror.ErrTenantMismatch)
}

func TestMembershipService_CreateCircle_InheritsCreatorTenant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tenant := env.createTenant(t, "acme")
	user := env.createUser(t, "u1", &tenant.ID)

	circle, err := env.membership.CreateCircle(ctx, user.ID, dto.CreateCircleRequest{
		Name:        "book club",
		Description: "reads things",
	})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, circle.TenantID)
	assert.Equal(t, user.ID, circle.CreatedBy)
}

func TestMembershipService_JoinCircle_TenantScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := env.createTenant(t, "acme")
	globex := env.createTenant(t, "globex")

	owner := env.createUser(t, "owner", &acme.ID)
	outsider := env.createUser(t, "outsider", &globex.ID)
	unassigned := env.createUser(t, "unassigned", nil)

	circle, err := env.membership.CreateCircle(ctx, owner.ID, dto.CreateCircleRequest{Name: "c"})
	require.NoError(t, err)

	_, err = env.membership.JoinCircle(ctx, outsider.ID, circle.ID)
	assert.ErrorIs(t, err, apperror.ErrTenantMismatch)

	_, err = env.membership.JoinCircle(ctx, unassigned.ID, circle.ID)
	assert.ErrorIs(t, err, apperror.ErrTenantMismatch)

	_, err = env.membership.JoinCircle(ctx, owner.ID, circle.ID)
	require.NoError(t, err)

	// A second join of the same circle is rejected.
	_, err = env.membership.JoinCircle(ctx, owner.ID, circle.ID)
	assert.ErrorIs(t, err, apperror.ErrAlreadyMember)
}

func TestMembershipService_LeaveCircle_KeepsChallengeHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tenant := env.createTenant(t, "acme")
	user := env.createUser(t, "u1", &tenant.ID)

	circle, err := env.membership.CreateCircle(ctx, user.ID, dto.CreateCircleRequest{Name: "c"})
	require.NoError(t, err)
	participation, err := env.membership.JoinCircle(ctx, user.ID, circle.ID)
	require.NoError(t, err)

	challenge := model.Challenge{CircleID: circle.ID, Title: "t", Points: 10, CreatedBy: user.ID}
	require.NoError(t, env.db.Create(&challenge).Error)
	_, err = env.challenges.JoinChallenge(ctx, user.ID, challenge.ID)
	require.NoError(t, err)

	require.NoError(t, env.membership.LeaveCircle(ctx, participation.ID))

	isMember, err := env.membership.IsMember(ctx, user.ID, circle.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	// The challenge participation survives the exit.
	status, err := env.challenges.GetStatus(ctx, user.ID, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ParticipationPending, status.Status)
}

func TestMembershipService_ListCircles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acme := env.createTenant(t, "acme")
	globex := env.createTenant(t, "globex")

	acmeUser := env.createUser(t, "a1", &acme.ID)
	globexUser := env.createUser(t, "g1", &globex.ID)

	_, err := env.membership.CreateCircle(ctx, acmeUser.ID, dto.CreateCircleRequest{Name: "acme-circle"})
	require.NoError(t, err)
	_, err = env.membership.CreateCircle(ctx, globexUser.ID, dto.CreateCircleRequest{Name: "globex-circle"})
	require.NoError(t, err)

	circles, err := env.membership.ListCircles(ctx, acmeUser.ID)
	require.NoError(t, err)
	require.Len(t, circles, 1)
	assert.Equal(t, "acme-circle", circles[0].Name)

	// A user with no tenant sees nothing.
	unassigned := env.createUser(t, "nobody", nil)
	circles, err = env.membership.ListCircles(ctx, unassigned.ID)
	require.NoError(t, err)
	assert.Empty(t, circles)
}

func TestMembershipService_ListMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tenant := env.createTenant(t, "acme")
	owner := env.createUser(t, "owner", &tenant.ID)
	other := env.createUser(t, "other", &tenant.ID)

	circle, err := env.membership.CreateCircle(ctx, owner.ID, dto.CreateCircleRequest{Name: "c"})
	require.NoError(t, err)

	_, err = env.membership.JoinCircle(ctx, owner.ID, circle.ID)
	require.NoError(t, err)
	_, err = env.membership.JoinCircle(ctx, other.ID, circle.ID)
	require.NoError(t, err)

	members, err := env.membership.ListMembers(ctx, circle.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	usernames := []string{members[0].Username, members[1].Username}
	assert.Contains(t, usernames, "owner")
	assert.Contains(t, usernames, "other")
}
