package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kultura.id/engagehub/internal/model"
)

func TestPointsService_GetTotal_ZeroWithoutAwards(t *testing.T) {
	env := newTestEnv(t)

	total, err := env.points.GetTotal(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPointsService_GetLeaderboard_Positions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tenant := env.createTenant(t, "acme")
	alice := env.createUser(t, "alice", &tenant.ID)
	bob := env.createUser(t, "bob", &tenant.ID)
	carol := env.createUser(t, "carol", &tenant.ID)

	for _, s := range []model.UserStats{
		{UserID: alice.ID, TotalPoints: 120},
		{UserID: bob.ID, TotalPoints: 200},
		{UserID: carol.ID, TotalPoints: 80},
	} {
		require.NoError(t, env.db.Create(&s).Error)
	}

	entries, err := env.points.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "bob", entries[0].Username)
	assert.Equal(t, 200, entries[0].TotalPoints)
	assert.Equal(t, 2, entries[1].Position)
	assert.Equal(t, "alice", entries[1].Username)
	assert.Equal(t, 3, entries[2].Position)
	assert.Equal(t, "carol", entries[2].Username)

	// Zero limit falls back to the default of 10.
	entries, err = env.points.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = env.points.GetLeaderboard(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].Username)
}
