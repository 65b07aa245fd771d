//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/sortielabs/sortie/backend/internal/adapters/favorites"
	"github.com/sortielabs/sortie/backend/internal/application/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteToggleIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	repo := favorites.NewRedisAdapter(redisClient)
	service := services.NewFavoriteService(repo)
	ctx := context.Background()

	userID := "it-user-" + uuid.New().String()
	eventID := "it-event-" + uuid.New().String()

	state, err := service.Toggle(ctx, userID, eventID, false)
	require.NoError(t, err)
	assert.True(t, state)

	ids, err := service.Read(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, ids, eventID)

	state, err = service.Toggle(ctx, userID, eventID, true)
	require.NoError(t, err)
	assert.False(t, state)

	ids, err = service.Read(ctx, userID)
	require.NoError(t, err)
	assert.NotContains(t, ids, eventID)
}

func TestFavoriteReferencesSweptOnEventDeleteIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	repo := favorites.NewRedisAdapter(redisClient)
	ctx := context.Background()

	eventID := "it-event-" + uuid.New().String()
	userA := "it-user-" + uuid.New().String()
	userB := "it-user-" + uuid.New().String()

	require.NoError(t, repo.Add(ctx, userA, eventID))
	require.NoError(t, repo.Add(ctx, userB, eventID))

	require.NoError(t, repo.RemoveEventReferences(ctx, eventID))

	for _, userID := range []string{userA, userB} {
		ids, err := repo.Read(ctx, userID)
		require.NoError(t, err)
		assert.NotContains(t, ids, eventID)
	}
}
