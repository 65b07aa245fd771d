//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sortielabs/sortie/backend/internal/adapters/events"
	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	bus := events.NewRedisEventBus(redisClient)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changes, err := bus.Subscribe(ctx, providers.ChannelEventChanges)
	require.NoError(t, err)

	// Give the subscriber a moment to attach before publishing
	time.Sleep(200 * time.Millisecond)

	published := &entities.EventChange{
		ID:         uuid.New().String(),
		Type:       entities.EventChangeUpdated,
		EventID:    "it-event-1",
		CreatorID:  "it-user-1",
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, bus.Publish(ctx, providers.ChannelEventChanges, published))

	select {
	case received := <-changes:
		require.NotNil(t, received)
		assert.Equal(t, published.ID, received.ID)
		assert.Equal(t, entities.EventChangeUpdated, received.Type)
		assert.Equal(t, "it-event-1", received.EventID)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event change")
	}
}
