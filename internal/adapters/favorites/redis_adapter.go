package favorites

import (
	"context"

	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	redisclient "github.com/sortielabs/sortie/backend/internal/infrastructure/clients/redis"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
)

const (
	keyPrefix      = "favorites:"
	eventKeyPrefix = "favorites:event:"
)

// RedisAdapter implements FavoritesRepository as one Redis set per user,
// plus a reverse set per event so a deleted event can be swept out of every
// user's favorites. Set semantics give membership uniqueness for free; last
// write wins is the accepted consistency level.
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a new Redis favorites adapter
func NewRedisAdapter(client *redisclient.Client) repositories.FavoritesRepository {
	return &RedisAdapter{
		client: client,
	}
}

func userKey(userID string) string {
	return keyPrefix + userID
}

func eventKey(eventID string) string {
	return eventKeyPrefix + eventID
}

// Read returns the user's favorited event IDs
func (a *RedisAdapter) Read(ctx context.Context, userID string) ([]string, error) {
	ids, err := a.client.Client().SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, apperrors.NewTransportError("failed to read favorites", err)
	}
	return ids, nil
}

// Add inserts an event ID into the user's set and the user into the event's
// reverse set
func (a *RedisAdapter) Add(ctx context.Context, userID, eventID string) error {
	pipe := a.client.Client().TxPipeline()
	pipe.SAdd(ctx, userKey(userID), eventID)
	pipe.SAdd(ctx, eventKey(eventID), userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.NewTransportError("failed to add favorite", err)
	}
	return nil
}

// Remove deletes an event ID from the user's set and the reverse set
func (a *RedisAdapter) Remove(ctx context.Context, userID, eventID string) error {
	pipe := a.client.Client().TxPipeline()
	pipe.SRem(ctx, userKey(userID), eventID)
	pipe.SRem(ctx, eventKey(eventID), userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.NewTransportError("failed to remove favorite", err)
	}
	return nil
}

// RemoveEventReferences sweeps a deleted event out of every favoriting
// user's set using the reverse index, then drops the index itself.
func (a *RedisAdapter) RemoveEventReferences(ctx context.Context, eventID string) error {
	userIDs, err := a.client.Client().SMembers(ctx, eventKey(eventID)).Result()
	if err != nil {
		return apperrors.NewTransportError("failed to read favorite references", err)
	}

	pipe := a.client.Client().TxPipeline()
	for _, userID := range userIDs {
		pipe.SRem(ctx, userKey(userID), eventID)
	}
	pipe.Del(ctx, eventKey(eventID))
	if _, err := pipe.Exec(ctx); err != nil {
		return apperrors.NewTransportError("failed to remove favorite references", err)
	}
	return nil
}
