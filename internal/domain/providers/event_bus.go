package providers

import (
	"context"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
)

// EventBus defines the interface for broadcasting event mutations between
// instances, mainly so cached query results can be invalidated.
type EventBus interface {
	// Publish publishes a change to all subscribers
	Publish(ctx context.Context, channel string, change *entities.EventChange) error

	// Subscribe subscribes to changes on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.EventChange, error)

	// Close closes the bus and all subscriptions
	Close() error
}

// ChannelEventChanges is the channel carrying all event mutations
const ChannelEventChanges = "events:changes"
