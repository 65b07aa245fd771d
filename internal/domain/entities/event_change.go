package entities

import "time"

// EventChangeType enumerates the kinds of event mutations broadcast on the bus
type EventChangeType string

const (
	EventChangePublished EventChangeType = "published"
	EventChangeUpdated   EventChangeType = "updated"
	EventChangeDeleted   EventChangeType = "deleted"
)

// EventChange is broadcast whenever a creator mutates an event, so cached
// query results can be invalidated across instances.
type EventChange struct {
	ID         string          `json:"id"`
	Type       EventChangeType `json:"type"`
	EventID    string          `json:"event_id"`
	CreatorID  string          `json:"creator_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}
