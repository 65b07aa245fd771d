package repositories

import (
	"context"
	"encoding/json"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
)

// RawEventDocument is an undecoded document as returned by the store. The
// store guarantees nothing about its shape; the document parser decides
// whether it is a valid event.
type RawEventDocument struct {
	ID   string
	Data json.RawMessage
}

// CoarseQuery is the subset of search filters pushed to the store because
// they map to indexable predicates: price equality and category overlap.
// Free-text and radius filtering always happen client-side on the superset
// this query returns.
type CoarseQuery struct {
	FreeOnly   bool
	Categories []string
	Limit      int
	Offset     int
}

// EventRepository defines the interface for event document operations
type EventRepository interface {
	// Create inserts a new event document
	Create(ctx context.Context, event *entities.Event) error

	// GetByID retrieves a single raw event document
	GetByID(ctx context.Context, id string) (*RawEventDocument, error)

	// Update replaces an event document
	Update(ctx context.Context, event *entities.Event) error

	// Delete removes an event document. Deleted IDs simply vanish from
	// subsequent queries; no tombstone is kept.
	Delete(ctx context.Context, id string) error

	// QueryCoarse returns the raw documents matching the coarse predicates,
	// in store order
	QueryCoarse(ctx context.Context, q CoarseQuery) ([]RawEventDocument, error)

	// ListByCreator returns the raw documents owned by a creator, for the
	// manager view
	ListByCreator(ctx context.Context, creatorID string) ([]RawEventDocument, error)
}
