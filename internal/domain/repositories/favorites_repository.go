package repositories

import "context"

// FavoritesRepository defines the interface for the per-user favorite set.
// Only the authenticated user's own set is ever mutated; last write wins at
// the store is the accepted consistency level.
type FavoritesRepository interface {
	// Read returns the user's favorited event IDs
	Read(ctx context.Context, userID string) ([]string, error)

	// Add inserts an event ID into the user's set
	Add(ctx context.Context, userID, eventID string) error

	// Remove deletes an event ID from the user's set
	Remove(ctx context.Context, userID, eventID string) error

	// RemoveEventReferences deletes an event ID from every user's set,
	// used when the event itself is deleted
	RemoveEventReferences(ctx context.Context, eventID string) error
}
