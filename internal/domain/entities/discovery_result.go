package entities

// DiscoveryResult is the combined payload the discovery screens render: the
// filtered event list plus the viewer's favorite set.
type DiscoveryResult struct {
	Events []*Event `json:"events"`

	// FavoriteIDs holds the viewer's favorited event IDs. Empty when the
	// viewer is anonymous or the favorites read failed.
	FavoriteIDs []string `json:"favorite_ids"`

	// FavoritesUnavailable is set when the favorites read failed. The event
	// list is still valid; the UI renders favorites as unknown instead of
	// failing the whole screen.
	FavoritesUnavailable bool `json:"favorites_unavailable,omitempty"`
}

// IsFavorite reports whether the given event ID is in the viewer's set.
func (r *DiscoveryResult) IsFavorite(eventID string) bool {
	for _, id := range r.FavoriteIDs {
		if id == eventID {
			return true
		}
	}
	return false
}
