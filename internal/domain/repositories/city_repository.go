package repositories

import (
	"context"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
)

// CitySearchRepository defines the interface for city autocomplete (e.g.
// Typesense). Used only to resolve a typed prefix into a search center.
type CitySearchRepository interface {
	// Suggest returns cities whose name or postal code matches the prefix
	Suggest(ctx context.Context, prefix string, limit int) ([]*entities.City, error)

	// Index upserts a city into the suggestion index
	Index(ctx context.Context, city *entities.City) error

	// DeleteIndex drops the whole suggestion index
	DeleteIndex(ctx context.Context) error
}
