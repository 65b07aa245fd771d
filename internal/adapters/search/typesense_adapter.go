package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	tsclient "github.com/sortielabs/sortie/backend/internal/infrastructure/clients/typesense"
	"github.com/sortielabs/sortie/backend/pkg/geo"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
)

const collectionName = tsclient.CitiesCollection

// TypesenseAdapter implements city autocomplete using Typesense. Only the
// center-resolution flow touches it; event search itself never queries here.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements CitySearchRepository
var _ repositories.CitySearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the cities collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "postal_codes", Type: "string[]"},
			{Name: "location", Type: "geopoint"},
		},
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Index upserts a city into the suggestion index
func (a *TypesenseAdapter) Index(ctx context.Context, city *entities.City) error {
	document := map[string]interface{}{
		"id":           city.ID,
		"name":         city.Name,
		"postal_codes": city.PostalCodes,
		"location":     []float64{city.Location.Latitude, city.Location.Longitude},
	}

	if _, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document); err != nil {
		return fmt.Errorf("failed to index city: %w", err)
	}

	return nil
}

// DeleteIndex drops the whole suggestion index
func (a *TypesenseAdapter) DeleteIndex(ctx context.Context) error {
	if _, err := a.client.Client().Collection(collectionName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete typesense collection: %w", err)
	}
	return nil
}

// Suggest returns cities matching the typed prefix by name or postal code
func (a *TypesenseAdapter) Suggest(ctx context.Context, prefix string, limit int) ([]*entities.City, error) {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		return []*entities.City{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	searchParams := &api.SearchCollectionParams{
		Q:       pointer.String(trimmed),
		QueryBy: pointer.String("name,postal_codes"),
		Prefix:  pointer.String("true"),
		PerPage: pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search cities: %w", err)
	}

	cities := []*entities.City{}
	if result.Hits == nil {
		return cities, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		city := &entities.City{}
		if val, ok := doc["id"].(string); ok {
			city.ID = val
		}
		if val, ok := doc["name"].(string); ok {
			city.Name = val
		}
		if codes, ok := doc["postal_codes"].([]interface{}); ok {
			for _, code := range codes {
				if s, ok := code.(string); ok {
					city.PostalCodes = append(city.PostalCodes, s)
				}
			}
		}
		if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
			lat, latOK := loc[0].(float64)
			lon, lonOK := loc[1].(float64)
			if latOK && lonOK {
				city.Location = geo.Coordinate{Latitude: lat, Longitude: lon}
			}
		}

		cities = append(cities, city)
	}

	return cities, nil
}
