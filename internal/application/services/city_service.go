package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/providers"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
)

const (
	citySuggestTTL     = 3600
	defaultSuggestSize = 5
	maxSuggestSize     = 20
)

// CityService resolves a user's typed text into candidate search centers
// using the autocomplete index. Suggestions are static data, so they are
// cached aggressively.
type CityService struct {
	cities repositories.CitySearchRepository
	cache  providers.CacheProvider
}

// NewCityService creates a new city service
func NewCityService(cities repositories.CitySearchRepository, cache providers.CacheProvider) *CityService {
	return &CityService{
		cities: cities,
		cache:  cache,
	}
}

// Suggest returns cities matching the typed prefix. With no index configured
// it returns an empty list so the client falls back to plain text search.
func (s *CityService) Suggest(ctx context.Context, prefix string, limit int) ([]*entities.City, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []*entities.City{}, nil
	}
	if limit <= 0 {
		limit = defaultSuggestSize
	}
	if limit > maxSuggestSize {
		limit = maxSuggestSize
	}
	if s.cities == nil {
		return []*entities.City{}, nil
	}

	cacheKey := fmt.Sprintf("cities:suggest:%s:%d", strings.ToLower(prefix), limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && data != nil {
			var cached []*entities.City
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	cities, err := s.cities.Suggest(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(cities); err == nil {
			go func() {
				if err := s.cache.Set(context.Background(), cacheKey, data, citySuggestTTL); err != nil {
					log.Printf("Failed to cache city suggestions for %q: %v", prefix, err)
				}
			}()
		}
	}

	return cities, nil
}
