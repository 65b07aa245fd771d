package geolocation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sortielabs/sortie/backend/internal/domain/providers"
	"github.com/sortielabs/sortie/backend/pkg/geo"
)

// MockGeolocationProvider implements a mock geolocation provider for
// development and tests
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

var mockCoordinates = map[string]geo.Coordinate{
	"Paris":     {Latitude: 48.8566, Longitude: 2.3522},
	"Lyon":      {Latitude: 45.7640, Longitude: 4.8357},
	"Marseille": {Latitude: 43.2965, Longitude: 5.3698},
	"Bordeaux":  {Latitude: 44.8378, Longitude: -0.5792},
	"Lille":     {Latitude: 50.6292, Longitude: 3.0573},
	"Nantes":    {Latitude: 47.2184, Longitude: -1.5536},
}

// Geocode converts an address to a coordinate by naive city-name matching
func (m *MockGeolocationProvider) Geocode(ctx context.Context, address string) (*geo.Coordinate, error) {
	for city, coord := range mockCoordinates {
		if strings.Contains(strings.ToLower(address), strings.ToLower(city)) {
			c := coord
			return &c, nil
		}
	}

	// Default to Paris
	c := mockCoordinates["Paris"]
	return &c, nil
}

// ReverseGeocode converts a coordinate to a formatted address
func (m *MockGeolocationProvider) ReverseGeocode(ctx context.Context, coord geo.Coordinate) (string, error) {
	return fmt.Sprintf("%f, %f", coord.Latitude, coord.Longitude), nil
}
