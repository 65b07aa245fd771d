package providers

import (
	"context"

	"github.com/sortielabs/sortie/backend/pkg/geo"
)

// GeolocationProvider defines the interface for geocoding services. Consumed
// by the publish/edit flow to resolve a postal address into a coordinate;
// the query engine itself never geocodes.
type GeolocationProvider interface {
	// Geocode converts a postal address into a coordinate
	Geocode(ctx context.Context, address string) (*geo.Coordinate, error)

	// ReverseGeocode converts a coordinate into a formatted address
	ReverseGeocode(ctx context.Context, coord geo.Coordinate) (string, error)
}
