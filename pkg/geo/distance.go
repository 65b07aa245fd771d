package geo

import "math"

const earthRadiusKm = 6371.0

// Coordinate is a WGS-84-style latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceKm returns the great-circle distance between a and b in kilometers
// using the haversine formula on a spherical earth approximation. The map
// screen reuses this to draw the radius indicator, so it lives here rather
// than inside the query engine.
func DistanceKm(a, b Coordinate) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// WithinRadiusKm reports whether b lies within radiusKm of a. The boundary is
// inclusive: a point at exactly radiusKm matches.
func WithinRadiusKm(a, b Coordinate, radiusKm float64) bool {
	return DistanceKm(a, b) <= radiusKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
