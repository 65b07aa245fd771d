package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	paris     = Coordinate{Latitude: 48.8566, Longitude: 2.3522}
	lyon      = Coordinate{Latitude: 45.7640, Longitude: 4.8357}
	marseille = Coordinate{Latitude: 43.2965, Longitude: 5.3698}
)

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	assert.InDelta(t, 0.0, DistanceKm(paris, paris), 1e-9)
	assert.InDelta(t, 0.0, DistanceKm(Coordinate{}, Coordinate{}), 1e-9)
}

func TestDistanceKm_Symmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{paris, lyon},
		{lyon, marseille},
		{paris, marseille},
		{{Latitude: -33.8688, Longitude: 151.2093}, {Latitude: 40.7128, Longitude: -74.0060}},
	}
	for _, pair := range pairs {
		assert.InDelta(t, DistanceKm(pair[0], pair[1]), DistanceKm(pair[1], pair[0]), 1e-9)
	}
}

func TestDistanceKm_KnownDistances(t *testing.T) {
	// Great-circle Paris-Lyon is about 392 km, Paris-Marseille about 661 km.
	assert.InDelta(t, 392, DistanceKm(paris, lyon), 5)
	assert.InDelta(t, 661, DistanceKm(paris, marseille), 5)
}

func TestDistanceKm_TriangleInequality(t *testing.T) {
	direct := DistanceKm(paris, marseille)
	viaLyon := DistanceKm(paris, lyon) + DistanceKm(lyon, marseille)
	assert.LessOrEqual(t, direct, viaLyon)
}

func TestWithinRadiusKm_InclusiveBoundary(t *testing.T) {
	d := DistanceKm(paris, lyon)

	assert.True(t, WithinRadiusKm(paris, lyon, d))
	assert.True(t, WithinRadiusKm(paris, lyon, d+0.001))
	assert.False(t, WithinRadiusKm(paris, lyon, d-0.001))
}
