package entities

import "github.com/sortielabs/sortie/backend/pkg/geo"

// SearchCriteria is the immutable set of user-chosen filter inputs for one
// discovery query. The UI reconstructs it whenever a filter changes; nothing
// here is persisted.
type SearchCriteria struct {
	// Query is a free-text match against event names. It is ignored when
	// Center is set: location search takes priority over name search, a
	// deliberate product decision, not an oversight.
	Query string

	// Center is the resolved coordinate of the user's home city or device
	// location. Nil when no location filter is active.
	Center *geo.Coordinate

	// RadiusKm bounds the geo filter. Nil disables the radius filter even
	// when Center is present.
	RadiusKm *float64

	// Categories restricts results to events sharing at least one of these
	// tags. Empty means no category restriction.
	Categories []string

	// FreeOnly keeps only events with a zero price.
	FreeOnly bool
}

// HasGeoFilter reports whether both a center and a radius are present, the
// precondition for applying the radius filter at all.
func (c SearchCriteria) HasGeoFilter() bool {
	return c.Center != nil && c.RadiusKm != nil
}
