package entities

import "github.com/sortielabs/sortie/backend/pkg/geo"

// City is a lookup entity used to resolve a user's typed text into a search
// center. Sourced from the city index, never mutated by users.
type City struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	PostalCodes []string       `json:"postal_codes,omitempty"`
	Location    geo.Coordinate `json:"location"`
}
