package entities

import (
	"time"

	"github.com/sortielabs/sortie/backend/pkg/geo"
)

// Event represents a published event in the system
type Event struct {
	ID          string          `json:"id"`
	CreatorID   string          `json:"creator_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Dates       []time.Time     `json:"dates"`
	Price       float64         `json:"price"`
	Location    *geo.Coordinate `json:"location,omitempty"`
	Address     string          `json:"address"`
	Categories  []string        `json:"categories,omitempty"`
	Images      []string        `json:"images,omitempty"`
	Social      *SocialLinks    `json:"social,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SocialLinks holds optional outbound links attached to an event
type SocialLinks struct {
	Website   string `json:"website,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
}

// IsFree reports whether the event costs nothing to attend
func (e *Event) IsFree() bool {
	return e.Price == 0
}

// StartsAt returns the first occurrence date. Dates are kept sorted
// ascending, so this is the earliest one. Zero time for an event with no
// dates, which the parser never produces.
func (e *Event) StartsAt() time.Time {
	if len(e.Dates) == 0 {
		return time.Time{}
	}
	return e.Dates[0]
}
