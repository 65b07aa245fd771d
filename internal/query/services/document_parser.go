package services

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	"github.com/sortielabs/sortie/backend/pkg/geo"
)

// rawEvent mirrors the stored document shape with pointer fields so a missing
// key is distinguishable from a zero value.
type rawEvent struct {
	CreatorID   *string               `json:"creator_id"`
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Dates       []time.Time           `json:"dates"`
	Price       *float64              `json:"price"`
	Location    *geo.Coordinate       `json:"location"`
	Address     *string               `json:"address"`
	Categories  []string              `json:"categories"`
	Images      []string              `json:"images"`
	Social      *entities.SocialLinks `json:"social"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ParseEventDocument validates and decodes a raw store document. The store
// tolerates malformed legacy documents, so a document missing any required
// field (creator, name, description, address, price, at least one date) is
// dropped by returning false rather than failing the whole query. Categories,
// images and social links are optional.
func ParseEventDocument(raw repositories.RawEventDocument) (*entities.Event, bool) {
	if raw.ID == "" || len(raw.Data) == 0 {
		return nil, false
	}

	var doc rawEvent
	if err := json.Unmarshal(raw.Data, &doc); err != nil {
		return nil, false
	}

	if doc.CreatorID == nil || *doc.CreatorID == "" {
		return nil, false
	}
	if doc.Name == nil || *doc.Name == "" {
		return nil, false
	}
	if doc.Description == nil {
		return nil, false
	}
	if doc.Address == nil {
		return nil, false
	}
	if doc.Price == nil || *doc.Price < 0 {
		return nil, false
	}
	if len(doc.Dates) == 0 {
		return nil, false
	}

	dates := append([]time.Time(nil), doc.Dates...)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return &entities.Event{
		ID:          raw.ID,
		CreatorID:   *doc.CreatorID,
		Name:        *doc.Name,
		Description: *doc.Description,
		Dates:       dates,
		Price:       *doc.Price,
		Location:    doc.Location,
		Address:     *doc.Address,
		Categories:  doc.Categories,
		Images:      doc.Images,
		Social:      doc.Social,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, true
}
