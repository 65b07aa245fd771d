package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/providers"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	queryservices "github.com/sortielabs/sortie/backend/internal/query/services"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
)

const (
	maxCategories = 4
	maxImages     = 3
)

// EventService handles the creator-facing lifecycle of events: publish,
// update and delete. Reads go through the query engine, not through here.
type EventService struct {
	repo      repositories.EventRepository
	geo       providers.GeolocationProvider
	eventBus  providers.EventBus
	favorites repositories.FavoritesRepository
}

// NewEventService creates a new event service
func NewEventService(repo repositories.EventRepository, geoProvider providers.GeolocationProvider, eventBus providers.EventBus, favorites repositories.FavoritesRepository) *EventService {
	return &EventService{
		repo:      repo,
		geo:       geoProvider,
		eventBus:  eventBus,
		favorites: favorites,
	}
}

// Publish validates and stores a new event. A missing coordinate is resolved
// from the postal address when a geocoder is configured; geocoding failure is
// tolerated and the event is published without a location.
func (s *EventService) Publish(ctx context.Context, event *entities.Event) (*entities.Event, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	if event.Location == nil && s.geo != nil {
		coord, err := s.geo.Geocode(ctx, event.Address)
		if err != nil {
			log.Printf("Warning: Failed to geocode address for event %s: %v", event.ID, err)
		} else {
			event.Location = coord
		}
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.publishChange(ctx, entities.EventChangePublished, event)
	return event, nil
}

// Update applies a creator's edit. Only the original creator may touch the
// event.
func (s *EventService) Update(ctx context.Context, creatorID string, event *entities.Event) (*entities.Event, error) {
	if err := validateEvent(event); err != nil {
		return nil, err
	}

	existing, err := s.loadOwned(ctx, creatorID, event.ID)
	if err != nil {
		return nil, err
	}

	event.CreatorID = existing.CreatorID
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = time.Now().UTC()

	// Re-geocode when the address changed and the caller did not supply a
	// coordinate of their own.
	if event.Location == nil && s.geo != nil && event.Address != existing.Address {
		if coord, err := s.geo.Geocode(ctx, event.Address); err == nil {
			event.Location = coord
		}
	}
	if event.Location == nil {
		event.Location = existing.Location
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.publishChange(ctx, entities.EventChangeUpdated, event)
	return event, nil
}

// Delete removes a creator's event
func (s *EventService) Delete(ctx context.Context, creatorID, eventID string) error {
	existing, err := s.loadOwned(ctx, creatorID, eventID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return err
	}

	// Best effort: a leftover favorite ID is invisible to clients anyway,
	// since favorite state is only rendered for events a search returned.
	if s.favorites != nil {
		if err := s.favorites.RemoveEventReferences(ctx, eventID); err != nil {
			log.Printf("Warning: Failed to remove favorite references for event %s: %v", eventID, err)
		}
	}

	s.publishChange(ctx, entities.EventChangeDeleted, existing)
	return nil
}

// loadOwned fetches an event and checks the caller owns it
func (s *EventService) loadOwned(ctx context.Context, creatorID, eventID string) (*entities.Event, error) {
	raw, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	existing, ok := queryservices.ParseEventDocument(*raw)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("event with id %s not found", eventID))
	}

	if existing.CreatorID != creatorID {
		return nil, apperrors.NewForbiddenError("only the event creator can modify this event")
	}
	return existing, nil
}

func (s *EventService) publishChange(ctx context.Context, changeType entities.EventChangeType, event *entities.Event) {
	if s.eventBus == nil {
		return
	}
	change := &entities.EventChange{
		ID:         uuid.New().String(),
		Type:       changeType,
		EventID:    event.ID,
		CreatorID:  event.CreatorID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, providers.ChannelEventChanges, change); err != nil {
		// Best effort: remote caches fall back to TTL expiry.
		log.Printf("Warning: Failed to publish event change for %s: %v", event.ID, err)
	}
}

func validateEvent(event *entities.Event) error {
	var problems []string

	if strings.TrimSpace(event.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(event.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(event.Address) == "" {
		problems = append(problems, "address is required")
	}
	if len(event.Dates) == 0 {
		problems = append(problems, "at least one date is required")
	}
	if event.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if len(event.Categories) > maxCategories {
		problems = append(problems, fmt.Sprintf("at most %d categories are allowed", maxCategories))
	}
	if len(event.Images) > maxImages {
		problems = append(problems, fmt.Sprintf("at most %d images are allowed", maxImages))
	}
	if event.CreatorID == "" {
		problems = append(problems, "creator_id is required")
	}

	if len(problems) > 0 {
		return apperrors.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}
