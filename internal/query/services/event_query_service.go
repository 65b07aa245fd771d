package services

import (
	"context"
	"fmt"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/observability"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
	"github.com/sortielabs/sortie/backend/pkg/geo"
	"github.com/sortielabs/sortie/backend/pkg/textmatch"
)

// EventQueryService is the discovery query engine shared by the list, map
// and filter screens. One Search call is one coarse store query plus
// client-side decoding and filtering; it holds no state between calls.
type EventQueryService struct {
	events    repositories.EventRepository
	favorites repositories.FavoritesRepository
	metrics   *observability.Metrics
}

// NewEventQueryService creates a new event query service
func NewEventQueryService(
	events repositories.EventRepository,
	favorites repositories.FavoritesRepository,
	metrics *observability.Metrics,
) *EventQueryService {
	return &EventQueryService{
		events:    events,
		favorites: favorites,
		metrics:   metrics,
	}
}

// MatchCategories reports whether the event's tags intersect the requested
// set. An empty requested set means no restriction, not "match nothing".
// Matching is union-style: one shared tag suffices.
func MatchCategories(eventTags, requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, want := range requested {
		for _, tag := range eventTags {
			if tag == want {
				return true
			}
		}
	}
	return false
}

// Search turns the criteria into a final ordered event list. Only price and
// category predicates are pushed to the store; free-text and radius are not
// indexable in the same pass, so the engine over-fetches and filters the
// decoded documents locally. Output order is store order filtered, identical
// across calls for an unchanged store.
func (s *EventQueryService) Search(ctx context.Context, criteria entities.SearchCriteria) ([]*entities.Event, error) {
	docs, err := s.events.QueryCoarse(ctx, repositories.CoarseQuery{
		FreeOnly:   criteria.FreeOnly,
		Categories: criteria.Categories,
	})
	if err != nil {
		return nil, err
	}
	observability.RecordStoreQuery(ctx, s.metrics)

	logger := observability.LoggerFromContext(ctx)

	results := make([]*entities.Event, 0, len(docs))
	dropped := 0
	for _, doc := range docs {
		event, ok := ParseEventDocument(doc)
		if !ok {
			// A single malformed legacy document never fails the query.
			dropped++
			logger.Debug().Str("event_id", doc.ID).Msg("dropping malformed event document")
			continue
		}

		if !s.matchesLocal(criteria, event) {
			continue
		}

		results = append(results, event)
	}

	if dropped > 0 {
		observability.RecordDroppedDocuments(ctx, s.metrics, dropped)
		logger.Warn().Int("dropped", dropped).Msg("malformed event documents dropped during search")
	}

	return results, nil
}

// matchesLocal applies the client-side filters in fixed order: text, then
// radius.
func (s *EventQueryService) matchesLocal(criteria entities.SearchCriteria, event *entities.Event) bool {
	// City search takes priority over name search: when a center is set the
	// text filter is skipped entirely. Deliberate product behavior.
	if criteria.Center == nil && criteria.Query != "" {
		if !textmatch.Contains(event.Name, criteria.Query) {
			return false
		}
	}

	if criteria.HasGeoFilter() {
		// Events without a resolved location are never excluded for it.
		if event.Location != nil && !geo.WithinRadiusKm(*criteria.Center, *event.Location, *criteria.RadiusKm) {
			return false
		}
	}

	return true
}

// SearchWithFavorites runs the event query and the viewer's favorites read
// in parallel. The favorites read is optional: its failure degrades the
// result instead of aborting, while a repository failure aborts the call.
func (s *EventQueryService) SearchWithFavorites(ctx context.Context, criteria entities.SearchCriteria, userID string) (*entities.DiscoveryResult, error) {
	type favoritesRead struct {
		ids []string
		err error
	}

	favCh := make(chan favoritesRead, 1)
	switch {
	case userID == "":
		favCh <- favoritesRead{}
	case s.favorites == nil:
		favCh <- favoritesRead{err: apperrors.NewTransportError("favorites store unavailable", nil)}
	default:
		go func() {
			ids, err := s.favorites.Read(ctx, userID)
			favCh <- favoritesRead{ids: ids, err: err}
		}()
	}

	events, err := s.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	result := &entities.DiscoveryResult{Events: events}

	fav := <-favCh
	if fav.err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(fav.err).Str("user_id", userID).
			Msg("favorites read failed, rendering without favorite state")
		result.FavoritesUnavailable = true
		return result, nil
	}
	result.FavoriteIDs = fav.ids

	return result, nil
}

// GetByID retrieves and decodes a single event. A document that no longer
// parses is reported as not found, matching how it vanishes from queries.
func (s *EventQueryService) GetByID(ctx context.Context, id string) (*entities.Event, error) {
	raw, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event, ok := ParseEventDocument(*raw)
	if !ok {
		observability.LoggerFromContext(ctx).Warn().Str("event_id", id).Msg("stored event document is malformed")
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("event with id %s not found", id))
	}

	return event, nil
}

// ListByCreator returns a creator's decoded events for the manager view,
// dropping malformed documents the same way Search does.
func (s *EventQueryService) ListByCreator(ctx context.Context, creatorID string) ([]*entities.Event, error) {
	docs, err := s.events.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	events := make([]*entities.Event, 0, len(docs))
	for _, doc := range docs {
		if event, ok := ParseEventDocument(doc); ok {
			events = append(events, event)
		}
	}

	return events, nil
}
