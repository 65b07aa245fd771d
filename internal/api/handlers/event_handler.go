package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
	"github.com/sortielabs/sortie/backend/pkg/geo"
)

// EventQueryService is the read side consumed by the handler
type EventQueryService interface {
	SearchWithFavorites(ctx context.Context, criteria entities.SearchCriteria, userID string) (*entities.DiscoveryResult, error)
	GetByID(ctx context.Context, id string) (*entities.Event, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*entities.Event, error)
}

// EventCommandService is the creator-facing write side consumed by the handler
type EventCommandService interface {
	Publish(ctx context.Context, event *entities.Event) (*entities.Event, error)
	Update(ctx context.Context, creatorID string, event *entities.Event) (*entities.Event, error)
	Delete(ctx context.Context, creatorID, eventID string) error
}

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	queries EventQueryService
	events  EventCommandService
}

// NewEventHandler creates a new event handler
func NewEventHandler(queries EventQueryService, events EventCommandService) *EventHandler {
	return &EventHandler{
		queries: queries,
		events:  events,
	}
}

// SearchEvents handles GET /api/events/search
func (h *EventHandler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseSearchCriteria(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := r.Header.Get("X-User-ID")
	result, err := h.queries.SearchWithFavorites(r.Context(), criteria, userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"events":                result.Events,
		"count":                 len(result.Events),
		"favorite_ids":          result.FavoriteIDs,
		"favorites_unavailable": result.FavoritesUnavailable,
	})
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("id")
	if eventID == "" {
		respondWithError(w, http.StatusBadRequest, "event ID is required")
		return
	}

	event, err := h.queries.GetByID(r.Context(), eventID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, event)
}

// PublishEvent handles POST /api/events
func (h *EventHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var event entities.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	event.CreatorID = userID

	created, err := h.events.Publish(r.Context(), &event)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// UpdateEvent handles PUT /api/events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	eventID := r.PathValue("id")
	if eventID == "" {
		respondWithError(w, http.StatusBadRequest, "event ID is required")
		return
	}

	var event entities.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	event.ID = eventID

	updated, err := h.events.Update(r.Context(), userID, &event)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// DeleteEvent handles DELETE /api/events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	eventID := r.PathValue("id")
	if eventID == "" {
		respondWithError(w, http.StatusBadRequest, "event ID is required")
		return
	}

	if err := h.events.Delete(r.Context(), userID, eventID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCreatorEvents handles GET /api/users/{id}/events
func (h *EventHandler) ListCreatorEvents(w http.ResponseWriter, r *http.Request) {
	creatorID := r.PathValue("id")
	if creatorID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	events, err := h.queries.ListByCreator(r.Context(), creatorID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// parseSearchCriteria reads the discovery filters from query parameters.
// lat and lon must come together; radius_km is only meaningful with them.
func parseSearchCriteria(r *http.Request) (entities.SearchCriteria, error) {
	q := r.URL.Query()

	criteria := entities.SearchCriteria{
		Query:    strings.TrimSpace(q.Get("q")),
		FreeOnly: q.Get("free_only") == "true",
	}

	if cats := q.Get("categories"); cats != "" {
		for _, c := range strings.Split(cats, ",") {
			if c = strings.TrimSpace(c); c != "" {
				criteria.Categories = append(criteria.Categories, c)
			}
		}
	}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr != "" || lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return criteria, apperrors.NewValidationError("invalid lat parameter")
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return criteria, apperrors.NewValidationError("invalid lon parameter")
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return criteria, apperrors.NewValidationError("coordinates out of range")
		}
		criteria.Center = &geo.Coordinate{Latitude: lat, Longitude: lon}
	}

	if radiusStr := q.Get("radius_km"); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius < 0 {
			return criteria, apperrors.NewValidationError("invalid radius_km parameter")
		}
		criteria.RadiusKm = &radius
	}

	return criteria, nil
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps typed application errors onto HTTP statuses
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeUnauthorized:
			respondWithError(w, http.StatusUnauthorized, appErr.Message)
		case apperrors.ErrorTypeForbidden:
			respondWithError(w, http.StatusForbidden, appErr.Message)
		case apperrors.ErrorTypeTransport:
			// The client renders its own localized message; the cause string
			// rides along for diagnostics.
			message := appErr.Message
			if appErr.Err != nil {
				message = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
			}
			respondWithError(w, http.StatusServiceUnavailable, message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
