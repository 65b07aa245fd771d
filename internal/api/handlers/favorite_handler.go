package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

// FavoriteService is the toggle coordinator consumed by the handler
type FavoriteService interface {
	Toggle(ctx context.Context, userID, eventID string, currentFavorite bool) (bool, error)
	Read(ctx context.Context, userID string) ([]string, error)
}

// FavoriteHandler handles favorite-related HTTP requests
type FavoriteHandler struct {
	favorites FavoriteService
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favorites FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// GetFavorites handles GET /api/users/{id}/favorites
func (h *FavoriteHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	ids, err := h.favorites.Read(r.Context(), userID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"favorite_ids": ids,
		"count":        len(ids),
	})
}

// toggleRequest carries the state the client is toggling away from
type toggleRequest struct {
	CurrentFavorite bool `json:"current_favorite"`
}

// ToggleFavorite handles POST /api/users/{id}/favorites/{eventId}/toggle
func (h *FavoriteHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	eventID := r.PathValue("eventId")
	if userID == "" || eventID == "" {
		respondWithError(w, http.StatusBadRequest, "user ID and event ID are required")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	favorite, err := h.favorites.Toggle(r.Context(), userID, eventID, req.CurrentFavorite)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"event_id": eventID,
		"favorite": favorite,
	})
}
