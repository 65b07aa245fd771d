package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
)

// CityService is the autocomplete resolver consumed by the handler
type CityService interface {
	Suggest(ctx context.Context, prefix string, limit int) ([]*entities.City, error)
}

// CityHandler handles city autocomplete HTTP requests
type CityHandler struct {
	cities CityService
}

// NewCityHandler creates a new city handler
func NewCityHandler(cities CityService) *CityHandler {
	return &CityHandler{cities: cities}
}

// SuggestCities handles GET /api/cities/suggest
func (h *CityHandler) SuggestCities(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	cities, err := h.cities.Suggest(r.Context(), prefix, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
		"count":  len(cities),
	})
}
