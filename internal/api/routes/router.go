package routes

import (
	"net/http"

	"github.com/sortielabs/sortie/backend/internal/api/handlers"
	"github.com/sortielabs/sortie/backend/internal/api/middleware"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	eventHandler    *handlers.EventHandler
	favoriteHandler *handlers.FavoriteHandler
	cityHandler     *handlers.CityHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	eventHandler *handlers.EventHandler,
	favoriteHandler *handlers.FavoriteHandler,
	cityHandler *handlers.CityHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		eventHandler:    eventHandler,
		favoriteHandler: favoriteHandler,
		cityHandler:     cityHandler,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Event endpoints
	r.mux.HandleFunc("GET /api/events/search", r.eventHandler.SearchEvents)
	r.mux.HandleFunc("GET /api/events/{id}", r.eventHandler.GetEvent)
	r.mux.HandleFunc("POST /api/events", r.eventHandler.PublishEvent)
	r.mux.HandleFunc("PUT /api/events/{id}", r.eventHandler.UpdateEvent)
	r.mux.HandleFunc("DELETE /api/events/{id}", r.eventHandler.DeleteEvent)

	// User endpoints
	r.mux.HandleFunc("GET /api/users/{id}/events", r.eventHandler.ListCreatorEvents)
	r.mux.HandleFunc("GET /api/users/{id}/favorites", r.favoriteHandler.GetFavorites)
	r.mux.HandleFunc("POST /api/users/{id}/favorites/{eventId}/toggle", r.favoriteHandler.ToggleFavorite)

	// City autocomplete
	r.mux.HandleFunc("GET /api/cities/suggest", r.cityHandler.SuggestCities)

	// Apply middleware, innermost first
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
