package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sortielabs/sortie/backend/internal/adapters/cache"
	"github.com/sortielabs/sortie/backend/internal/adapters/database"
	"github.com/sortielabs/sortie/backend/internal/adapters/events"
	"github.com/sortielabs/sortie/backend/internal/adapters/favorites"
	"github.com/sortielabs/sortie/backend/internal/adapters/providers/geolocation"
	"github.com/sortielabs/sortie/backend/internal/adapters/search"
	"github.com/sortielabs/sortie/backend/internal/api/handlers"
	"github.com/sortielabs/sortie/backend/internal/api/routes"
	"github.com/sortielabs/sortie/backend/internal/application/services"
	"github.com/sortielabs/sortie/backend/internal/domain/providers"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/clients/postgres"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/clients/redis"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/clients/typesense"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/observability"
	queryservices "github.com/sortielabs/sortie/backend/internal/query/services"
	"github.com/sortielabs/sortie/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client; favorites and caching degrade without it
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client for city autocomplete
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
	} else {
		log.Println("Typesense client initialized successfully")
	}

	// Initialize adapters
	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	baseEventAdapter := database.NewEventAdapter(pgClient)

	var eventRepo repositories.EventRepository
	var cachedEventAdapter *database.CachedEventAdapter
	if cacheProvider != nil {
		cachedEventAdapter = database.NewCachedEventAdapter(baseEventAdapter, cacheProvider, metrics)
		eventRepo = cachedEventAdapter
		log.Println("Event adapter wrapped with caching layer")
	} else {
		eventRepo = baseEventAdapter
		log.Println("Event adapter running without cache (Redis unavailable)")
	}

	var favoritesRepo repositories.FavoritesRepository
	if redisClient != nil {
		favoritesRepo = favorites.NewRedisAdapter(redisClient)
	}

	var citySearchRepo repositories.CitySearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		citySearchRepo = adapter
	}

	// Initialize event bus for cross-instance cache invalidation
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	var geolocationProvider providers.GeolocationProvider
	switch cfg.Geolocation.Provider {
	case "google":
		if cfg.Geolocation.APIKey == "" {
			log.Println("Warning: GEOLOCATION_API_KEY is not set; using mock geolocation provider")
			geolocationProvider = geolocation.NewMockGeolocationProvider()
		} else {
			geolocationProvider = geolocation.NewGoogleGeolocationProvider(cfg.Geolocation.APIKey, cacheProvider)
		}
	default:
		geolocationProvider = geolocation.NewMockGeolocationProvider()
	}

	// Initialize services
	queryService := queryservices.NewEventQueryService(eventRepo, favoritesRepo, metrics)
	eventService := services.NewEventService(eventRepo, geolocationProvider, eventBus, favoritesRepo)
	favoriteService := services.NewFavoriteService(favoritesRepo)
	cityService := services.NewCityService(citySearchRepo, cacheProvider)

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cachedEventAdapter != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cachedEventAdapter, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Printf("Warning: Failed to start cache invalidation service: %v", err)
		}
	}

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(queryService, eventService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	cityHandler := handlers.NewCityHandler(cityService)

	// Set up router
	router := routes.NewRouter(
		eventHandler,
		favoriteHandler,
		cityHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Println("Server stopped")
}
