package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sortielabs/sortie/backend/internal/adapters/database"
	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/providers"
)

// CacheInvalidationService listens for event mutations on the bus and drops
// the affected cached query results, so other instances stop serving stale
// lists before their TTL expires.
type CacheInvalidationService struct {
	cached   *database.CachedEventAdapter
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cached *database.CachedEventAdapter, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cached:   cached,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins listening for event changes
func (s *CacheInvalidationService) Start() error {
	changes, err := s.eventBus.Subscribe(s.ctx, providers.ChannelEventChanges)
	if err != nil {
		return fmt.Errorf("failed to subscribe to event changes: %w", err)
	}

	go s.processChanges(changes)
	log.Println("Cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	log.Println("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processChanges(changes <-chan *entities.EventChange) {
	for {
		select {
		case <-s.ctx.Done():
			return
		case change := <-changes:
			if change == nil {
				continue
			}
			s.handleChange(change)
		}
	}
}

// handleChange drops the caches a single mutation can have staled: the event
// document itself and every coarse query or creator list that might contain
// it. Query result membership is not derivable from the change alone, so all
// query caches go.
func (s *CacheInvalidationService) handleChange(change *entities.EventChange) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Printf("Invalidating caches for event change %s (event: %s, type: %s)",
		change.ID, change.EventID, change.Type)

	s.cached.InvalidateEvent(ctx, change.EventID)
	s.cached.InvalidateQueries(ctx)
}
