package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/providers"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/observability"
)

// CachedEventAdapter wraps an EventRepository with read-through caching.
// Writes invalidate the touched entry plus every cached coarse query, since
// any mutation can change which documents a query matches.
type CachedEventAdapter struct {
	adapter repositories.EventRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedEventAdapter creates a new cached event adapter. metrics may be
// nil when telemetry is disabled.
func NewCachedEventAdapter(adapter repositories.EventRepository, cache providers.CacheProvider, metrics *observability.Metrics) *CachedEventAdapter {
	return &CachedEventAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

// Cache TTLs (in seconds)
const (
	eventByIDTTL      = 300
	coarseQueryTTL    = 60
	coarseQueryPrefix = "events:coarse:"
	eventKeyPrefix    = "event:"
	creatorListTTL    = 120
	creatorListPrefix = "events:creator:"
)

func eventCacheKey(id string) string {
	return eventKeyPrefix + id
}

func coarseQueryCacheKey(q repositories.CoarseQuery) string {
	cats := append([]string(nil), q.Categories...)
	sort.Strings(cats)
	seed := fmt.Sprintf("free=%t|cats=%s|limit=%d|offset=%d", q.FreeOnly, strings.Join(cats, ","), q.Limit, q.Offset)
	sum := sha256.Sum256([]byte(seed))
	return coarseQueryPrefix + hex.EncodeToString(sum[:16])
}

type cachedDocument struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// GetByID retrieves a raw event document with caching
func (a *CachedEventAdapter) GetByID(ctx context.Context, id string) (*repositories.RawEventDocument, error) {
	cacheKey := eventCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var doc cachedDocument
		if err := json.Unmarshal(cached, &doc); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, eventKeyPrefix)
			return &repositories.RawEventDocument{ID: doc.ID, Data: doc.Data}, nil
		}
		log.Printf("Failed to unmarshal cached event %s: %v", id, err)
	}
	observability.RecordCacheMiss(ctx, a.metrics, eventKeyPrefix)

	raw, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.storeAsync(cacheKey, cachedDocument{ID: raw.ID, Data: raw.Data}, eventByIDTTL)
	return raw, nil
}

// QueryCoarse returns coarse query results with caching
func (a *CachedEventAdapter) QueryCoarse(ctx context.Context, q repositories.CoarseQuery) ([]repositories.RawEventDocument, error) {
	cacheKey := coarseQueryCacheKey(q)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var docs []cachedDocument
		if err := json.Unmarshal(cached, &docs); err == nil {
			result := make([]repositories.RawEventDocument, len(docs))
			for i, d := range docs {
				result[i] = repositories.RawEventDocument{ID: d.ID, Data: d.Data}
			}
			observability.RecordCacheHit(ctx, a.metrics, coarseQueryPrefix)
			return result, nil
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, coarseQueryPrefix)

	raw, err := a.adapter.QueryCoarse(ctx, q)
	if err != nil {
		return nil, err
	}

	docs := make([]cachedDocument, len(raw))
	for i, r := range raw {
		docs[i] = cachedDocument{ID: r.ID, Data: r.Data}
	}
	a.storeAsync(cacheKey, docs, coarseQueryTTL)

	return raw, nil
}

// ListByCreator returns a creator's documents with caching
func (a *CachedEventAdapter) ListByCreator(ctx context.Context, creatorID string) ([]repositories.RawEventDocument, error) {
	cacheKey := creatorListPrefix + creatorID

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var docs []cachedDocument
		if err := json.Unmarshal(cached, &docs); err == nil {
			result := make([]repositories.RawEventDocument, len(docs))
			for i, d := range docs {
				result[i] = repositories.RawEventDocument{ID: d.ID, Data: d.Data}
			}
			observability.RecordCacheHit(ctx, a.metrics, creatorListPrefix)
			return result, nil
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, creatorListPrefix)

	raw, err := a.adapter.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	docs := make([]cachedDocument, len(raw))
	for i, r := range raw {
		docs[i] = cachedDocument{ID: r.ID, Data: r.Data}
	}
	a.storeAsync(cacheKey, docs, creatorListTTL)

	return raw, nil
}

// Create inserts an event and invalidates query caches
func (a *CachedEventAdapter) Create(ctx context.Context, event *entities.Event) error {
	if err := a.adapter.Create(ctx, event); err != nil {
		return err
	}
	a.invalidateFor(ctx, event.ID, event.CreatorID)
	return nil
}

// Update replaces an event and invalidates query caches
func (a *CachedEventAdapter) Update(ctx context.Context, event *entities.Event) error {
	if err := a.adapter.Update(ctx, event); err != nil {
		return err
	}
	a.invalidateFor(ctx, event.ID, event.CreatorID)
	return nil
}

// Delete removes an event and invalidates query caches
func (a *CachedEventAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidateFor(ctx, id, "")
	return nil
}

// InvalidateQueries drops every cached coarse query and creator list. Called
// by the cache invalidation service when a change arrives on the bus.
func (a *CachedEventAdapter) InvalidateQueries(ctx context.Context) {
	if err := a.cache.DeleteByPrefix(ctx, coarseQueryPrefix); err != nil {
		log.Printf("Failed to invalidate coarse query cache: %v", err)
	}
	if err := a.cache.DeleteByPrefix(ctx, creatorListPrefix); err != nil {
		log.Printf("Failed to invalidate creator list cache: %v", err)
	}
}

// InvalidateEvent drops a single cached event document
func (a *CachedEventAdapter) InvalidateEvent(ctx context.Context, eventID string) {
	if err := a.cache.Delete(ctx, eventCacheKey(eventID)); err != nil {
		log.Printf("Failed to invalidate cached event %s: %v", eventID, err)
	}
}

func (a *CachedEventAdapter) invalidateFor(ctx context.Context, eventID, creatorID string) {
	a.InvalidateEvent(ctx, eventID)
	if err := a.cache.DeleteByPrefix(ctx, coarseQueryPrefix); err != nil {
		log.Printf("Failed to invalidate coarse query cache: %v", err)
	}
	if creatorID != "" {
		if err := a.cache.Delete(ctx, creatorListPrefix+creatorID); err != nil {
			log.Printf("Failed to invalidate creator list for %s: %v", creatorID, err)
		}
	}
}

// storeAsync caches off the request path so a slow cache never blocks reads
func (a *CachedEventAdapter) storeAsync(key string, value interface{}, ttlSeconds int) {
	go func() {
		data, err := json.Marshal(value)
		if err != nil {
			return
		}
		if err := a.cache.Set(context.Background(), key, data, ttlSeconds); err != nil {
			log.Printf("Failed to cache %s: %v", key, err)
		}
	}()
}
