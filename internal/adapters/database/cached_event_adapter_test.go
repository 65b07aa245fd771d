package database

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-process CacheProvider for exercising the read-through
// paths without Redis.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("cache miss")
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

func (c *memoryCache) put(t *testing.T, key string, value interface{}) {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), key, data, 0))
}

// countingRepository records how often each delegate method runs.
type countingRepository struct {
	repositories.EventRepository
	mu        sync.Mutex
	getByID   int
	coarse    int
	document  *repositories.RawEventDocument
	documents []repositories.RawEventDocument
}

func (r *countingRepository) GetByID(_ context.Context, _ string) (*repositories.RawEventDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByID++
	return r.document, nil
}

func (r *countingRepository) QueryCoarse(_ context.Context, _ repositories.CoarseQuery) ([]repositories.RawEventDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coarse++
	return r.documents, nil
}

func (r *countingRepository) Update(_ context.Context, _ *entities.Event) error {
	return nil
}

func (r *countingRepository) getByIDCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getByID
}

func (r *countingRepository) coarseCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.coarse
}

func TestCachedEventAdapter_GetByID_ServesCachedDocument(t *testing.T) {
	cache := newMemoryCache()
	repo := &countingRepository{}
	adapter := NewCachedEventAdapter(repo, cache, nil)

	cache.put(t, eventCacheKey("evt-1"), cachedDocument{
		ID:   "evt-1",
		Data: json.RawMessage(`{"name":"Jazz sous les étoiles"}`),
	})

	doc, err := adapter.GetByID(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "evt-1", doc.ID)
	assert.Equal(t, 0, repo.getByIDCalls())
}

func TestCachedEventAdapter_GetByID_MissDelegates(t *testing.T) {
	cache := newMemoryCache()
	repo := &countingRepository{
		document: &repositories.RawEventDocument{
			ID:   "evt-2",
			Data: json.RawMessage(`{"name":"Brocante de quartier"}`),
		},
	}
	adapter := NewCachedEventAdapter(repo, cache, nil)

	doc, err := adapter.GetByID(context.Background(), "evt-2")
	require.NoError(t, err)
	assert.Equal(t, "evt-2", doc.ID)
	assert.Equal(t, 1, repo.getByIDCalls())
}

func TestCachedEventAdapter_QueryCoarse_ServesCachedResult(t *testing.T) {
	cache := newMemoryCache()
	repo := &countingRepository{}
	adapter := NewCachedEventAdapter(repo, cache, nil)

	q := repositories.CoarseQuery{FreeOnly: true, Limit: 20}
	cache.put(t, coarseQueryCacheKey(q), []cachedDocument{
		{ID: "evt-1", Data: json.RawMessage(`{"name":"Marché nocturne"}`)},
	})

	docs, err := adapter.QueryCoarse(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "evt-1", docs[0].ID)
	assert.Equal(t, 0, repo.coarseCalls())
}

func TestCachedEventAdapter_Update_InvalidatesCaches(t *testing.T) {
	cache := newMemoryCache()
	repo := &countingRepository{}
	adapter := NewCachedEventAdapter(repo, cache, nil)

	q := repositories.CoarseQuery{Limit: 20}
	cache.put(t, eventCacheKey("evt-1"), cachedDocument{ID: "evt-1"})
	cache.put(t, coarseQueryCacheKey(q), []cachedDocument{{ID: "evt-1"}})
	cache.put(t, creatorListPrefix+"user-1", []cachedDocument{{ID: "evt-1"}})

	err := adapter.Update(context.Background(), &entities.Event{ID: "evt-1", CreatorID: "user-1"})
	require.NoError(t, err)

	for _, key := range []string{eventCacheKey("evt-1"), coarseQueryCacheKey(q), creatorListPrefix + "user-1"} {
		exists, err := cache.Exists(context.Background(), key)
		require.NoError(t, err)
		assert.False(t, exists, "expected %s to be invalidated", key)
	}
}
