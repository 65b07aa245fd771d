package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sortielabs/sortie/backend/internal/api/handlers"
	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
	"github.com/sortielabs/sortie/backend/pkg/geo"
)

type MockEventQueryService struct {
	mock.Mock
}

func (m *MockEventQueryService) SearchWithFavorites(ctx context.Context, criteria entities.SearchCriteria, userID string) (*entities.DiscoveryResult, error) {
	args := m.Called(ctx, criteria, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DiscoveryResult), args.Error(1)
}

func (m *MockEventQueryService) GetByID(ctx context.Context, id string) (*entities.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Event), args.Error(1)
}

func (m *MockEventQueryService) ListByCreator(ctx context.Context, creatorID string) ([]*entities.Event, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Event), args.Error(1)
}

type MockEventCommandService struct {
	mock.Mock
}

func (m *MockEventCommandService) Publish(ctx context.Context, event *entities.Event) (*entities.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Event), args.Error(1)
}

func (m *MockEventCommandService) Update(ctx context.Context, creatorID string, event *entities.Event) (*entities.Event, error) {
	args := m.Called(ctx, creatorID, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Event), args.Error(1)
}

func (m *MockEventCommandService) Delete(ctx context.Context, creatorID, eventID string) error {
	args := m.Called(ctx, creatorID, eventID)
	return args.Error(0)
}

func sampleEvent(id string) *entities.Event {
	return &entities.Event{
		ID:          id,
		CreatorID:   "user-1",
		Name:        "Fête de la Musique",
		Description: "Free concerts all over town",
		Dates:       []time.Time{time.Date(2026, 6, 21, 18, 0, 0, 0, time.UTC)},
		Address:     "Place de la République, Paris",
		Categories:  []string{"concert"},
	}
}

func TestEventHandler_SearchEvents_ParsesCriteria(t *testing.T) {
	queries := new(MockEventQueryService)
	handler := handlers.NewEventHandler(queries, nil)

	radius := 15.0
	expected := entities.SearchCriteria{
		Query:      "jazz",
		Center:     &geo.Coordinate{Latitude: 48.8566, Longitude: 2.3522},
		RadiusKm:   &radius,
		Categories: []string{"concert", "art"},
		FreeOnly:   true,
	}
	queries.On("SearchWithFavorites", mock.Anything, expected, "user-1").
		Return(&entities.DiscoveryResult{Events: []*entities.Event{sampleEvent("evt-1")}, FavoriteIDs: []string{"evt-1"}}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/events/search?q=jazz&lat=48.8566&lon=2.3522&radius_km=15&categories=concert,art&free_only=true", nil)
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	handler.SearchEvents(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events      []*entities.Event `json:"events"`
		Count       int               `json:"count"`
		FavoriteIDs []string          `json:"favorite_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, []string{"evt-1"}, body.FavoriteIDs)
	queries.AssertExpectations(t)
}

func TestEventHandler_SearchEvents_InvalidLatitude(t *testing.T) {
	queries := new(MockEventQueryService)
	handler := handlers.NewEventHandler(queries, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/events/search?lat=abc&lon=2.35", nil)
	rec := httptest.NewRecorder()

	handler.SearchEvents(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	queries.AssertNotCalled(t, "SearchWithFavorites")
}

func TestEventHandler_SearchEvents_StoreUnavailable(t *testing.T) {
	queries := new(MockEventQueryService)
	handler := handlers.NewEventHandler(queries, nil)

	queries.On("SearchWithFavorites", mock.Anything, mock.Anything, "").
		Return(nil, apperrors.NewTransportError("failed to query events", errors.New("connection refused")))

	req := httptest.NewRequest(http.MethodGet, "/api/events/search", nil)
	rec := httptest.NewRecorder()

	handler.SearchEvents(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "failed to query events")
	assert.Contains(t, body.Error, "connection refused")
}

func TestEventHandler_GetEvent_NotFound(t *testing.T) {
	queries := new(MockEventQueryService)
	handler := handlers.NewEventHandler(queries, nil)

	queries.On("GetByID", mock.Anything, "evt-404").
		Return(nil, apperrors.NewNotFoundError("event with id evt-404 not found"))

	req := httptest.NewRequest(http.MethodGet, "/api/events/evt-404", nil)
	req.SetPathValue("id", "evt-404")
	rec := httptest.NewRecorder()

	handler.GetEvent(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEventHandler_PublishEvent_RequiresAuth(t *testing.T) {
	commands := new(MockEventCommandService)
	handler := handlers.NewEventHandler(nil, commands)

	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.PublishEvent(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	commands.AssertNotCalled(t, "Publish")
}

func TestEventHandler_PublishEvent_Created(t *testing.T) {
	commands := new(MockEventCommandService)
	handler := handlers.NewEventHandler(nil, commands)

	created := sampleEvent("evt-1")
	commands.On("Publish", mock.Anything, mock.MatchedBy(func(e *entities.Event) bool {
		return e.CreatorID == "user-1" && e.Name == "Fête de la Musique"
	})).Return(created, nil)

	body := `{"name":"Fête de la Musique","description":"d","address":"a","price":0,"dates":["2026-06-21T18:00:00Z"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()

	handler.PublishEvent(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestEventHandler_UpdateEvent_ForbiddenForNonCreator(t *testing.T) {
	commands := new(MockEventCommandService)
	handler := handlers.NewEventHandler(nil, commands)

	commands.On("Update", mock.Anything, "user-2", mock.Anything).
		Return(nil, apperrors.NewForbiddenError("only the event creator can modify this event"))

	req := httptest.NewRequest(http.MethodPut, "/api/events/evt-1", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("X-User-ID", "user-2")
	req.SetPathValue("id", "evt-1")
	rec := httptest.NewRecorder()

	handler.UpdateEvent(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEventHandler_DeleteEvent_NoContent(t *testing.T) {
	commands := new(MockEventCommandService)
	handler := handlers.NewEventHandler(nil, commands)

	commands.On("Delete", mock.Anything, "user-1", "evt-1").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/events/evt-1", nil)
	req.Header.Set("X-User-ID", "user-1")
	req.SetPathValue("id", "evt-1")
	rec := httptest.NewRecorder()

	handler.DeleteEvent(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
