package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sortielabs/sortie/backend/internal/api/handlers"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
)

type MockFavoriteService struct {
	mock.Mock
}

func (m *MockFavoriteService) Toggle(ctx context.Context, userID, eventID string, currentFavorite bool) (bool, error) {
	args := m.Called(ctx, userID, eventID, currentFavorite)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteService) Read(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestFavoriteHandler_ToggleFavorite(t *testing.T) {
	service := new(MockFavoriteService)
	handler := handlers.NewFavoriteHandler(service)

	service.On("Toggle", mock.Anything, "user-1", "evt-1", false).Return(true, nil)

	req := httptest.NewRequest(http.MethodPost,
		"/api/users/user-1/favorites/evt-1/toggle", strings.NewReader(`{"current_favorite":false}`))
	req.SetPathValue("id", "user-1")
	req.SetPathValue("eventId", "evt-1")
	rec := httptest.NewRecorder()

	handler.ToggleFavorite(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		EventID  string `json:"event_id"`
		Favorite bool   `json:"favorite"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "evt-1", body.EventID)
	assert.True(t, body.Favorite)
}

func TestFavoriteHandler_ToggleFavorite_StoreFailure(t *testing.T) {
	service := new(MockFavoriteService)
	handler := handlers.NewFavoriteHandler(service)

	service.On("Toggle", mock.Anything, "user-1", "evt-1", true).
		Return(true, apperrors.NewTransportError("failed to remove favorite", errors.New("redis down")))

	req := httptest.NewRequest(http.MethodPost,
		"/api/users/user-1/favorites/evt-1/toggle", strings.NewReader(`{"current_favorite":true}`))
	req.SetPathValue("id", "user-1")
	req.SetPathValue("eventId", "evt-1")
	rec := httptest.NewRecorder()

	handler.ToggleFavorite(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFavoriteHandler_GetFavorites(t *testing.T) {
	service := new(MockFavoriteService)
	handler := handlers.NewFavoriteHandler(service)

	service.On("Read", mock.Anything, "user-1").Return([]string{"evt-1", "evt-2"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/favorites", nil)
	req.SetPathValue("id", "user-1")
	rec := httptest.NewRecorder()

	handler.GetFavorites(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		FavoriteIDs []string `json:"favorite_ids"`
		Count       int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}
