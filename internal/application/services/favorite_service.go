package services

import (
	"context"
	"sync"

	"github.com/sortielabs/sortie/backend/internal/domain/repositories"
	apperrors "github.com/sortielabs/sortie/backend/pkg/errors"
)

// FavoriteService coordinates favorite toggles against the favorites store.
// The client flips its heart icon optimistically before calling Toggle; on
// error the caller reverts that flip, so Toggle must report failure instead
// of papering over it.
type FavoriteService struct {
	favorites repositories.FavoritesRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFavoriteService creates a new favorite service
func NewFavoriteService(favorites repositories.FavoritesRepository) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Toggle flips the favorite state of one event for one user and returns the
// new state. currentFavorite is the state the client believes it is toggling
// away from, so rapid repeated taps each carry their own intent. Toggles for
// the same user and event are serialized; the last call wins.
func (s *FavoriteService) Toggle(ctx context.Context, userID, eventID string, currentFavorite bool) (bool, error) {
	if userID == "" {
		return false, apperrors.NewUnauthorizedError("favorites require a signed-in user")
	}
	if eventID == "" {
		return false, apperrors.NewValidationError("event id is required")
	}
	if s.favorites == nil {
		return currentFavorite, apperrors.NewTransportError("favorites store unavailable", nil)
	}

	lock := s.lockFor(userID + ":" + eventID)
	lock.Lock()
	defer lock.Unlock()

	if currentFavorite {
		if err := s.favorites.Remove(ctx, userID, eventID); err != nil {
			return currentFavorite, err
		}
		return false, nil
	}

	if err := s.favorites.Add(ctx, userID, eventID); err != nil {
		return currentFavorite, err
	}
	return true, nil
}

// Read returns the user's favorite event IDs
func (s *FavoriteService) Read(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("favorites require a signed-in user")
	}
	if s.favorites == nil {
		return nil, apperrors.NewTransportError("favorites store unavailable", nil)
	}
	return s.favorites.Read(ctx, userID)
}

// lockFor returns the per-key mutex, creating it on first use. The map only
// grows; entries are tiny and bounded by the user's activity.
func (s *FavoriteService) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
