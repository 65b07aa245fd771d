package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/sortielabs/sortie/backend/internal/domain/providers"
	"github.com/sortielabs/sortie/backend/pkg/geo"
)

const (
	googleGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultGeocodeCacheTTL = 60 * 60 * 24 * 30
	defaultHTTPTimeout     = 8 * time.Second
)

// GoogleGeolocationProvider implements GeolocationProvider using the Google
// Maps geocoding API. Responses are cached for a month; the breaker keeps a
// flapping upstream from stalling every publish request.
type GoogleGeolocationProvider struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
}

// NewGoogleGeolocationProvider creates a new Google geolocation provider
func NewGoogleGeolocationProvider(apiKey string, cache providers.CacheProvider) providers.GeolocationProvider {
	return NewGoogleGeolocationProviderWithOptions(apiKey, cache, googleGeocodeURL, nil)
}

// NewGoogleGeolocationProviderWithOptions allows overriding base URL and HTTP client (used for tests)
func NewGoogleGeolocationProviderWithOptions(apiKey string, cache providers.CacheProvider, baseURL string, httpClient *http.Client) providers.GeolocationProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "google-geocoding",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &GoogleGeolocationProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		baseURL:    baseURL,
		breaker:    breaker,
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode converts a postal address into a coordinate
func (g *GoogleGeolocationProvider) Geocode(ctx context.Context, address string) (*geo.Coordinate, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("address is required")
	}

	cacheKey := geocodeCacheKey("geocode", trimmed)
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil {
			var coord geo.Coordinate
			if err := json.Unmarshal(cached, &coord); err == nil {
				return &coord, nil
			}
		}
	}

	params := url.Values{}
	params.Set("address", trimmed)
	params.Set("key", g.apiKey)

	decoded, err := g.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(decoded.Results) == 0 {
		return nil, fmt.Errorf("no geocoding result for address %q", trimmed)
	}

	coord := &geo.Coordinate{
		Latitude:  decoded.Results[0].Geometry.Location.Lat,
		Longitude: decoded.Results[0].Geometry.Location.Lng,
	}

	if g.cache != nil {
		if data, err := json.Marshal(coord); err == nil {
			_ = g.cache.Set(ctx, cacheKey, data, defaultGeocodeCacheTTL)
		}
	}

	return coord, nil
}

// ReverseGeocode converts a coordinate into a formatted address
func (g *GoogleGeolocationProvider) ReverseGeocode(ctx context.Context, coord geo.Coordinate) (string, error) {
	latlng := fmt.Sprintf("%f,%f", coord.Latitude, coord.Longitude)

	cacheKey := geocodeCacheKey("reverse", latlng)
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil {
			return string(cached), nil
		}
	}

	params := url.Values{}
	params.Set("latlng", latlng)
	params.Set("key", g.apiKey)

	decoded, err := g.fetch(ctx, params)
	if err != nil {
		return "", err
	}
	if len(decoded.Results) == 0 {
		return "", fmt.Errorf("no reverse geocoding result for %s", latlng)
	}

	formatted := decoded.Results[0].FormattedAddress
	if g.cache != nil {
		_ = g.cache.Set(ctx, cacheKey, []byte(formatted), defaultGeocodeCacheTTL)
	}

	return formatted, nil
}

func (g *GoogleGeolocationProvider) fetch(ctx context.Context, params url.Values) (*geocodeResponse, error) {
	result, err := g.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("geocoding request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("geocoding request returned status %d", resp.StatusCode)
		}

		var decoded geocodeResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
		}
		if decoded.Status != "OK" && decoded.Status != "ZERO_RESULTS" {
			return nil, fmt.Errorf("geocoding API returned status %s", decoded.Status)
		}

		return &decoded, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*geocodeResponse), nil
}

func geocodeCacheKey(kind, seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return "geo:" + kind + ":" + hex.EncodeToString(sum[:16])
}
