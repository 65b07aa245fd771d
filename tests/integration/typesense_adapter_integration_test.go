//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sortielabs/sortie/backend/internal/adapters/search"
	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesenseCitySuggestIntegration(t *testing.T) {
	if os.Getenv("TEST_TYPESENSE_URL") == "" {
		t.Skip("Skipping integration test: TEST_TYPESENSE_URL not set")
	}

	tsClient := newTestTypesenseClient(t)
	adapter := search.NewTypesenseAdapter(tsClient)
	ctx := context.Background()

	require.NoError(t, adapter.InitSchema(ctx))

	cities := []*entities.City{
		{ID: "it-paris", Name: "Paris", PostalCodes: []string{"75001", "75020"}, Location: geo.Coordinate{Latitude: 48.8566, Longitude: 2.3522}},
		{ID: "it-pau", Name: "Pau", PostalCodes: []string{"64000"}, Location: geo.Coordinate{Latitude: 43.2951, Longitude: -0.3708}},
		{ID: "it-lyon", Name: "Lyon", PostalCodes: []string{"69001"}, Location: geo.Coordinate{Latitude: 45.7640, Longitude: 4.8357}},
	}
	for _, city := range cities {
		require.NoError(t, adapter.Index(ctx, city))
	}

	// Typesense indexes asynchronously
	time.Sleep(500 * time.Millisecond)

	results, err := adapter.Suggest(ctx, "Pa", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	names := make([]string, 0, len(results))
	for _, city := range results {
		names = append(names, city.Name)
	}
	assert.Contains(t, names, "Paris")
	assert.NotContains(t, names, "Lyon")

	results, err = adapter.Suggest(ctx, "75001", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Paris", results[0].Name)
}
