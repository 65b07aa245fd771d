package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sortielabs/sortie/backend/internal/adapters/search"
	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/clients/typesense"
	"github.com/sortielabs/sortie/backend/pkg/config"
)

// The indexer loads the static city dataset into Typesense so the API can
// serve autocomplete. Cities change rarely; a cron-style rerun is enough.
func main() {
	var reset bool
	var citiesPath string
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing cities collection before reindexing")
	flag.StringVar(&citiesPath, "cities", "data/cities.json", "path to the city dataset")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 24h)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, citiesPath, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, citiesPath string, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cities, err := loadCities(citiesPath)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d cities from %s", len(cities), citiesPath)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	adapter := search.NewTypesenseAdapter(tsClient)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Deleting existing cities collection")
		if err := adapter.DeleteIndex(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	if err := adapter.InitSchema(ctx); err != nil {
		return err
	}

	indexed := 0
	for _, city := range cities {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := adapter.Index(ctx, city); err != nil {
			log.Printf("Warning: failed to index city %s: %v", city.Name, err)
			continue
		}
		indexed++
	}

	log.Printf("Indexed %d/%d cities", indexed, len(cities))
	return nil
}

func loadCities(path string) ([]*entities.City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read city dataset: %w", err)
	}

	var cities []*entities.City
	if err := json.Unmarshal(data, &cities); err != nil {
		return nil, fmt.Errorf("failed to parse city dataset: %w", err)
	}

	for i, city := range cities {
		if city.ID == "" {
			city.ID = fmt.Sprintf("city-%d", i)
		}
	}
	return cities, nil
}
