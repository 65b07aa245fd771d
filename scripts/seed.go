package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sortielabs/sortie/backend/internal/adapters/database"
	"github.com/sortielabs/sortie/backend/internal/domain/entities"
	"github.com/sortielabs/sortie/backend/internal/infrastructure/clients/postgres"
	"github.com/sortielabs/sortie/backend/pkg/config"
	"github.com/sortielabs/sortie/backend/pkg/geo"
)

// Seeds a handful of French events for local development.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating events before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE events`); err != nil {
			log.Fatalf("Failed to truncate events: %v", err)
		}
	}

	eventRepo := database.NewEventAdapter(pgClient)

	creatorID := "seed-creator"
	now := time.Now().UTC()

	seedEvents := []*entities.Event{
		{
			Name:        "Fête de la Musique",
			Description: "Free concerts in every neighbourhood",
			Dates:       []time.Time{time.Date(now.Year(), 6, 21, 18, 0, 0, 0, time.UTC)},
			Price:       0,
			Location:    &geo.Coordinate{Latitude: 48.8566, Longitude: 2.3522},
			Address:     "Place de la République, 75003 Paris",
			Categories:  []string{"concert", "festival"},
		},
		{
			Name:        "Nuit des Musées",
			Description: "Museums open late with free entry",
			Dates:       []time.Time{time.Date(now.Year(), 5, 16, 19, 0, 0, 0, time.UTC)},
			Price:       0,
			Location:    &geo.Coordinate{Latitude: 45.7640, Longitude: 4.8357},
			Address:     "Place des Terreaux, 69001 Lyon",
			Categories:  []string{"art", "exposition"},
		},
		{
			Name:        "Festival de Jazz",
			Description: "Three evenings of jazz on the old port",
			Dates: []time.Time{
				time.Date(now.Year(), 7, 10, 20, 0, 0, 0, time.UTC),
				time.Date(now.Year(), 7, 11, 20, 0, 0, 0, time.UTC),
				time.Date(now.Year(), 7, 12, 20, 0, 0, 0, time.UTC),
			},
			Price:      25,
			Location:   &geo.Coordinate{Latitude: 43.2965, Longitude: 5.3698},
			Address:    "Quai du Port, 13002 Marseille",
			Categories: []string{"concert"},
		},
		{
			Name:        "Marché des Créateurs",
			Description: "Local designers and street food, address to be confirmed",
			Dates:       []time.Time{time.Date(now.Year(), 9, 5, 10, 0, 0, 0, time.UTC)},
			Price:       0,
			Address:     "Centre-ville, Nantes",
			Categories:  []string{"marche", "food"},
		},
	}

	for _, event := range seedEvents {
		event.ID = uuid.New().String()
		event.CreatorID = creatorID
		event.CreatedAt = now
		event.UpdatedAt = now

		if err := eventRepo.Create(ctx, event); err != nil {
			log.Printf("Failed to seed event %s: %v", event.Name, err)
			continue
		}
		log.Printf("Seeded event %s (%s)", event.Name, event.ID)
	}

	log.Println("Seeding complete")
}
