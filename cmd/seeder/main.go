package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/ranking-tribble/internal/club"
	"github.com/mauv0809/ranking-tribble/internal/database"
	"github.com/mauv0809/ranking-tribble/internal/leaderboard"
	"github.com/mauv0809/ranking-tribble/internal/metrics"
	"github.com/mauv0809/ranking-tribble/internal/pubsub"
	"github.com/mauv0809/ranking-tribble/internal/ranking"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"MIGRATIONS_DIR":      "./migrations",
		"TURSO_PRIMARY_URL":   "",
		"TURSO_AUTH_TOKEN":    "",
		"SEED_PLAYERS":        "16",
		"SEED_EVENTS":         "24",
		"SEED_CLEAR_EXISTING": "true",
	}
	required := []string{"DB_NAME", "TENANT_ID"}

	for _, key := range required {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		} else {
			log.Fatalf("Error: Required environment variable %s is not set.", key)
		}
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			config[key] = value
		}
	}
	return config
}

func atoi(cfg map[string]string, key string) int {
	n, err := strconv.Atoi(cfg[key])
	if err != nil || n <= 0 {
		log.Fatalf("Error: %s must be a positive integer, got %q", key, cfg[key])
	}
	return n
}

var (
	tiers     = []ranking.Tier{ranking.Tier1, ranking.Tier2, ranking.Tier3, ranking.Tier4}
	positions = []ranking.Position{
		ranking.PositionWinner,
		ranking.PositionSecond,
		ranking.PositionThird,
		ranking.PositionFourth,
		ranking.PositionQuarterfinalist,
		ranking.PositionQuarterfinalist,
		ranking.PositionRoundOf16,
		ranking.PositionRoundOf16,
	}
	countries = []string{"GBR", "IRL", "FRA", "ESP", "SWE"}
)

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()
	ctx := context.Background()
	tenant := cfg["TENANT_ID"]

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the database.")

	store := club.New(db)
	if cfg["SEED_CLEAR_EXISTING"] == "true" {
		if err := store.Clear(ctx, tenant); err != nil {
			log.Fatalf("Failed to clear tenant %s: %s", tenant, err)
		}
		log.Info("Cleared existing tenant data", "tenant", tenant)
	}

	numPlayers := atoi(cfg, "SEED_PLAYERS")
	numEvents := atoi(cfg, "SEED_EVENTS")

	players := map[ranking.Gender][]*club.Player{}
	for i := 0; i < numPlayers; i++ {
		gender := ranking.GenderMale
		if i%2 == 1 {
			gender = ranking.GenderFemale
		}
		p := &club.Player{
			TenantID: tenant,
			Name:     fmt.Sprintf("Seeder Player %02d", i+1),
			Country:  countries[rand.Intn(len(countries))],
			Gender:   gender,
		}
		if err := store.CreatePlayer(ctx, p); err != nil {
			log.Fatalf("Failed to insert player %s: %s", p.Name, err)
		}
		players[gender] = append(players[gender], p)
	}
	log.Info("Inserted players.", "count", numPlayers)

	board := leaderboard.New(store, metrics.NewService(), pubsub.NewNoop(), 0)
	startTime := time.Now()
	recorded := 0
	for i := 0; i < numEvents; i++ {
		category := ranking.Categories[i%len(ranking.Categories)]
		event := leaderboard.EventIdentity{
			Name:     fmt.Sprintf("Seeded Open %d", i+1),
			Date:     time.Now().AddDate(0, 0, -rand.Intn(2*365)),
			Category: category,
			Tier:     tiers[rand.Intn(len(tiers))],
		}
		entrants := players[category.Gender()]
		order := rand.Perm(len(entrants))
		for slot, idx := range order {
			position := ranking.PositionParticipation
			if slot < len(positions) {
				position = positions[slot]
			}
			if _, err := board.RecordResult(ctx, tenant, event, entrants[idx].ID, position, nil, false); err != nil {
				log.Fatalf("Failed to record result for %s: %s", entrants[idx].Name, err)
			}
			recorded++
		}
		log.Info("Seeded event", "event", event.Name, "category", category, "tier", event.Tier, "entrants", len(entrants))
	}

	duration := time.Since(startTime)
	log.Info("Successfully seeded results.", "events", numEvents, "results", recorded, "duration", duration)
}
