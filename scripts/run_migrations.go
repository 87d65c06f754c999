package main

import (
	"context"
	"log"
	"os"

	"github.com/safar/go-pos-store/internal/config"
	"github.com/safar/go-pos-store/internal/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run scripts/run_migrations.go [up|down]")
	}

	direction := os.Args[1]
	if direction != database.MigrateUp && direction != database.MigrateDown {
		log.Fatal("Direction must be 'up' or 'down'")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if cfg.Database.Driver != config.StoreDriverPostgres {
		log.Fatalf("Migrations need STORE_DRIVER=%s, got %q", config.StoreDriverPostgres, cfg.Database.Driver)
	}

	db, err := database.NewConnection(context.Background(), &cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	files, err := database.Migrate(context.Background(), db, direction)
	if err != nil {
		log.Fatalf("Run migrations: %v", err)
	}

	for _, filename := range files {
		log.Printf("Ran migration: %s", filename)
	}
	log.Printf("Successfully ran %d migration(s) %s", len(files), direction)
}
