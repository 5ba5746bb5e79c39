// Command migrate upgrades a data directory from the v1 record layout to the
// v2 layout: books gain status and cover fields, inline impressions move into
// markdown files, and the status history collection is initialized. The v1
// impressions.json stays in place as a backup. Running it on an already
// migrated directory is a no-op.
package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"booklog/internal/config"
	"booklog/internal/library"
	"booklog/internal/storage/jsonfile"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using existing environment variables")
	}

	dataDir := flag.String("data-dir", "", "data directory (default from BOOKLOG_DATA_DIR or config)")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	store, err := jsonfile.New(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open data directory: %v", err)
	}

	migrator := library.NewMigrator(store, nil)
	migrated, err := migrator.MigrateFromV1()
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if migrated {
		log.Printf("Migrated %s to the v2 layout", cfg.DataDir)
	} else {
		log.Printf("Data directory %s is already in the v2 layout, nothing to do", cfg.DataDir)
	}
}
