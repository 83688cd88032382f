package main

import (
	"log"
	"os"

	"github.com/noah-isme/academy-ops-api/pkg/config"
	"github.com/noah-isme/academy-ops-api/pkg/database"
	"github.com/noah-isme/academy-ops-api/pkg/logger"
)

func main() {
	action := database.MigrateUp
	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := database.Migrate(cfg.Database, cfg.Store.MigrationsDir, action); err != nil {
		logr.Sugar().Fatalw("migration failed", "action", action, "source", cfg.Store.MigrationsDir, "error", err)
	}
	logr.Sugar().Infow("migration completed", "action", action, "database", cfg.Database.Name)
}
