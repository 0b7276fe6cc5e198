package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/AlibekovAA/fadechat/internal/common/config"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/common/migrations"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "path to a YAML config file (overridden by environment)")
		databaseURL = pflag.String("database-url", "", "PostgreSQL URL; defaults to DATABASE_URL")
		down        = pflag.Bool("down", false, "roll back instead of applying migrations")
		status      = pflag.Bool("status", false, "print migration status and exit")
		to          = pflag.Int64("to", 0, "target version (0 = latest for up, one step for down)")
	)
	pflag.Parse()

	log, err := logger.New(os.Getenv("LOG_DIR"), "migrate", os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	url := *databaseURL
	if url == "" {
		storage, err := config.LoadStorageConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		url = storage.DatabaseURL
	}
	if url == "" {
		log.Fatalf("no database url: set DATABASE_URL or --database-url")
	}

	direction := migrations.Up
	switch {
	case *status:
		direction = migrations.Status
	case *down:
		direction = migrations.Down
	}

	if err := migrations.Run(context.Background(), log, url, direction, *to); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
