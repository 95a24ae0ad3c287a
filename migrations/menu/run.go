package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/ghuser/bizdir/pkg/config"
	"github.com/ghuser/bizdir/pkg/logger"
	"github.com/ghuser/bizdir/pkg/migrator"
)

//go:embed *.sql
var migrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	if err := migrator.RunMigrations(context.Background(), cfg.DefinitionDatabaseURL, migrationsFS, log); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
}
