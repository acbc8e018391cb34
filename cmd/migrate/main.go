// Package main applies, rolls back or inspects the archive schema in
// migrations/ against the database named by the bastion configuration.
package main

import (
	"errors"
	"flag"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/config"
	"github.com/cory-johannsen/bastion/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	action := flag.String("action", "up", "up, down, status, or force")
	steps := flag.Int("steps", 0, "number of steps for up/down (0 = all)")
	force := flag.Int("version", -1, "version recorded by -action force, clearing the dirty flag")
	dir := flag.String("dir", "migrations", "directory holding the migration files")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.Database.Enabled {
		logger.Fatal("database.enabled is false", zap.String("config", *configPath))
	}

	m, err := migrate.New("file://"+*dir, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("creating migrator", zap.String("dir", *dir), zap.Error(err))
	}
	defer m.Close()

	switch *action {
	case "up", "down":
		err = run(m, *action, *steps)
	case "force":
		if *force < 0 {
			logger.Fatal("-action force needs -version")
		}
		err = m.Force(*force)
	case "status":
	default:
		logger.Fatal("unknown action", zap.String("action", *action))
	}

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema already current")
	case err != nil:
		logger.Fatal("migration failed", zap.String("action", *action), zap.Error(err))
	}

	version, dirty, verr := m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		logger.Info("no migrations applied", zap.Duration("elapsed", time.Since(start)))
		return
	}
	logger.Info("schema version",
		zap.String("action", *action),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func run(m *migrate.Migrate, direction string, steps int) error {
	if steps > 0 {
		if direction == "down" {
			steps = -steps
		}
		return m.Steps(steps)
	}
	if direction == "down" {
		return m.Down()
	}
	return m.Up()
}
