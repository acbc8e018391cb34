// Package main provides the bastion binary: a console match against the AI,
// or an AI-versus-AI autoplay run.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/bastion/internal/config"
	"github.com/cory-johannsen/bastion/internal/frontend/console"
	"github.com/cory-johannsen/bastion/internal/game/ai"
	"github.com/cory-johannsen/bastion/internal/game/world"
	"github.com/cory-johannsen/bastion/internal/match"
	"github.com/cory-johannsen/bastion/internal/observability"
	"github.com/cory-johannsen/bastion/internal/server"
	"github.com/cory-johannsen/bastion/internal/storage/postgres"
	"github.com/cory-johannsen/bastion/internal/storage/savefile"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and BASTION_ env vars")
	seed := flag.Int64("seed", 0, "world seed; overrides match.seed")
	autoplay := flag.Bool("autoplay", false, "let the AI play both sides")
	maxTurns := flag.Int("max-turns", -1, "autoplay turn limit; overrides match.max_turns")
	scenario := flag.String("scenario", "", "start from this scenario file; overrides match.scenario")
	loadSlot := flag.Int("load", -1, "resume the match stored in this save slot")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Match.Seed = *seed
	}
	if *scenario != "" {
		cfg.Match.Scenario = *scenario
	}
	if *autoplay {
		cfg.Match.Autoplay = true
	}
	if *maxTurns >= 0 {
		cfg.Match.MaxTurns = *maxTurns
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	doctrine, err := loadDoctrine(cfg.Match.ScriptDir)
	if err != nil {
		logger.Fatal("loading ai doctrine", zap.Error(err))
	}

	opts := match.Options{
		Balance:  cfg.Balance,
		Seed:     cfg.Match.Seed,
		Doctrine: doctrine,
		AI: ai.Options{
			MaxUnitsPerTurn:  cfg.Match.MaxUnitsPerTurn,
			InstructionLimit: cfg.Match.ScriptInstructionLimit,
		},
		Saves:    savefile.NewStore(cfg.Match.SaveDir, logger.Named("savefile")),
		Autosave: !cfg.Match.Autoplay,
	}
	if cfg.Match.Scenario != "" {
		sc, err := world.LoadScenario(cfg.Match.Scenario)
		if err != nil {
			logger.Fatal("loading scenario", zap.String("path", cfg.Match.Scenario), zap.Error(err))
		}
		logger.Info("scenario loaded", zap.String("name", sc.Name))
		opts.Scenario = sc
	}

	lifecycle := server.NewLifecycle(logger)

	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts.Archive = pool.Matches()
		opts.Stats = pool.Statistics()
		lifecycle.Add("postgres", postgres.NewHealthMonitor(pool, 30*time.Second, logger.Named("postgres")))
	}

	var sess *match.Session
	if *loadSlot >= 0 {
		sess, err = match.Resume(opts, *loadSlot, logger)
	} else {
		sess, err = match.New(opts, logger)
	}
	if err != nil {
		logger.Fatal("starting match", zap.Error(err))
	}
	defer sess.Close()
	sess.Subscribe(observability.EventLogger(logger.Named("events")))

	color := !*noColor
	if cfg.Match.Autoplay {
		lifecycle.SetForeground("autoplay", console.NewAutoplay(sess, os.Stdout, cfg.Match.MaxTurns, color, logger))
	} else {
		lifecycle.SetForeground("console", console.New(sess, os.Stdin, os.Stdout, color, logger))
	}

	logger.Info("bastion initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Stringer("match_id", sess.ID()),
		zap.Int64("seed", sess.Seed()),
		zap.Bool("autoplay", cfg.Match.Autoplay),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("bastion error", zap.Error(err))
	}
}

func loadDoctrine(dir string) (*ai.Doctrine, error) {
	if dir == "" {
		return ai.DefaultDoctrine()
	}
	return ai.LoadDoctrine(dir)
}
