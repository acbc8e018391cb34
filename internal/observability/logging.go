// Package observability provides logging utilities.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/bastion/internal/config"
	"github.com/cory-johannsen/bastion/internal/game/rules"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error. When
// cfg.File is set all output, including internal errors, goes to that file.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// EventLogger returns a rules listener that records every match event at
// debug level.
//
// Precondition: logger must be non-nil.
func EventLogger(logger *zap.Logger) rules.Listener {
	if logger == nil {
		panic("observability.EventLogger: logger must not be nil")
	}
	return func(ev rules.Event) {
		logger.Debug("match event",
			zap.Stringer("kind", ev.Kind),
			zap.Stringer("player", ev.Player),
			zap.Int("unit", ev.UnitID),
			zap.Int("building", ev.BuildingID),
			zap.Int("x", ev.X),
			zap.Int("y", ev.Y),
			zap.Int("hp", ev.HP),
			zap.Int("amount", ev.Amount),
		)
	}
}
