// Package config provides Viper-based configuration loading for bastion.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/bastion/internal/game/state"
)

// DatabaseConfig holds PostgreSQL connection settings for the match archive.
type DatabaseConfig struct {
	// Enabled turns on archiving of finished matches and global statistics.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File redirects log output away from the terminal; empty means stderr.
	File string `mapstructure:"file"`
}

// MatchConfig holds settings of a play session.
type MatchConfig struct {
	// Seed fixes world generation; 0 draws a fresh seed.
	Seed int64 `mapstructure:"seed"`
	// Scenario is an optional YAML starting position used instead of a
	// generated world.
	Scenario string `mapstructure:"scenario"`
	// SaveDir holds the save slot files.
	SaveDir string `mapstructure:"save_dir"`
	// Autoplay lets the computer play both sides.
	Autoplay bool `mapstructure:"autoplay"`
	// MaxTurns stops an autoplay match after this many turns; 0 is unlimited.
	MaxTurns int `mapstructure:"max_turns"`
	// MaxUnitsPerTurn caps AI production cycles per turn.
	MaxUnitsPerTurn int `mapstructure:"max_units_per_turn"`
	// ScriptDir optionally overrides the built-in AI doctrine files.
	ScriptDir string `mapstructure:"script_dir"`
	// ScriptInstructionLimit bounds each Lua goal precondition; 0 uses the default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Match    MatchConfig    `mapstructure:"match"`
	Balance  state.Config   `mapstructure:"balance"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateMatch(c.Match); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Balance.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateMatch(m MatchConfig) error {
	var errs []string
	if m.SaveDir == "" {
		errs = append(errs, "match.save_dir must not be empty")
	}
	if m.MaxTurns < 0 {
		errs = append(errs, fmt.Sprintf("match.max_turns must be >= 0, got %d", m.MaxTurns))
	}
	if m.MaxUnitsPerTurn < 0 {
		errs = append(errs, fmt.Sprintf("match.max_units_per_turn must be >= 0, got %d", m.MaxUnitsPerTurn))
	}
	if m.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("match.script_instruction_limit must be >= 0, got %d", m.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// newViper returns a Viper instance with defaults and BASTION_ environment
// overrides registered.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("BASTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "bastion")
	v.SetDefault("database.password", "bastion")
	v.SetDefault("database.name", "bastion")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("match.seed", 0)
	v.SetDefault("match.scenario", "")
	v.SetDefault("match.save_dir", "saves")
	v.SetDefault("match.autoplay", false)
	v.SetDefault("match.max_turns", 200)
	v.SetDefault("match.max_units_per_turn", 2)
	v.SetDefault("match.script_dir", "")
	v.SetDefault("match.script_instruction_limit", 0)

	setBalanceDefaults(v, state.DefaultConfig())
}

func setBalanceDefaults(v *viper.Viper, d state.Config) {
	v.SetDefault("balance.map_size", d.MapSize)
	v.SetDefault("balance.gold_tile_count", d.GoldTileCount)
	v.SetDefault("balance.starting_gold", d.StartingGold)
	v.SetDefault("balance.castle_income_per_turn", d.CastleIncomePerTurn)
	v.SetDefault("balance.fortpost_income_per_turn", d.FortpostIncomePerTurn)

	v.SetDefault("balance.cost_fortpost", d.CostFortpost)
	v.SetDefault("balance.cost_warrior", d.CostWarrior)
	v.SetDefault("balance.cost_archer", d.CostArcher)
	v.SetDefault("balance.cost_chivalry", d.CostChivalry)
	v.SetDefault("balance.cost_engineer", d.CostEngineer)
	v.SetDefault("balance.cost_catapult", d.CostCatapult)

	v.SetDefault("balance.castle_hp", d.CastleHP)
	v.SetDefault("balance.fortpost_hp", d.FortpostHP)

	v.SetDefault("balance.warrior_hp", d.WarriorHP)
	v.SetDefault("balance.warrior_damage", d.WarriorDamage)
	v.SetDefault("balance.warrior_move_range", d.WarriorMoveRange)
	v.SetDefault("balance.archer_hp", d.ArcherHP)
	v.SetDefault("balance.archer_damage", d.ArcherDamage)
	v.SetDefault("balance.archer_move_range", d.ArcherMoveRange)
	v.SetDefault("balance.archer_range", d.ArcherRange)
	v.SetDefault("balance.chivalry_hp", d.ChivalryHP)
	v.SetDefault("balance.chivalry_damage", d.ChivalryDamage)
	v.SetDefault("balance.chivalry_move_range", d.ChivalryMoveRange)
	v.SetDefault("balance.engineer_hp", d.EngineerHP)
	v.SetDefault("balance.engineer_damage", d.EngineerDamage)
	v.SetDefault("balance.engineer_move_range", d.EngineerMoveRange)
	v.SetDefault("balance.catapult_hp", d.CatapultHP)
	v.SetDefault("balance.catapult_damage", d.CatapultDamage)
	v.SetDefault("balance.catapult_damage_vs_units", d.CatapultDamageVsUnits)
	v.SetDefault("balance.catapult_range", d.CatapultRange)
	v.SetDefault("balance.catapult_move_range", d.CatapultMoveRange)
	v.SetDefault("balance.catapult_move_cooldown_turns", d.CatapultMoveCooldownTurns)

	v.SetDefault("balance.damage_multiplier_on_castle_from_non_catapult", d.NonCatapultCastleMultiplier)
	v.SetDefault("balance.damage_multiplier_on_fortpost_from_non_catapult", d.NonCatapultFortpostMultiplier)
	v.SetDefault("balance.catapult_castle_multiplier", d.CatapultCastleMultiplier)
	v.SetDefault("balance.catapult_fort_multiplier", d.CatapultFortpostMultiplier)
}
