// Package config loads simulator settings from an optional YAML file and
// MAGESIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/magefree/mage-sim/internal/deck"
	"github.com/magefree/mage-sim/internal/game/engine"
	"github.com/magefree/mage-sim/internal/simulation"
	"github.com/magefree/mage-sim/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. MAGESIM_SIMULATION_GAMES.
const EnvPrefix = "MAGESIM"

// Config is the complete simulator configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Rules      RulesConfig      `mapstructure:"rules"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Server     ServerConfig     `mapstructure:"server"`
}

// LoggingConfig selects the logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // json or console
}

// SimulationConfig describes a batch of games.
type SimulationConfig struct {
	Games               int      `mapstructure:"games"`
	Parallelism         int      `mapstructure:"parallelism"`
	Seed                int64    `mapstructure:"seed"` // 0 picks a random seed
	MaxTurns            int      `mapstructure:"max_turns"`
	MaxPriorityRounds   int      `mapstructure:"max_priority_rounds"`
	IllegalActionPolicy string   `mapstructure:"illegal_action_policy"`
	Strategy            string   `mapstructure:"strategy"`
	Decks               []string `mapstructure:"decks"` // empty uses the embedded decks
	TraceDir            string   `mapstructure:"trace_dir"`
}

// RulesConfig holds game constants.
type RulesConfig struct {
	StartingLife int `mapstructure:"starting_life"`
	OpeningHand  int `mapstructure:"opening_hand"`
	MaxHandSize  int `mapstructure:"max_hand_size"`
}

// StorageConfig selects where outcomes are persisted.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // none, sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig holds listen addresses of the serve command.
type ServerConfig struct {
	GRPCAddress      string `mapstructure:"grpc_address"`
	WebsocketAddress string `mapstructure:"websocket_address"`
}

// NewViper returns a viper instance with every default registered and
// environment overrides enabled. Callers may bind flags before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("simulation.games", 100)
	v.SetDefault("simulation.parallelism", runtime.GOMAXPROCS(0))
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.max_turns", 50)
	v.SetDefault("simulation.max_priority_rounds", engine.DefaultMaxPriorityRounds)
	v.SetDefault("simulation.illegal_action_policy", string(engine.PolicyDowngrade))
	v.SetDefault("simulation.strategy", "random")
	v.SetDefault("simulation.decks", []string{})
	v.SetDefault("simulation.trace_dir", "")

	v.SetDefault("rules.starting_life", deck.DefaultStartingLife)
	v.SetDefault("rules.opening_hand", 7)
	v.SetDefault("rules.max_hand_size", 7)

	v.SetDefault("storage.driver", storage.DriverNone)
	v.SetDefault("storage.dsn", "")

	v.SetDefault("server.grpc_address", ":9090")
	v.SetDefault("server.websocket_address", ":8080")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from path (optional) and the environment.
func Load(path string) (*Config, error) {
	return LoadFrom(NewViper(), path)
}

// LoadFrom reads the configuration into v. An empty path skips the file.
func LoadFrom(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that can be checked without touching the disk.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Simulation.Games <= 0 {
		return errors.New("config: simulation.games must be positive")
	}
	if c.Simulation.Parallelism < 0 {
		return errors.New("config: simulation.parallelism must not be negative")
	}
	if c.Simulation.MaxTurns <= 0 {
		return errors.New("config: simulation.max_turns must be positive")
	}
	if c.Simulation.MaxPriorityRounds <= 0 {
		return errors.New("config: simulation.max_priority_rounds must be positive")
	}
	if _, err := engine.ParseIllegalActionPolicy(c.Simulation.IllegalActionPolicy); err != nil {
		return fmt.Errorf("config: simulation.illegal_action_policy: %w", err)
	}
	if c.Rules.StartingLife <= 0 {
		return errors.New("config: rules.starting_life must be positive")
	}
	if c.Rules.OpeningHand < 0 || c.Rules.MaxHandSize < 0 {
		return errors.New("config: rules.opening_hand and rules.max_hand_size must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case "", storage.DriverNone:
	case storage.DriverSQLite, storage.DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: storage.dsn is required for driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}

// SimulationConfig loads the configured decks and returns the runner
// configuration.
func (c *Config) SimulationConfig() (simulation.Config, error) {
	decks, err := deck.LoadAll(c.Simulation.Decks)
	if err != nil {
		return simulation.Config{}, fmt.Errorf("config: %w", err)
	}
	policy, err := engine.ParseIllegalActionPolicy(c.Simulation.IllegalActionPolicy)
	if err != nil {
		return simulation.Config{}, fmt.Errorf("config: %w", err)
	}
	return simulation.Config{
		Games:             c.Simulation.Games,
		Parallelism:       c.Simulation.Parallelism,
		Seed:              c.Simulation.Seed,
		MaxTurns:          c.Simulation.MaxTurns,
		MaxPriorityRounds: c.Simulation.MaxPriorityRounds,
		Policy:            policy,
		Strategy:          c.Simulation.Strategy,
		Decks:             decks,
		StartingLife:      c.Rules.StartingLife,
		OpeningHand:       c.Rules.OpeningHand,
		MaxHandSize:       c.Rules.MaxHandSize,
		TraceDir:          c.Simulation.TraceDir,
	}, nil
}
