package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/magefree/mage-sim/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: failed to read .env:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cli carries state shared by every command.
type cli struct {
	settings   *viper.Viper
	configPath string
}

func newRootCmd() *cobra.Command {
	c := &cli{settings: config.NewViper()}
	root := &cobra.Command{
		Use:   "magesim",
		Short: "Simulate two-player card games",
		Long: `magesim plays batches of two-player games between AI strategies and
reports how the decks fared. Every game is reproducible from its seed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "path to a YAML configuration file")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "console", "log format: json or console")
	_ = c.settings.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = c.settings.BindPFlag("logging.format", flags.Lookup("log-format"))

	root.AddCommand(c.runCmd())
	root.AddCommand(c.serveCmd())
	root.AddCommand(c.resultsCmd())
	root.AddCommand(c.replayCmd())
	root.AddCommand(c.tournamentCmd())
	return root
}

// bindFlags binds viper keys to flags of cmd. It runs from PreRunE so that
// commands sharing a key do not override each other's bindings.
func (c *cli) bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		if err := c.settings.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// load reads the configuration and builds the logger.
func (c *cli) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFrom(c.settings, c.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
