package cli

import (
	"fmt"
	"log/slog"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/actions"
	"github.com/glorpus-work/s3cache/pkg/config"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	LogFormat  *string
)

// loadConfig layers the configuration sources: defaults, the config file, the
// action inputs and the workflow environment. Flags are applied by the caller.
func loadConfig(env actions.Environment) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if ConfigPath != nil && *ConfigPath != "" {
		loaded, err := config.LoadConfig(*ConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyInputs(); err != nil {
		return cfg, err
	}
	cfg.ApplyEnvironment(env)
	return cfg, nil
}

// initLogging configures the logger from the settings and global flags.
func initLogging(cfg *config.Config) {
	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	format := logger.OutputFormat(cfg.Settings.OutputFormat)
	if LogFormat != nil && *LogFormat != "" {
		format = logger.OutputFormat(*LogFormat)
	}
	logger.InitLogger(level, format)
}

func debugEnabled(cfg *config.Config) bool {
	return (Verbose != nil && *Verbose) || logger.ParseLevel(cfg.Settings.LogLevel) == slog.LevelDebug
}
