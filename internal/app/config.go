package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// DiscordToken enables the gateway session used by the Lavalink sink.
	DiscordToken string `env:"DISCORD_TOKEN"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"LOG_FILE"`
}

// LoadConfig loads configuration from environment variables.
// Returns an error if a value cannot be parsed.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if _, err := cfg.Level(); err != nil {
		return nil, err
	}

	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile()
	}

	return cfg, nil
}

// Level returns the configured slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func defaultLogFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "streamify.log")
	}
	return filepath.Join(dir, "streamify", "streamify.log")
}
