package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config struct for environment variables.
type Config struct {
	BaseURL   string `envconfig:"BASE_URL" default:"https://badukmovies.com"`
	TargetDir string `envconfig:"TARGET_DIR" default:"episodes"`

	// Email and Password are prompted for when left empty.
	Email    string `envconfig:"EMAIL"`
	Password string `envconfig:"PASSWORD"`

	SkipExisting    bool          `envconfig:"SKIP_EXISTING" default:"true"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"INFO"`
	RequestInterval time.Duration `envconfig:"REQUEST_INTERVAL" default:"0s"`
	UserAgent       string        `envconfig:"USER_AGENT" default:"baduk_downloader"`
	ProgressBar     bool          `envconfig:"PROGRESS_BAR" default:"true"`

	DiscordWebhookURL string `envconfig:"DISCORD_WEBHOOK_URL"`

	MetricsAddr      string `envconfig:"METRICS_ADDR"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`
}

// LoadConfig reads environment variables and populates the Config struct.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	if cfg.RequestInterval < 0 {
		return nil, fmt.Errorf("REQUEST_INTERVAL must not be negative, got %s", cfg.RequestInterval)
	}

	return &cfg, nil
}

// HasCredentials reports whether both login fields were supplied.
func (c *Config) HasCredentials() bool {
	return c.Email != "" && c.Password != ""
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
