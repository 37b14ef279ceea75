package config_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/italolelis/baduk_downloader/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"BASE_URL", "TARGET_DIR", "EMAIL", "PASSWORD", "SKIP_EXISTING", "LOG_LEVEL",
		"REQUEST_INTERVAL", "USER_AGENT", "PROGRESS_BAR", "DISCORD_WEBHOOK_URL", "METRICS_ADDR", "TELEMETRY_ENABLED"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://badukmovies.com", cfg.BaseURL)
	assert.Equal(t, "episodes", cfg.TargetDir)
	assert.True(t, cfg.SkipExisting)
	assert.True(t, cfg.ProgressBar)
	assert.False(t, cfg.TelemetryEnabled)
	assert.Zero(t, cfg.RequestInterval)
	assert.Equal(t, "baduk_downloader", cfg.UserAgent)
	assert.False(t, cfg.HasCredentials())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("BASE_URL", "http://localhost:3000")
	t.Setenv("TARGET_DIR", "/data/baduk")
	t.Setenv("EMAIL", "me@example.com")
	t.Setenv("PASSWORD", "secret")
	t.Setenv("SKIP_EXISTING", "false")
	t.Setenv("REQUEST_INTERVAL", "250ms")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.BaseURL)
	assert.Equal(t, "/data/baduk", cfg.TargetDir)
	assert.False(t, cfg.SkipExisting)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestInterval)
	assert.True(t, cfg.HasCredentials())
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("REQUEST_INTERVAL", "soon")

	_, err := config.LoadConfig()
	require.Error(t, err)

	t.Setenv("REQUEST_INTERVAL", "-1s")

	_, err = config.LoadConfig()
	require.Error(t, err)
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"loud":  slog.LevelInfo,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			cfg := &config.Config{LogLevel: in}
			assert.Equal(t, want, cfg.SlogLevel())
		})
	}
}
