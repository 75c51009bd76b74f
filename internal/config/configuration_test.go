package config

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Success_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("EFFECTS_BASE_URL", "http://effects:5000")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, 8080, cfg.WebServerPort)
	require.Empty(t, cfg.DatabaseDSN)
	require.Equal(t, 10, cfg.DatabaseRetries)
	require.Equal(t, "http://effects:5000", cfg.EffectsBaseURL)
	require.Equal(t, 60*time.Second, cfg.EffectsTimeout)
	require.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	require.Equal(t, 90, cfg.ExportQuality)
	require.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
}

func TestLoadConfig_ValidationError(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("WEBSERVER_PORT", "8080")
	// Missing EFFECTS_BASE_URL

	cfg, err := LoadConfig(context.Background())
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestLoadConfig_InvalidQuality(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("EFFECTS_BASE_URL", "http://effects:5000")
	t.Setenv("EXPORT_QUALITY", "101")

	cfg, err := LoadConfig(context.Background())
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("EFFECTS_BASE_URL", "https://fx.example.com")
	t.Setenv("DATABASE_DSN", "postgres://example")
	t.Setenv("DATABASE_RETRIES", "3")
	t.Setenv("EFFECTS_TIMEOUT", "5s")
	t.Setenv("SESSION_IDLE_TIMEOUT", "30m")
	t.Setenv("UPLOAD_MAX_BYTES", "1048576")

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, 3, cfg.DatabaseRetries)
	require.Equal(t, 5*time.Second, cfg.EffectsTimeout)
	require.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	require.Equal(t, int64(1<<20), cfg.UploadMaxBytes)
}

func TestConfig_LogValueHidesSecrets(t *testing.T) {
	cfg := Config{DatabaseDSN: "postgres://user:hunter2@db/x", SessionSecret: "hunter2"}
	v := cfg.LogValue()
	require.Equal(t, slog.KindGroup, v.Kind())
	require.NotContains(t, v.String(), "hunter2")
}
