package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresCredential(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg, err := Load()
	require.ErrorIs(t, err, ErrMissingCredential)
	require.Nil(t, cfg)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("REDIS_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "test-key", cfg.GeminiAPIKey)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "gemini-2.5-flash", cfg.TextModel)
	require.Equal(t, "gemini-2.5-pro", cfg.VisionModel)
	require.Equal(t, "imagen-4.0-generate-001", cfg.ImageModel)
	require.Equal(t, "gemini-2.5-flash-image", cfg.EditModel)
	require.Equal(t, 30*time.Minute, cfg.FenceTTL)
	require.False(t, cfg.HasRedis())
}

func TestLoadFallsBackToAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "legacy-key", cfg.GeminiAPIKey)
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "cache", RedisPort: "6380"}
	require.True(t, cfg.HasRedis())
	require.Equal(t, "cache:6380", cfg.GetRedisAddr())
}

func TestValidateRejectsBadLimits(t *testing.T) {
	cfg := &Config{GeminiAPIKey: "k", MaxUploadBytes: 0, FenceTTL: time.Minute}
	require.Error(t, cfg.Validate())

	cfg = &Config{GeminiAPIKey: "k", MaxUploadBytes: 1, FenceTTL: 0}
	require.Error(t, cfg.Validate())
}

func TestLoadIsSilentUntilSummary(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	cfg, err := Load()
	require.NoError(t, err)
	require.Zero(t, buf.Len())

	cfg.LogSummary()
	require.Contains(t, buf.String(), "Configuration loaded")
	require.Contains(t, buf.String(), "gemini-2.5-flash")
}
