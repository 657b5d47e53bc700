package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "", cfg.Addr)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, DefaultCacheCapacity, cfg.Cache.Capacity)
	assert.Equal(t, DefaultCacheTTL, cfg.Cache.TTL)
	assert.True(t, cfg.Metrics)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PGCONN", "postgres://localhost/test")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("LEXICON_PORT", "9090")
	t.Setenv("LEXICON_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/test", cfg.PGConn)
	assert.Equal(t, "key-123", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.True(t, cfg.AIEnabled())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:   8080,
			PGConn: "postgres://localhost/db",
			Gemini: GeminiConfig{Model: "gemini-2.0-flash"},
			Logging: LoggingConfig{
				Level:  "INFO",
				Format: "text",
				Output: "stdout",
			},
			Cache: CacheConfig{Capacity: 1024, TTL: 300 * time.Second},
		}
	}

	t.Run("ValidConfig", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("MissingPGConn", func(t *testing.T) {
		cfg := base()
		cfg.PGConn = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadPort", func(t *testing.T) {
		cfg := base()
		cfg.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadLogLevel", func(t *testing.T) {
		cfg := base()
		cfg.Logging.Level = "LOUD"
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadCacheCapacity", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Capacity = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestAIEnabled(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.AIEnabled())
	cfg.Gemini.APIKey = "k"
	assert.True(t, cfg.AIEnabled())
}
