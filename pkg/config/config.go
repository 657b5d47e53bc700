// Package config loads service configuration from the environment.
//
// Sources in order of precedence:
//  1. CLI flags (applied by the commands after Load)
//  2. Environment variables (PGCONN, GEMINI_API_KEY, GEMINI_MODEL, LEXICON_*)
//  3. A .env file in the working directory, if present
//  4. Defaults
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default sizing for the response cache.
const (
	DefaultCacheCapacity = 1024
	DefaultCacheTTL      = 300 * time.Second
)

// Config holds the full configuration for both the server and the indexer.
type Config struct {
	// Addr is the listen address. Empty means all interfaces.
	Addr string `mapstructure:"addr"`

	// Port is the HTTP listen port.
	Port int `mapstructure:"port" validate:"gt=0,lte=65535"`

	// PGConn is the Postgres connection string (URL or DSN form).
	PGConn string `mapstructure:"pgconn" validate:"required"`

	// Gemini configures the LLM summarisation client. Summaries are
	// disabled when the API key is empty.
	Gemini GeminiConfig `mapstructure:"gemini"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`

	// Cache sizes the shared response cache.
	Cache CacheConfig `mapstructure:"cache"`

	// Metrics enables the Prometheus registry and the /metrics endpoint.
	Metrics bool `mapstructure:"metrics"`
}

// GeminiConfig holds LLM client settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model" validate:"required"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format is the output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required"`
}

// CacheConfig sizes the response cache.
type CacheConfig struct {
	Capacity int           `mapstructure:"capacity" validate:"gt=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win
// over .env entries.
func Load() (*Config, error) {
	// godotenv does not overwrite variables that are already set.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("addr", "")
	v.SetDefault("port", 8080)
	v.SetDefault("pgconn", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("cache.capacity", DefaultCacheCapacity)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("metrics", true)

	// The service-specific variables keep their historical bare names.
	must(v.BindEnv("pgconn", "PGCONN"))
	must(v.BindEnv("gemini.api_key", "GEMINI_API_KEY"))
	must(v.BindEnv("gemini.model", "GEMINI_MODEL"))

	// Everything else is overridable as LEXICON_<SECTION>_<KEY>.
	v.SetEnvPrefix("LEXICON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	return &cfg, nil
}

// Validate checks the configuration. PGConn may still be empty at this point
// when the --pgconn flag supplies it; call after flags are applied.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("invalid configuration: field %s failed %q", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// AIEnabled reports whether LLM summarisation can run.
func (c *Config) AIEnabled() bool {
	return c.Gemini.APIKey != ""
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
