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

// EnvPrefix prefixes every environment variable, e.g. BANDPATH_SERVER_PORT.
const EnvPrefix = "BANDPATH"

// ErrMissingDatabaseURL is returned when the postgres store has no URL.
var ErrMissingDatabaseURL = errors.New("database.url is required for the postgres store")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.catalog_path", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime", 24*time.Hour)

	v.SetDefault("engine.trend_window_days", 7)
	v.SetDefault("engine.weak_area_window_days", 14)
	v.SetDefault("engine.max_tasks", 4)
	v.SetDefault("engine.conflict_retries", 3)
	v.SetDefault("engine.min_trend_confidence", 0.75)
	v.SetDefault("engine.evaluate_on_record", true)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.daily_at", "02:00")
	v.SetDefault("scheduler.concurrency", 4)

	v.SetDefault("grading.enabled", false)
	v.SetDefault("grading.gemini_api_key", "")
	v.SetDefault("grading.model", "gemini-2.0-flash")
	v.SetDefault("grading.max_retries", 3)
	v.SetDefault("grading.retry_delay_seconds", 2)
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory, a .env file and BANDPATH_ environment variables, in
// increasing order of precedence. The result is validated before it is
// returned.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags plus the rules that span sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Store.Driver == DriverPostgres && c.Database.URL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}
