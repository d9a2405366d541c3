package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Store     StoreConfig     `mapstructure:"store" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Grading   GradingConfig   `mapstructure:"grading"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains database settings. URL is required when the store
// driver is postgres.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	CatalogPath string `mapstructure:"catalog_path"`
}

// AuthConfig contains access token settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
}

// EngineConfig tunes the learning path engine.
type EngineConfig struct {
	TrendWindowDays    int     `mapstructure:"trend_window_days" validate:"gte=1,lte=60"`
	WeakAreaWindowDays int     `mapstructure:"weak_area_window_days" validate:"gte=1,lte=90"`
	MaxTasks           int     `mapstructure:"max_tasks" validate:"gte=1,lte=20"`
	ConflictRetries    int     `mapstructure:"conflict_retries" validate:"gte=1,lte=10"`
	MinTrendConfidence float64 `mapstructure:"min_trend_confidence" validate:"gte=0,lte=1"`
	EvaluateOnRecord   bool    `mapstructure:"evaluate_on_record"`
}

// SchedulerConfig controls the daily evaluation job.
type SchedulerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DailyAt     string `mapstructure:"daily_at" validate:"required,datetime=15:04"`
	Concurrency int    `mapstructure:"concurrency" validate:"gte=1,lte=64"`
}

// GradingConfig contains essay grading settings.
type GradingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required_if=Enabled true"`
	Model             string `mapstructure:"model" validate:"required_if=Enabled true"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}
