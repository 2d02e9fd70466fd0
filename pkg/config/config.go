package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for design-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional trend snapshot cache)
	Redis RedisConfig `yaml:"redis"`

	// Provider catalog and invoker credentials
	Providers ProvidersConfig `yaml:"providers"`

	// Task executor tuning
	Executor ExecutorConfig `yaml:"executor"`

	// Trend analysis tuning
	Trends TrendsConfig `yaml:"trends"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"design_engine"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"design_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds optional Redis cache configuration.
// An empty host disables caching entirely.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// ProvidersConfig locates the provider catalog and carries invoker credentials.
type ProvidersConfig struct {
	// CatalogPath is the YAML file enumerating configured AI providers.
	CatalogPath string `yaml:"catalog_path" env:"PROVIDERS_CATALOG_PATH" env-default:"providers.yaml"`

	// OpenAI-compatible invoker settings.
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	OpenAIAPIKey  string `yaml:"-" env:"OPENAI_API_KEY"` // Secret - not in YAML

	// Anthropic invoker settings.
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML

	// EmbeddingModel is used when a network-backed embedder is configured.
	EmbeddingModel string `yaml:"embedding_model" env:"EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
}

// ExecutorConfig tunes outbound provider call behavior.
type ExecutorConfig struct {
	// MaxConcurrentCalls bounds simultaneous outbound provider calls.
	// This is a deployment policy to respect provider rate limits.
	MaxConcurrentCalls int `yaml:"max_concurrent_calls" env:"EXECUTOR_MAX_CONCURRENT_CALLS" env-default:"8"`

	// DefaultTimeout bounds provider calls when the task carries no
	// max_response_time budget of its own.
	DefaultTimeout time.Duration `yaml:"default_timeout" env:"EXECUTOR_DEFAULT_TIMEOUT" env-default:"60s"`
}

// TrendsConfig tunes trend analysis windows and caching.
type TrendsConfig struct {
	// WindowDays is the standard analysis window length.
	WindowDays int `yaml:"window_days" env:"TRENDS_WINDOW_DAYS" env-default:"30"`

	// CacheTTL is how long computed trend snapshots stay cached in Redis.
	CacheTTL time.Duration `yaml:"cache_ttl" env:"TRENDS_CACHE_TTL" env-default:"10m"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if cfg.Executor.MaxConcurrentCalls < 1 {
		return nil, fmt.Errorf("executor.max_concurrent_calls must be at least 1")
	}
	if cfg.Trends.WindowDays < 1 {
		return nil, fmt.Errorf("trends.window_days must be at least 1")
	}

	return cfg, nil
}
