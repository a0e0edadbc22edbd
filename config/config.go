package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	AI        AIConfig
	Crawler   CrawlerConfig
	Discovery DiscoveryConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// AIConfig holds Gemini API configuration for extraction and embeddings
type AIConfig struct {
	APIKey          string `mapstructure:"api_key"`
	ExtractionModel string `mapstructure:"extraction_model"`
	EmbeddingModel  string `mapstructure:"embedding_model"`
}

// CrawlerConfig holds outbound crawl settings
type CrawlerConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// DiscoveryConfig holds candidate discovery settings
type DiscoveryConfig struct {
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	DefaultMaxResults int           `mapstructure:"default_max_results"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/competitive-edge/")

	// Environment variable settings
	v.SetEnvPrefix("CEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, and the two
	// required settings carry no default. Bind them so env-only startup works.
	v.BindEnv("database.dsn")
	v.BindEnv("ai.api_key")

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// AI defaults
	v.SetDefault("ai.extraction_model", "gemini-1.5-flash")
	v.SetDefault("ai.embedding_model", "text-embedding-004")

	// Crawler defaults
	v.SetDefault("crawler.timeout", "30s")
	v.SetDefault("crawler.requests_per_second", 1.0)
	v.SetDefault("crawler.burst", 3)
	v.SetDefault("crawler.max_retries", 3)

	// Discovery defaults
	v.SetDefault("discovery.cache_ttl", "1h")
	v.SetDefault("discovery.default_max_results", 5)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Database.DSN == "" {
		return fmt.Errorf("database DSN is required (set CEE_DATABASE_DSN)")
	}

	if config.AI.APIKey == "" {
		return fmt.Errorf("AI API key is required (set CEE_AI_API_KEY)")
	}

	if config.Discovery.DefaultMaxResults < 1 || config.Discovery.DefaultMaxResults > 20 {
		return fmt.Errorf("discovery default_max_results must be between 1 and 20, got: %d",
			config.Discovery.DefaultMaxResults)
	}

	return nil
}
