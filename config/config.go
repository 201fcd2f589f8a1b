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
	Providers ProvidersConfig
	Search    SearchConfig
	Cache     CacheConfig
	Store     StoreConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProvidersConfig holds external product database configuration
type ProvidersConfig struct {
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	FatSecret     FatSecretConfig     `mapstructure:"fatsecret"`
}

// OpenFoodFactsConfig holds the primary provider configuration
type OpenFoodFactsConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// FatSecretConfig holds the augmentation provider configuration.
// The provider is optional: without credentials it is not wired in.
type FatSecretConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenURL     string `mapstructure:"token_url"`
	APIURL       string `mapstructure:"api_url"`
}

// SearchConfig holds aggregation and ranking configuration
type SearchConfig struct {
	PageSize         int           `mapstructure:"page_size"`
	AugmentThreshold int           `mapstructure:"augment_threshold"`
	CallTimeout      time.Duration `mapstructure:"call_timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// StoreConfig holds community product store configuration
type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/nutridex/")

	v.SetEnvPrefix("NUTRIDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

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
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Provider defaults
	v.SetDefault("providers.openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("providers.openfoodfacts.user_agent", "Nutridex/1.0 (backend)")
	v.SetDefault("providers.fatsecret.client_id", "")
	v.SetDefault("providers.fatsecret.client_secret", "")
	v.SetDefault("providers.fatsecret.token_url", "https://oauth.fatsecret.com/connect/token")
	v.SetDefault("providers.fatsecret.api_url", "https://platform.fatsecret.com/rest/server.api")

	// Search defaults
	v.SetDefault("search.page_size", 20)
	v.SetDefault("search.augment_threshold", 10)
	v.SetDefault("search.call_timeout", "5s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Store defaults
	v.SetDefault("store.dsn", "nutridex.db")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Providers.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("Open Food Facts base URL is required")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Store.DSN == "" {
		return fmt.Errorf("community store DSN is required")
	}

	// FatSecret needs either both credentials or neither.
	fs := config.Providers.FatSecret
	if (fs.ClientID == "") != (fs.ClientSecret == "") {
		return fmt.Errorf("FatSecret client ID and secret must be set together")
	}

	return nil
}
