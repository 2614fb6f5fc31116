package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RegistryConfig controls the provider snapshot cache. The TTL is read once at
// startup and fixed for the process lifetime.
type RegistryConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// GatewayConfig points outbound traffic at the AI gateway proxy.
type GatewayConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	TokenSecretName string `mapstructure:"token_secret_name"`
}

type AuthConfig struct {
	KeySetName string   `mapstructure:"key_set_name"`
	StaticKeys []string `mapstructure:"static_keys"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type AnalyticsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("registry.ttl", "60s")
	v.SetDefault("registry.key_prefix", "gateway:provider:")
	v.SetDefault("gateway.token_secret_name", "AI_GATEWAY_TOKEN")
	v.SetDefault("auth.key_set_name", "gateway:api_keys")
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("analytics.enabled", true)
	v.SetDefault("analytics.dsn", "file:gateway.db?cache=shared&mode=rwc&_journal_mode=WAL&_busy_timeout=5000")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if cfg.Registry.TTL <= 0 {
		return nil, fmt.Errorf("registry.ttl must be positive, got %s", cfg.Registry.TTL)
	}

	return &cfg, nil
}
