package connect4

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type (
	Config struct {
		Store      StoreConfig `envPrefix:"STORE_"`
		MaxRetries int         `env:"MAX_RETRIES" validate:"gte=1"`
		CacheSize  int         `env:"CACHE_SIZE" validate:"gte=0"`
		LogLevel   string      `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	}

	StoreConfig struct {
		Backend     string      `env:"BACKEND" validate:"oneof=memory redis bolt postgres"`
		Redis       RedisConfig `envPrefix:"REDIS_"`
		BoltPath    string      `env:"BOLT_PATH" validate:"required_if=Backend bolt"`
		PostgresDSN string      `env:"POSTGRES_DSN" validate:"required_if=Backend postgres"`
	}

	RedisConfig struct {
		Addr     string `env:"ADDR" validate:"required"`
		Password string `env:"PASSWORD"`
		Prefix   string `env:"PREFIX" validate:"required"`
		DB       int    `env:"DB" validate:"gte=0"`
	}
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

const (
	DefaultBackend       = BackendMemory
	DefaultRedisEndpoint = "localhost:6379"
	DefaultRedisPrefix   = "connect4"
	DefaultRedisDB       = 0
	DefaultBoltPath      = "connect4.db"
	DefaultMaxRetries    = 16
	DefaultCacheSize     = 128
	DefaultLogLevel      = "info"

	// EnvPrefix is prepended to every environment variable LoadConfig reads
	EnvPrefix = "CONNECT4_"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func DefaultConfig() Config {
	return Config{
		Store:      DefaultStoreConfig(),
		MaxRetries: DefaultMaxRetries,
		CacheSize:  DefaultCacheSize,
		LogLevel:   DefaultLogLevel,
	}
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend:  DefaultBackend,
		Redis:    DefaultRedisConfig(),
		BoltPath: DefaultBoltPath,
	}
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     DefaultRedisEndpoint,
		Password: "",
		Prefix:   DefaultRedisPrefix,
		DB:       DefaultRedisDB,
	}
}

// LoadConfig starts from DefaultConfig and overlays any CONNECT4_*
// environment variables, then validates the result
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for missing or out-of-range values
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
