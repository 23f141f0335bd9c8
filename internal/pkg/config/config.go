package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// PlaceholderAPIKey is the demo key shipped with the web app. Seeing it means
// the identity provider was never configured.
const PlaceholderAPIKey = "AIzaSyDummyKeyForDemoPurposesOnly"

const (
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Identity IdentityConfig
	Storage  StorageConfig
	Tutor    TutorConfig
}

type IdentityConfig struct {
	APIKey      string        `env:"FIREBASE_API_KEY,     default=AIzaSyDummyKeyForDemoPurposesOnly"`
	AuthDomain  string        `env:"FIREBASE_AUTH_DOMAIN, default=crazy-learners-demo.firebaseapp.com"`
	ProjectID   string        `env:"FIREBASE_PROJECT_ID,  default=crazy-learners-demo"`
	AppID       string        `env:"FIREBASE_APP_ID"`
	Endpoint    string        `env:"FIREBASE_ENDPOINT,    default=https://identitytoolkit.googleapis.com/v1"`
	MockLatency time.Duration `env:"MOCK_LATENCY,         default=800ms"`
	MockSlotKey string        `env:"MOCK_SLOT_KEY,        default=mockUser"`
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER, default=redis"`
	Mongo  MongoConfig
	Redis  RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=crazy_learners"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Prefix   string `env:"REDIS_PREFIX,   default=portal:slot:"`
}

type TutorConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"TUTOR_MODEL, default=gemini-2.5-flash"`
}

// RealProviderConfigured reports whether the real identity provider should
// be used. An absent or placeholder key selects the mock backend.
func (c IdentityConfig) RealProviderConfigured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// Development reports whether the process runs outside production.
func (c *Config) Development() bool {
	return c.Env != "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}

	switch cfg.Storage.Driver {
	case DriverRedis, DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}
	return &cfg, nil
}
