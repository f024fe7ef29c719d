package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	SessionBackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret, when set, makes the portal verify the backend's HS256 signature.
	JWTSecret    string `env:"JWT_SECRET"`
	CookieSecret string `env:"COOKIE_SECRET, required" validate:"min=32"`
	CookieSecure bool   `env:"COOKIE_SECURE, default=false"`

	Backend BackendConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:5000" validate:"required,url"`
	Prefix  string        `env:"BACKEND_PREFIX,  default=/api/v1"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type SessionConfig struct {
	Backend       string        `env:"SESSION_BACKEND,        default=memory" validate:"oneof=memory redis mongo"`
	TTL           time.Duration `env:"SESSION_TTL,            default=24h" validate:"gt=0"`
	SweepSchedule string        `env:"SESSION_SWEEP_SCHEDULE, default=@every 10m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=school_portal"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether human-friendly logging and error pages are wanted.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig and validates it.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
