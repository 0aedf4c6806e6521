package main

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/samber/oops"

	authservice "github.com/MrEthical07/authservice"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
	storeSQLite   = "sqlite"
	storeRedis    = "redis"
)

// Config is the process configuration read from the environment.
type Config struct {
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
	Address   string `env:"AUTH_ADDRESS" envDefault:"0.0.0.0:3000"`

	UserStore   string `env:"AUTH_USER_STORE" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"authservice.db"`

	SessionStore string `env:"AUTH_SESSION_STORE" envDefault:"memory"`
	RedisAddr    string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`

	TokenTTL       time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"10m"`
	AllowedOrigins []string      `env:"AUTH_ALLOWED_ORIGINS" envSeparator:","`
	HashWorkers    int           `env:"AUTH_HASH_WORKERS" envDefault:"0"`

	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	ConnectAttempts uint64        `env:"AUTH_CONNECT_ATTEMPTS" envDefault:"10"`
	ShutdownTimeout time.Duration `env:"AUTH_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// loadConfig parses environ, or the process environment when environ is
// nil, and validates the result.
func loadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").With("operation", "parse env").Wrap(err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.UserStore = strings.ToLower(strings.TrimSpace(c.UserStore))
	c.SessionStore = strings.ToLower(strings.TrimSpace(c.SessionStore))

	switch c.UserStore {
	case storeMemory, storeSQLite:
	case storePostgres:
		if c.DatabaseURL == "" {
			return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL is required for the postgres user store")
		}
	default:
		return oops.Code("CONFIG_INVALID").With("value", c.UserStore).Errorf("AUTH_USER_STORE must be memory, postgres or sqlite")
	}

	switch c.SessionStore {
	case storeMemory, storeRedis:
	default:
		return oops.Code("CONFIG_INVALID").With("value", c.SessionStore).Errorf("AUTH_SESSION_STORE must be memory or redis")
	}

	if c.TokenTTL <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("AUTH_TOKEN_TTL must be positive")
	}
	if c.HashWorkers < 0 {
		return oops.Code("CONFIG_INVALID").Errorf("AUTH_HASH_WORKERS must not be negative")
	}
	return nil
}

// engineConfig maps the process settings onto the engine defaults.
func (c Config) engineConfig() authservice.Config {
	cfg := authservice.DefaultConfig()
	cfg.Token.PrivateKey = []byte(c.JWTSecret)
	cfg.Token.TTL = c.TokenTTL
	cfg.Password.Workers = c.HashWorkers
	return cfg
}
