package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`
	AppMode string `env:"APP_MODE" envDefault:"debug"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"pgx"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"ondot_chat"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBPath     string `env:"DB_PATH" envDefault:"ondot.db"`

	JWTSecret    string `env:"JWT_SECRET" envDefault:"change-me"`
	JWTExpiryMin int    `env:"JWT_EXPIRY_MIN" envDefault:"15"`

	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"true"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// PushEndpoint is the Expo-compatible push API. Empty disables push.
	PushEndpoint string        `env:"PUSH_ENDPOINT" envDefault:"https://exp.host/--/api/v2/push/send"`
	PushTimeout  time.Duration `env:"PUSH_TIMEOUT" envDefault:"5s"`

	MessageRateLimit int           `env:"MESSAGE_RATE_LIMIT" envDefault:"60"`
	ContactRateLimit int           `env:"CONTACT_RATE_LIMIT" envDefault:"20"`
	SessionCacheTTL  time.Duration `env:"SESSION_CACHE_TTL" envDefault:"1m"`

	// RoomHeartbeatInterval paces the liveness key of this instance in the
	// shared room directory.
	RoomHeartbeatInterval time.Duration `env:"ROOM_HEARTBEAT_INTERVAL" envDefault:"10s"`
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.DBPath
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTExpiryMin) * time.Minute
}
