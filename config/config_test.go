package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		req := require.New(t)

		cfg, err := LoadConfig()

		req.NoError(err)
		req.Equal("8080", cfg.AppPort)
		req.Equal(DriverPostgres, cfg.DBDriver)
		req.Equal(15*time.Minute, cfg.AccessTokenTTL())
		req.Equal(60, cfg.MessageRateLimit)
		req.Equal(10*time.Second, cfg.RoomHeartbeatInterval)
	})

	t.Run("should read sqlite settings from env", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("DB_PATH", "/tmp/chat.db")
		t.Setenv("REDIS_ENABLED", "false")
		t.Setenv("PUSH_TIMEOUT", "2s")

		cfg, err := LoadConfig()

		req.NoError(err)
		req.Equal("/tmp/chat.db", cfg.DSN())
		req.False(cfg.RedisEnabled)
		req.Equal(2*time.Second, cfg.PushTimeout)
	})

	t.Run("should reject unknown driver", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("DB_DRIVER", "mysql")

		_, err := LoadConfig()

		req.Error(err)
	})

	t.Run("should fail on malformed values", func(t *testing.T) {
		req := require.New(t)
		t.Setenv("JWT_EXPIRY_MIN", "soon")

		_, err := LoadConfig()

		req.ErrorContains(err, "parse env")
	})
}

func TestDSNPostgres(t *testing.T) {
	cfg := &Config{DBDriver: DriverPostgres, DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "chat"}

	require.Equal(t, "postgres://u:p@db:5432/chat?sslmode=disable", cfg.DSN())
}
