package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, loaded from the environment
// (main loads .env first so local runs work without exporting anything).
type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=user password=password dbname=chatwavedb port=5432 sslmode=disable"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// TypingTimeout is the debounce window for typing indicators.
	TypingTimeout time.Duration `envconfig:"TYPING_TIMEOUT" default:"5s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("chatwave", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
