package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`

	PostgresConn  string `env:"POSTGRES_CONN,required"`
	MigrationsURL string `env:"MIGRATIONS_URL" envDefault:"file://migrations"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// CatalogTTL bounds how old a cached CRM dataset may get before it is
	// reported stale to callers.
	CatalogTTL time.Duration `env:"CATALOG_TTL" envDefault:"1h"`

	PipedriveAPIToken string        `env:"PIPEDRIVE_API_TOKEN"`
	PipedriveBaseURL  string        `env:"PIPEDRIVE_BASE_URL"`
	PipedriveTimeout  time.Duration `env:"PIPEDRIVE_TIMEOUT" envDefault:"10s"`
}

// New loads configuration from the environment, with an optional .env file
// for local development.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error while parsing environment: %w", err)
	}

	return cfg, nil
}
