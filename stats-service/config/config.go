package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string `env:"SERVER_PORT" envDefault:"9090"`
	DBHost            string `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string `env:"DB_PORT" envDefault:"5432"`
	DBUser            string `env:"DB_USER" envDefault:"postgres"`
	DBPassword        string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName            string `env:"DB_NAME" envDefault:"ewm_stats"`
	DBSSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	RabbitURL         string `env:"RABBITMQ_URL"`
	MigrationsEnabled bool   `env:"MIGRATIONS_ENABLED" envDefault:"true"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("config: SERVER_PORT must not be empty")
	}
	if c.DBHost == "" || c.DBName == "" {
		return fmt.Errorf("config: DB_HOST and DB_NAME are required")
	}
	if c.RabbitURL != "" {
		if u, err := url.Parse(c.RabbitURL); err != nil || u.Scheme == "" {
			return fmt.Errorf("config: RABBITMQ_URL is invalid (%q)", c.RabbitURL)
		}
	}
	return nil
}

// DSN is a postgres URL accepted by both pgx and golang-migrate.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}
