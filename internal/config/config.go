package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"MILLIONAIRE_PORT"`
	} `yaml:"server"`
	Database struct {
		// Driver is "postgres", "sqlite" or empty for the in-memory stores.
		Driver string `yaml:"driver" env:"MILLIONAIRE_DB_DRIVER"`
		DSN    string `yaml:"dsn" env:"MILLIONAIRE_DB_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"MILLIONAIRE_REDIS_ADDR"`
		Password string `yaml:"password" env:"MILLIONAIRE_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"MILLIONAIRE_REDIS_DB"`
		TTL      string `yaml:"ttl" env:"MILLIONAIRE_REDIS_TTL"`
	} `yaml:"redis"`
	Session struct {
		TTL        string `yaml:"ttl" env:"MILLIONAIRE_SESSION_TTL"`
		CookieName string `yaml:"cookie_name" env:"MILLIONAIRE_SESSION_COOKIE"`
		Secure     bool   `yaml:"secure" env:"MILLIONAIRE_SESSION_SECURE"`
	} `yaml:"session"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret" env:"MILLIONAIRE_JWT_SECRET"`
		TokenTTL  string `yaml:"token_ttl" env:"MILLIONAIRE_TOKEN_TTL"`
	} `yaml:"auth"`
	Questions struct {
		CacheTTL string `yaml:"cache_ttl" env:"MILLIONAIRE_QUESTIONS_CACHE_TTL"`
		SeedFile string `yaml:"seed_file" env:"MILLIONAIRE_QUESTIONS_SEED_FILE"`
	} `yaml:"questions"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error: the defaults plus environment are used.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "millionaire_session"
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
