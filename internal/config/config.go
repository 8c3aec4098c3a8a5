package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Graph    GraphConfig
	Redis    RedisConfig
	JWT      JWTConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// GraphConfig holds the graph gateway connection. All four credentials are
// required: the recommendation engine must fail fast at boot rather than
// silently degrade without a graph source.
type GraphConfig struct {
	GatewayURL    string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	Environment   string
	WriteInterval time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type JWTConfig struct {
	AccessSecret string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),
	}

	cfg.Graph = GraphConfig{
		GatewayURL:    req("GRAPH_GATEWAY_URL"),
		TokenURL:      req("GRAPH_TOKEN_URL"),
		ClientID:      req("GRAPH_CLIENT_ID"),
		ClientSecret:  req("GRAPH_CLIENT_SECRET"),
		Environment:   opt("GRAPH_ENV"),
		WriteInterval: durationFromEnv("GRAPH_WRITE_INTERVAL_MS", 200*time.Millisecond),
	}
	if cfg.Graph.Environment == "" {
		if cfg.App.Environment == "production" {
			cfg.Graph.Environment = "production"
		} else {
			cfg.Graph.Environment = "staging"
		}
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST"),
		Port:     opt("REDIS_PORT"),
		Password: opt("REDIS_PASSWORD"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret: req("JWT_ACCESS_SECRET"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
