package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	AppPort      int
	SerperAPIKey string

	// DatabaseURL selects the Postgres cache tier; BoltPath selects the
	// embedded tier when no database is configured. Both empty means
	// in-process caching only.
	DatabaseURL   string
	BoltPath      string
	MigrationsURL string

	// ProxyURL is an optional SOCKS5 proxy for all outbound traffic.
	ProxyURL string

	CategoryQueriesPath string
}

func Load() (*Config, error) {
	apiKey := os.Getenv("SERPER_API_KEY")
	if apiKey == "" {
		return nil, errors.New("SERPER_API_KEY not found in environment variables")
	}

	appPort := 8080
	if v := os.Getenv("APP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, err
		}
		appPort = port
	}

	return &Config{
		AppPort:             appPort,
		SerperAPIKey:        apiKey,
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		BoltPath:            os.Getenv("BOLT_PATH"),
		MigrationsURL:       getEnv("MIGRATIONS_URL", "file://migrations"),
		ProxyURL:            os.Getenv("PROXY_URL"),
		CategoryQueriesPath: os.Getenv("CATEGORY_QUERIES_PATH"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
