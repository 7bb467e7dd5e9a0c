// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends selectable through STORE.
const (
	StoreMemory   = "memory"
	StoreBigQuery = "bigquery"
	StorePostgres = "postgres"
)

type Config struct {
	ProjectID string
	Dataset   string
	Bucket    string

	Store       string
	DatabaseURI string

	NATSURL     string
	NATSSubject string

	NotionToken string
	NotionDBID  string

	LogLevel     string
	Port         string
	ParseWorkers int
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	// .env is optional outside local development.
	_ = godotenv.Load()

	workers, err := getEnvInt("PARSE_WORKERS", 4)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectID:    os.Getenv("GCP_PROJECT_ID"),
		Dataset:      getEnvOrDefault("BQ_DATASET", "mobile_money"),
		Bucket:       os.Getenv("GCS_BUCKET"),
		Store:        getEnvOrDefault("STORE", StoreMemory),
		DatabaseURI:  os.Getenv("DATABASE_URI"),
		NATSURL:      os.Getenv("NATS_URL"),
		NATSSubject:  getEnvOrDefault("NATS_SUBJECT", "transactions.reconciled"),
		NotionToken:  os.Getenv("NOTION_TOKEN"),
		NotionDBID:   os.Getenv("NOTION_DB_ID"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		Port:         getEnvOrDefault("PORT", "8080"),
		ParseWorkers: workers,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreBigQuery:
		if c.ProjectID == "" {
			return fmt.Errorf("config: STORE=bigquery requires GCP_PROJECT_ID")
		}
	case StorePostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("config: STORE=postgres requires DATABASE_URI")
		}
	default:
		return fmt.Errorf("config: unknown STORE %q", c.Store)
	}
	if c.ParseWorkers < 1 {
		return fmt.Errorf("config: PARSE_WORKERS must be positive, got %d", c.ParseWorkers)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
