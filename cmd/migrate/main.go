package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/Francisnampellah/MeMoney-sub000/internal/config"
	"github.com/Francisnampellah/MeMoney-sub000/internal/infra/bigquery"
	"github.com/Francisnampellah/MeMoney-sub000/internal/infra/postgres"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Invalid configuration")
	}

	backend := flag.String("store", cfg.Store, "Store to migrate: bigquery or postgres")
	projectID := flag.String("project", cfg.ProjectID, "GCP project ID (bigquery)")
	datasetID := flag.String("dataset", cfg.Dataset, "BigQuery dataset ID")
	databaseURI := flag.String("database-uri", cfg.DatabaseURI, "Postgres connection string")
	appliedBy := flag.String("applied-by", "migrate-cli", "Recorded in schema_migrations (bigquery)")
	flag.Parse()

	cfg.Store = *backend
	cfg.ProjectID = *projectID
	cfg.Dataset = *datasetID
	cfg.DatabaseURI = *databaseURI

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	applied, err := migrate(ctx, cfg, *appliedBy)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("Migration failed")
	}

	if applied == 0 {
		log.Info().Str("store", cfg.Store).Msg("No new migrations to apply. Database is up to date.")
		return
	}
	log.Info().Str("store", cfg.Store).Int("applied", applied).Msg("Migrations applied")
}

// migrate applies pending migrations and returns how many ran. Postgres
// does not report a count, so a successful run there returns -1.
func migrate(ctx context.Context, cfg *config.Config, appliedBy string) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	switch cfg.Store {
	case config.StoreBigQuery:
		store, err := bigquery.NewStore(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			return 0, err
		}
		defer store.Close()
		return store.Migrate(ctx, appliedBy)

	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURI)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return 0, err
		}
		return -1, nil

	case config.StoreMemory:
		return 0, nil
	}
	return 0, fmt.Errorf("migrate: unsupported store %q", cfg.Store)
}
