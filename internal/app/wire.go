// Package app builds the runtime collaborators shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/Francisnampellah/MeMoney-sub000/internal/config"
	"github.com/Francisnampellah/MeMoney-sub000/internal/events"
	"github.com/Francisnampellah/MeMoney-sub000/internal/gcsuploader"
	"github.com/Francisnampellah/MeMoney-sub000/internal/infra/bigquery"
	"github.com/Francisnampellah/MeMoney-sub000/internal/infra/memory"
	"github.com/Francisnampellah/MeMoney-sub000/internal/infra/postgres"
	"github.com/Francisnampellah/MeMoney-sub000/internal/jobs"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
)

// OpenStore connects the backend selected by cfg.Store. The returned func
// releases it.
func OpenStore(ctx context.Context, cfg *config.Config) (pipeline.TransactionStore, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewStore(), func() {}, nil

	case config.StoreBigQuery:
		s, err := bigquery.NewStore(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			return nil, nil, fmt.Errorf("OpenStore: %w", err)
		}
		return s, func() { _ = s.Close() }, nil

	case config.StorePostgres:
		db, err := postgres.Connect(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, nil, fmt.Errorf("OpenStore: %w", err)
		}
		return postgres.NewStore(db), db.Close, nil
	}
	return nil, nil, fmt.Errorf("OpenStore: unknown store %q", cfg.Store)
}

// OpenPublisher connects to NATS when NATS_URL is set. Without it the
// returned publisher is nil and ingestion skips the publish step.
func OpenPublisher(cfg *config.Config) (pipeline.EventPublisher, func(), error) {
	if cfg.NATSURL == "" {
		return nil, func() {}, nil
	}
	p, nc, err := events.Connect(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, nil, fmt.Errorf("OpenPublisher: %w", err)
	}
	return p, func() { _ = nc.Drain() }, nil
}

// OpenStorage returns the GCS-backed storage service.
func OpenStorage(ctx context.Context) (*gcsuploader.GCSStorageService, func(), error) {
	client, err := gcsuploader.NewClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("OpenStorage: %w", err)
	}
	return gcsuploader.NewGCSStorageService(client), func() { _ = client.Close() }, nil
}

// IngestJobHandler runs the GCS ingestion pipeline for each job and copies
// the outcome onto it.
func IngestJobHandler(deps pipeline.Deps) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.IngestJob) error {
		log := logger.FromContext(ctx)
		log.Info().Str("gcs_uri", job.GCSURI).Int("attempt", job.RetryCount+1).Msg("Processing ingestion job")

		res, err := pipeline.IngestMessagesFromGCS(ctx, job.GCSURI, deps)
		if err != nil {
			return err
		}

		job.ParsingRunID = res.ParsingRunID
		job.Accepted = res.Messages - res.Rejected
		job.Rejected = res.Rejected
		job.Stored = len(res.Records)
		return nil
	}
}
