package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/Francisnampellah/MeMoney-sub000/internal/app"
	"github.com/Francisnampellah/MeMoney-sub000/internal/config"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.NewWithLevel(cfg.LogLevel)

	gcsURI := flag.String("gcs-uri", "", "GCS URI of the message export (e.g. gs://bucket/sms-exports/inbox.json)")
	timeout := flag.Duration("timeout", 5*time.Minute, "Overall ingestion timeout")
	flag.Parse()

	if *gcsURI == "" {
		log.Fatal().Msg("Error: --gcs-uri is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	defer closeStore()

	storage, closeStorage, err := app.OpenStorage(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS client")
	}
	defer closeStorage()

	publisher, closePublisher, err := app.OpenPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer closePublisher()

	log.Info().Str("gcs_uri", *gcsURI).Str("store", cfg.Store).Msg("Starting ingestion")

	res, err := pipeline.IngestMessagesFromGCS(ctx, *gcsURI, pipeline.Deps{
		Store:     store,
		Storage:   storage,
		Publisher: publisher,
		Parser:    smsparser.New(),
		Workers:   cfg.ParseWorkers,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingestion completed: run %s, %d records stored.\n", res.ParsingRunID, len(res.Records))
}
