package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/Francisnampellah/MeMoney-sub000/internal/analytics"
	"github.com/Francisnampellah/MeMoney-sub000/internal/app"
	"github.com/Francisnampellah/MeMoney-sub000/internal/config"
	"github.com/Francisnampellah/MeMoney-sub000/internal/gcsuploader"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/notionsync"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.NewWithLevel(cfg.LogLevel)

	switch os.Args[1] {
	case "parse":
		runParse(log, cfg)
	case "summary":
		runSummary(log, cfg)
	case "ingest":
		runIngest(log, cfg)
	case "upload":
		runUpload(log, cfg)
	case "sync-notion":
		runSyncNotion(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Mobile money message CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  parse        Parse and reconcile a local message export, print JSON records")
	fmt.Println("  summary      Print totals and breakdowns for a local message export")
	fmt.Println("  ingest       Ingest an export from GCS (or a local file) into the configured store")
	fmt.Println("  upload       Upload a local export to GCS")
	fmt.Println("  sync-notion  Push stored transactions to a Notion database")
	fmt.Println("  help         Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runParse(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	file := fs.String("file", "", "Path to a message export (JSON or one message per line)")
	concurrent := fs.Bool("concurrent", false, "Parse with a worker pool")
	_ = fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: -file is required")
	}

	ctx := logger.WithContext(context.Background(), log)
	workers := 1
	if *concurrent {
		workers = cfg.ParseWorkers
	}
	if err := parseFile(ctx, *file, workers, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Parse failed")
	}
}

func runSummary(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	file := fs.String("file", "", "Path to a message export")
	_ = fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: -file is required")
	}

	ctx := logger.WithContext(context.Background(), log)
	if err := summarizeFile(ctx, *file, cfg.ParseWorkers, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("Summary failed")
	}
}

func readMessages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return pipeline.DecodeMessages(data)
}

func parseFile(ctx context.Context, path string, workers int, w io.Writer) error {
	raws, err := readMessages(path)
	if err != nil {
		return err
	}
	res, err := pipeline.RunBatch(ctx, smsparser.New(), raws, workers)
	if err != nil {
		return err
	}
	return writeJSON(w, res.Records)
}

func summarizeFile(ctx context.Context, path string, workers int, w io.Writer) error {
	raws, err := readMessages(path)
	if err != nil {
		return err
	}
	res, err := pipeline.RunBatch(ctx, smsparser.New(), raws, workers)
	if err != nil {
		return err
	}

	s := analytics.NewSnapshot(res.Records)
	return writeJSON(w, map[string]any{
		"summary":         s.Summary(),
		"by_type":         s.ByType(),
		"by_counterparty": s.ByCounterparty(),
		"daily":           s.Daily(),
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runIngest(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	gcsURI := fs.String("gcs-uri", "", "GCS URI of the message export")
	file := fs.String("file", "", "Local export to ingest instead of a GCS object")
	_ = fs.Parse(os.Args[2:])

	if (*gcsURI == "") == (*file == "") {
		log.Fatal().Msg("Error: exactly one of -gcs-uri or -file is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	deps, cleanup, err := ingestDeps(ctx, cfg, *gcsURI != "")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise ingestion")
	}
	defer cleanup()

	var res *pipeline.IngestResult
	if *gcsURI != "" {
		res, err = pipeline.IngestMessagesFromGCS(ctx, *gcsURI, deps)
	} else {
		var raws []string
		if raws, err = readMessages(*file); err == nil {
			res, err = pipeline.IngestMessages(ctx, "file://"+*file, raws, deps)
		}
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingestion completed: run %s, %d messages, %d rejected, %d records stored.\n",
		res.ParsingRunID, res.Messages, res.Rejected, len(res.Records))
}

// ingestDeps opens the store, the optional publisher and, when needed, GCS.
func ingestDeps(ctx context.Context, cfg *config.Config, withStorage bool) (pipeline.Deps, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return pipeline.Deps{}, cleanup, err
	}
	closers = append(closers, closeStore)

	publisher, closePublisher, err := app.OpenPublisher(cfg)
	if err != nil {
		return pipeline.Deps{}, cleanup, err
	}
	closers = append(closers, closePublisher)

	deps := pipeline.Deps{
		Store:     store,
		Publisher: publisher,
		Parser:    smsparser.New(),
		Workers:   cfg.ParseWorkers,
	}
	if withStorage {
		storage, closeStorage, err := app.OpenStorage(ctx)
		if err != nil {
			return pipeline.Deps{}, cleanup, err
		}
		closers = append(closers, closeStorage)
		deps.Storage = storage
	}
	return deps, cleanup, nil
}

func runUpload(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.Bucket, "GCS bucket name (defaults to GCS_BUCKET)")
	objectName := fs.String("object", "", "GCS object name (defaults to sms-exports/YYYY/MM/DD/<filename>)")
	filePath := fs.String("file", "", "Path to local export")
	_ = fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}
	if *objectName == "" {
		*objectName = gcsuploader.ExportObjectName(time.Now(), filepath.Base(*filePath))
	}

	ctx := logger.WithContext(context.Background(), log)

	client, err := gcsuploader.NewClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS client")
	}
	defer client.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := client.UploadFile(ctx, *bucketName, *objectName, *filePath); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcsuploader.URI(*bucketName, *objectName))
}

func runSyncNotion(log zerolog.Logger, cfg *config.Config) {
	fs := flag.NewFlagSet("sync-notion", flag.ExitOnError)
	startDateStr := fs.String("start-date", "", "Start date in YYYY-MM-DD format (required)")
	endDateStr := fs.String("end-date", "", "End date in YYYY-MM-DD format (required)")
	notionToken := fs.String("notion-token", cfg.NotionToken, "Notion API token (defaults to NOTION_TOKEN)")
	notionDBID := fs.String("notion-db-id", cfg.NotionDBID, "Notion database ID (defaults to NOTION_DB_ID)")
	dryRun := fs.Bool("dry-run", false, "Report what would change without writing")
	_ = fs.Parse(os.Args[2:])

	if *notionToken == "" || *notionDBID == "" {
		log.Fatal().Msg("Error: a Notion token and database id are required")
	}

	startDate, err := civil.ParseDate(*startDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date, expected YYYY-MM-DD")
	}
	endDate, err := civil.ParseDate(*endDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date, expected YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		log.Fatal().Msg("Error: end-date must not be before start-date")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	defer closeStore()

	res, err := notionsync.SyncTransactions(ctx, store, notionsync.NewNotionClient(*notionToken), notionsync.Options{
		DatabaseID: *notionDBID,
		StartDate:  startDate,
		EndDate:    endDate,
		DryRun:     *dryRun,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed: %d created, %d updated, %d failed.\n", res.Created, res.Updated, res.Failed)
}
