package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Francisnampellah/MeMoney-sub000/internal/app"
	"github.com/Francisnampellah/MeMoney-sub000/internal/config"
	"github.com/Francisnampellah/MeMoney-sub000/internal/events"
	"github.com/Francisnampellah/MeMoney-sub000/internal/jobs"
	"github.com/Francisnampellah/MeMoney-sub000/internal/jobs/inmemory"
	"github.com/Francisnampellah/MeMoney-sub000/internal/logger"
	"github.com/Francisnampellah/MeMoney-sub000/internal/pipeline"
	"github.com/Francisnampellah/MeMoney-sub000/internal/smsparser"
)

// The worker takes ingestion requests from NATS instead of HTTP, so several
// instances can share one request subject.
func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Invalid configuration")
	}

	requestSubject := flag.String("subject", "ingest.requests", "NATS subject carrying {\"gcs_uri\": ...} requests")
	queueGroup := flag.Bool("queue-group", true, "Share requests with other workers instead of every worker getting each one")
	workers := flag.Int("job-workers", 2, "concurrent ingestion jobs")
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)
	if cfg.NATSURL == "" {
		log.Fatal().Msg("NATS_URL is required for the worker")
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

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

	publisher, nc, err := events.Connect(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer nc.Drain()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore, inmemory.WithWorkers(*workers))

	handler := app.IngestJobHandler(pipeline.Deps{
		Store:     store,
		Storage:   storage,
		Publisher: publisher,
		Parser:    smsparser.New(),
		Workers:   cfg.ParseWorkers,
	})
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	enqueue := func(ctx context.Context, req events.IngestRequest) error {
		job := &jobs.IngestJob{GCSURI: req.GCSURI}
		if err := jobQueue.PublishIngest(ctx, job); err != nil {
			return err
		}
		l := logger.FromContext(ctx)
		l.Info().Str("job_id", job.JobID).Str("gcs_uri", job.GCSURI).Msg("Ingestion job enqueued")
		return nil
	}

	var conn events.Subscriber = nc
	if *queueGroup {
		conn = queueSubscriber{nc: nc, group: "ingest-workers"}
	}
	if _, err := events.SubscribeIngestRequests(ctx, conn, *requestSubject, enqueue); err != nil {
		log.Fatal().Err(err).Msg("Failed to subscribe to ingest requests")
	}

	log.Info().Str("subject", *requestSubject).Msg("Worker started, waiting for ingest requests")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	cancel()

	log.Info().Msg("Worker exited")
}

// queueSubscriber spreads requests across a NATS queue group.
type queueSubscriber struct {
	nc interface {
		QueueSubscribe(subject, queue string, cb nats.MsgHandler) (*nats.Subscription, error)
	}
	group string
}

func (q queueSubscriber) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	return q.nc.QueueSubscribe(subject, q.group, cb)
}
