package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Francisnampellah/MeMoney-sub000/internal/api"
	"github.com/Francisnampellah/MeMoney-sub000/internal/app"
	"github.com/Francisnampellah/MeMoney-sub000/internal/config"
	"github.com/Francisnampellah/MeMoney-sub000/internal/jobs/inmemory"
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

	port := flag.String("port", cfg.Port, "HTTP server port")
	jobWorkers := flag.Int("job-workers", 2, "concurrent ingestion jobs")
	flag.Parse()

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("Failed to open transaction store")
	}
	defer closeStore()

	publisher, closePublisher, err := app.OpenPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer closePublisher()

	deps := pipeline.Deps{
		Store:     store,
		Publisher: publisher,
		Parser:    smsparser.New(),
		Workers:   cfg.ParseWorkers,
	}

	if cfg.Bucket != "" {
		storage, closeStorage, err := app.OpenStorage(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS client")
		}
		defer closeStorage()
		deps.Storage = storage
	} else {
		log.Warn().Msg("No GCS bucket configured - batch ingestion jobs will fail")
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore, inmemory.WithWorkers(*jobWorkers))

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, app.IngestJobHandler(deps)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	server := &http.Server{
		Addr: ":" + *port,
		Handler: api.NewRouter(api.Deps{
			Parser:    deps.Parser,
			Workers:   cfg.ParseWorkers,
			Store:     store,
			Publisher: jobQueue,
			Jobs:      jobStore,
			Log:       log,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("store", cfg.Store).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
