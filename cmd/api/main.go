package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/neurofin/loan-processor/internal/api"
	"github.com/neurofin/loan-processor/internal/api/handlers"
	"github.com/neurofin/loan-processor/internal/app"
	"github.com/neurofin/loan-processor/internal/config"
	"github.com/neurofin/loan-processor/internal/jobs/inmemory"
	"github.com/neurofin/loan-processor/internal/logger"
)

func main() {
	cfg := config.FromEnv()

	var (
		port    = flag.String("port", "8080", "HTTP server port")
		workers = flag.Int("workers", 5, "Concurrent assessment workers")
		store   = flag.Bool("store", cfg.StorageEnabled(), "Persist assessments to BigQuery (needs GOOGLE_CLOUD_PROJECT)")
		origins = flag.String("cors-origins", "*", "Comma-separated origins allowed by CORS")
	)
	flag.StringVar(&cfg.Provider, "provider", cfg.Provider, "Document oracle: keyword or gemini")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "Gemini model name")
	flag.StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "Compliance rules YAML file")
	flag.Parse()

	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, JSON: true, Out: os.Stdout})
	ctx := logger.WithContext(context.Background(), log)

	a, err := app.New(ctx, cfg, app.Options{Store: *store})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	defer a.Close()

	var reader handlers.AssessmentReader
	if a.Repo != nil {
		if err := a.Repo.EnsureTables(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare BigQuery tables")
		}
		reader = a.Repo
	} else {
		log.Warn().Msg("No assessment storage configured - results will not be persisted")
	}
	if cfg.Bucket == "" {
		log.Warn().Msg("GCS_BUCKET not set - assessments accept gs:// sources from any bucket")
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(inmemory.Options{BufferSize: 100, Workers: *workers}, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if err := jobQueue.Start(workerCtx, app.JobHandler(a.Service)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	handler := api.NewRouter(api.Deps{
		Runner:    a.Service,
		Reader:    reader,
		Publisher: jobQueue,
		Jobs:      jobStore,
		Engine:    a.Engine(),
		Bucket:    cfg.Bucket,
		Log:       log,

		AllowedOrigins: strings.Split(*origins, ","),
	})

	// Synchronous assessments call the oracle several times, so writes get
	// a longer timeout than reads.
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Str("provider", cfg.Provider).Msg("Starting API server")
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

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
