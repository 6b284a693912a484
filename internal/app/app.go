// Package app assembles the pipeline from process configuration. Both
// binaries build through it so they share one provider and storage setup.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neurofin/loan-processor/internal/compliance"
	"github.com/neurofin/loan-processor/internal/config"
	"github.com/neurofin/loan-processor/internal/gcsuploader"
	infrabq "github.com/neurofin/loan-processor/internal/infra/bigquery"
	"github.com/neurofin/loan-processor/internal/jobs"
	"github.com/neurofin/loan-processor/internal/logger"
	"github.com/neurofin/loan-processor/internal/oracle/gemini"
	"github.com/neurofin/loan-processor/internal/oracle/keyword"
	"github.com/neurofin/loan-processor/internal/parser"
	"github.com/neurofin/loan-processor/internal/pipeline"
)

// App is a fully wired pipeline.
type App struct {
	Config       config.Config
	Orchestrator *pipeline.Orchestrator
	Service      *pipeline.Service
	// Repo is nil unless storage was requested and configured.
	Repo *infrabq.AssessmentRepository
}

// Options selects optional parts of the wiring.
type Options struct {
	// Store persists every run to BigQuery. It requires a project ID.
	Store bool
}

// NewOracle returns the oracle for cfg.Provider and, when the provider can
// read PDFs, a transcriber for the parser.
func NewOracle(ctx context.Context, cfg config.Config) (pipeline.DocumentOracle, parser.Transcriber, error) {
	switch cfg.Provider {
	case config.ProviderKeyword:
		return keyword.New(), nil, nil
	case config.ProviderGemini:
		o, err := gemini.New(ctx, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return o, o, nil
	}
	return nil, nil, cfg.Validate()
}

// New wires an App from cfg.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	thresholds, err := config.LoadThresholds(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	oracle, transcriber, err := NewOracle(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating %s oracle: %w", cfg.Provider, err)
	}

	docParser := parser.New(gcsuploader.NewGCSStorageService(nil), transcriber)
	orch := pipeline.New(docParser, oracle, pipeline.WithThresholds(thresholds))

	a := &App{Config: cfg, Orchestrator: orch}

	var store pipeline.AssessmentStore
	if opts.Store {
		if !cfg.StorageEnabled() {
			return nil, errors.New("storage requested but GOOGLE_CLOUD_PROJECT is not set")
		}
		repo, err := infrabq.NewAssessmentRepository(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			return nil, err
		}
		a.Repo = repo
		store = repo
	}
	a.Service = pipeline.NewService(orch, store, cfg.Provider)

	log := logger.FromContext(ctx)
	log.Info().
		Str("provider", cfg.Provider).
		Bool("store", a.Repo != nil).
		Str("rules_file", cfg.RulesFile).
		Msg("pipeline ready")
	return a, nil
}

// Engine returns the compliance engine the pipeline evaluates with.
func (a *App) Engine() *compliance.Engine {
	return a.Orchestrator.Engine()
}

// Close releases the storage client, if any.
func (a *App) Close() error {
	if a.Repo != nil {
		return a.Repo.Close()
	}
	return nil
}

// JobHandler runs AssessDocumentJobs through the service. Pipeline failures
// are results, not job errors; only storage errors trigger a retry.
func JobHandler(svc *pipeline.Service) jobs.JobHandler {
	return func(ctx context.Context, job *jobs.AssessDocumentJob) error {
		log := logger.FromContext(ctx).With().Str("job_id", job.JobID).Str("source", job.Source).Logger()
		ctx = logger.WithContext(ctx, log)

		result, err := svc.Run(ctx, job.Source)
		if result != nil {
			score := result.RiskScore
			job.RunID = result.RunID
			job.Recommendation = string(result.Recommendation)
			job.RiskScore = &score
		}
		if err != nil {
			return err
		}
		if !result.Success {
			log.Warn().Str("run_id", result.RunID).Str("error", result.ErrorMessage).Msg("assessment finished without success")
		}
		return nil
	}
}
