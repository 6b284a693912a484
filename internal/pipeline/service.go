package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/logger"
)

// Service runs the orchestrator and records every run in a store.
type Service struct {
	orchestrator *Orchestrator
	store        AssessmentStore
	provider     string
}

// NewService creates a Service. provider is recorded with each run. store may
// be nil, in which case Run only processes.
func NewService(o *Orchestrator, store AssessmentStore, provider string) *Service {
	return &Service{orchestrator: o, store: store, provider: provider}
}

// Orchestrator returns the wrapped orchestrator.
func (s *Service) Orchestrator() *Orchestrator {
	return s.orchestrator
}

// Assess processes source without persisting anything.
func (s *Service) Assess(ctx context.Context, source string) *domain.PipelineResult {
	return s.orchestrator.Process(ctx, source)
}

// Run processes source and persists the outcome when the service has a store.
func (s *Service) Run(ctx context.Context, source string) (*domain.PipelineResult, error) {
	if s.store == nil {
		return s.Assess(ctx, source), nil
	}
	return s.AssessAndStore(ctx, source)
}

// StorageEnabled reports whether results are persisted.
func (s *Service) StorageEnabled() bool {
	return s.store != nil
}

// AssessAndStore processes source and persists the run and its result.
// Failed pipeline results are stored too. The returned error reports a run
// that could not be started or an assessment that could not be inserted.
func (s *Service) AssessAndStore(ctx context.Context, source string) (*domain.PipelineResult, error) {
	if s.store == nil {
		return nil, errors.New("AssessAndStore: no assessment store configured")
	}
	log := logger.FromContext(ctx)
	runID := uuid.NewString()

	if err := s.store.StartRun(ctx, runID, source, s.provider); err != nil {
		return nil, fmt.Errorf("AssessAndStore: starting run: %w", err)
	}

	result := s.orchestrator.ProcessRun(ctx, runID, source)

	if err := s.store.InsertAssessment(ctx, source, result); err != nil {
		if markErr := s.store.MarkRunFailed(ctx, runID, err); markErr != nil {
			log.Error().Err(markErr).Str("run_id", runID).Msg("AssessAndStore: marking run failed")
		}
		return result, fmt.Errorf("AssessAndStore: inserting assessment: %w", err)
	}

	// The assessment is stored. Run status errors are only logged; a returned
	// error would make a job retry insert the assessment again.
	if !result.Success {
		if err := s.store.MarkRunFailed(ctx, runID, errors.New(result.ErrorMessage)); err != nil {
			log.Error().Err(err).Str("run_id", runID).Msg("AssessAndStore: marking run failed")
		}
		return result, nil
	}

	if err := s.store.MarkRunSucceeded(ctx, runID); err != nil {
		log.Error().Err(err).Str("run_id", runID).Msg("AssessAndStore: marking run succeeded")
	}
	return result, nil
}
