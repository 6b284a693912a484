package pipeline

import (
	"context"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/risk"
)

// DocumentParser turns a source document into text and tables.
type DocumentParser interface {
	Parse(ctx context.Context, path string) (*domain.ParsedDocument, error)
}

// DocumentOracle is the classify/extract/validate capability of an external
// inference backend.
type DocumentOracle interface {
	Classify(ctx context.Context, rawText string) (*domain.ClassificationResult, error)
	Extract(ctx context.Context, rawText string, tables []domain.Table) (*domain.ExtractedData, error)
	Validate(ctx context.Context, in risk.Input) (*domain.RiskAssessment, error)
}

// AssessmentStore persists runs and their results.
type AssessmentStore interface {
	StartRun(ctx context.Context, runID, source, provider string) error
	MarkRunFailed(ctx context.Context, runID string, runErr error) error
	MarkRunSucceeded(ctx context.Context, runID string) error
	InsertAssessment(ctx context.Context, source string, result *domain.PipelineResult) error
}
