package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/logger"
	"github.com/neurofin/loan-processor/internal/risk"
)

// Issue recorded when the parser produced no text.
const issueNoText = "No text extracted from document"

// runState is the working state of one Process call.
type runState struct {
	runID string
	path  string
	state domain.State

	parsed         *domain.ParsedDocument
	classification *domain.ClassificationResult
	extracted      *domain.ExtractedData
	summaries      []domain.MonthlySummary
	assessment     *domain.RiskAssessment

	// err is the first stage failure, if any.
	err error
}

func (rs *runState) fail(ctx context.Context, stage Stage, err error) {
	log := logger.FromContext(ctx)
	log.Warn().Err(err).Str("stage", string(stage)).Msg("stage failed")
	if rs.err == nil {
		rs.err = stageErr(stage, err)
	}
}

// Start -> Parsed, or Done when the parser fails.
func (o *Orchestrator) parse(ctx context.Context, rs *runState) domain.State {
	doc, err := o.parser.Parse(ctx, rs.path)
	if err == nil && doc == nil {
		err = errors.New("parser returned no document")
	}
	if err != nil {
		rs.fail(ctx, StageParse, err)
		return domain.StateDone
	}
	rs.parsed = doc
	log := logger.FromContext(ctx)
	log.Debug().Int("pages", doc.PageCount()).Int("tables", len(doc.Tables)).Msg("document parsed")
	return domain.StateParsed
}

// Parsed -> Classified. Classifier failures become a forced-reject
// classification instead of aborting.
func (o *Orchestrator) classify(ctx context.Context, rs *runState) domain.State {
	if strings.TrimSpace(rs.parsed.RawText) == "" {
		c := domain.RejectedClassification(issueNoText)
		rs.classification = &c
		rs.fail(ctx, StageClassify, errors.New(issueNoText))
		return domain.StateClassified
	}

	c, err := o.oracle.Classify(ctx, rs.parsed.RawText)
	if err == nil && c == nil {
		err = errors.New("classifier returned no result")
	}
	if err != nil {
		rejected := domain.RejectedClassification(fmt.Sprintf("Classification failed: %v", err))
		rs.classification = &rejected
		rs.fail(ctx, StageClassify, err)
		return domain.StateClassified
	}

	normalized := normalizeClassification(*c)
	rs.classification = &normalized
	log := logger.FromContext(ctx)
	log.Debug().
		Str("document_type", string(normalized.DocumentType)).
		Float64("quality_score", normalized.QualityScore).
		Bool("can_proceed", normalized.CanProceed).
		Msg("document classified")
	return domain.StateClassified
}

func normalizeClassification(c domain.ClassificationResult) domain.ClassificationResult {
	if c.QualityScore < 0 {
		c.QualityScore = 0
	}
	if c.QualityScore > 10 {
		c.QualityScore = 10
	}
	if _, err := domain.ParseDocumentType(string(c.DocumentType)); err != nil {
		c.DocumentType = domain.Other
	}
	if c.Issues == nil {
		c.Issues = []string{}
	}
	return c
}

// Classified -> Extracted for readable bank statements, Stopped otherwise.
func (o *Orchestrator) route(ctx context.Context, rs *runState) domain.State {
	c := rs.classification
	if c.Proceeds() {
		return domain.StateExtracted
	}
	reason := "Document quality too low to proceed"
	if c.CanProceed {
		reason = fmt.Sprintf("Unsupported document type: %s", c.DocumentType)
	}
	if rs.err == nil {
		rs.err = fmt.Errorf("%w: %s", ErrLowQualityOrUnsupportedType, reason)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("reason", reason).Msg("processing stopped after classification")
	return domain.StateStopped
}

// Extracted -> Validated, or Done when extraction fails.
func (o *Orchestrator) extractAndValidate(ctx context.Context, rs *runState) domain.State {
	data, err := o.oracle.Extract(ctx, rs.parsed.RawText, rs.parsed.Tables)
	if err != nil {
		rs.fail(ctx, StageExtract, err)
		return domain.StateDone
	}
	if data == nil {
		rs.fail(ctx, StageExtract, ErrNoDataExtracted)
		return domain.StateDone
	}
	data.Transactions = validTransactions(ctx, data.Transactions)
	rs.extracted = data
	rs.summaries = o.aggregator.Aggregate(data.Transactions)

	checks := o.engine.Evaluate(data, rs.summaries)
	ra, err := o.scorer.Score(ctx, risk.Input{
		Data:       data,
		Summaries:  rs.summaries,
		Thresholds: o.engine.Thresholds(),
		Rules:      o.engine.Rules(),
		Checks:     checks,
	})
	if err == nil && ra == nil {
		err = errors.New("scorer returned no assessment")
	}
	if err != nil {
		rs.fail(ctx, StageValidate, err)
		return domain.StateValidated
	}
	rs.assessment = ra
	return domain.StateValidated
}

// Validated -> Done.
func (o *Orchestrator) finish(_ context.Context, _ *runState) domain.State {
	return domain.StateDone
}

// validTransactions drops entries that break the transaction invariants.
func validTransactions(ctx context.Context, txns []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			log := logger.FromContext(ctx)
			log.Warn().Err(err).Str("date", t.Date).Msg("dropping transaction")
			continue
		}
		out = append(out, t)
	}
	return out
}
