// Package pipeline routes a loan document through parse, classify, extract
// and validate, and assembles the final result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neurofin/loan-processor/internal/cashflow"
	"github.com/neurofin/loan-processor/internal/compliance"
	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/logger"
	"github.com/neurofin/loan-processor/internal/risk"
)

// Orchestrator runs documents through the processing state machine.
// Each Process call owns its own state, so one Orchestrator may serve
// concurrent callers.
type Orchestrator struct {
	parser     DocumentParser
	oracle     DocumentOracle
	engine     *compliance.Engine
	aggregator cashflow.Aggregator
	scorer     risk.RiskScorer
	now        func() time.Time
	steps      map[domain.State]step
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithThresholds sets the compliance rule thresholds.
func WithThresholds(t compliance.Thresholds) Option {
	return func(o *Orchestrator) { o.engine = compliance.NewEngine(t) }
}

// WithScorer replaces the default oracle-with-rule-fallback scorer.
func WithScorer(s risk.RiskScorer) Option {
	return func(o *Orchestrator) { o.scorer = s }
}

// WithSalaryPolicy sets how a month's salary credit is chosen.
func WithSalaryPolicy(p cashflow.SalaryPolicy) Option {
	return func(o *Orchestrator) { o.aggregator.Policy = p }
}

// WithClock overrides the time source used for processing durations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an Orchestrator around a parser and an oracle.
func New(parser DocumentParser, oracle DocumentOracle, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		parser: parser,
		oracle: oracle,
		engine: compliance.NewEngine(compliance.DefaultThresholds()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.scorer == nil {
		o.scorer = risk.WithFallback(risk.OracleScorer{Validator: oracle}, risk.RuleScorer{})
	}
	o.steps = o.transitions()
	return o
}

// Engine returns the compliance engine in use.
func (o *Orchestrator) Engine() *compliance.Engine {
	return o.engine
}

// Process runs the document at path under a fresh run ID.
func (o *Orchestrator) Process(ctx context.Context, path string) *domain.PipelineResult {
	return o.ProcessRun(ctx, uuid.NewString(), path)
}

// ProcessRun runs the document at path. It never returns nil and never
// panics: every failure becomes a result with Success false.
func (o *Orchestrator) ProcessRun(ctx context.Context, runID, path string) (result *domain.PipelineResult) {
	start := o.now()
	log := logger.WithRun(logger.FromContext(ctx), runID, path)
	ctx = logger.WithContext(ctx, log)

	rs := &runState{runID: runID, path: path, state: domain.StateStart}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("state", string(rs.state)).Msg("pipeline aborted")
			result = crashedResult(fmt.Errorf("%v", r))
		}
		result.RunID = runID
		result.ProcessingTimeSeconds = o.now().Sub(start).Seconds()
	}()

	for !rs.state.Terminal() {
		step, ok := o.steps[rs.state]
		if !ok {
			panic(fmt.Sprintf("no transition from state %q", rs.state))
		}
		next := step(ctx, rs)
		log.Debug().Str("from", string(rs.state)).Str("to", string(next)).Msg("state transition")
		rs.state = next
	}

	result = rs.result()
	log.Info().
		Bool("success", result.Success).
		Int("risk_score", result.RiskScore).
		Str("recommendation", string(result.Recommendation)).
		Msg("document processed")
	return result
}

type step func(ctx context.Context, rs *runState) domain.State

func (o *Orchestrator) transitions() map[domain.State]step {
	return map[domain.State]step{
		domain.StateStart:      o.parse,
		domain.StateParsed:     o.classify,
		domain.StateClassified: o.route,
		domain.StateExtracted:  o.extractAndValidate,
		domain.StateValidated:  o.finish,
	}
}
