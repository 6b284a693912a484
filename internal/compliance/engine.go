package compliance

import "github.com/neurofin/loan-processor/internal/domain"

// Engine evaluates a fixed, ordered rule set.
type Engine struct {
	thresholds Thresholds
	rules      []Rule
}

// NewEngine binds the rule set to t.
func NewEngine(t Thresholds) *Engine {
	return &Engine{thresholds: t, rules: Rules(t)}
}

// Thresholds returns the limits the engine was built with.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Rules returns the engine's rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate runs every rule and returns one check per rule, in rule order.
// Missing data yields failing checks, never an error.
func (e *Engine) Evaluate(data *domain.ExtractedData, summaries []domain.MonthlySummary) []domain.ComplianceCheck {
	in := Input{Data: data, Summaries: summaries}
	checks := make([]domain.ComplianceCheck, 0, len(e.rules))
	for _, r := range e.rules {
		checks = append(checks, r.Check(in))
	}
	return checks
}
