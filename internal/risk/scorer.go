// Package risk turns compliance checks into a scored lending recommendation.
package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/neurofin/loan-processor/internal/compliance"
	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/logger"
)

// ErrUnavailable is returned by a scorer or oracle that cannot score at all.
var ErrUnavailable = errors.New("risk scorer unavailable")

// Input carries everything a scorer may look at. Checks is the list computed
// by the compliance engine and must be passed through unchanged.
type Input struct {
	Data       *domain.ExtractedData
	Summaries  []domain.MonthlySummary
	Thresholds compliance.Thresholds
	Rules      []compliance.Rule
	Checks     []domain.ComplianceCheck
}

// RiskScorer produces a RiskAssessment from compliance results.
type RiskScorer interface {
	Score(ctx context.Context, in Input) (*domain.RiskAssessment, error)
}

// Validator is the validation capability of a document oracle.
type Validator interface {
	Validate(ctx context.Context, in Input) (*domain.RiskAssessment, error)
}

// OracleScorer delegates scoring to an external validator and normalizes
// what it returns.
type OracleScorer struct {
	Validator Validator
}

// Score implements RiskScorer.
func (s OracleScorer) Score(ctx context.Context, in Input) (*domain.RiskAssessment, error) {
	if s.Validator == nil {
		return nil, ErrUnavailable
	}
	ra, err := s.Validator.Validate(ctx, in)
	if err != nil {
		return nil, err
	}
	if ra == nil {
		return nil, fmt.Errorf("validator returned no assessment: %w", ErrUnavailable)
	}
	return normalize(*ra, in.Checks), nil
}

// normalize clamps the score, repairs the recommendation and replaces the
// checks with the engine's own list.
func normalize(ra domain.RiskAssessment, checks []domain.ComplianceCheck) *domain.RiskAssessment {
	ra.RiskScore = clamp(ra.RiskScore)
	if _, err := domain.ParseRecommendation(string(ra.Recommendation)); err != nil {
		ra.Recommendation = domain.RecommendationForScore(ra.RiskScore)
	}
	if ra.RecommendationReason == "" {
		ra.RecommendationReason = cannedReason(ra.Recommendation)
	}
	ra.ComplianceChecks = append([]domain.ComplianceCheck(nil), checks...)
	if ra.Issues == nil {
		ra.Issues = []string{}
	}
	if ra.RedFlags == nil {
		ra.RedFlags = []string{}
	}
	return &ra
}

func clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

type fallbackScorer struct {
	primary  RiskScorer
	fallback RiskScorer
}

// WithFallback returns a scorer that uses fallback whenever primary fails.
func WithFallback(primary, fallback RiskScorer) RiskScorer {
	return &fallbackScorer{primary: primary, fallback: fallback}
}

func (s *fallbackScorer) Score(ctx context.Context, in Input) (*domain.RiskAssessment, error) {
	ra, err := s.primary.Score(ctx, in)
	if err == nil && ra != nil {
		return ra, nil
	}
	log := logger.FromContext(ctx)
	if errors.Is(err, ErrUnavailable) {
		log.Debug().Err(err).Msg("primary scorer unavailable, using rule scorer")
	} else {
		log.Warn().Err(err).Msg("primary scorer failed, using rule scorer")
	}
	return s.fallback.Score(ctx, in)
}
