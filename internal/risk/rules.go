package risk

import (
	"context"
	"fmt"
	"math"

	"github.com/neurofin/loan-processor/internal/compliance"
	"github.com/neurofin/loan-processor/internal/domain"
)

// Canned recommendation reasons.
const (
	ReasonApprove = "All major compliance checks passed."
	ReasonReview  = "Some compliance concerns require manual review."
	ReasonReject  = "Multiple compliance failures detected."
	ReasonNoData  = "No compliance data available to assess risk."
)

// HighSeverityPenalty is added to the score for each failed high-severity check.
const HighSeverityPenalty = 20

func cannedReason(r domain.Recommendation) string {
	switch r {
	case domain.Approve:
		return ReasonApprove
	case domain.Review:
		return ReasonReview
	default:
		return ReasonReject
	}
}

// RuleScorer scores deterministically from pass/fail counts. It never fails.
type RuleScorer struct{}

// Score implements RiskScorer.
func (RuleScorer) Score(_ context.Context, in Input) (*domain.RiskAssessment, error) {
	ra := Fallback(in.Checks)
	return &ra, nil
}

// Fallback computes the rule-based assessment for checks.
func Fallback(checks []domain.ComplianceCheck) domain.RiskAssessment {
	ra := domain.RiskAssessment{
		ComplianceChecks: append([]domain.ComplianceCheck{}, checks...),
		Issues:           []string{},
		RedFlags:         []string{},
	}

	if len(checks) == 0 {
		ra.RiskScore = 100
		ra.Recommendation = domain.Reject
		ra.RecommendationReason = ReasonNoData
		return ra
	}

	passed, highFailed := 0, 0
	balanceOK, incomeOK := false, false
	for _, c := range checks {
		if c.Passed {
			passed++
			switch c.RuleName {
			case compliance.RuleMinAvgBalance:
				balanceOK = true
			case compliance.RuleIncomeRegularity:
				incomeOK = true
			}
			continue
		}
		ra.Issues = append(ra.Issues, fmt.Sprintf("%s: %s", c.RuleName, c.ActualValue))
		if c.Severity == domain.SeverityHigh {
			highFailed++
			ra.RedFlags = append(ra.RedFlags, c.RuleName)
		}
	}

	base := 100 - float64(passed)/float64(len(checks))*100
	ra.RiskScore = clamp(int(math.Round(base + float64(HighSeverityPenalty*highFailed))))
	ra.Recommendation = domain.RecommendationForScore(ra.RiskScore)
	ra.RecommendationReason = cannedReason(ra.Recommendation)
	ra.ScoreBreakdown = domain.ScoreBreakdown{
		BalanceStability:    pick(balanceOK, 20, 5),
		IncomeRegularity:    pick(incomeOK, 25, 10),
		TransactionPatterns: 20,
		RedFlags:            -10 * float64(highFailed),
	}
	return ra
}

func pick(ok bool, yes, no float64) float64 {
	if ok {
		return yes
	}
	return no
}
