package risk

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurofin/loan-processor/internal/compliance"
	"github.com/neurofin/loan-processor/internal/domain"
)

func checks(failed ...string) []domain.ComplianceCheck {
	failedSet := make(map[string]bool, len(failed))
	for _, f := range failed {
		failedSet[f] = true
	}
	var out []domain.ComplianceCheck
	for _, r := range compliance.Rules(compliance.DefaultThresholds()) {
		c := domain.ComplianceCheck{RuleName: r.Name, Severity: r.Severity, Passed: !failedSet[r.Name], ActualValue: "x"}
		out = append(out, c)
	}
	return out
}

func TestFallback_AllPass(t *testing.T) {
	ra := Fallback(checks())

	assert.Equal(t, 0, ra.RiskScore)
	assert.Equal(t, domain.Approve, ra.Recommendation)
	assert.Equal(t, ReasonApprove, ra.RecommendationReason)
	assert.Empty(t, ra.Issues)
	assert.Empty(t, ra.RedFlags)
	assert.Equal(t, domain.ScoreBreakdown{BalanceStability: 20, IncomeRegularity: 25, TransactionPatterns: 20}, ra.ScoreBreakdown)
	assert.Len(t, ra.ComplianceChecks, 7)
}

func TestFallback_PoorApplicant(t *testing.T) {
	ra := Fallback(checks(
		compliance.RuleMinAvgBalance,
		compliance.RuleMaxBounceCount,
		compliance.RuleMinAccountAgeMonths,
		compliance.RuleMinClosingBalance,
	))

	// round(100*4/7 + 40)
	assert.Equal(t, 97, ra.RiskScore)
	assert.Equal(t, domain.Reject, ra.Recommendation)
	assert.Equal(t, ReasonReject, ra.RecommendationReason)
	assert.Equal(t, []string{compliance.RuleMinAvgBalance, compliance.RuleMaxBounceCount}, ra.RedFlags)
	assert.Equal(t, []string{
		"min_avg_balance: x",
		"max_bounce_count: x",
		"min_account_age_months: x",
		"min_closing_balance: x",
	}, ra.Issues)
	assert.Equal(t, float64(5), ra.ScoreBreakdown.BalanceStability)
	assert.Equal(t, float64(-20), ra.ScoreBreakdown.RedFlags)
}

func TestFallback_Bands(t *testing.T) {
	tests := []struct {
		name   string
		failed []string
		score  int
		rec    domain.Recommendation
	}{
		{"one low", []string{compliance.RuleMinClosingBalance}, 14, domain.Approve},
		{"two medium", []string{compliance.RuleMinAccountAgeMonths, compliance.RuleIncomeRegularity}, 29, domain.Approve},
		{"three medium", []string{compliance.RuleMinAccountAgeMonths, compliance.RuleIncomeRegularity, compliance.RuleMaxOverdraftInstances}, 43, domain.Review},
		{"one high", []string{compliance.RuleMaxBounceCount}, 34, domain.Review},
		{"one high one medium", []string{compliance.RuleMaxBounceCount, compliance.RuleMinAccountAgeMonths}, 49, domain.Review},
		{"two high", []string{compliance.RuleMinAvgBalance, compliance.RuleMaxBounceCount}, 69, domain.Reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra := Fallback(checks(tt.failed...))
			assert.Equal(t, tt.score, ra.RiskScore)
			assert.Equal(t, tt.rec, ra.Recommendation)
		})
	}
}

func TestFallback_Clamped(t *testing.T) {
	ra := Fallback(checks(
		compliance.RuleMinAvgBalance,
		compliance.RuleMaxBounceCount,
		compliance.RuleMinAccountAgeMonths,
		compliance.RuleSuspiciousTxnThreshold,
		compliance.RuleIncomeRegularity,
		compliance.RuleMinClosingBalance,
		compliance.RuleMaxOverdraftInstances,
	))
	assert.Equal(t, 100, ra.RiskScore)
	assert.Equal(t, domain.Reject, ra.Recommendation)
}

func TestFallback_NoChecks(t *testing.T) {
	ra := Fallback(nil)
	assert.Equal(t, 100, ra.RiskScore)
	assert.Equal(t, domain.Reject, ra.Recommendation)
	assert.Equal(t, ReasonNoData, ra.RecommendationReason)
	assert.NotNil(t, ra.Issues)
}

type stubValidator struct {
	ra  *domain.RiskAssessment
	err error
	got Input
}

func (s *stubValidator) Validate(_ context.Context, in Input) (*domain.RiskAssessment, error) {
	s.got = in
	return s.ra, s.err
}

func TestOracleScorer_Normalizes(t *testing.T) {
	v := &stubValidator{ra: &domain.RiskAssessment{
		RiskScore:        140,
		Recommendation:   "MAYBE",
		ComplianceChecks: []domain.ComplianceCheck{{RuleName: "made_up"}},
	}}
	in := Input{Checks: checks(compliance.RuleMinClosingBalance)}

	ra, err := OracleScorer{Validator: v}.Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 100, ra.RiskScore)
	assert.Equal(t, domain.Reject, ra.Recommendation)
	assert.Equal(t, ReasonReject, ra.RecommendationReason)
	assert.Equal(t, in.Checks, ra.ComplianceChecks)
	assert.Equal(t, in.Checks, v.got.Checks)
	assert.NotNil(t, ra.Issues)
}

func TestOracleScorer_NilValidator(t *testing.T) {
	_, err := OracleScorer{}.Score(context.Background(), Input{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWithFallback(t *testing.T) {
	in := Input{
		Data:   &domain.ExtractedData{ClosingBalance: decimal.NewFromInt(1)},
		Checks: checks(),
	}

	t.Run("primary succeeds", func(t *testing.T) {
		v := &stubValidator{ra: &domain.RiskAssessment{RiskScore: 42, Recommendation: domain.Review, RecommendationReason: "oracle"}}
		ra, err := WithFallback(OracleScorer{Validator: v}, RuleScorer{}).Score(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, 42, ra.RiskScore)
		assert.Equal(t, "oracle", ra.RecommendationReason)
	})

	t.Run("primary errors", func(t *testing.T) {
		v := &stubValidator{err: errors.New("quota exceeded")}
		ra, err := WithFallback(OracleScorer{Validator: v}, RuleScorer{}).Score(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, 0, ra.RiskScore)
		assert.Equal(t, ReasonApprove, ra.RecommendationReason)
	})

	t.Run("primary unavailable", func(t *testing.T) {
		v := &stubValidator{err: ErrUnavailable}
		ra, err := WithFallback(OracleScorer{Validator: v}, RuleScorer{}).Score(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, domain.Approve, ra.Recommendation)
	})
}
