package domain

import "fmt"

// Severity ranks how serious a failed compliance check is.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Recommendation is the lending decision band.
type Recommendation string

const (
	Approve Recommendation = "APPROVE"
	Review  Recommendation = "REVIEW"
	Reject  Recommendation = "REJECT"
)

// ParseRecommendation maps a wire value to a Recommendation.
func ParseRecommendation(s string) (Recommendation, error) {
	switch r := Recommendation(s); r {
	case Approve, Review, Reject:
		return r, nil
	}
	return "", fmt.Errorf("unknown recommendation %q", s)
}

// Risk band limits, inclusive.
const (
	ApproveMaxScore = 30
	ReviewMaxScore  = 60
)

// RecommendationForScore returns the band a risk score falls into.
func RecommendationForScore(score int) Recommendation {
	switch {
	case score <= ApproveMaxScore:
		return Approve
	case score <= ReviewMaxScore:
		return Review
	default:
		return Reject
	}
}

// ComplianceCheck is the outcome of a single compliance rule.
type ComplianceCheck struct {
	RuleName    string   `json:"rule_name"`
	Description string   `json:"rule_description"`
	Passed      bool     `json:"passed"`
	ActualValue string   `json:"actual_value"`
	Threshold   string   `json:"threshold"`
	Severity    Severity `json:"severity"`
}

// ScoreBreakdown splits the risk score into explanatory categories.
// RedFlags is zero or negative.
type ScoreBreakdown struct {
	BalanceStability    float64 `json:"balance_stability"`
	IncomeRegularity    float64 `json:"income_regularity"`
	TransactionPatterns float64 `json:"transaction_patterns"`
	RedFlags            float64 `json:"red_flags"`
}

// RiskAssessment is the scored outcome of validation.
type RiskAssessment struct {
	RiskScore            int               `json:"risk_score"` // 0-100
	ScoreBreakdown       ScoreBreakdown    `json:"score_breakdown"`
	ComplianceChecks     []ComplianceCheck `json:"compliance_checks"`
	Issues               []string          `json:"issues"`
	RedFlags             []string          `json:"red_flags"`
	Recommendation       Recommendation    `json:"recommendation"`
	RecommendationReason string            `json:"recommendation_reason"`
}
