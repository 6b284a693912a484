// Package compliance evaluates extracted statement data against the fixed
// battery of lending compliance rules.
package compliance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/neurofin/loan-processor/internal/domain"
)

// Rule names, in evaluation order.
const (
	RuleMinAvgBalance          = "min_avg_balance"
	RuleMaxBounceCount         = "max_bounce_count"
	RuleMinAccountAgeMonths    = "min_account_age_months"
	RuleSuspiciousTxnThreshold = "suspicious_txn_threshold"
	RuleIncomeRegularity       = "income_regularity_threshold"
	RuleMinClosingBalance      = "min_closing_balance"
	RuleMaxOverdraftInstances  = "max_overdraft_instances"
)

// Thresholds holds the configurable limit of every rule.
type Thresholds struct {
	MinAvgBalance          decimal.Decimal
	MaxBounceCount         int
	MinAccountAgeMonths    int
	SuspiciousTxnThreshold decimal.Decimal
	IncomeRegularity       float64 // fraction of months, 0-1
	MinClosingBalance      decimal.Decimal
	MaxOverdraftInstances  int
}

// DefaultThresholds returns the standard lending limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAvgBalance:          decimal.NewFromInt(10000),
		MaxBounceCount:         0,
		MinAccountAgeMonths:    6,
		SuspiciousTxnThreshold: decimal.NewFromInt(1000000),
		IncomeRegularity:       0.8,
		MinClosingBalance:      decimal.NewFromInt(5000),
		MaxOverdraftInstances:  2,
	}
}

// Validate rejects negative limits and regularity fractions outside [0,1].
func (t Thresholds) Validate() error {
	var errs []error
	if t.MinAvgBalance.IsNegative() {
		errs = append(errs, fmt.Errorf("%s must not be negative", RuleMinAvgBalance))
	}
	if t.MaxBounceCount < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", RuleMaxBounceCount))
	}
	if t.MinAccountAgeMonths < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", RuleMinAccountAgeMonths))
	}
	if t.SuspiciousTxnThreshold.IsNegative() {
		errs = append(errs, fmt.Errorf("%s must not be negative", RuleSuspiciousTxnThreshold))
	}
	if t.IncomeRegularity < 0 || t.IncomeRegularity > 1 {
		errs = append(errs, fmt.Errorf("%s must be between 0 and 1", RuleIncomeRegularity))
	}
	if t.MinClosingBalance.IsNegative() {
		errs = append(errs, fmt.Errorf("%s must not be negative", RuleMinClosingBalance))
	}
	if t.MaxOverdraftInstances < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", RuleMaxOverdraftInstances))
	}
	return errors.Join(errs...)
}

// Input is what a rule is evaluated against.
type Input struct {
	Data      *domain.ExtractedData
	Summaries []domain.MonthlySummary
}

func (in Input) transactions() []domain.Transaction {
	if in.Data == nil {
		return nil
	}
	return in.Data.Transactions
}

// Outcome is the result of evaluating one rule.
type Outcome struct {
	Passed    bool
	Actual    string
	Threshold string
}

// Rule is a typed compliance rule descriptor.
type Rule struct {
	Name        string
	Description string
	Severity    domain.Severity
	// Limit is the raw threshold value.
	Limit    string
	evaluate func(Input) Outcome
}

// Check evaluates the rule and returns its compliance check.
func (r Rule) Check(in Input) domain.ComplianceCheck {
	out := r.evaluate(in)
	return domain.ComplianceCheck{
		RuleName:    r.Name,
		Description: r.Description,
		Passed:      out.Passed,
		ActualValue: out.Actual,
		Threshold:   out.Threshold,
		Severity:    r.Severity,
	}
}

// Rules returns the seven rules bound to t, in evaluation order.
func Rules(t Thresholds) []Rule {
	return []Rule{
		{
			Name:        RuleMinAvgBalance,
			Description: "Minimum average monthly balance requirement",
			Severity:    domain.SeverityHigh,
			Limit:       t.MinAvgBalance.String(),
			evaluate:    func(in Input) Outcome { return minAvgBalance(in, t.MinAvgBalance) },
		},
		{
			Name:        RuleMaxBounceCount,
			Description: "Maximum number of bounced checks in statement period",
			Severity:    domain.SeverityHigh,
			Limit:       fmt.Sprint(t.MaxBounceCount),
			evaluate:    func(in Input) Outcome { return maxBounceCount(in, t.MaxBounceCount) },
		},
		{
			Name:        RuleMinAccountAgeMonths,
			Description: "Minimum account history required",
			Severity:    domain.SeverityMedium,
			Limit:       fmt.Sprint(t.MinAccountAgeMonths),
			evaluate:    func(in Input) Outcome { return minAccountAge(in, t.MinAccountAgeMonths) },
		},
		{
			Name:        RuleSuspiciousTxnThreshold,
			Description: "Large transaction requiring additional scrutiny",
			Severity:    domain.SeverityMedium,
			Limit:       t.SuspiciousTxnThreshold.String(),
			evaluate:    func(in Input) Outcome { return suspiciousTxns(in, t.SuspiciousTxnThreshold) },
		},
		{
			Name:        RuleIncomeRegularity,
			Description: "Percentage of months with regular income credit",
			Severity:    domain.SeverityMedium,
			Limit:       fmt.Sprint(t.IncomeRegularity),
			evaluate:    func(in Input) Outcome { return incomeRegularity(in, t.IncomeRegularity) },
		},
		{
			Name:        RuleMinClosingBalance,
			Description: "Minimum closing balance requirement",
			Severity:    domain.SeverityLow,
			Limit:       t.MinClosingBalance.String(),
			evaluate:    func(in Input) Outcome { return minClosingBalance(in, t.MinClosingBalance) },
		},
		{
			Name:        RuleMaxOverdraftInstances,
			Description: "Maximum overdraft occurrences allowed",
			Severity:    domain.SeverityMedium,
			Limit:       fmt.Sprint(t.MaxOverdraftInstances),
			evaluate:    func(in Input) Outcome { return maxOverdrafts(in, t.MaxOverdraftInstances) },
		},
	}
}
