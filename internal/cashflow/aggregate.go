// Package cashflow groups statement transactions into calendar-month summaries.
package cashflow

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/neurofin/loan-processor/internal/domain"
)

// SalaryMinAmount is the exclusive lower bound for a salary credit.
var SalaryMinAmount = decimal.NewFromInt(10000)

// salaryKeywords are matched case-insensitively as substrings of the description.
var salaryKeywords = []string{
	"salary", "sal", "payroll", "wages", "neft", "compensation", "pay", "income",
}

// SalaryPolicy picks the salary credit when a month has several candidates.
type SalaryPolicy int

const (
	// LastSalaryWins keeps the last candidate in iteration order.
	LastSalaryWins SalaryPolicy = iota
	// LargestSalaryWins keeps the largest candidate.
	LargestSalaryWins
)

// Aggregator builds monthly summaries. The zero value uses LastSalaryWins.
type Aggregator struct {
	Policy SalaryPolicy
}

// Aggregate summarizes txns with the default salary policy.
func Aggregate(txns []domain.Transaction) []domain.MonthlySummary {
	return Aggregator{}.Aggregate(txns)
}

type bucket struct {
	credits  decimal.Decimal
	debits   decimal.Decimal
	balances []decimal.Decimal
	salary   *decimal.Decimal
}

// Aggregate groups txns by YYYY-MM and returns one summary per month in
// ascending month order. Transactions without a parseable month are skipped.
func (a Aggregator) Aggregate(txns []domain.Transaction) []domain.MonthlySummary {
	buckets := make(map[string]*bucket)

	for _, txn := range txns {
		month, ok := txn.MonthKey()
		if !ok {
			continue
		}
		b, exists := buckets[month]
		if !exists {
			b = &bucket{credits: decimal.Zero, debits: decimal.Zero}
			buckets[month] = b
		}

		if txn.Type == domain.Credit {
			b.credits = b.credits.Add(txn.Amount)
			if IsSalary(txn) {
				a.recordSalary(b, txn.Amount)
			}
		} else {
			b.debits = b.debits.Add(txn.Amount)
		}

		if txn.Balance != nil {
			b.balances = append(b.balances, *txn.Balance)
		}
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	summaries := make([]domain.MonthlySummary, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		summaries = append(summaries, domain.MonthlySummary{
			Month:        m,
			TotalCredits: b.credits,
			TotalDebits:  b.debits,
			NetFlow:      b.credits.Sub(b.debits),
			AvgBalance:   mean(b.balances),
			SalaryCredit: b.salary,
		})
	}
	return summaries
}

func (a Aggregator) recordSalary(b *bucket, amount decimal.Decimal) {
	if a.Policy == LargestSalaryWins && b.salary != nil && b.salary.GreaterThanOrEqual(amount) {
		return
	}
	v := amount
	b.salary = &v
}

// IsSalary reports whether txn looks like a salary credit.
func IsSalary(txn domain.Transaction) bool {
	if txn.Type != domain.Credit || !txn.Amount.GreaterThan(SalaryMinAmount) {
		return false
	}
	desc := strings.ToLower(txn.Description)
	for _, kw := range salaryKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// mean returns 0 for an empty slice.
func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values))))
}
