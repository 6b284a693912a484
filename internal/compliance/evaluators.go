package compliance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/neurofin/loan-processor/internal/domain"
)

const notAvailable = "N/A"

var bounceKeywords = []string{"bounce", "dishonour", "return", "insufficient", "unpaid"}

var printer = message.NewPrinter(language.English)

// rupees renders an amount with thousands separators and two decimals.
func rupees(d decimal.Decimal) string {
	return printer.Sprintf("₹%.2f", d.InexactFloat64())
}

// rupeeLimit renders a threshold, dropping decimals for whole amounts.
func rupeeLimit(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprintf("₹%d", d.IntPart())
	}
	return rupees(d)
}

func minAvgBalance(in Input, limit decimal.Decimal) Outcome {
	if len(in.Summaries) == 0 {
		return Outcome{Passed: false, Actual: notAvailable, Threshold: rupeeLimit(limit)}
	}
	total := decimal.Zero
	for _, s := range in.Summaries {
		total = total.Add(s.AvgBalance)
	}
	avg := total.Div(decimal.NewFromInt(int64(len(in.Summaries))))
	return Outcome{
		Passed:    avg.GreaterThanOrEqual(limit),
		Actual:    rupees(avg),
		Threshold: rupeeLimit(limit),
	}
}

// IsBounce reports whether a transaction description indicates a bounced instrument.
func IsBounce(txn domain.Transaction) bool {
	desc := strings.ToLower(txn.Description)
	for _, kw := range bounceKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

func maxBounceCount(in Input, limit int) Outcome {
	count := 0
	for _, txn := range in.transactions() {
		if IsBounce(txn) {
			count++
		}
	}
	return Outcome{
		Passed:    count <= limit,
		Actual:    fmt.Sprint(count),
		Threshold: fmt.Sprint(limit),
	}
}

func minAccountAge(in Input, limit int) Outcome {
	months := len(in.Summaries)
	return Outcome{
		Passed:    months >= limit,
		Actual:    fmt.Sprintf("%d months", months),
		Threshold: fmt.Sprintf("%d months", limit),
	}
}

func suspiciousTxns(in Input, limit decimal.Decimal) Outcome {
	count := 0
	for _, txn := range in.transactions() {
		if txn.Amount.GreaterThanOrEqual(limit) {
			count++
		}
	}
	return Outcome{
		Passed:    count == 0,
		Actual:    fmt.Sprintf("%d transactions >= %s", count, rupeeLimit(limit)),
		Threshold: rupeeLimit(limit),
	}
}

func incomeRegularity(in Input, limit float64) Outcome {
	threshold := fmt.Sprintf("%.0f%%", limit*100)
	if len(in.Summaries) == 0 {
		return Outcome{Passed: false, Actual: notAvailable, Threshold: threshold}
	}
	withSalary := 0
	for _, s := range in.Summaries {
		if s.HasSalary() {
			withSalary++
		}
	}
	ratio := float64(withSalary) / float64(len(in.Summaries))
	return Outcome{
		Passed:    ratio >= limit,
		Actual:    fmt.Sprintf("%.0f%% (%d/%d months)", ratio*100, withSalary, len(in.Summaries)),
		Threshold: threshold,
	}
}

func minClosingBalance(in Input, limit decimal.Decimal) Outcome {
	closing := decimal.Zero
	if in.Data != nil {
		closing = in.Data.ClosingBalance
	}
	return Outcome{
		Passed:    closing.GreaterThanOrEqual(limit),
		Actual:    rupees(closing),
		Threshold: rupeeLimit(limit),
	}
}

func maxOverdrafts(in Input, limit int) Outcome {
	count := 0
	for _, txn := range in.transactions() {
		if txn.Balance != nil && txn.Balance.IsNegative() {
			count++
		}
	}
	return Outcome{
		Passed:    count <= limit,
		Actual:    fmt.Sprint(count),
		Threshold: fmt.Sprint(limit),
	}
}
