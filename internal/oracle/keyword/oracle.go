// Package keyword is an offline document oracle: classification by keyword
// and extraction by pattern matching. It never scores; validation always
// falls through to the rule scorer.
package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/logger"
	"github.com/neurofin/loan-processor/internal/risk"
)

// QualityScore is reported for every document the oracle classifies.
const QualityScore = 8.5

var statementKeywords = []string{
	"statement of account",
	"bank statement",
	"transaction details",
	"opening balance",
}

// Oracle implements the document oracle without any remote calls.
type Oracle struct{}

// New returns a keyword Oracle.
func New() *Oracle {
	return &Oracle{}
}

// Classify marks text as a bank statement when it contains a statement keyword.
func (o *Oracle) Classify(ctx context.Context, rawText string) (*domain.ClassificationResult, error) {
	lower := strings.ToLower(rawText)
	isStatement := false
	for _, kw := range statementKeywords {
		if strings.Contains(lower, kw) {
			isStatement = true
			break
		}
	}

	c := &domain.ClassificationResult{
		DocumentType: domain.Other,
		QualityScore: QualityScore,
		IsReadable:   true,
		IsComplete:   true,
		Issues:       []string{},
		CanProceed:   isStatement,
	}
	if isStatement {
		c.DocumentType = domain.BankStatement
	} else {
		c.Issues = append(c.Issues, "No bank statement markers found")
	}
	log := logger.FromContext(ctx)
	log.Debug().Bool("bank_statement", isStatement).Msg("keyword classification")
	return c, nil
}

// Extract reads header fields from the text and transactions from tables.
func (o *Oracle) Extract(ctx context.Context, rawText string, tables []domain.Table) (*domain.ExtractedData, error) {
	txns := transactionsFromTables(tables)
	data := extractHeader(rawText, txns)
	data.Transactions = txns
	data.TransactionCount = len(txns)

	if len(txns) == 0 && data.ClosingBalance.IsZero() {
		return nil, fmt.Errorf("no transactions or balances found in %d tables", len(tables))
	}
	log := logger.FromContext(ctx)
	log.Debug().Int("transactions", len(txns)).Str("bank", data.BankName).Msg("keyword extraction")
	return data, nil
}

// Validate always reports the oracle as unavailable.
func (o *Oracle) Validate(context.Context, risk.Input) (*domain.RiskAssessment, error) {
	return nil, risk.ErrUnavailable
}
