package pipeline_test

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/risk"
)

// MockParser is a mock implementation of pipeline.DocumentParser.
type MockParser struct {
	ParseFunc func(ctx context.Context, path string) (*domain.ParsedDocument, error)
}

func (m *MockParser) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(ctx, path)
	}
	return &domain.ParsedDocument{RawText: "--- Page 1 ---\nStatement of Account", Pages: []string{"Statement of Account"}}, nil
}

// MockOracle is a mock implementation of pipeline.DocumentOracle.
type MockOracle struct {
	ClassifyFunc func(ctx context.Context, rawText string) (*domain.ClassificationResult, error)
	ExtractFunc  func(ctx context.Context, rawText string, tables []domain.Table) (*domain.ExtractedData, error)
	ValidateFunc func(ctx context.Context, in risk.Input) (*domain.RiskAssessment, error)

	classifyCalls int
	extractCalls  int
	validateCalls int
}

func (m *MockOracle) Classify(ctx context.Context, rawText string) (*domain.ClassificationResult, error) {
	m.classifyCalls++
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, rawText)
	}
	return &domain.ClassificationResult{
		DocumentType: domain.BankStatement,
		QualityScore: 8.5,
		IsReadable:   true,
		IsComplete:   true,
		Issues:       []string{},
		CanProceed:   true,
	}, nil
}

func (m *MockOracle) Extract(ctx context.Context, rawText string, tables []domain.Table) (*domain.ExtractedData, error) {
	m.extractCalls++
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, rawText, tables)
	}
	return healthyStatement(), nil
}

func (m *MockOracle) Validate(ctx context.Context, in risk.Input) (*domain.RiskAssessment, error) {
	m.validateCalls++
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, in)
	}
	return nil, risk.ErrUnavailable
}

// MockStore is a mock implementation of pipeline.AssessmentStore.
type MockStore struct {
	StartRunErr error
	InsertErr   error
	MarkErr     error
	Started     []string
	Failed      map[string]string
	Succeeded   []string
	Inserted    []*domain.PipelineResult
}

func (m *MockStore) StartRun(_ context.Context, runID, _, _ string) error {
	if m.StartRunErr != nil {
		return m.StartRunErr
	}
	m.Started = append(m.Started, runID)
	return nil
}

func (m *MockStore) MarkRunFailed(_ context.Context, runID string, runErr error) error {
	if m.Failed == nil {
		m.Failed = map[string]string{}
	}
	m.Failed[runID] = runErr.Error()
	return m.MarkErr
}

func (m *MockStore) MarkRunSucceeded(_ context.Context, runID string) error {
	m.Succeeded = append(m.Succeeded, runID)
	return m.MarkErr
}

func (m *MockStore) InsertAssessment(_ context.Context, _ string, result *domain.PipelineResult) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.Inserted = append(m.Inserted, result)
	return nil
}

var errBoom = errors.New("boom")

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func balance(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// healthyStatement has six months of salary, comfortable balances and no
// bounces or overdrafts.
func healthyStatement() *domain.ExtractedData {
	months := []string{"2026-01", "2026-02", "2026-03", "2026-04", "2026-05", "2026-06"}
	var txns []domain.Transaction
	for _, m := range months {
		txns = append(txns,
			domain.Transaction{Date: m + "-01", Description: "NEFT SALARY ACME", Amount: amount(60000), Type: domain.Credit, Balance: balance(80000)},
			domain.Transaction{Date: m + "-15", Description: "Rent", Amount: amount(60000), Type: domain.Debit, Balance: balance(20000)},
		)
	}
	return &domain.ExtractedData{
		AccountHolderName:   "Priya Sharma",
		BankName:            "HDFC Bank",
		AccountNumberMasked: "XXXX1234",
		OpeningBalance:      amount(20000),
		ClosingBalance:      amount(60000),
		TotalCredits:        amount(360000),
		TotalDebits:         amount(360000),
		TransactionCount:    len(txns),
		Transactions:        txns,
	}
}

// riskyStatement has one month of history, a bounce and low balances.
// Its only month carries a salary, so income regularity passes.
func riskyStatement() *domain.ExtractedData {
	return &domain.ExtractedData{
		ClosingBalance: amount(1000),
		Transactions: []domain.Transaction{
			{Date: "2026-03-01", Description: "SALARY MARCH", Amount: amount(15000), Type: domain.Credit, Balance: balance(3000)},
			{Date: "2026-03-10", Description: "ECS RETURN insufficient funds", Amount: amount(2000), Type: domain.Debit, Balance: balance(1000)},
		},
	}
}
