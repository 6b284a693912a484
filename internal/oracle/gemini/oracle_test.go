package gemini

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/neurofin/loan-processor/internal/compliance"
	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/risk"
)

type stubGenerator struct {
	text     string
	err      error
	model    string
	contents []*genai.Content
}

func (s *stubGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model = model
	s.contents = contents
	if s.err != nil {
		return nil, s.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: s.text}}}},
		},
	}, nil
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"chatter around object", "Sure! Here it is: {\"a\":{\"b\":2}} Hope that helps.", `{"a":{"b":2}}`},
		{"array with prose", "Result:\n[{\"x\":1}]\n", `[{"x":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.in))
		})
	}
}

func TestClassify(t *testing.T) {
	gen := &stubGenerator{text: "```json\n{\"document_type\":\"Bank_Statement\",\"quality_score\":8,\"is_readable\":true,\"is_complete\":true,\"issues\":null,\"can_proceed\":true}\n```"}
	o := NewWithGenerator(gen, "")

	c, err := o.Classify(context.Background(), "Statement of Account")
	require.NoError(t, err)
	assert.Equal(t, domain.BankStatement, c.DocumentType)
	assert.InDelta(t, 8.0, c.QualityScore, 0.001)
	assert.True(t, c.CanProceed)
	assert.NotNil(t, c.Issues)
	assert.Equal(t, DefaultModelName, gen.model)
	assert.Contains(t, gen.contents[0].Parts[0].Text, "Statement of Account")
}

func TestClassify_UnknownTypeIsOther(t *testing.T) {
	gen := &stubGenerator{text: `{"document_type":"utility_bill","quality_score":7}`}

	c, err := NewWithGenerator(gen, "m").Classify(context.Background(), "bill")
	require.NoError(t, err)
	assert.Equal(t, domain.Other, c.DocumentType)
}

func TestClassify_TruncatesText(t *testing.T) {
	gen := &stubGenerator{text: `{"document_type":"other"}`}
	long := make([]byte, classifyTextLimit+500)
	for i := range long {
		long[i] = 'x'
	}

	_, err := NewWithGenerator(gen, "m").Classify(context.Background(), string(long))
	require.NoError(t, err)
	assert.NotContains(t, gen.contents[0].Parts[0].Text, string(long))
}

func TestClassify_Errors(t *testing.T) {
	_, err := NewWithGenerator(&stubGenerator{err: errors.New("quota")}, "m").Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")

	_, err = NewWithGenerator(&stubGenerator{text: ""}, "m").Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")

	_, err = NewWithGenerator(&stubGenerator{text: "not json"}, "m").Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal JSON")
}

func TestExtract(t *testing.T) {
	gen := &stubGenerator{text: `{
		"account_holder_name": "Priya Sharma",
		"bank_name": "HDFC Bank",
		"branch": null,
		"account_number_masked": "XXXX1234",
		"statement_period_start": "2026-01-01",
		"statement_period_end": "2026-03-31",
		"opening_balance": 10000,
		"closing_balance": "25000.50",
		"total_credits": 50000,
		"total_debits": 34999.5,
		"transactions": [
			{"date": "2026-01-01", "description": "SALARY", "amount": 50000, "type": "Credit", "balance": 60000},
			{"date": "2026-01-05", "description": "Rent", "amount": -34999.5, "type": "", "balance": null}
		]
	}`}
	tables := []domain.Table{domain.NewTable(1, 0, []string{"Date"}, [][]string{{"2026-01-01"}})}

	data, err := NewWithGenerator(gen, "m").Extract(context.Background(), "text", tables)
	require.NoError(t, err)

	assert.Equal(t, "Priya Sharma", data.AccountHolderName)
	assert.Empty(t, data.Branch)
	assert.Equal(t, "25000.5", data.ClosingBalance.String())
	assert.Equal(t, 2, data.TransactionCount)
	require.Len(t, data.Transactions, 2)
	assert.Equal(t, domain.Credit, data.Transactions[0].Type)
	require.NotNil(t, data.Transactions[0].Balance)
	assert.Equal(t, domain.Debit, data.Transactions[1].Type)
	assert.Equal(t, "34999.5", data.Transactions[1].Amount.String())
	assert.Nil(t, data.Transactions[1].Balance)
	assert.Contains(t, gen.contents[0].Parts[0].Text, `"table_index":0`)
}

func TestExtract_BadDirection(t *testing.T) {
	gen := &stubGenerator{text: `{"transactions":[{"date":"2026-01-01","description":"x","amount":1,"type":"transfer"}]}`}

	_, err := NewWithGenerator(gen, "m").Extract(context.Background(), "text", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfer")
}

func TestValidate(t *testing.T) {
	gen := &stubGenerator{text: `{"risk_score": 42.6, "score_breakdown": {"balance_stability": 20, "income_regularity": 15, "transaction_patterns": 18, "red_flags": -5}, "issues": ["thin history"], "red_flags": [], "recommendation": "review", "recommendation_reason": "Short history."}`}
	th := compliance.DefaultThresholds()
	engine := compliance.NewEngine(th)
	in := risk.Input{
		Data:       &domain.ExtractedData{},
		Thresholds: th,
		Rules:      engine.Rules(),
		Checks:     engine.Evaluate(&domain.ExtractedData{}, nil),
	}

	ra, err := NewWithGenerator(gen, "m").Validate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 43, ra.RiskScore)
	assert.Equal(t, domain.Review, ra.Recommendation)
	assert.InDelta(t, -5.0, ra.ScoreBreakdown.RedFlags, 0.001)

	prompt := gen.contents[0].Parts[0].Text
	assert.Contains(t, prompt, "min_avg_balance (high severity)")
	assert.Contains(t, prompt, `"rule_name": "max_overdraft_instances"`)
}

func TestValidate_OutOfRangeScore(t *testing.T) {
	gen := &stubGenerator{text: `{"risk_score": 1e300, "recommendation": "approve"}`}
	th := compliance.DefaultThresholds()
	in := risk.Input{Data: &domain.ExtractedData{}, Thresholds: th, Rules: compliance.NewEngine(th).Rules()}

	ra, err := NewWithGenerator(gen, "m").Validate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 100, ra.RiskScore)
}

func TestModelScore(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{42.4, 42},
		{42.5, 43},
		{-3, 0},
		{250, 100},
		{1e300, 100},
		{-1e300, 0},
		{math.Inf(1), 100},
		{math.NaN(), 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, modelScore(tt.in), "%v", tt.in)
	}
}

func TestTranscribe(t *testing.T) {
	gen := &stubGenerator{text: `{"pages": ["Statement of Account", "Page two"], "tables": [
		{"page": 1, "headers": ["Date", "Description"], "rows": [["2026-01-01", "SALARY"]]},
		{"page": 1, "headers": [], "rows": []},
		{"page": 2, "headers": ["Date"], "rows": [["2026-01-02"]]}
	]}`}

	doc, err := NewWithGenerator(gen, "m").Transcribe(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount())
	assert.Contains(t, doc.RawText, "--- Page 2 ---\nPage two")
	require.Len(t, doc.Tables, 2)
	assert.Equal(t, "SALARY", doc.Tables[0].Rows[0]["Description"])
	assert.Equal(t, 2, doc.Tables[1].Page)
	assert.Equal(t, 0, doc.Tables[1].Index)

	parts := gen.contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[1].InlineData)
	assert.Equal(t, "application/pdf", parts[1].InlineData.MIMEType)
}

func TestTranscribe_NoPages(t *testing.T) {
	_, err := NewWithGenerator(&stubGenerator{text: `{"pages": []}`}, "m").Transcribe(context.Background(), nil)
	require.Error(t, err)
}
