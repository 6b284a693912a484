package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurofin/loan-processor/internal/config"
	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/jobs"
)

const statement = `HDFC BANK
Statement of Account
Account Holder: Asha Rao
Account Number: 50100123456789
Statement Period: 01/01/2026 to 31/03/2026
Opening Balance: 40000.00
| Date | Description | Debit | Credit | Balance |
|---|---|---|---|---|
| 01/01/2026 | SALARY ACME CORP | | 50000.00 | 90000.00 |
| 10/01/2026 | RENT | 20000.00 | | 70000.00 |
| 01/02/2026 | SALARY ACME CORP | | 50000.00 | 120000.00 |
| 10/02/2026 | RENT | 20000.00 | | 100000.00 |
| 01/03/2026 | SALARY ACME CORP | | 50000.00 | 150000.00 |
| 10/03/2026 | RENT | 20000.00 | | 130000.00 |
Closing Balance: 130000.00
`

func keywordConfig() config.Config {
	return config.Config{Provider: config.ProviderKeyword, Dataset: config.DefaultDataset}
}

func TestNew_KeywordEndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.txt")
	require.NoError(t, os.WriteFile(path, []byte(statement), 0o600))

	a, err := New(context.Background(), keywordConfig(), Options{})
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Repo)
	assert.False(t, a.Service.StorageEnabled())
	assert.Len(t, a.Engine().Rules(), 7)

	res := a.Orchestrator.Process(context.Background(), path)
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, domain.BankStatement, res.DocumentType)
	assert.Len(t, res.MonthlySummaries, 3)
	require.NotNil(t, res.RiskAssessment)
	assert.Len(t, res.RiskAssessment.ComplianceChecks, 7)
}

func TestNew_Errors(t *testing.T) {
	cfg := keywordConfig()
	cfg.Provider = "openai"
	_, err := New(context.Background(), cfg, Options{})
	assert.Error(t, err)

	cfg = keywordConfig()
	cfg.RulesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(context.Background(), cfg, Options{})
	assert.Error(t, err)

	_, err = New(context.Background(), keywordConfig(), Options{Store: true})
	assert.ErrorContains(t, err, "GOOGLE_CLOUD_PROJECT")
}

func TestJobHandler(t *testing.T) {
	a, err := New(context.Background(), keywordConfig(), Options{})
	require.NoError(t, err)

	job := &jobs.AssessDocumentJob{JobID: "j1", Source: filepath.Join(t.TempDir(), "missing.txt")}
	require.NoError(t, JobHandler(a.Service)(context.Background(), job))
	assert.NotEmpty(t, job.RunID)
	assert.Equal(t, string(domain.Reject), job.Recommendation)
	require.NotNil(t, job.RiskScore)
	assert.Equal(t, 100, *job.RiskScore)
}
