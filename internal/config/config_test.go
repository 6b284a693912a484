package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurofin/loan-processor/internal/compliance"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"LOANPROC_PROVIDER", "LOANPROC_MODEL", "LOANPROC_DATASET", "GOOGLE_CLOUD_PROJECT", "GCS_BUCKET", "LOANPROC_RULES_FILE"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ProviderKeyword, cfg.Provider)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultDataset, cfg.Dataset)
	assert.False(t, cfg.StorageEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LOANPROC_PROVIDER", "gemini")
	t.Setenv("LOANPROC_MODEL", "gemini-2.5-pro")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "proj")
	t.Setenv("GCS_BUCKET", "statements")

	cfg := FromEnv()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, "statements", cfg.Bucket)
	assert.True(t, cfg.StorageEnabled())
}

func TestValidate_UnknownProvider(t *testing.T) {
	err := Config{Provider: "openai"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai")
}

func TestRulesRoundTrip(t *testing.T) {
	cfg := DefaultRules()
	cfg.MinAvgBalance = 25000
	cfg.IncomeRegularityThreshold = 0.5

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, SaveRules(path, cfg))

	got, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	th, err := got.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, "25000", th.MinAvgBalance.String())
	assert.InDelta(t, 0.5, th.IncomeRegularity, 0.0001)
}

func TestLoadRules_EmptyPathIsDefault(t *testing.T) {
	got, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), got)
}

func TestLoadRules_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_bounce_count: 2\n"), 0o644))

	th, err := LoadThresholds(path)
	require.NoError(t, err)

	want := compliance.DefaultThresholds()
	assert.Equal(t, 2, th.MaxBounceCount)
	assert.Equal(t, want.MinAccountAgeMonths, th.MinAccountAgeMonths)
	assert.True(t, want.MinAvgBalance.Equal(th.MinAvgBalance))
	assert.True(t, want.SuspiciousTxnThreshold.Equal(th.SuspiciousTxnThreshold))
}

func TestLoadRules_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("income_regularity_threshold: 80\n"), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "income_regularity_threshold")
}

func TestLoadRules_NotFound(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRulesYAMLFormat(t *testing.T) {
	data, err := MarshalRules(DefaultRules())
	require.NoError(t, err)

	contents := string(data)
	assert.Contains(t, contents, "min_avg_balance: 10000")
	assert.Contains(t, contents, "max_bounce_count: 0")
	assert.Contains(t, contents, "income_regularity_threshold: 0.8")
	assert.Contains(t, contents, "suspicious_txn_threshold: 1000000")
	assert.Contains(t, contents, "max_overdraft_instances: 2")
}
