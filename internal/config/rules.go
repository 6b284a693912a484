package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/neurofin/loan-processor/internal/compliance"
)

// RulesConfig is the on-disk form of the compliance thresholds. Amounts are
// whole rupees. Keys left out of the file keep their default value.
type RulesConfig struct {
	MinAvgBalance             int64   `yaml:"min_avg_balance" json:"min_avg_balance"`
	MaxBounceCount            int     `yaml:"max_bounce_count" json:"max_bounce_count"`
	MinAccountAgeMonths       int     `yaml:"min_account_age_months" json:"min_account_age_months"`
	SuspiciousTxnThreshold    int64   `yaml:"suspicious_txn_threshold" json:"suspicious_txn_threshold"`
	IncomeRegularityThreshold float64 `yaml:"income_regularity_threshold" json:"income_regularity_threshold"` // 0-1
	MinClosingBalance         int64   `yaml:"min_closing_balance" json:"min_closing_balance"`
	MaxOverdraftInstances     int     `yaml:"max_overdraft_instances" json:"max_overdraft_instances"`
}

// DefaultRules returns the standard thresholds.
func DefaultRules() *RulesConfig {
	return FromThresholds(compliance.DefaultThresholds())
}

// FromThresholds converts engine thresholds to their file form.
func FromThresholds(t compliance.Thresholds) *RulesConfig {
	return &RulesConfig{
		MinAvgBalance:             t.MinAvgBalance.IntPart(),
		MaxBounceCount:            t.MaxBounceCount,
		MinAccountAgeMonths:       t.MinAccountAgeMonths,
		SuspiciousTxnThreshold:    t.SuspiciousTxnThreshold.IntPart(),
		IncomeRegularityThreshold: t.IncomeRegularity,
		MinClosingBalance:         t.MinClosingBalance.IntPart(),
		MaxOverdraftInstances:     t.MaxOverdraftInstances,
	}
}

// Thresholds converts the file form to validated engine thresholds.
func (r *RulesConfig) Thresholds() (compliance.Thresholds, error) {
	t := compliance.Thresholds{
		MinAvgBalance:          decimal.NewFromInt(r.MinAvgBalance),
		MaxBounceCount:         r.MaxBounceCount,
		MinAccountAgeMonths:    r.MinAccountAgeMonths,
		SuspiciousTxnThreshold: decimal.NewFromInt(r.SuspiciousTxnThreshold),
		IncomeRegularity:       r.IncomeRegularityThreshold,
		MinClosingBalance:      decimal.NewFromInt(r.MinClosingBalance),
		MaxOverdraftInstances:  r.MaxOverdraftInstances,
	}
	if err := t.Validate(); err != nil {
		return compliance.Thresholds{}, fmt.Errorf("invalid rules: %w", err)
	}
	return t, nil
}

// LoadRules reads a rules file from disk. An empty path yields the defaults.
func LoadRules(path string) (*RulesConfig, error) {
	cfg := DefaultRules()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if _, err := cfg.Thresholds(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadThresholds reads a rules file and returns engine thresholds.
func LoadThresholds(path string) (compliance.Thresholds, error) {
	cfg, err := LoadRules(path)
	if err != nil {
		return compliance.Thresholds{}, err
	}
	return cfg.Thresholds()
}

// MarshalRules renders cfg as YAML.
func MarshalRules(cfg *RulesConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling rules: %w", err)
	}
	return data, nil
}

// SaveRules writes cfg to a YAML file.
func SaveRules(path string, cfg *RulesConfig) error {
	data, err := MarshalRules(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
