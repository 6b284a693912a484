// Package config loads process settings from the environment and compliance
// rule thresholds from YAML.
package config

import (
	"fmt"
	"os"
)

// Providers accepted for the document oracle.
const (
	ProviderKeyword = "keyword"
	ProviderGemini  = "gemini"
)

// Defaults.
const (
	DefaultProvider = ProviderKeyword
	DefaultModel    = "gemini-2.5-flash"
	DefaultDataset  = "loanproc"
)

// Config holds process-wide settings. The pipeline never reads it directly;
// binaries resolve it and pass concrete values to constructors.
type Config struct {
	Provider  string // LOANPROC_PROVIDER
	Model     string // LOANPROC_MODEL
	ProjectID string // GOOGLE_CLOUD_PROJECT
	Dataset   string // LOANPROC_DATASET
	Bucket    string // GCS_BUCKET
	RulesFile string // LOANPROC_RULES_FILE
	LogLevel  string // LOANPROC_LOG_LEVEL
}

// FromEnv builds a Config from the environment, applying defaults.
func FromEnv() Config {
	return Config{
		Provider:  getenv("LOANPROC_PROVIDER", DefaultProvider),
		Model:     getenv("LOANPROC_MODEL", DefaultModel),
		ProjectID: os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Dataset:   getenv("LOANPROC_DATASET", DefaultDataset),
		Bucket:    os.Getenv("GCS_BUCKET"),
		RulesFile: os.Getenv("LOANPROC_RULES_FILE"),
		LogLevel:  getenv("LOANPROC_LOG_LEVEL", "info"),
	}
}

// Validate checks the provider name.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderKeyword, ProviderGemini:
		return nil
	}
	return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderKeyword, ProviderGemini)
}

// StorageEnabled reports whether results can be persisted to BigQuery.
func (c Config) StorageEnabled() bool {
	return c.ProjectID != "" && c.Dataset != ""
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
