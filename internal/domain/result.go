package domain

// State is a pipeline state. Stopped and Done are terminal.
type State string

const (
	StateStart      State = "start"
	StateParsed     State = "parsed"
	StateClassified State = "classified"
	StateStopped    State = "stopped"
	StateExtracted  State = "extracted"
	StateValidated  State = "validated"
	StateDone       State = "done"
)

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateDone
}

// PipelineResult is the outcome of processing one document.
type PipelineResult struct {
	RunID                 string           `json:"run_id"`
	Success               bool             `json:"success"`
	State                 State            `json:"state"`
	DocumentType          DocumentType     `json:"document_type"`
	QualityScore          float64          `json:"quality_score"`
	ExtractedData         *ExtractedData   `json:"extracted_data,omitempty"`
	MonthlySummaries      []MonthlySummary `json:"monthly_summaries"`
	RiskAssessment        *RiskAssessment  `json:"risk_assessment,omitempty"`
	RiskScore             int              `json:"risk_score"`
	Recommendation        Recommendation   `json:"recommendation"`
	ComplianceIssues      []string         `json:"compliance_issues"`
	RedFlags              []string         `json:"red_flags"`
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
	ErrorMessage          string           `json:"error_message,omitempty"`
}
