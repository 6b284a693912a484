package pipeline

import (
	"errors"

	"github.com/neurofin/loan-processor/internal/domain"
)

// Issues and red flags reported on failed runs.
const (
	issueParseFailed          = "Document parsing failed"
	issueClassificationFailed = "Classification failed"
	issueExtractionFailed     = "Extraction failed"
	issueNoData               = "No data extracted from document"
	issueValidationIncomplete = "Validation incomplete"
	issueProcessingFailed     = "Processing failed"
	redFlagNoData             = "Cannot assess - no data"
)

// rejection is the all-default failed result.
func rejection(state domain.State, issues, redFlags []string, msg string) *domain.PipelineResult {
	return &domain.PipelineResult{
		Success:          false,
		State:            state,
		DocumentType:     domain.Other,
		QualityScore:     0,
		MonthlySummaries: []domain.MonthlySummary{},
		RiskScore:        100,
		Recommendation:   domain.Reject,
		ComplianceIssues: issues,
		RedFlags:         redFlags,
		ErrorMessage:     msg,
	}
}

func crashedResult(err error) *domain.PipelineResult {
	return rejection(domain.StateDone, []string{issueProcessingFailed}, []string{err.Error()}, err.Error())
}

func errorMessage(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}

// result assembles the outcome from whatever stages completed.
func (rs *runState) result() *domain.PipelineResult {
	if rs.parsed == nil {
		return rejection(rs.state, []string{issueParseFailed}, []string{}, errorMessage(rs.err, issueParseFailed))
	}

	c := rs.classification
	if c == nil {
		return rejection(rs.state, []string{issueClassificationFailed}, []string{}, errorMessage(rs.err, issueClassificationFailed))
	}

	res := rejection(rs.state, nil, []string{}, "")
	res.DocumentType = c.DocumentType
	res.QualityScore = c.QualityScore

	switch {
	case rs.state == domain.StateStopped:
		res.ComplianceIssues = append([]string{}, c.Issues...)
		res.ErrorMessage = errorMessage(rs.err, "Document quality too low to proceed")

	case rs.extracted == nil:
		res.ComplianceIssues = []string{issueExtractionFailed}
		if errors.Is(rs.err, ErrNoDataExtracted) {
			res.ComplianceIssues = []string{issueNoData}
			res.RedFlags = []string{redFlagNoData}
		}
		res.ErrorMessage = errorMessage(rs.err, issueExtractionFailed)

	case rs.assessment != nil:
		ra := rs.assessment
		res.Success = true
		res.ExtractedData = rs.extracted
		res.MonthlySummaries = rs.summaries
		res.RiskAssessment = ra
		res.RiskScore = ra.RiskScore
		res.Recommendation = ra.Recommendation
		res.ComplianceIssues = nonNil(ra.Issues)
		res.RedFlags = nonNil(ra.RedFlags)
		res.ErrorMessage = ""

	default:
		res.ExtractedData = rs.extracted
		res.MonthlySummaries = rs.summaries
		res.ComplianceIssues = []string{issueValidationIncomplete}
		res.ErrorMessage = errorMessage(rs.err, "Validation failed")
	}
	return res
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
