package gemini

import (
	"fmt"
	"math"
	"strings"

	"github.com/neurofin/loan-processor/internal/domain"
)

type classificationOutput struct {
	DocumentType string   `json:"document_type"`
	QualityScore float64  `json:"quality_score"`
	IsReadable   bool     `json:"is_readable"`
	IsComplete   bool     `json:"is_complete"`
	Issues       []string `json:"issues"`
	CanProceed   bool     `json:"can_proceed"`
}

func (c classificationOutput) toDomain() *domain.ClassificationResult {
	docType, err := domain.ParseDocumentType(strings.ToLower(strings.TrimSpace(c.DocumentType)))
	if err != nil {
		docType = domain.Other
	}
	issues := c.Issues
	if issues == nil {
		issues = []string{}
	}
	return &domain.ClassificationResult{
		DocumentType: docType,
		QualityScore: c.QualityScore,
		IsReadable:   c.IsReadable,
		IsComplete:   c.IsComplete,
		Issues:       issues,
		CanProceed:   c.CanProceed,
	}
}

// normalizeExtraction repairs the usual model slips: signed amounts,
// capitalized directions and a missing transaction count.
func normalizeExtraction(data *domain.ExtractedData) error {
	for i := range data.Transactions {
		t := &data.Transactions[i]
		t.Type = domain.Direction(strings.ToLower(strings.TrimSpace(string(t.Type))))
		if t.Amount.IsNegative() {
			t.Amount = t.Amount.Abs()
			if t.Type == "" {
				t.Type = domain.Debit
			}
		}
		if !t.Type.Valid() {
			return fmt.Errorf("transaction %d: unknown type %q", i, t.Type)
		}
	}
	if data.TransactionCount == 0 {
		data.TransactionCount = len(data.Transactions)
	}
	if data.Transactions == nil {
		data.Transactions = []domain.Transaction{}
	}
	return nil
}

type assessmentOutput struct {
	RiskScore            float64               `json:"risk_score"`
	ScoreBreakdown       domain.ScoreBreakdown `json:"score_breakdown"`
	Issues               []string              `json:"issues"`
	RedFlags             []string              `json:"red_flags"`
	Recommendation       string                `json:"recommendation"`
	RecommendationReason string                `json:"recommendation_reason"`
}

// modelScore bounds a model score to [0, 100] before converting it, so an
// out-of-range value cannot overflow int. NaN is treated as the worst score.
func modelScore(f float64) int {
	switch {
	case math.IsNaN(f):
		return 100
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(math.Round(f))
}

// toDomain leaves check substitution to the risk package.
func (a assessmentOutput) toDomain() *domain.RiskAssessment {
	return &domain.RiskAssessment{
		RiskScore:            modelScore(a.RiskScore),
		ScoreBreakdown:       a.ScoreBreakdown,
		Issues:               a.Issues,
		RedFlags:             a.RedFlags,
		Recommendation:       domain.Recommendation(strings.ToUpper(strings.TrimSpace(a.Recommendation))),
		RecommendationReason: a.RecommendationReason,
	}
}

type transcriptionOutput struct {
	Pages  []string `json:"pages"`
	Tables []struct {
		Page    int        `json:"page"`
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
	} `json:"tables"`
}

func (t transcriptionOutput) toDomain() *domain.ParsedDocument {
	tables := make([]domain.Table, 0, len(t.Tables))
	perPage := map[int]int{}
	for _, tbl := range t.Tables {
		if len(tbl.Headers) == 0 || len(tbl.Rows) == 0 {
			continue
		}
		tables = append(tables, domain.NewTable(tbl.Page, perPage[tbl.Page], tbl.Headers, tbl.Rows))
		perPage[tbl.Page]++
	}
	return domain.NewParsedDocument(t.Pages, tables)
}
