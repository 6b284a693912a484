package domain

import (
	"fmt"
	"strings"
)

// DocumentType is the kind of document detected by classification.
type DocumentType string

const (
	BankStatement DocumentType = "bank_statement"
	KYC           DocumentType = "kyc"
	IncomeProof   DocumentType = "income_proof"
	PropertyDoc   DocumentType = "property_doc"
	Other         DocumentType = "other"
)

// ParseDocumentType maps a wire value to a DocumentType.
func ParseDocumentType(s string) (DocumentType, error) {
	switch dt := DocumentType(s); dt {
	case BankStatement, KYC, IncomeProof, PropertyDoc, Other:
		return dt, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// ClassificationResult describes the document type and its quality.
type ClassificationResult struct {
	DocumentType DocumentType `json:"document_type"`
	QualityScore float64      `json:"quality_score"` // 0-10
	IsReadable   bool         `json:"is_readable"`
	IsComplete   bool         `json:"is_complete"`
	Issues       []string     `json:"issues"`
	CanProceed   bool         `json:"can_proceed"`
}

// Proceeds reports whether extraction may run for this document.
// Only bank statements are processed, whatever CanProceed says.
func (c ClassificationResult) Proceeds() bool {
	return c.CanProceed && c.DocumentType == BankStatement
}

// RejectedClassification is the forced-reject result used when the
// classifier cannot produce an answer.
func RejectedClassification(issue string) ClassificationResult {
	return ClassificationResult{
		DocumentType: Other,
		QualityScore: 0,
		IsReadable:   false,
		IsComplete:   false,
		Issues:       []string{issue},
		CanProceed:   false,
	}
}

// Table is a table lifted from a document page. Rows are keyed by header.
type Table struct {
	Page    int                 `json:"page"`
	Index   int                 `json:"table_index"`
	Headers []string            `json:"headers"`
	Rows    []map[string]string `json:"rows"`
}

// ParsedDocument is the raw text and tables of a source document.
type ParsedDocument struct {
	RawText  string            `json:"raw_text"`
	Pages    []string          `json:"pages"`
	Tables   []Table           `json:"tables"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PageCount returns the number of pages in the document.
func (d *ParsedDocument) PageCount() int {
	return len(d.Pages)
}

// NewParsedDocument builds a document from page texts. RawText carries a
// "--- Page N ---" header before each page.
func NewParsedDocument(pages []string, tables []Table) *ParsedDocument {
	parts := make([]string, 0, len(pages))
	for i, p := range pages {
		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", i+1, p))
	}
	if tables == nil {
		tables = []Table{}
	}
	return &ParsedDocument{
		RawText:  strings.Join(parts, "\n\n"),
		Pages:    pages,
		Tables:   tables,
		Metadata: map[string]string{},
	}
}

// NewTable builds a table from a header row and data rows. Blank headers
// become col_<i>; cells beyond the header width are dropped.
func NewTable(page, index int, header []string, cells [][]string) Table {
	headers := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("col_%d", i)
		}
		headers[i] = h
	}
	rows := make([]map[string]string, 0, len(cells))
	for _, row := range cells {
		m := make(map[string]string, len(headers))
		for i, cell := range row {
			if i < len(headers) {
				m[headers[i]] = strings.TrimSpace(cell)
			}
		}
		rows = append(rows, m)
	}
	return Table{Page: page, Index: index, Headers: headers, Rows: rows}
}
