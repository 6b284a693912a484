package bigquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"

	"github.com/neurofin/loan-processor/internal/domain"
)

// ErrAssessmentNotFound is returned by GetAssessment for unknown IDs.
var ErrAssessmentNotFound = errors.New("assessment not found")

// DefaultListLimit applies when ListAssessments is called with limit <= 0.
const DefaultListLimit = 50

// AssessmentRow is one stored pipeline result. The full result is kept in
// result_json; the other columns exist for querying.
type AssessmentRow struct {
	AssessmentID string `bigquery:"assessment_id"`
	RunID        string `bigquery:"run_id"`
	SourceURI    string `bigquery:"source_uri"`

	Success        bool    `bigquery:"success"`
	State          string  `bigquery:"state"`
	DocumentType   string  `bigquery:"document_type"`
	QualityScore   float64 `bigquery:"quality_score"`
	RiskScore      int64   `bigquery:"risk_score"`
	Recommendation string  `bigquery:"recommendation"`

	AccountHolderName    bigquery.NullString `bigquery:"account_holder_name"`
	BankName             bigquery.NullString `bigquery:"bank_name"`
	StatementPeriodStart bigquery.NullDate   `bigquery:"statement_period_start"`
	StatementPeriodEnd   bigquery.NullDate   `bigquery:"statement_period_end"`
	ClosingBalance       *big.Rat            `bigquery:"closing_balance"`

	ComplianceIssues      []string            `bigquery:"compliance_issues"`
	RedFlags              []string            `bigquery:"red_flags"`
	ProcessingTimeSeconds float64             `bigquery:"processing_time_seconds"`
	ErrorMessage          bigquery.NullString `bigquery:"error_message"`

	ResultJSON bigquery.NullJSON `bigquery:"result_json"`
	CreatedTS  time.Time         `bigquery:"created_ts"`
}

// Assessment is a stored result as returned to callers.
type Assessment struct {
	AssessmentID string                 `json:"assessment_id"`
	RunID        string                 `json:"run_id"`
	SourceURI    string                 `json:"source_uri"`
	CreatedAt    time.Time              `json:"created_at"`
	Result       *domain.PipelineResult `json:"result"`
}

// NewAssessmentRow flattens result into a row.
func NewAssessmentRow(source string, result *domain.PipelineResult, now time.Time) (*AssessmentRow, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}

	row := &AssessmentRow{
		AssessmentID:          uuid.NewString(),
		RunID:                 result.RunID,
		SourceURI:             source,
		Success:               result.Success,
		State:                 string(result.State),
		DocumentType:          string(result.DocumentType),
		QualityScore:          result.QualityScore,
		RiskScore:             int64(result.RiskScore),
		Recommendation:        string(result.Recommendation),
		ComplianceIssues:      nonNil(result.ComplianceIssues),
		RedFlags:              nonNil(result.RedFlags),
		ProcessingTimeSeconds: result.ProcessingTimeSeconds,
		ErrorMessage:          nullString(result.ErrorMessage),
		ResultJSON:            bigquery.NullJSON{JSONVal: string(raw), Valid: true},
		CreatedTS:             now,
	}

	if data := result.ExtractedData; data != nil {
		row.AccountHolderName = nullString(data.AccountHolderName)
		row.BankName = nullString(data.BankName)
		row.StatementPeriodStart = nullDate(data.StatementPeriodStart)
		row.StatementPeriodEnd = nullDate(data.StatementPeriodEnd)
		row.ClosingBalance = data.ClosingBalance.Rat()
	}
	return row, nil
}

// ToAssessment decodes the stored result.
func (row *AssessmentRow) ToAssessment() (*Assessment, error) {
	a := &Assessment{
		AssessmentID: row.AssessmentID,
		RunID:        row.RunID,
		SourceURI:    row.SourceURI,
		CreatedAt:    row.CreatedTS,
	}
	if !row.ResultJSON.Valid {
		return nil, fmt.Errorf("assessment %s has no result_json", row.AssessmentID)
	}
	var result domain.PipelineResult
	if err := json.Unmarshal([]byte(row.ResultJSON.JSONVal), &result); err != nil {
		return nil, fmt.Errorf("decoding assessment %s: %w", row.AssessmentID, err)
	}
	a.Result = &result
	return a, nil
}

// InsertAssessment stores result with a DML INSERT to avoid streaming buffer issues.
func (r *AssessmentRepository) InsertAssessment(ctx context.Context, source string, result *domain.PipelineResult) error {
	row, err := NewAssessmentRow(source, result, time.Now())
	if err != nil {
		return fmt.Errorf("InsertAssessment: %w", err)
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (
			assessment_id, run_id, source_uri,
			success, state, document_type, quality_score, risk_score, recommendation,
			account_holder_name, bank_name, statement_period_start, statement_period_end, closing_balance,
			compliance_issues, red_flags, processing_time_seconds, error_message,
			result_json, created_ts
		)
		VALUES (
			@assessment_id, @run_id, @source_uri,
			@success, @state, @document_type, @quality_score, @risk_score, @recommendation,
			@account_holder_name, @bank_name, @statement_period_start, @statement_period_end, SAFE_CAST(@closing_balance AS NUMERIC),
			@compliance_issues, @red_flags, @processing_time_seconds, @error_message,
			PARSE_JSON(@result_json), @created_ts
		)
	`, r.table(assessmentsTable))

	closing := bigquery.NullString{}
	if row.ClosingBalance != nil {
		closing = bigquery.NullString{StringVal: row.ClosingBalance.FloatString(2), Valid: true}
	}

	err = r.exec(ctx, sql, []bigquery.QueryParameter{
		{Name: "assessment_id", Value: row.AssessmentID},
		{Name: "run_id", Value: row.RunID},
		{Name: "source_uri", Value: row.SourceURI},
		{Name: "success", Value: row.Success},
		{Name: "state", Value: row.State},
		{Name: "document_type", Value: row.DocumentType},
		{Name: "quality_score", Value: row.QualityScore},
		{Name: "risk_score", Value: row.RiskScore},
		{Name: "recommendation", Value: row.Recommendation},
		{Name: "account_holder_name", Value: row.AccountHolderName},
		{Name: "bank_name", Value: row.BankName},
		{Name: "statement_period_start", Value: row.StatementPeriodStart},
		{Name: "statement_period_end", Value: row.StatementPeriodEnd},
		{Name: "closing_balance", Value: closing},
		{Name: "compliance_issues", Value: row.ComplianceIssues},
		{Name: "red_flags", Value: row.RedFlags},
		{Name: "processing_time_seconds", Value: row.ProcessingTimeSeconds},
		{Name: "error_message", Value: row.ErrorMessage},
		{Name: "result_json", Value: row.ResultJSON.JSONVal},
		{Name: "created_ts", Value: row.CreatedTS},
	})
	if err != nil {
		return fmt.Errorf("InsertAssessment: %w", err)
	}
	return nil
}

// GetAssessment finds an assessment by assessment ID or run ID.
func (r *AssessmentRepository) GetAssessment(ctx context.Context, id string) (*Assessment, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s
		WHERE assessment_id = @id OR run_id = @id
		ORDER BY created_ts DESC
		LIMIT 1
	`, r.table(assessmentsTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetAssessment: reading query: %w", err)
	}

	var row AssessmentRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, ErrAssessmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetAssessment: reading row: %w", err)
	}
	return row.ToAssessment()
}

// ListAssessments returns the most recent assessments, newest first.
func (r *AssessmentRepository) ListAssessments(ctx context.Context, limit int) ([]*Assessment, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	q := r.client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s
		ORDER BY created_ts DESC
		LIMIT @limit
	`, r.table(assessmentsTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: limit}}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAssessments: reading query: %w", err)
	}

	assessments := []*Assessment{}
	for {
		var row AssessmentRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAssessments: iterating: %w", err)
		}
		a, err := row.ToAssessment()
		if err != nil {
			return nil, fmt.Errorf("ListAssessments: %w", err)
		}
		assessments = append(assessments, a)
	}
	return assessments, nil
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

func nullDate(s string) bigquery.NullDate {
	d, err := civil.ParseDate(s)
	if err != nil {
		return bigquery.NullDate{}
	}
	return bigquery.NullDate{Date: d, Valid: true}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
