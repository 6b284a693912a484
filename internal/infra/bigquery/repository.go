// Package bigquery stores assessment runs and their results in BigQuery.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"

	"github.com/neurofin/loan-processor/internal/logger"
)

const (
	runsTable        = "assessment_runs"
	assessmentsTable = "assessments"

	// maxErrorLen caps error_message columns.
	maxErrorLen = 2000
)

// AssessmentRepository is the BigQuery-backed store for runs and assessments.
// It holds a shared client; call Close when done.
type AssessmentRepository struct {
	client  *bigquery.Client
	dataset string
}

// NewAssessmentRepository opens a client for projectID and targets dataset.
func NewAssessmentRepository(ctx context.Context, projectID, dataset string) (*AssessmentRepository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewAssessmentRepository: creating client: %w", err)
	}
	return NewAssessmentRepositoryWithClient(client, dataset), nil
}

// NewAssessmentRepositoryWithClient wraps an existing client.
func NewAssessmentRepositoryWithClient(client *bigquery.Client, dataset string) *AssessmentRepository {
	return &AssessmentRepository{client: client, dataset: dataset}
}

// Close closes the BigQuery client connection.
func (r *AssessmentRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// EnsureTables creates the dataset and both tables when they do not exist.
// Schemas are inferred from the row structs.
func (r *AssessmentRepository) EnsureTables(ctx context.Context) error {
	log := logger.FromContext(ctx)

	ds := r.client.Dataset(r.dataset)
	if _, err := ds.Metadata(ctx); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("EnsureTables: reading dataset %s: %w", r.dataset, err)
		}
		if err := ds.Create(ctx, &bigquery.DatasetMetadata{}); err != nil {
			return fmt.Errorf("EnsureTables: creating dataset %s: %w", r.dataset, err)
		}
		log.Info().Str("dataset", r.dataset).Msg("created dataset")
	}

	tables := []struct {
		name      string
		row       any
		partition string
	}{
		{runsTable, RunRow{}, "started_ts"},
		{assessmentsTable, AssessmentRow{}, "created_ts"},
	}
	for _, tbl := range tables {
		schema, err := bigquery.InferSchema(tbl.row)
		if err != nil {
			return fmt.Errorf("EnsureTables: inferring schema for %s: %w", tbl.name, err)
		}
		t := ds.Table(tbl.name)
		if _, err := t.Metadata(ctx); err == nil {
			continue
		} else if !isNotFound(err) {
			return fmt.Errorf("EnsureTables: reading table %s: %w", tbl.name, err)
		}
		meta := &bigquery.TableMetadata{
			Schema:           schema,
			TimePartitioning: &bigquery.TimePartitioning{Field: tbl.partition},
		}
		if err := t.Create(ctx, meta); err != nil {
			return fmt.Errorf("EnsureTables: creating table %s: %w", tbl.name, err)
		}
		log.Info().Str("dataset", r.dataset).Str("table", tbl.name).Msg("created table")
	}
	return nil
}

func (r *AssessmentRepository) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", r.client.Project(), r.dataset, name)
}

// exec runs a DML statement and waits for it to finish.
func (r *AssessmentRepository) exec(ctx context.Context, sql string, params []bigquery.QueryParameter) error {
	q := r.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}
