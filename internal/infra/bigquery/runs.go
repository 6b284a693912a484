package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// Run statuses.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// RunRow is one processing attempt in assessment_runs.
type RunRow struct {
	RunID        string                 `bigquery:"run_id"`
	SourceURI    string                 `bigquery:"source_uri"`
	Provider     string                 `bigquery:"provider"`
	Status       string                 `bigquery:"status"`
	StartedTS    time.Time              `bigquery:"started_ts"`
	FinishedTS   bigquery.NullTimestamp `bigquery:"finished_ts"`
	ErrorMessage bigquery.NullString    `bigquery:"error_message"`
}

// StartRun inserts a run with status=RUNNING.
func (r *AssessmentRepository) StartRun(ctx context.Context, runID, source, provider string) error {
	sql := fmt.Sprintf(`
		INSERT %s (run_id, source_uri, provider, status, started_ts)
		VALUES (@run_id, @source_uri, @provider, @status, @started_ts)
	`, r.table(runsTable))

	err := r.exec(ctx, sql, []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
		{Name: "source_uri", Value: source},
		{Name: "provider", Value: provider},
		{Name: "status", Value: RunStatusRunning},
		{Name: "started_ts", Value: time.Now()},
	})
	if err != nil {
		return fmt.Errorf("StartRun: %w", err)
	}
	return nil
}

// MarkRunFailed sets status=FAILED, finished_ts and error_message.
func (r *AssessmentRepository) MarkRunFailed(ctx context.Context, runID string, runErr error) error {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE run_id = @run_id
	`, r.table(runsTable))

	err := r.exec(ctx, sql, []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: truncateError(runErr)},
		{Name: "run_id", Value: runID},
	})
	if err != nil {
		return fmt.Errorf("MarkRunFailed: %w", err)
	}
	return nil
}

// MarkRunSucceeded sets status=SUCCESS and finished_ts, clears error_message.
func (r *AssessmentRepository) MarkRunSucceeded(ctx context.Context, runID string) error {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = NULL
		WHERE run_id = @run_id
	`, r.table(runsTable))

	err := r.exec(ctx, sql, []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "run_id", Value: runID},
	})
	if err != nil {
		return fmt.Errorf("MarkRunSucceeded: %w", err)
	}
	return nil
}
