// Package jobs defines asynchronous document assessment jobs.
package jobs

import (
	"context"
	"errors"
	"time"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// DefaultMaxRetries applies to jobs published with MaxRetries == 0.
const DefaultMaxRetries = 3

// ErrJobNotFound is returned by JobStore lookups for unknown IDs.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// AssessDocumentJob runs the loan pipeline on one document.
type AssessDocumentJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Source is a local path or gs:// URI of the document.
	Source string `json:"source"`

	// RunID is the pipeline run that produced the latest result.
	RunID string `json:"run_id,omitempty"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	// MaxRetries of 0 means DefaultMaxRetries; a negative value disables retries.
	MaxRetries int `json:"max_retries"`

	// Outcome of the pipeline, set by the handler on completion.
	Recommendation string `json:"recommendation,omitempty"`
	RiskScore      *int   `json:"risk_score,omitempty"`
}

// Publisher enqueues jobs.
type Publisher interface {
	PublishAssessDocument(ctx context.Context, job *AssessDocumentJob) error
	Close() error
}

// Consumer dispatches queued jobs to a handler.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job. A returned error makes the job eligible for retry.
// The handler may record RunID, Recommendation and RiskScore on the job.
type JobHandler func(ctx context.Context, job *AssessDocumentJob) error

// JobStore tracks job state.
type JobStore interface {
	SaveJob(ctx context.Context, job *AssessDocumentJob) error
	GetJob(ctx context.Context, jobID string) (*AssessDocumentJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*AssessDocumentJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	Source string
	Status JobStatus
	Limit  int
	Offset int
}
