package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neurofin/loan-processor/internal/jobs"
	"github.com/neurofin/loan-processor/internal/logger"
)

// Options configures a Queue. Zero values take the defaults.
type Options struct {
	// BufferSize is how many jobs can wait before publishing blocks.
	BufferSize int
	// Workers is the number of concurrent handlers.
	Workers int
	// Backoff is multiplied by the retry count before a failed job is requeued.
	Backoff time.Duration
}

const (
	defaultBufferSize = 100
	defaultWorkers    = 5
	defaultBackoff    = time.Second
)

// Queue is an in-memory Publisher and Consumer backed by a buffered channel
// and a fixed worker pool.
type Queue struct {
	jobChan   chan *jobs.AssessDocumentJob
	closeChan chan struct{}
	wg        sync.WaitGroup
	mu        sync.RWMutex
	store     jobs.JobStore
	closed    bool
	workers   int
	backoff   time.Duration
}

// NewQueue creates a new in-memory job queue. store may be nil.
func NewQueue(opts Options, store jobs.JobStore) *Queue {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	return &Queue{
		jobChan:   make(chan *jobs.AssessDocumentJob, opts.BufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		workers:   opts.Workers,
		backoff:   opts.Backoff,
	}
}

// PublishAssessDocument enqueues a copy of job, filling in ID, status,
// creation time and retry budget on job when unset. Workers never see the
// caller's pointer.
func (q *Queue) PublishAssessDocument(ctx context.Context, job *jobs.AssessDocumentJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return jobs.ErrQueueClosed
	}

	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = jobs.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.MaxRetries == 0 {
		job.MaxRetries = jobs.DefaultMaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveJob(ctx, job); err != nil {
			return fmt.Errorf("failed to save job: %w", err)
		}
	}

	queued := *job
	select {
	case q.jobChan <- &queued:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeChan:
		return jobs.ErrQueueClosed
	}
}

// Start launches the worker pool.
func (q *Queue) Start(ctx context.Context, handler jobs.JobHandler) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return jobs.ErrQueueClosed
	}

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-q.jobChan:
			if job == nil {
				return
			}
			q.processJob(ctx, job, handler)
		}
	}
}

// processJob runs one attempt and schedules a retry with linear backoff on failure.
func (q *Queue) processJob(ctx context.Context, job *jobs.AssessDocumentJob, handler jobs.JobHandler) {
	log := logger.FromContext(ctx).With().
		Str("job_id", job.JobID).
		Str("source", job.Source).
		Int("attempt", job.RetryCount+1).
		Logger()

	job.Status = jobs.JobStatusRunning
	now := time.Now()
	job.StartedAt = &now
	q.save(ctx, job)

	err := q.run(ctx, job, handler)

	completedAt := time.Now()
	job.CompletedAt = &completedAt

	if err == nil {
		job.Status = jobs.JobStatusCompleted
		job.Error = ""
		q.save(ctx, job)
		log.Info().Msg("job completed")
		return
	}

	job.Error = err.Error()
	if job.RetryCount >= job.MaxRetries {
		job.Status = jobs.JobStatusFailed
		q.save(ctx, job)
		log.Error().Err(err).Msg("job failed")
		return
	}

	job.RetryCount++
	job.Status = jobs.JobStatusRetrying
	q.save(ctx, job)

	backoff := time.Duration(job.RetryCount) * q.backoff
	log.Warn().Err(err).Dur("backoff", backoff).Msg("job failed, retrying")

	retry := *job
	time.AfterFunc(backoff, func() {
		retry.Status = jobs.JobStatusPending
		retry.StartedAt = nil
		retry.CompletedAt = nil
		if err := q.PublishAssessDocument(ctx, &retry); err != nil {
			retry.Status = jobs.JobStatusFailed
			q.save(context.WithoutCancel(ctx), &retry)
			log.Error().Err(err).Msg("requeue failed")
		}
	})
}

// run calls handler, turning a panic into an error.
func (q *Queue) run(ctx context.Context, job *jobs.AssessDocumentJob, handler jobs.JobHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job handler panic: %v", r)
		}
	}()
	return handler(ctx, job)
}

func (q *Queue) save(ctx context.Context, job *jobs.AssessDocumentJob) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveJob(ctx, job); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("job_id", job.JobID).Msg("saving job state")
	}
}

// Stop closes the queue and waits for in-flight jobs to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close implements Publisher.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

var (
	_ jobs.Publisher = (*Queue)(nil)
	_ jobs.Consumer  = (*Queue)(nil)
)
