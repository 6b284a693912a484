// Package handlers implements the HTTP endpoints of the assessment API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/neurofin/loan-processor/internal/api/middleware"
	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/gcsuploader"
	infrabq "github.com/neurofin/loan-processor/internal/infra/bigquery"
	"github.com/neurofin/loan-processor/internal/jobs"
)

// Runner processes a document and, when storage is configured, persists it.
type Runner interface {
	Run(ctx context.Context, source string) (*domain.PipelineResult, error)
}

// AssessmentReader reads stored assessments.
type AssessmentReader interface {
	GetAssessment(ctx context.Context, id string) (*infrabq.Assessment, error)
	ListAssessments(ctx context.Context, limit int) ([]*infrabq.Assessment, error)
}

type assessRequest struct {
	Source string `json:"source"`
}

// AssessmentsHandler handles assessment endpoints.
type AssessmentsHandler struct {
	runner    Runner
	reader    AssessmentReader
	publisher jobs.Publisher
	bucket    string
	log       zerolog.Logger
}

// NewAssessmentsHandler creates an assessments handler. reader may be nil when
// storage is disabled; the read endpoints then answer 503. Sources must be
// gs:// URIs, and when bucket is set they must live in that bucket.
func NewAssessmentsHandler(runner Runner, reader AssessmentReader, publisher jobs.Publisher, bucket string, log zerolog.Logger) *AssessmentsHandler {
	return &AssessmentsHandler{
		runner:    runner,
		reader:    reader,
		publisher: publisher,
		bucket:    bucket,
		log:       log,
	}
}

func (h *AssessmentsHandler) decodeSource(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return "", false
	}
	req.Source = strings.TrimSpace(req.Source)
	if req.Source == "" {
		middleware.WriteError(w, http.StatusBadRequest, "source is required")
		return "", false
	}
	bucket, _, err := gcsuploader.ParseURI(req.Source)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "source must be a gs://bucket/object URI")
		return "", false
	}
	if h.bucket != "" && bucket != h.bucket {
		middleware.WriteError(w, http.StatusBadRequest, "source must be in bucket "+h.bucket)
		return "", false
	}
	return req.Source, true
}

// Enqueue handles POST /api/assessments
func (h *AssessmentsHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	source, ok := h.decodeSource(w, r)
	if !ok {
		return
	}

	job := &jobs.AssessDocumentJob{
		JobID:  uuid.NewString(),
		Source: source,
		Status: jobs.JobStatusPending,
	}
	jobID := job.JobID
	if err := h.publisher.PublishAssessDocument(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("source", source).Msg("Failed to enqueue assessment job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue assessment job")
		return
	}

	h.log.Info().Str("job_id", jobID).Str("source", source).Msg("Assessment job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": jobID,
		"source": source,
		"status": string(jobs.JobStatusPending),
	})
}

// AssessSync handles POST /api/assessments/sync. Pipeline failures are part
// of the result and still answer 200.
func (h *AssessmentsHandler) AssessSync(w http.ResponseWriter, r *http.Request) {
	source, ok := h.decodeSource(w, r)
	if !ok {
		return
	}

	result, err := h.runner.Run(r.Context(), source)
	if err != nil {
		h.log.Error().Err(err).Str("source", source).Msg("Failed to store assessment")
		if result == nil {
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to process assessment")
			return
		}
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// ListAssessments handles GET /api/assessments
func (h *AssessmentsHandler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Assessment storage is not configured")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	assessments, err := h.reader.ListAssessments(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list assessments")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list assessments")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": assessments,
		"count":       len(assessments),
	})
}

// GetAssessment handles GET /api/assessments/{id}
func (h *AssessmentsHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	if h.reader == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Assessment storage is not configured")
		return
	}

	id := r.PathValue("id")
	a, err := h.reader.GetAssessment(r.Context(), id)
	if errors.Is(err, infrabq.ErrAssessmentNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Assessment not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("assessment_id", id).Msg("Failed to get assessment")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get assessment")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, a)
}
