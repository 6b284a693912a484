// Package api wires the HTTP surface of the loan processor.
package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/neurofin/loan-processor/internal/api/handlers"
	"github.com/neurofin/loan-processor/internal/api/middleware"
	"github.com/neurofin/loan-processor/internal/compliance"
	"github.com/neurofin/loan-processor/internal/jobs"
)

// Deps are the collaborators behind the routes. Reader may be nil. Bucket,
// when set, is the only GCS bucket assessments may be read from.
// AllowedOrigins limits CORS; empty allows any origin.
type Deps struct {
	Runner    handlers.Runner
	Reader    handlers.AssessmentReader
	Publisher jobs.Publisher
	Jobs      jobs.JobStore
	Engine    *compliance.Engine
	Bucket    string
	Log       zerolog.Logger

	AllowedOrigins []string
}

// NewRouter registers every route and wraps the mux in the middleware chain.
func NewRouter(d Deps) http.Handler {
	assessments := handlers.NewAssessmentsHandler(d.Runner, d.Reader, d.Publisher, d.Bucket, d.Log)
	jobsHandler := handlers.NewJobsHandler(d.Jobs, d.Log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/assessments", assessments.Enqueue)
	mux.HandleFunc("POST /api/assessments/sync", assessments.AssessSync)
	mux.HandleFunc("GET /api/assessments", assessments.ListAssessments)
	mux.HandleFunc("GET /api/assessments/{id}", assessments.GetAssessment)
	mux.HandleFunc("GET /api/jobs", jobsHandler.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", jobsHandler.GetJob)
	mux.HandleFunc("GET /api/rules", handlers.Rules(d.Engine))
	mux.HandleFunc("GET /health", handlers.Health)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(d.Log),
		middleware.Recovery,
		middleware.CORS(d.AllowedOrigins...),
	)
}
