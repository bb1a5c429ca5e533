// Package httpadapter serves the health, readiness, metrics and run-trigger endpoints.
package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-ranking/internal/domain"
	"github.com/couchcryptid/weather-ranking/internal/pipeline"
)

// ReportRunner runs the ranking pipeline once and returns its report.
type ReportRunner interface {
	RunReport(ctx context.Context) (domain.RunInfo, domain.ReportTable, error)
}

// RunResponse is the body of a successful POST /runs.
type RunResponse struct {
	RunID     string     `json:"run_id"`
	StartedAt time.Time  `json:"started_at"`
	Header    []string   `json:"header"`
	Rows      [][]string `json:"rows"`
}

// Server exposes health, readiness, metrics and run-trigger HTTP endpoints.
type Server struct {
	httpServer *http.Server
	runner     ReportRunner
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics routes.
// POST /runs is registered only when runner is non-nil. runTimeout bounds a
// triggered run; zero means unbounded and disables the write timeout.
func NewServer(addr string, ready sharedobs.ReadinessChecker, runner ReportRunner, runTimeout time.Duration, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout(runner, runTimeout),
			IdleTimeout:  60 * time.Second,
		},
		runner: runner,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if runner != nil {
		mux.HandleFunc("POST /runs", s.handleRun)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeTimeout(runner ReportRunner, runTimeout time.Duration) time.Duration {
	const base = 10 * time.Second
	switch {
	case runner == nil:
		return base
	case runTimeout <= 0:
		return 0
	default:
		return max(base, runTimeout+5*time.Second)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	run, table, err := s.runner.RunReport(r.Context())
	if err != nil {
		status := runErrorStatus(err)
		s.logger.Error("triggered run failed", "run_id", run.ID, "status", status, "error", err)
		sharedobs.WriteJSON(w, status, map[string]string{
			"run_id": run.ID,
			"error":  err.Error(),
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, RunResponse{
		RunID:     run.ID,
		StartedAt: run.StartedAt,
		Header:    table.Header,
		Rows:      table.Rows,
	})
}

func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBatchTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
