// Package http exposes the verification service over HTTP: health and
// metrics probes plus the multipart upload endpoint that runs the pipeline
// and returns the verified workbook.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/practicum-geofence/internal/adapter/tabular"
	"github.com/couchcryptid/practicum-geofence/internal/adapter/xlsx"
	"github.com/couchcryptid/practicum-geofence/internal/config"
	"github.com/couchcryptid/practicum-geofence/internal/domain"
	"github.com/couchcryptid/practicum-geofence/internal/observability"
	"github.com/couchcryptid/practicum-geofence/internal/pipeline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Server exposes health, readiness, metrics, and verification endpoints.
type Server struct {
	httpServer *http.Server
	pipe       *pipeline.Pipeline
	preloaded  domain.Registry // from SITES_FILE; nil when not configured
	maxUpload  int64
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates the HTTP server. preloaded may be nil, in which case
// every request must carry its own site coordinates file.
func NewServer(cfg *config.Config, pipe *pipeline.Pipeline, preloaded domain.Registry, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		pipe:      pipe,
		preloaded: preloaded,
		maxUpload: cfg.MaxUploadBytes,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/verify", s.handleVerify)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Verification is request-scoped with no warm-up, so the service is ready
// as soon as it listens.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVerify runs one verification batch. Multipart parts:
//
//	sites       site coordinates file (optional when SITES_FILE preloaded)
//	attendance  raw survey export (required)
//
// Responds with the three-sheet workbook, or JSON when ?format=json.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", s.maxUpload))
			return
		}
		writeError(w, http.StatusBadRequest, "malformed multipart request")
		return
	}

	registry, ok := s.resolveRegistry(w, r)
	if !ok {
		return
	}

	name, data, err := readFormFile(r, "attendance")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing attendance file")
		return
	}
	rows, err := tabular.ReadTable(name, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("attendance file: %v", err))
		return
	}

	result, err := s.pipe.Run(r.Context(), rows, registry)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, verifyResponse{
			SitesLoaded: len(registry),
			Result:      result,
		})
		return
	}

	workbook, err := xlsx.BuildWorkbook(result.Log, result.Students, result.Sites)
	if err != nil {
		s.logger.Error("workbook export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "workbook export failed")
		return
	}
	s.metrics.WorkbookBytes.Observe(float64(len(workbook)))

	filename := fmt.Sprintf("Practicum_Verified_%s.xlsx", s.clock.Now().UTC().Format(time.DateOnly))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

// resolveRegistry builds the registry from the uploaded sites part, falling
// back to the preloaded registry. Writes the error response itself when
// neither is available or the upload fails to parse.
func (s *Server) resolveRegistry(w http.ResponseWriter, r *http.Request) (domain.Registry, bool) {
	name, data, err := readFormFile(r, "sites")
	if err != nil {
		if s.preloaded != nil {
			return s.preloaded, true
		}
		writeError(w, http.StatusBadRequest, "missing sites file and no preloaded registry configured")
		return nil, false
	}

	rows, err := tabular.ReadTable(name, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("sites file: %v", err))
		return nil, false
	}
	registry, err := domain.ParseRegistry(rows)
	if err != nil {
		s.writePipelineError(w, err)
		return nil, false
	}
	return registry, true
}

// writePipelineError maps the two schema-level error kinds to 422 with the
// error text verbatim, so the caller can surface an actionable message.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var schemaErr *domain.SchemaError
	var emptyErr *domain.EmptyRegistryError
	if errors.As(err, &schemaErr) || errors.As(err, &emptyErr) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Error("verification failed", "error", err)
	writeError(w, http.StatusInternalServerError, "verification failed")
}

type verifyResponse struct {
	SitesLoaded int             `json:"sites_loaded"`
	Result      pipeline.Result `json:"result"`
}

func readFormFile(r *http.Request, field string) (string, []byte, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return headerFilename(header), data, nil
}

func headerFilename(h *multipart.FileHeader) string {
	if h == nil {
		return ""
	}
	return h.Filename
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // best-effort response body
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
