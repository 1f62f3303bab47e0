// Package api serves package analysis over HTTP.
//
// Clients upload a zip (or name a URL), receive an analysis id and fetch
// the stored result in any output format:
//
//	POST /v1/analyses                          upload a package, returns {"id": ...}
//	GET  /v1/analyses/{id}                     full analysis as JSON
//	GET  /v1/analyses/{id}/content-map.csv     content map download
//	GET  /v1/analyses/{id}/export?format=pdf   any pipeline format
//
// Analyses are stored in the runner's cache, so several server processes
// sharing a Redis cache can serve each other's ids. URL analyses only reach
// public addresses unless Options.AllowPrivateURLs is set.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/matzehuels/scormlens/pkg/config"
	"github.com/matzehuels/scormlens/pkg/httputil"
	"github.com/matzehuels/scormlens/pkg/pipeline"
)

// Options configures a [Server].
type Options struct {
	// MaxUploadBytes caps the request body of uploads. Zero selects the
	// configuration default.
	MaxUploadBytes int64
	// MaxUncompressedBytes caps the inflated archive size, 0 for no limit.
	MaxUncompressedBytes int64
	// Download configures fetches for URL analyses.
	Download httputil.Options
	// AllowPrivateURLs lets URL analyses reach loopback, private and
	// link-local addresses.
	AllowPrivateURLs bool
}

// Server handles API requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server. The runner's cache holds stored analyses.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = config.DefaultMaxUploadBytes
	}
	dl := opts.Download
	dl.PublicOnly = !opts.AllowPrivateURLs
	runner = runner.WithClient(httputil.NewClient(dl))
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler returns the routed, compressed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1/analyses", func(r chi.Router) {
		r.Post("/", s.createAnalysis)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getAnalysis)
			r.Get("/content-map.csv", s.exportFormat(pipeline.FormatCSV))
			r.Get("/findings.csv", s.exportFormat(pipeline.FormatFindings))
			r.Get("/export", s.exportQuery)
		})
	})

	return gzhttp.GzipHandler(r)
}

// logRequests logs one line per request after it completes.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
		}
		if id := middleware.GetReqID(r.Context()); id != "" {
			fields = append(fields, "request_id", id)
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("request", fields...)
			return
		}
		s.logger.Info("request", fields...)
	})
}
