package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/errors"
	scormio "github.com/matzehuels/scormlens/pkg/io"
	"github.com/matzehuels/scormlens/pkg/pipeline"
	"github.com/matzehuels/scormlens/pkg/validate"
)

// nameHeader names an uploaded package when no ?name= is given.
const nameHeader = "X-Package-Name"

// urlRequest asks the server to download and analyze a package.
type urlRequest struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// createResponse is returned by POST /v1/analyses.
type createResponse struct {
	ID       string           `json:"id"`
	Source   string           `json:"source"`
	Version  string           `json:"scorm_version"`
	Title    string           `json:"title,omitempty"`
	Summary  validate.Summary `json:"summary"`
	Verdict  string           `json:"verdict"`
	Cached   bool             `json:"cached"`
	Location string           `json:"location"`
}

// createAnalysis accepts either a zip body or a JSON {"url": ...} request.
func (s *Server) createAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	opts := pipeline.Options{
		Source:               uploadName(r),
		MaxUncompressedBytes: s.opts.MaxUncompressedBytes,
		Logger:               s.logger,
	}

	var (
		m   *course.Model
		hit bool
		err error
	)
	if isJSON(r.Header.Get("Content-Type")) {
		var req urlRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
			return
		}
		if err := errors.ValidateURL(req.URL); err != nil {
			s.writeError(w, err)
			return
		}
		if req.Name != "" {
			opts.Source = req.Name
		}
		m, hit, err = s.runner.AnalyzeURL(ctx, req.URL, opts)
	} else {
		data, rerr := io.ReadAll(body)
		if rerr != nil {
			s.writeError(w, readError(rerr, s.opts.MaxUploadBytes))
			return
		}
		if len(data) == 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "request body is empty"))
			return
		}
		m, hit, err = s.runner.AnalyzeWithCacheInfo(ctx, data, opts)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	id, err := s.runner.Store(ctx, m)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sum := m.Summary()
	location := "/v1/analyses/" + id
	w.Header().Set("Location", location)
	writeJSON(w, http.StatusCreated, createResponse{
		ID:       id,
		Source:   m.Source,
		Version:  m.Metadata.Version.Label(),
		Title:    m.Metadata.Title,
		Summary:  sum,
		Verdict:  sum.Verdict(),
		Cached:   hit,
		Location: location,
	})
}

// getAnalysis returns the stored analysis document.
func (s *Server) getAnalysis(w http.ResponseWriter, r *http.Request) {
	m, err := s.runner.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := scormio.WriteJSON(m, w); err != nil {
		s.logger.Warn("write analysis", "error", err)
	}
}

// exportFormat serves the stored analysis in a fixed format.
func (s *Server) exportFormat(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.export(w, r, format)
	}
}

// exportQuery serves the stored analysis in ?format= (default csv).
func (s *Server) exportQuery(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatCSV
	}
	s.export(w, r, format)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, format string) {
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	ctx := r.Context()
	m, err := s.runner.Load(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	q := r.URL.Query()
	data, err := s.runner.Render(ctx, m, format, pipeline.RenderOptions{
		Resources: q.Get("resources") == "true",
		Detailed:  q.Get("detailed") == "true",
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.MediaType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": downloadName(m.Source, format),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// uploadName picks the package name from ?name=, the X-Package-Name header
// or the Content-Disposition filename, in that order.
func uploadName(r *http.Request) string {
	if name := r.URL.Query().Get("name"); name != "" {
		return name
	}
	if name := r.Header.Get(nameHeader); name != "" {
		return name
	}
	if cd := r.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			return params["filename"]
		}
	}
	return ""
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

func downloadName(source, format string) string {
	base := strings.TrimSuffix(source, ".zip")
	if base == "" {
		base = strings.TrimSuffix(course.DefaultSource, ".zip")
	}
	return base + pipeline.Extension(format)
}

// readError classifies a failed body read; oversized bodies report the
// limit.
func readError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return &statusError{
			status: http.StatusRequestEntityTooLarge,
			err:    errors.New(errors.ErrCodeInvalidInput, "package exceeds upload limit of %d bytes", limit),
		}
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
}

// statusError forces a response status for errors whose code alone does
// not determine it.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string { return e.err.Error() }
func (e *statusError) Unwrap() error { return e.err }
