// Package pipeline runs package analysis with caching for the CLI and API.
//
// This package wraps [course.Build] with the concerns every entry point
// shares: a result cache keyed by archive digest, package downloads,
// stored analyses addressed by id, logging, observability hooks and
// rendering to the supported output formats. Keeping them here means the
// CLI and the HTTP API behave the same way for the same input.
//
// # Usage
//
// Create a Runner and analyze archive bytes:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	model, err := runner.Analyze(ctx, data, pipeline.Options{Source: "course.zip"})
//	if err != nil {
//	    log.Fatal(errors.UserMessage(err))
//	}
//
// Fetch a remote package, store the result, render it:
//
//	model, err := runner.AnalyzeURL(ctx, "https://cdn.example.com/course.zip", opts)
//	id, err := runner.Store(ctx, model)
//	csv, err := runner.Render(ctx, model, pipeline.FormatCSV, pipeline.RenderOptions{})
package pipeline

import (
	"io"
	"net/url"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scormlens/pkg/cache"
	"github.com/matzehuels/scormlens/pkg/errors"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatFindings = "findings-csv"
	FormatPDF      = "pdf"
	FormatDOT      = "dot"
	FormatSVG      = "svg"
	FormatTree     = "tree"
)

// Formats lists every supported output format.
var Formats = []string{FormatJSON, FormatCSV, FormatFindings, FormatPDF, FormatDOT, FormatSVG, FormatTree}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(Formats, ", "))
	}
	return nil
}

// MediaType returns the HTTP content type of a format.
func MediaType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatCSV, FormatFindings:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	}
	return "text/plain; charset=utf-8"
}

// Extension returns the file extension used when writing a format.
func Extension(format string) string {
	switch format {
	case FormatFindings:
		return ".findings.csv"
	case FormatTree:
		return ".txt"
	}
	return "." + format
}

// Options configures one analysis.
type Options struct {
	// Source names the package in reports. Defaults to course.DefaultSource.
	Source string `json:"source,omitempty"`

	// MaxUncompressedBytes rejects archives that inflate beyond this size.
	// Zero disables the check.
	MaxUncompressedBytes int64 `json:"max_uncompressed_bytes,omitempty"`

	// Refresh skips cache lookups. Results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Logger overrides the runner's logger for this call.
	Logger *log.Logger `json:"-"`
}

// Validate checks the options and applies defaults.
func (o *Options) Validate() error {
	if o.Source != "" {
		if err := errors.ValidateSourceName(o.Source); err != nil {
			return err
		}
	}
	if o.MaxUncompressedBytes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max uncompressed bytes cannot be negative")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// KeyOpts returns the cache key options for the analysis.
func (o *Options) KeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{MaxUncompressedBytes: o.MaxUncompressedBytes}
}

// SourceName derives a report name from a file path or URL: its last path
// element, without query or fragment.
func SourceName(pathOrURL string) string {
	if u, err := url.Parse(pathOrURL); err == nil && u.Scheme != "" && u.Host != "" {
		name := path.Base(u.Path)
		if name == "/" || name == "." {
			return u.Host
		}
		if unescaped, err := url.PathUnescape(name); err == nil {
			return unescaped
		}
		return name
	}
	return filepath.Base(pathOrURL)
}
