package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/scormlens/pkg/archive"
	"github.com/matzehuels/scormlens/pkg/cache"
	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/errors"
	"github.com/matzehuels/scormlens/pkg/httputil"
	scormio "github.com/matzehuels/scormlens/pkg/io"
	"github.com/matzehuels/scormlens/pkg/observability"
)

// Runner encapsulates analysis with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, HTTP client and logger.
// Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Client *httputil.Client
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Client: httputil.NewClient(httputil.Options{}),
		Logger: logger,
	}
}

// AnalyzeWithCacheInfo builds the course model for data and reports
// whether it came from the cache. Fatal analysis errors are not cached.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, data []byte, opts Options) (*course.Model, bool, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	logger := opts.Logger
	source := opts.Source
	if source == "" {
		source = course.DefaultSource
	}

	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, source)
	start := time.Now()

	key := r.Keyer.AnalysisKey(cache.Hash(data), opts.KeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if m, err := scormio.Unmarshal(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "analysis")
				m.Source = source
				logger.Debug("analysis cache hit", "source", source, "digest", m.Digest)
				hooks.OnAnalyzeComplete(ctx, source, len(m.Findings), time.Since(start), nil)
				return m, true, nil
			}
			logger.Warn("discarding unreadable cache entry", "key", key)
		} else if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "analysis")
	}

	m, err := course.Build(data, course.Options{
		Source:  source,
		Archive: archive.Options{MaxUncompressedBytes: opts.MaxUncompressedBytes},
	})
	if err != nil {
		hooks.OnAnalyzeComplete(ctx, source, 0, time.Since(start), err)
		return nil, false, err
	}

	if payload, err := scormio.Marshal(m); err == nil {
		if err := r.Cache.Set(ctx, key, payload, cache.TTLAnalysis); err != nil {
			logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "analysis", len(payload))
		}
	}

	sum := m.Summary()
	logger.Info("analyzed package",
		"source", source,
		"version", m.Metadata.Version,
		"scos", m.Counts.SCOs,
		"assets", m.Counts.Assets,
		"errors", sum.Errors,
		"warnings", sum.Warnings,
		"duration", time.Since(start))
	hooks.OnAnalyzeComplete(ctx, source, len(m.Findings), time.Since(start), nil)
	return m, false, nil
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, data []byte, opts Options) (*course.Model, error) {
	m, _, err := r.AnalyzeWithCacheInfo(ctx, data, opts)
	return m, err
}

// AnalyzeFile reads the archive at path and analyzes it. Source defaults
// to the file's base name.
func (r *Runner) AnalyzeFile(ctx context.Context, path string, opts Options) (*course.Model, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "package %s not found", path)
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	if opts.Source == "" {
		opts.Source = SourceName(path)
	}
	return r.AnalyzeWithCacheInfo(ctx, data, opts)
}

// AnalyzeURL downloads the package at rawURL and analyzes it. Source
// defaults to the last element of the URL path.
func (r *Runner) AnalyzeURL(ctx context.Context, rawURL string, opts Options) (*course.Model, bool, error) {
	data, _, err := r.FetchWithCacheInfo(ctx, rawURL, opts.Refresh)
	if err != nil {
		return nil, false, err
	}
	if opts.Source == "" {
		opts.Source = SourceName(rawURL)
	}
	return r.AnalyzeWithCacheInfo(ctx, data, opts)
}

// FetchWithCacheInfo downloads rawURL, serving repeated downloads from the
// cache unless refresh is set.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, rawURL string, refresh bool) ([]byte, bool, error) {
	key := r.Keyer.DownloadKey(rawURL)
	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "download")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "download")
	}

	start := time.Now()
	data, err := r.Client.Fetch(ctx, rawURL)
	if err != nil {
		return nil, false, err
	}
	r.Logger.Info("downloaded package", "url", rawURL, "bytes", len(data), "duration", time.Since(start))

	if err := r.Cache.Set(ctx, key, data, cache.TTLDownload); err == nil {
		observability.Cache().OnCacheSet(ctx, "download", len(data))
	}
	return data, false, nil
}

// Store saves m under a new random id and returns the id.
func (r *Runner) Store(ctx context.Context, m *course.Model) (string, error) {
	payload, err := scormio.Marshal(m)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode analysis")
	}
	id := uuid.NewString()
	if err := r.Cache.Set(ctx, r.Keyer.RecordKey(id), payload, cache.TTLRecord); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "store analysis")
	}
	observability.Cache().OnCacheSet(ctx, "record", len(payload))
	r.Logger.Debug("stored analysis", "id", id, "source", m.Source)
	return id, nil
}

// Load returns the analysis stored under id. Unknown or expired ids return
// a NOT_FOUND error; ids that are not UUIDs return INVALID_INPUT.
func (r *Runner) Load(ctx context.Context, id string) (*course.Model, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid analysis id %q", id)
	}
	data, hit, err := r.Cache.Get(ctx, r.Keyer.RecordKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load analysis")
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "record")
		return nil, errors.New(errors.ErrCodeNotFound, "analysis %s not found", id)
	}
	observability.Cache().OnCacheHit(ctx, "record")
	m, err := scormio.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode analysis %s", id)
	}
	return m, nil
}

// WithClient returns a copy of r that downloads with c. The copy shares
// the cache, keyer and logger.
func (r *Runner) WithClient(c *httputil.Client) *Runner {
	cp := *r
	cp.Client = c
	return &cp
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
