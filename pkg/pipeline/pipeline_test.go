package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/scormlens/pkg/archive/archivetest"
	"github.com/matzehuels/scormlens/pkg/cache"
	"github.com/matzehuels/scormlens/pkg/errors"
	"github.com/matzehuels/scormlens/pkg/httputil"
	"github.com/matzehuels/scormlens/pkg/observability"
)

func cleanPackage(t *testing.T) []byte {
	t.Helper()
	return archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12},
		archivetest.File{Name: "index.html", Body: "<html></html>"},
	)
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"csv", false},
		{"findings-csv", false},
		{"pdf", false},
		{"dot", false},
		{"svg", false},
		{"tree", false},
		{"png", true},
		{"CSV", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := Options{}
	if err := opts.Validate(); err != nil {
		t.Errorf("empty options should pass: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Validate should set a discard logger")
	}

	for _, bad := range []Options{
		{Source: "dir/course.zip"},
		{Source: "bad\x00name"},
		{MaxUncompressedBytes: -1},
	} {
		if err := bad.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Validate(%+v) = %v, want INVALID_INPUT", bad, err)
		}
	}
}

func TestSourceName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"course.zip", "course.zip"},
		{"/tmp/uploads/course.zip", "course.zip"},
		{"https://cdn.example.com/packages/safety%20v2.zip?token=abc", "safety v2.zip"},
		{"https://cdn.example.com/", "cdn.example.com"},
	}
	for _, tt := range tests {
		if got := SourceName(tt.in); got != tt.want {
			t.Errorf("SourceName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnalyzeCaching(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	data := cleanPackage(t)

	m, hit, err := r.AnalyzeWithCacheInfo(ctx, data, Options{Source: "a.zip"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if hit {
		t.Error("first analysis should miss the cache")
	}
	if m.Source != "a.zip" || m.HasErrors() {
		t.Errorf("Source = %q, findings = %+v", m.Source, m.Findings)
	}

	again, hit, err := r.AnalyzeWithCacheInfo(ctx, data, Options{Source: "b.zip"})
	if err != nil || !hit {
		t.Fatalf("second analysis hit=%v err=%v, want cache hit", hit, err)
	}
	if again.Source != "b.zip" {
		t.Errorf("cached model Source = %q, want the caller's name", again.Source)
	}
	if again.Digest != m.Digest || again.RawManifest != m.RawManifest {
		t.Error("cached model differs from the built one")
	}

	if _, hit, _ := r.AnalyzeWithCacheInfo(ctx, data, Options{Refresh: true}); hit {
		t.Error("Refresh should bypass the cache")
	}
	if _, hit, _ := r.AnalyzeWithCacheInfo(ctx, data, Options{MaxUncompressedBytes: 1 << 30}); hit {
		t.Error("different limits should use a different cache key")
	}
}

func TestAnalyzeFatalNotCached(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)

	_, _, err := r.AnalyzeWithCacheInfo(ctx, []byte("not a zip"), Options{})
	if !errors.Is(err, errors.ErrCodeCorruptArchive) {
		t.Fatalf("err = %v, want CORRUPT_ARCHIVE", err)
	}
	_, hit, err := r.AnalyzeWithCacheInfo(ctx, []byte("not a zip"), Options{})
	if hit || err == nil {
		t.Errorf("fatal result was cached: hit=%v err=%v", hit, err)
	}
}

func TestAnalyzeFile(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)

	path := filepath.Join(t.TempDir(), "course.zip")
	if err := os.WriteFile(path, cleanPackage(t), 0o644); err != nil {
		t.Fatal(err)
	}
	m, _, err := r.AnalyzeFile(ctx, path, Options{})
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if m.Source != "course.zip" {
		t.Errorf("Source = %q, want the base name", m.Source)
	}

	_, _, err = r.AnalyzeFile(ctx, filepath.Join(t.TempDir(), "missing.zip"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestAnalyzeURL(t *testing.T) {
	ctx := context.Background()
	data := cleanPackage(t)
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requests.Add(1)
		if req.URL.Path != "/pkgs/course.zip" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	r := newRunner(t)
	r.Client = httputil.NewClient(httputil.Options{Attempts: 1, Delay: time.Millisecond})

	m, _, err := r.AnalyzeURL(ctx, srv.URL+"/pkgs/course.zip", Options{})
	if err != nil {
		t.Fatalf("AnalyzeURL: %v", err)
	}
	if m.Source != "course.zip" {
		t.Errorf("Source = %q", m.Source)
	}

	if _, hit, err := r.FetchWithCacheInfo(ctx, srv.URL+"/pkgs/course.zip", false); err != nil || !hit {
		t.Errorf("second fetch hit=%v err=%v, want cache hit", hit, err)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}

	_, _, err = r.AnalyzeURL(ctx, srv.URL+"/missing.zip", Options{})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing URL err = %v, want NOT_FOUND", err)
	}
}

func TestStoreAndLoad(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)

	m, err := r.Analyze(ctx, cleanPackage(t), Options{Source: "stored.zip"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	id, err := r.Store(ctx, m)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	loaded, err := r.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Source != "stored.zip" || loaded.Digest != m.Digest {
		t.Errorf("Load() = %s/%s", loaded.Source, loaded.Digest)
	}

	if _, err := r.Load(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown id err = %v, want NOT_FOUND", err)
	}
	if _, err := r.Load(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("malformed id err = %v, want INVALID_INPUT", err)
	}
}

func TestRenderFormats(t *testing.T) {
	ctx := context.Background()
	r := newRunner(t)
	m, err := r.Analyze(ctx, cleanPackage(t), Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	tests := []struct {
		format string
		prefix string
	}{
		{FormatJSON, "{"},
		{FormatCSV, "Item identifier,Title,Depth"},
		{FormatFindings, "Severity,Category,Identifier,Message"},
		{FormatPDF, "%PDF"},
		{FormatDOT, "digraph G"},
		{FormatTree, "Example Course"},
	}
	for _, tt := range tests {
		out, err := r.Render(ctx, m, tt.format, RenderOptions{})
		if err != nil {
			t.Errorf("Render(%s): %v", tt.format, err)
			continue
		}
		if !bytes.HasPrefix(out, []byte(tt.prefix)) {
			t.Errorf("Render(%s) starts with %q, want %q", tt.format, firstLine(out), tt.prefix)
		}
	}

	if _, err := r.Render(ctx, m, "png", RenderOptions{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(png) err = %v", err)
	}
}

func TestRenderHooks(t *testing.T) {
	observability.Reset()
	t.Cleanup(observability.Reset)
	rec := &renderRecorder{}
	observability.SetPipelineHooks(rec)

	ctx := context.Background()
	r := newRunner(t)
	m, err := r.Analyze(ctx, cleanPackage(t), Options{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, err := r.Render(ctx, m, FormatCSV, RenderOptions{}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rec.analyzed != 1 || strings.Join(rec.formats, ",") != "csv" {
		t.Errorf("hooks saw analyzed=%d formats=%v", rec.analyzed, rec.formats)
	}
}

func TestMediaTypeAndExtension(t *testing.T) {
	if got := MediaType(FormatCSV); got != "text/csv; charset=utf-8" {
		t.Errorf("MediaType(csv) = %q", got)
	}
	if got := Extension(FormatFindings); got != ".findings.csv" {
		t.Errorf("Extension(findings-csv) = %q", got)
	}
	if got := Extension(FormatSVG); got != ".svg" {
		t.Errorf("Extension(svg) = %q", got)
	}
}

type renderRecorder struct {
	observability.NoopPipelineHooks
	analyzed int
	formats  []string
}

func (r *renderRecorder) OnAnalyzeComplete(context.Context, string, int, time.Duration, error) {
	r.analyzed++
}

func (r *renderRecorder) OnRenderComplete(_ context.Context, format string, _ time.Duration, _ error) {
	r.formats = append(r.formats, format)
}

func firstLine(b []byte) string {
	s, _, _ := strings.Cut(string(b), "\n")
	return s
}

func TestAnalyzeCachedLatin1ManifestIsByteIdentical(t *testing.T) {
	manifest := strings.Replace(archivetest.Manifest12, `encoding="UTF-8"`, `encoding="ISO-8859-1"`, 1)
	manifest = strings.Replace(manifest, "Example Course", "Cours de fran\xe7ais", 1)
	data := archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: manifest},
		archivetest.File{Name: "index.html", Body: "<html></html>"},
	)
	r := newRunner(t)
	ctx := context.Background()

	first, hit, err := r.AnalyzeWithCacheInfo(ctx, data, Options{Source: "latin1.zip"})
	if err != nil || hit {
		t.Fatalf("first analysis: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.AnalyzeWithCacheInfo(ctx, data, Options{Source: "latin1.zip"})
	if err != nil || !hit {
		t.Fatalf("second analysis: hit=%v err=%v", hit, err)
	}
	if first.RawManifest != manifest {
		t.Errorf("built RawManifest differs from the archive entry")
	}
	if second.RawManifest != first.RawManifest {
		t.Errorf("cached RawManifest len %d, want %d", len(second.RawManifest), len(first.RawManifest))
	}
	if second.Metadata.Title != first.Metadata.Title {
		t.Errorf("cached Title = %q, want %q", second.Metadata.Title, first.Metadata.Title)
	}
}
