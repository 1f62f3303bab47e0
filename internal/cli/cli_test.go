package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/scormlens/pkg/archive/archivetest"
	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/errors"
	scormio "github.com/matzehuels/scormlens/pkg/io"
	"github.com/matzehuels/scormlens/pkg/observability"
	"github.com/matzehuels/scormlens/pkg/validate"
)

const brokenManifest = `<?xml version="1.0"?>
<manifest identifier="broken" xmlns="http://www.imsglobal.org/xsd/imscp_v1p1"
    xmlns:adlcp="http://www.adlnet.org/xsd/adlcp_v1p3">
  <metadata><schema>ADL SCORM</schema><schemaversion>2004 4th Edition</schemaversion></metadata>
  <organizations default="org1">
    <organization identifier="org1">
      <title>Broken Course</title>
      <item identifier="i1" identifierref="ghost"><title>Orphan</title></item>
    </organization>
  </organizations>
  <resources>
    <resource identifier="r1" type="webcontent" adlcp:scormType="sco" href="start.html"/>
  </resources>
</manifest>`

// isolate points config and cache lookups at temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	return cacheHome
}

func writePackage(t *testing.T, name string, files ...archivetest.File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, archivetest.Zip(t, files...), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func cleanPackage(t *testing.T) string {
	return writePackage(t, "course.zip",
		archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12},
		archivetest.File{Name: "index.html", Body: "<html></html>"},
	)
}

func brokenPackage(t *testing.T) string {
	return writePackage(t, "broken.zip",
		archivetest.File{Name: "imsmanifest.xml", Body: brokenManifest},
	)
}

// run executes the root command and returns what it wrote to its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInspectSummary(t *testing.T) {
	isolate(t)
	out, err := run(t, "inspect", cleanPackage(t))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Summary", "Example Course", "SCORM 1.2", "index.html", validate.NoProblemsDetected} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectViews(t *testing.T) {
	isolate(t)
	out, err := run(t, "inspect", "--view", "content,tree,raw", cleanPackage(t))
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Content Map", "Item identifier", "item1", "Hierarchy", "Lesson 1", "<schemaversion>1.2</schemaversion>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "Validation") {
		t.Error("findings view printed without being selected")
	}
}

func TestInspectStrict(t *testing.T) {
	isolate(t)
	path := brokenPackage(t)

	out, err := run(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect without --strict should succeed: %v", err)
	}
	if !strings.Contains(out, "BROKEN_ITEM_REFERENCE") && !strings.Contains(out, "ghost") {
		t.Errorf("broken reference not reported:\n%s", out)
	}

	_, err = run(t, "inspect", "--strict", path)
	var exit *ExitError
	if !stderrors.As(err, &exit) || exit.Code != 2 {
		t.Errorf("inspect --strict error = %v, want exit status 2", err)
	}

	if _, err := run(t, "inspect", "--strict", cleanPackage(t)); err != nil {
		t.Errorf("clean package with --strict: %v", err)
	}
}

func TestInspectFatal(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "notes.zip")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, "inspect", path)
	if err == nil || !strings.HasPrefix(err.Error(), "archive failed:") {
		t.Errorf("error = %v, want archive stage failure", err)
	}

	_, err = run(t, "inspect", filepath.Join(t.TempDir(), "missing.zip"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestInspectUnknownView(t *testing.T) {
	isolate(t)
	if _, err := run(t, "inspect", "--view", "graph", cleanPackage(t)); err == nil {
		t.Error("unknown view accepted")
	}
}

func TestParseViews(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{"", []string{viewSummary, viewFindings}, false},
		{"tree", []string{viewTree}, false},
		{"Tree, raw,tree", []string{viewTree, viewRaw}, false},
		{"all", allViews, false},
		{"summary,bogus", nil, true},
	}
	for _, tt := range tests {
		got, err := parseViews(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseViews(%q) error = %v", tt.in, err)
			continue
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseViews(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExportCSV(t *testing.T) {
	isolate(t)
	dest := filepath.Join(t.TempDir(), "map.csv")
	if _, err := run(t, "export", "-o", dest, cleanPackage(t)); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Item identifier,Title,Depth") || !strings.HasPrefix(lines[1], "item1,Lesson 1,0,res1,SCO,index.html") {
		t.Errorf("csv = %q", data)
	}
}

func TestExportJSONToStdout(t *testing.T) {
	isolate(t)
	out, err := run(t, "export", "-f", "json", "-o", "-", cleanPackage(t))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	m, err := scormio.Unmarshal([]byte(out))
	if err != nil {
		t.Fatalf("output is not an analysis: %v", err)
	}
	if m.Source != "course.zip" || m.Counts.SCOs != 1 {
		t.Errorf("model = %q, %+v", m.Source, m.Counts)
	}
}

func TestExportRejectsRenderFormats(t *testing.T) {
	isolate(t)
	_, err := run(t, "export", "-f", "svg", cleanPackage(t))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderTree(t *testing.T) {
	isolate(t)
	out, err := run(t, "render", "--resources", "--detailed", cleanPackage(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Lesson 1 [item1] → index.html") {
		t.Errorf("tree output:\n%s", out)
	}
}

func TestRenderDOT(t *testing.T) {
	isolate(t)
	dest := filepath.Join(t.TempDir(), "course.dot")
	if _, err := run(t, "render", "-f", "dot", "--resources", "-o", dest, cleanPackage(t)); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") || !strings.Contains(string(data), `"res:res1"`) {
		t.Errorf("dot = %s", data)
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		source, format, want string
	}{
		{"course.zip", "csv", "course.csv"},
		{"Course.ZIP", "pdf", "Course.pdf"},
		{"course.zip", "findings-csv", "course.findings.csv"},
		{"bundle.pif", "json", "bundle.json"},
		{"course", "dot", "course.dot"},
		{"", "csv", "package.csv"},
	}
	for _, tt := range tests {
		if got := outputName(tt.source, tt.format); got != tt.want {
			t.Errorf("outputName(%q, %q) = %q, want %q", tt.source, tt.format, got, tt.want)
		}
	}
}

func TestReadStdin(t *testing.T) {
	if _, err := readStdin(strings.NewReader(""), 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty stdin error = %v", err)
	}
	if _, err := readStdin(strings.NewReader("0123456789A"), 10); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("oversized stdin error = %v", err)
	}
	data, err := readStdin(strings.NewReader("0123456789"), 10)
	if err != nil || string(data) != "0123456789" {
		t.Errorf("readStdin = %q, %v", data, err)
	}
}

func TestCacheCommands(t *testing.T) {
	cacheHome := isolate(t)
	dir := filepath.Join(cacheHome, appName)

	out, err := run(t, "cache", "path")
	if err != nil || strings.TrimSpace(out) != dir {
		t.Fatalf("cache path = %q, %v; want %q", out, err, dir)
	}

	if _, err := run(t, "inspect", cleanPackage(t)); err != nil {
		t.Fatal(err)
	}
	if n, _ := countEntries(dir); n == 0 {
		t.Fatal("inspect did not populate the cache")
	}

	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n, _ := countEntries(dir); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
}

func TestNoCacheLeavesCacheEmpty(t *testing.T) {
	cacheHome := isolate(t)
	if _, err := run(t, "inspect", "--no-cache", cleanPackage(t)); err != nil {
		t.Fatal(err)
	}
	if n, _ := countEntries(filepath.Join(cacheHome, appName)); n != 0 {
		t.Errorf("--no-cache wrote %d entries", n)
	}
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	out, err := run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, `backend = "file"`) || !strings.Contains(out, `listen = ":8080"`) {
		t.Errorf("config show:\n%s", out)
	}
}

func TestConfigFlag(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", path, "config", "show")
	if err != nil || !strings.Contains(out, `backend = "none"`) {
		t.Errorf("config show with --config = %q, %v", out, err)
	}

	if _, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "config", "show"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing --config error = %v", err)
	}
}

func TestCompletion(t *testing.T) {
	isolate(t)
	out, err := run(t, "completion", "bash")
	if err != nil || !strings.Contains(out, "scormlens") {
		t.Errorf("completion bash: %v", err)
	}
}

func analyzeFixture(t *testing.T) *course.Model {
	t.Helper()
	data := archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12},
		archivetest.File{Name: "index.html", Body: "<html></html>"},
	)
	m, err := course.Build(data, course.Options{Source: "course.zip"})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewerModelTabs(t *testing.T) {
	m := NewViewerModel(analyzeFixture(t))
	if len(m.Tabs) != 5 {
		t.Fatalf("tabs = %d, want 5", len(m.Tabs))
	}
	titles := []string{"Summary", "Validation", "Content Map", "Hierarchy", "Raw Manifest"}
	for i, want := range titles {
		if m.Tabs[i].title != want {
			t.Errorf("tab %d = %q, want %q", i, m.Tabs[i].title, want)
		}
	}

	steps := []struct {
		key  string
		want int
	}{
		{"tab", 1},
		{"tab", 2},
		{"left", 1},
		{"1", 0},
		{"left", 4},
		{"tab", 0},
		{"5", 4},
		{"9", 4},
	}
	var model tea.Model = m
	for _, s := range steps {
		model, _ = model.Update(key(s.key))
		if got := model.(ViewerModel).Active; got != s.want {
			t.Fatalf("after %q active = %d, want %d", s.key, got, s.want)
		}
	}

	view := model.View()
	if !strings.Contains(view, "Raw Manifest") || !strings.Contains(view, "<manifest") {
		t.Errorf("view:\n%s", view)
	}
}

func TestViewerModelScroll(t *testing.T) {
	m := NewViewerModel(analyzeFixture(t))
	m.Active = 4 // raw manifest is the longest tab
	m.Height = 5

	var model tea.Model = m
	model, _ = model.Update(key("down"))
	if got := model.(ViewerModel).Offset; got != 1 {
		t.Errorf("offset after down = %d", got)
	}
	model, _ = model.Update(key("G"))
	lines := len(m.Tabs[4].lines)
	if got := model.(ViewerModel).Offset; got != lines-5 {
		t.Errorf("offset after G = %d, want %d", got, lines-5)
	}
	model, _ = model.Update(key("g"))
	if got := model.(ViewerModel).Offset; got != 0 {
		t.Errorf("offset after g = %d", got)
	}

	_, cmd := model.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestVerboseLogsStageTimings(t *testing.T) {
	isolate(t)
	t.Cleanup(observability.Reset)

	var logs, out bytes.Buffer
	root := New(&logs, LogDebug).RootCommand()
	root.SetArgs([]string{"render", "-f", "dot", "-o", "-", cleanPackage(t)})
	root.SetOut(&out)
	root.SetErr(&logs)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"analyze start", "analyze done", "render done", "format=dot"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("debug log missing %q:\n%s", want, logs.String())
		}
	}
}
