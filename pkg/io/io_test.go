package io

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/scormlens/pkg/archive/archivetest"
	"github.com/matzehuels/scormlens/pkg/course"
)

func testModel(t *testing.T) *course.Model {
	t.Helper()
	data := archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12},
	)
	m, err := course.Build(data, course.Options{Source: "demo.zip"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return m
}

func TestRoundTrip(t *testing.T) {
	m := testModel(t)

	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip changed the model:\n got %+v\nwant %+v", got, m)
	}
}

func TestDocumentShape(t *testing.T) {
	m := testModel(t)
	var buf bytes.Buffer
	if err := WriteJSON(m, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if raw["format"] != Format || raw["version"] != float64(Version) {
		t.Errorf("envelope = %v/%v", raw["format"], raw["version"])
	}
	summary, _ := raw["summary"].(map[string]any)
	// index.html is missing: MISSING_FILE for the resource and
	// MISSING_LAUNCH_FILE for the launch item.
	if summary["errors"] != float64(2) {
		t.Errorf("summary = %v, want two errors for the missing index.html", summary)
	}
	analysis, _ := raw["analysis"].(map[string]any)
	meta, _ := analysis["metadata"].(map[string]any)
	if meta["scorm_version"] != "SCORM_1_2" {
		t.Errorf("metadata = %v", meta)
	}
	if analysis["raw_manifest"] != archivetest.Manifest12 {
		t.Error("raw_manifest not preserved")
	}
	if _, ok := raw["raw_manifest_bytes"]; ok {
		t.Error("raw_manifest_bytes written for a UTF-8 manifest")
	}
}

func TestRoundTripLatin1Manifest(t *testing.T) {
	manifest := strings.Replace(archivetest.Manifest12, `encoding="UTF-8"`, `encoding="ISO-8859-1"`, 1)
	manifest = strings.Replace(manifest, "Example Course", "Cours de fran\xe7ais", 1)
	data := archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: manifest},
		archivetest.File{Name: "index.html", Body: "<html></html>"},
	)
	m, err := course.Build(data, course.Options{Source: "latin1.zip"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	payload, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(payload)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.RawManifest != manifest {
		t.Errorf("RawManifest changed: len %d, want %d", len(got.RawManifest), len(manifest))
	}
	if got.Metadata.Title != "Cours de français" {
		t.Errorf("Title = %q", got.Metadata.Title)
	}
}

func TestExportImportFile(t *testing.T) {
	m := testModel(t)
	path := filepath.Join(t.TempDir(), "analysis.json")
	if err := ExportJSON(m, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if got.Digest != m.Digest || got.Source != "demo.zip" {
		t.Errorf("ImportJSON() = %+v", got)
	}
	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON of a missing file should fail")
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name, input, wantErr string
	}{
		{"invalid json", `{`, "decode"},
		{"wrong format", `{"format":"other","version":1}`, "unsupported format"},
		{"wrong version", `{"format":"scormlens.analysis","version":9}`, "unsupported version"},
		{"no analysis", `{"format":"scormlens.analysis","version":1}`, "missing analysis"},
		{"no manifest path", `{"format":"scormlens.analysis","version":1,"analysis":{}}`, "manifest_path"},
		{"bad order", `{"format":"scormlens.analysis","version":1,"analysis":{"manifest_path":"imsmanifest.xml","resource_order":["x"]}}`, "unknown resource"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadJSON() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
