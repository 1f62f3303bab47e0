package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/matzehuels/scormlens/pkg/buildinfo"
	"github.com/matzehuels/scormlens/pkg/course"
	"github.com/matzehuels/scormlens/pkg/validate"
)

// Format and Version identify the document layout.
const (
	Format  = "scormlens.analysis"
	Version = 1
)

type document struct {
	Format    string            `json:"format"`
	Version   int               `json:"version"`
	Generator string            `json:"generator,omitempty"`
	Summary   *validate.Summary `json:"summary,omitempty"`
	Analysis  *course.Model     `json:"analysis"`
	// RawManifest carries the manifest bytes when they are not valid UTF-8
	// and would not survive the string field of Analysis.
	RawManifest []byte `json:"raw_manifest_bytes,omitempty"`
}

// WriteJSON encodes m as an indented analysis document.
func WriteJSON(m *course.Model, w io.Writer) error {
	sum := m.Summary()
	out := document{
		Format:    Format,
		Version:   Version,
		Generator: buildinfo.UserAgent(),
		Summary:   &sum,
		Analysis:  m,
	}
	if !utf8.ValidString(m.RawManifest) {
		out.RawManifest = []byte(m.RawManifest)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes m to a JSON file at path.
func ExportJSON(m *course.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(m, f)
}

// Marshal returns the analysis document for m.
func Marshal(m *course.Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
