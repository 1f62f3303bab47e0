package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/scormlens/pkg/course"
)

// ReadJSON decodes an analysis document from r.
//
// The document must carry the expected format and version and a non-empty
// analysis with a manifest path. Unknown fields are ignored.
func ReadJSON(r io.Reader) (*course.Model, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if doc.Format != Format {
		return nil, fmt.Errorf("unsupported format %q", doc.Format)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("unsupported version %d", doc.Version)
	}
	m := doc.Analysis
	if m == nil {
		return nil, fmt.Errorf("missing analysis")
	}
	if doc.RawManifest != nil {
		m.RawManifest = string(doc.RawManifest)
	}
	if m.ManifestPath == "" {
		return nil, fmt.Errorf("analysis: missing manifest_path")
	}
	for _, id := range m.ResourceOrder {
		if _, ok := m.Resources[id]; !ok {
			return nil, fmt.Errorf("analysis: resource_order names unknown resource %q", id)
		}
	}
	return m, nil
}

// ImportJSON reads an analysis document from the file at path.
func ImportJSON(path string) (*course.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Unmarshal decodes an analysis document from data.
func Unmarshal(data []byte) (*course.Model, error) {
	return ReadJSON(bytes.NewReader(data))
}
