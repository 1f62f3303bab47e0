package course

import (
	"github.com/matzehuels/scormlens/pkg/manifest"
	"github.com/matzehuels/scormlens/pkg/validate"
)

// Model is the analysis result for one package. It is built once by
// [Build] and not modified afterwards; every view reads from it.
type Model struct {
	// Source names where the package came from (file name or URL).
	Source string `json:"source"`
	// Digest is the hex SHA-256 of the archive bytes.
	Digest string `json:"digest"`
	// ManifestPath is the archive path of the selected manifest.
	ManifestPath string `json:"manifest_path"`
	// ManifestCandidates lists every imsmanifest.xml found, selected one
	// first.
	ManifestCandidates []string `json:"manifest_candidates,omitempty"`

	Metadata manifest.Metadata `json:"metadata"`

	Organizations []manifest.Organization `json:"organizations"`
	// DefaultOrganization is the effective default after fallback, empty
	// only when there are no organizations.
	DefaultOrganization string `json:"default_organization,omitempty"`

	// Resources maps identifier to resource; the first declaration wins.
	Resources map[string]manifest.Resource `json:"resources"`
	// ResourceOrder lists the keys of Resources in declaration order.
	ResourceOrder []string `json:"resource_order"`

	Findings []validate.Finding `json:"findings"`
	Counts   Counts             `json:"counts"`
	Launch   *Launch            `json:"launch,omitempty"`

	// RawManifest is the manifest entry exactly as stored in the archive.
	RawManifest string `json:"raw_manifest"`
}

// Counts tallies the package contents.
type Counts struct {
	SCOs      int `json:"scos"`
	Assets    int `json:"assets"`
	Items     int `json:"items"`
	Files     int `json:"files"`
	Resources int `json:"resources"`
}

// Launch describes what an LMS starts when a learner enters the default
// organization.
type Launch struct {
	ItemID     string                `json:"item_id"`
	ResourceID string                `json:"resource_id"`
	Type       manifest.ResourceType `json:"type,omitempty"`
	Href       string                `json:"href,omitempty"`
}

// Summary counts the findings by severity.
func (m *Model) Summary() validate.Summary {
	return validate.Summarize(m.Findings)
}

// HasErrors reports whether any ERROR finding exists.
func (m *Model) HasErrors() bool {
	return m.Summary().Errors > 0
}

// Default returns the effective default organization.
func (m *Model) Default() (*manifest.Organization, bool) {
	for i := range m.Organizations {
		if m.Organizations[i].Identifier == m.DefaultOrganization {
			return &m.Organizations[i], true
		}
	}
	return nil, false
}

// Resource looks up a resource by identifier.
func (m *Model) Resource(id string) (manifest.Resource, bool) {
	r, ok := m.Resources[id]
	return r, ok
}

// OrderedResources returns the resources in declaration order.
func (m *Model) OrderedResources() []manifest.Resource {
	out := make([]manifest.Resource, 0, len(m.ResourceOrder))
	for _, id := range m.ResourceOrder {
		out = append(out, m.Resources[id])
	}
	return out
}

// PrimaryType returns the package's dominant resource type: SCO when any
// SCO exists, otherwise ASSET.
func (m *Model) PrimaryType() manifest.ResourceType {
	if m.Counts.SCOs > 0 {
		return manifest.TypeSCO
	}
	return manifest.TypeAsset
}
