// Package course assembles the analysis of a SCORM package.
//
// [Build] runs the whole pipeline on raw archive bytes:
//
//	archive.Read → manifest.Parse → resolve.Resolve → validate.Run
//
// Only the first two stages can fail. A package with broken references
// still yields a complete [Model] whose Findings explain what is wrong, so
// callers can show what was parsed next to why it is broken.
//
// Build has no shared state and is safe to call concurrently.
package course

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/matzehuels/scormlens/pkg/archive"
	"github.com/matzehuels/scormlens/pkg/manifest"
	"github.com/matzehuels/scormlens/pkg/resolve"
	"github.com/matzehuels/scormlens/pkg/validate"
)

// Options configures [Build].
type Options struct {
	// Source names the package in the result. Defaults to "package.zip".
	Source string
	// Archive limits passed to the archive reader.
	Archive archive.Options
}

// DefaultSource is used when Options.Source is empty.
const DefaultSource = "package.zip"

// Build analyzes the archive bytes in data.
//
// Errors are *errors.Error values coded CORRUPT_ARCHIVE,
// MANIFEST_NOT_FOUND or MALFORMED_XML. No partial model is returned.
func Build(data []byte, opts Options) (*Model, error) {
	a, err := archive.Read(data, opts.Archive)
	if err != nil {
		return nil, err
	}
	raw := a.Manifest()
	m, err := manifest.Parse(raw)
	if err != nil {
		return nil, err
	}

	files := a.Rooted()
	report := resolve.Resolve(m, files)
	findings := validate.Run(validate.Input{Manifest: m, Files: files, Report: report})

	source := opts.Source
	if source == "" {
		source = DefaultSource
	}
	sum := sha256.Sum256(data)

	model := &Model{
		Source:             source,
		Digest:             hex.EncodeToString(sum[:]),
		ManifestPath:       a.ManifestPath(),
		ManifestCandidates: a.Candidates(),
		Metadata:           m.Metadata,
		Organizations:      m.Organizations,
		Resources:          m.ResourceMap(),
		Findings:           findings,
		RawManifest:        string(raw),
	}
	if model.Findings == nil {
		model.Findings = []validate.Finding{}
	}
	if org, ok := m.Default(); ok {
		model.DefaultOrganization = org.Identifier
		model.Launch = launchOf(m, org)
	}

	seen := make(map[string]bool, len(m.Resources))
	for _, r := range m.Resources {
		if seen[r.Identifier] {
			continue
		}
		seen[r.Identifier] = true
		model.ResourceOrder = append(model.ResourceOrder, r.Identifier)
	}
	model.Counts = countContents(model, a.Len())
	return model, nil
}

func launchOf(m *manifest.Manifest, org *manifest.Organization) *Launch {
	item, ok := manifest.FirstLaunchable(org.Items)
	if !ok {
		return nil
	}
	l := &Launch{ItemID: item.Identifier, ResourceID: item.ResourceRef}
	if r, ok := m.Resource(item.ResourceRef); ok {
		l.Type = r.Type
		l.Href = r.Href
	}
	return l
}

// countContents tallies resource types over the deduplicated resource map.
func countContents(model *Model, files int) Counts {
	c := Counts{Files: files, Resources: len(model.ResourceOrder)}
	for _, id := range model.ResourceOrder {
		if model.Resources[id].Type == manifest.TypeSCO {
			c.SCOs++
		} else {
			c.Assets++
		}
	}
	for i := range model.Organizations {
		c.Items += manifest.CountItems(model.Organizations[i].Items)
	}
	return c
}
