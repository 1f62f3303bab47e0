// Package resolve cross-checks a parsed manifest against the archive's file
// listing.
//
// Resolution is pure: it reads a [manifest.Manifest] and a [FileSet] and
// returns a [Report] describing every reference that does not resolve. It
// performs no I/O and never fails. The validate package turns a Report into
// findings.
//
// Three kinds of references are checked:
//
//   - Resource files: the href and every <file> path of each resource must
//     exist in the archive.
//   - Item references: every item identifierref must name a declared
//     resource.
//   - Resource dependencies: every <dependency> identifierref must name a
//     declared resource.
//
// Paths are compared case-sensitively, matching how an LMS web server
// resolves them on most platforms. Absolute URLs are not archive members and
// are skipped.
package resolve

import (
	"net/url"

	"github.com/matzehuels/scormlens/pkg/manifest"
)

// FileSet answers archive membership queries. Paths are relative to the
// manifest directory and use forward slashes.
type FileSet interface {
	Has(path string) bool
}

// MissingFile is a dependent path of a resource that is absent from the
// archive.
type MissingFile struct {
	ResourceID string `json:"resource_id"`
	Path       string `json:"path"`
}

// BrokenRef is an identifier reference with no matching resource. For item
// references From is the item identifier; for dependencies it is the owning
// resource identifier.
type BrokenRef struct {
	From       string `json:"from"`
	ResourceID string `json:"resource_id"`
}

// Report lists unresolved references in deterministic order: resources in
// declaration order, items in document order.
type Report struct {
	MissingFiles       []MissingFile `json:"missing_files,omitempty"`
	BrokenRefs         []BrokenRef   `json:"broken_refs,omitempty"`
	BrokenDependencies []BrokenRef   `json:"broken_dependencies,omitempty"`
}

// Clean reports whether every reference resolved.
func (r Report) Clean() bool {
	return len(r.MissingFiles) == 0 && len(r.BrokenRefs) == 0 && len(r.BrokenDependencies) == 0
}

// MissingIn returns the missing paths of one resource.
func (r Report) MissingIn(resourceID string) []string {
	var out []string
	for _, mf := range r.MissingFiles {
		if mf.ResourceID == resourceID {
			out = append(out, mf.Path)
		}
	}
	return out
}

// Resolve checks m against files.
func Resolve(m *manifest.Manifest, files FileSet) Report {
	var rep Report
	resources := m.ResourceMap()

	for _, res := range m.Resources {
		for _, p := range res.Paths() {
			if !Exists(files, p) {
				rep.MissingFiles = append(rep.MissingFiles, MissingFile{ResourceID: res.Identifier, Path: p})
			}
		}
		for _, dep := range res.Dependencies {
			if _, ok := resources[dep]; !ok {
				rep.BrokenDependencies = append(rep.BrokenDependencies, BrokenRef{From: res.Identifier, ResourceID: dep})
			}
		}
	}

	for i := range m.Organizations {
		manifest.Walk(m.Organizations[i].Items, func(it *manifest.Item, _ int) bool {
			if it.ResourceRef == "" {
				return true
			}
			if _, ok := resources[it.ResourceRef]; !ok {
				rep.BrokenRefs = append(rep.BrokenRefs, BrokenRef{From: it.Identifier, ResourceID: it.ResourceRef})
			}
			return true
		})
	}
	return rep
}

// Exists reports whether p is satisfied by files. External URLs always
// count as present. A percent-encoded path also matches its decoded form
// ("my%20file.html" matches the entry "my file.html").
func Exists(files FileSet, p string) bool {
	if p == "" || manifest.IsExternal(p) {
		return true
	}
	if files.Has(p) {
		return true
	}
	if decoded, err := url.PathUnescape(p); err == nil && decoded != p {
		return files.Has(decoded)
	}
	return false
}
