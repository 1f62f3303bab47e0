// Package archive reads SCORM package archives.
//
// A package is a zip file holding an imsmanifest.xml plus the content files
// it references. [Read] opens the archive, records every file entry path and
// extracts the manifest bytes. The resulting [Archive] is immutable and is
// only used for membership lookups.
//
// # Manifest Selection
//
// The manifest is the entry whose base name equals "imsmanifest.xml"
// (case-insensitive), searched at any depth. A bare suffix match is not
// enough: a name such as "old_imsmanifest.xml" ends with the same text but
// is never a candidate. Packages occasionally bundle nested sub-packages, so
// more than one candidate can exist. The policy is:
//
//  1. Fewest directory levels wins (root beats "course/").
//  2. Among equal depths, the shortest path wins.
//  3. Remaining ties are broken lexicographically.
//
// All candidates are kept in [Archive.Candidates] so callers can report the
// ambiguity.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/scormlens/pkg/errors"
)

// ManifestName is the base name of a SCORM manifest entry.
const ManifestName = "imsmanifest.xml"

// Options limits what Read accepts. The zero value imposes no limits.
type Options struct {
	// MaxUncompressedBytes rejects archives whose declared uncompressed size
	// exceeds this many bytes. Zero disables the check.
	MaxUncompressedBytes int64
}

// Archive is the immutable view of an opened package.
type Archive struct {
	entries      []string
	index        map[string]struct{}
	manifestPath string
	manifest     []byte
	candidates   []string
}

// Open reads the archive at path and calls [Read].
func Open(path string, opts Options) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot read %s", path)
	}
	return Read(data, opts)
}

// Read opens data as a zip archive, enumerates its file entries and extracts
// the selected manifest.
//
// Read fails with CORRUPT_ARCHIVE when data is not a zip container (or
// exceeds the configured size limit) and with MANIFEST_NOT_FOUND when no
// entry is named imsmanifest.xml.
func Read(data []byte, opts Options) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "archive could not be opened")
	}

	a := &Archive{index: make(map[string]struct{}, len(zr.File))}
	files := make(map[string]*zip.File, len(zr.File))
	var total uint64

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := normalizeEntry(f.Name)
		if name == "" || ignored(name) {
			continue
		}
		total += f.UncompressedSize64
		if opts.MaxUncompressedBytes > 0 && total > uint64(opts.MaxUncompressedBytes) {
			return nil, errors.New(errors.ErrCodeCorruptArchive,
				"archive could not be opened: uncompressed size exceeds %d bytes", opts.MaxUncompressedBytes)
		}
		if _, dup := a.index[name]; dup {
			continue
		}
		a.index[name] = struct{}{}
		a.entries = append(a.entries, name)
		files[name] = f
		if strings.EqualFold(path.Base(name), ManifestName) {
			a.candidates = append(a.candidates, name)
		}
	}

	if len(a.candidates) == 0 {
		return nil, errors.New(errors.ErrCodeManifestNotFound, "no %s found in archive", ManifestName)
	}

	slices.SortFunc(a.candidates, compareCandidates)
	a.manifestPath = a.candidates[0]

	a.manifest, err = readEntry(files[a.manifestPath])
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCorruptArchive, err, "archive could not be opened: cannot read %s", a.manifestPath)
	}
	return a, nil
}

// Entries returns all file entry paths in archive order.
// The returned slice must not be modified.
func (a *Archive) Entries() []string { return a.entries }

// Len returns the number of file entries.
func (a *Archive) Len() int { return len(a.entries) }

// Has reports whether the archive contains a file at p.
// Paths are case-sensitive and forward-slash separated.
func (a *Archive) Has(p string) bool {
	_, ok := a.index[p]
	return ok
}

// ManifestPath returns the archive path of the selected manifest.
func (a *Archive) ManifestPath() string { return a.manifestPath }

// ManifestDir returns the directory holding the selected manifest, or ""
// when it sits at the archive root.
func (a *Archive) ManifestDir() string {
	dir := path.Dir(a.manifestPath)
	if dir == "." {
		return ""
	}
	return dir
}

// Manifest returns the raw manifest bytes exactly as stored in the archive.
// The returned slice must not be modified.
func (a *Archive) Manifest() []byte { return a.manifest }

// Candidates returns every manifest candidate in selection order.
// The first element is the selected manifest.
func (a *Archive) Candidates() []string { return a.candidates }

// Rooted returns a view whose lookups are relative to the manifest
// directory. Manifest hrefs are relative to the manifest, so a package whose
// manifest lives in "course/" resolves "index.html" to "course/index.html".
func (a *Archive) Rooted() *Rooted {
	return &Rooted{archive: a, prefix: a.ManifestDir()}
}

// Rooted is a manifest-relative view of an [Archive].
type Rooted struct {
	archive *Archive
	prefix  string
}

// Has reports whether p, relative to the manifest directory, exists.
func (r *Rooted) Has(p string) bool {
	if r.prefix == "" {
		return r.archive.Has(p)
	}
	return r.archive.Has(r.prefix + "/" + p)
}

// compareCandidates orders manifest candidates shallowest first, then by
// length, then lexicographically.
func compareCandidates(a, b string) int {
	if da, db := strings.Count(a, "/"), strings.Count(b, "/"); da != db {
		return da - db
	}
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

// normalizeEntry converts an entry name to forward slashes and strips any
// leading "./" or "/".
func normalizeEntry(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	for strings.HasPrefix(name, "./") {
		name = name[2:]
	}
	return strings.TrimLeft(name, "/")
}

// ignored reports whether an entry is archiver noise rather than content.
func ignored(name string) bool {
	return strings.HasPrefix(name, "__MACOSX/")
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}
