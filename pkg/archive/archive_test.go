package archive_test

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/matzehuels/scormlens/pkg/archive"
	"github.com/matzehuels/scormlens/pkg/archive/archivetest"
	"github.com/matzehuels/scormlens/pkg/errors"
)

func TestReadRootManifest(t *testing.T) {
	data := archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12},
		archivetest.File{Name: "content/"},
		archivetest.File{Name: "index.html", Body: "<html></html>"},
		archivetest.File{Name: "content/page.html", Body: "page"},
	)

	a, err := archive.Read(data, archive.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	want := []string{"imsmanifest.xml", "index.html", "content/page.html"}
	if !slices.Equal(a.Entries(), want) {
		t.Errorf("Entries() = %v, want %v", a.Entries(), want)
	}
	if a.Has("content/") || a.Has("content") {
		t.Error("directories should not be listed as entries")
	}
	if a.ManifestPath() != "imsmanifest.xml" {
		t.Errorf("ManifestPath() = %q", a.ManifestPath())
	}
	if a.ManifestDir() != "" {
		t.Errorf("ManifestDir() = %q, want empty", a.ManifestDir())
	}
	if !bytes.Equal(a.Manifest(), []byte(archivetest.Manifest12)) {
		t.Error("manifest bytes differ from archive entry")
	}
}

func TestReadCaseSensitiveMembership(t *testing.T) {
	data := archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12},
		archivetest.File{Name: "Index.html", Body: "x"},
	)

	a, err := archive.Read(data, archive.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.Has("index.html") {
		t.Error("Has should be case-sensitive")
	}
	if !a.Has("Index.html") {
		t.Error("Has(Index.html) = false, want true")
	}
}

func TestReadNestedManifestSelection(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		want      string
		wantCands int
	}{
		{
			name:      "root beats nested",
			files:     []string{"course/sub/imsmanifest.xml", "imsmanifest.xml"},
			want:      "imsmanifest.xml",
			wantCands: 2,
		},
		{
			name:      "shallowest nested",
			files:     []string{"pkg/inner/imsmanifest.xml", "pkg/imsmanifest.xml"},
			want:      "pkg/imsmanifest.xml",
			wantCands: 2,
		},
		{
			name:      "same depth shorter wins",
			files:     []string{"course-long/imsmanifest.xml", "a/imsmanifest.xml"},
			want:      "a/imsmanifest.xml",
			wantCands: 2,
		},
		{
			name:      "lexicographic tie break",
			files:     []string{"b/imsmanifest.xml", "a/imsmanifest.xml"},
			want:      "a/imsmanifest.xml",
			wantCands: 2,
		},
		{
			name:      "case-insensitive name",
			files:     []string{"course/IMSManifest.XML"},
			want:      "course/IMSManifest.XML",
			wantCands: 1,
		},
		{
			name:      "suffix alone is not a manifest",
			files:     []string{"old_imsmanifest.xml", "deep/dir/imsmanifest.xml"},
			want:      "deep/dir/imsmanifest.xml",
			wantCands: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var files []archivetest.File
			for _, f := range tt.files {
				files = append(files, archivetest.File{Name: f, Body: archivetest.Manifest12})
			}
			a, err := archive.Read(archivetest.Zip(t, files...), archive.Options{})
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if a.ManifestPath() != tt.want {
				t.Errorf("ManifestPath() = %q, want %q", a.ManifestPath(), tt.want)
			}
			if len(a.Candidates()) != tt.wantCands {
				t.Errorf("Candidates() = %v, want %d", a.Candidates(), tt.wantCands)
			}
		})
	}
}

func TestRootedLookup(t *testing.T) {
	data := archivetest.Zip(t,
		archivetest.File{Name: "course/imsmanifest.xml", Body: archivetest.Manifest12},
		archivetest.File{Name: "course/index.html", Body: "x"},
	)

	a, err := archive.Read(data, archive.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.ManifestDir() != "course" {
		t.Fatalf("ManifestDir() = %q, want course", a.ManifestDir())
	}
	r := a.Rooted()
	if !r.Has("index.html") {
		t.Error("Rooted().Has(index.html) = false, want true")
	}
	if r.Has("course/index.html") {
		t.Error("Rooted() should resolve relative to the manifest directory")
	}
}

func TestReadIgnoresMacOSMetadata(t *testing.T) {
	data := archivetest.Zip(t,
		archivetest.File{Name: "__MACOSX/._imsmanifest.xml", Body: "junk"},
		archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12},
	)

	a, err := archive.Read(data, archive.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.Len() != 1 {
		t.Errorf("Len() = %d, want 1", a.Len())
	}
}

func TestReadManifestNotFound(t *testing.T) {
	data := archivetest.Zip(t,
		archivetest.File{Name: "index.html", Body: "x"},
		archivetest.File{Name: "manifest.xml", Body: "<manifest/>"},
	)

	_, err := archive.Read(data, archive.Options{})
	if !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Fatalf("Read error = %v, want %s", err, errors.ErrCodeManifestNotFound)
	}
}

func TestReadCorruptArchive(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("this is not a zip file")},
		{"truncated", archivetest.Zip(t, archivetest.File{Name: "imsmanifest.xml", Body: "x"})[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := archive.Read(tt.data, archive.Options{})
			if !errors.Is(err, errors.ErrCodeCorruptArchive) {
				t.Errorf("Read error = %v, want %s", err, errors.ErrCodeCorruptArchive)
			}
		})
	}
}

func TestReadSizeLimit(t *testing.T) {
	data := archivetest.Zip(t,
		archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12},
		archivetest.File{Name: "big.bin", Body: string(make([]byte, 4096))},
	)

	if _, err := archive.Read(data, archive.Options{MaxUncompressedBytes: 1024}); !errors.Is(err, errors.ErrCodeCorruptArchive) {
		t.Errorf("Read error = %v, want %s", err, errors.ErrCodeCorruptArchive)
	}
	if _, err := archive.Read(data, archive.Options{MaxUncompressedBytes: 1 << 20}); err != nil {
		t.Errorf("Read within limit: %v", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.zip")
	data := archivetest.Zip(t, archivetest.File{Name: "imsmanifest.xml", Body: archivetest.Manifest12})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := archive.Open(path, archive.Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if a.ManifestPath() != "imsmanifest.xml" {
		t.Errorf("ManifestPath() = %q", a.ManifestPath())
	}

	if _, err := archive.Open(filepath.Join(t.TempDir(), "missing.zip"), archive.Options{}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Open missing error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}
