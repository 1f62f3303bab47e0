package cache

import "fmt"

// Keyer derives cache keys.
type Keyer interface {
	// AnalysisKey identifies the course model built from an archive.
	AnalysisKey(digest string, opts AnalysisKeyOpts) string

	// RecordKey identifies an analysis stored under an id.
	RecordKey(id string) string

	// DownloadKey identifies the bytes of a package fetched from url.
	DownloadKey(url string) string
}

// AnalysisKeyOpts lists the options that change an analysis result.
type AnalysisKeyOpts struct {
	MaxUncompressedBytes int64 `json:"max_uncompressed_bytes,omitempty"`
}

// analyzerRevision is part of every analysis key. Bump it when the model
// or the checks change so stale entries are ignored.
const analyzerRevision = 1

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// AnalysisKey hashes the digest together with the options.
func (DefaultKeyer) AnalysisKey(digest string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", analyzerRevision, digest, opts)
}

// RecordKey returns "record:<id>".
func (DefaultKeyer) RecordKey(id string) string {
	return fmt.Sprintf("record:%s", id)
}

// DownloadKey hashes the URL.
func (DefaultKeyer) DownloadKey(url string) string {
	return hashKey("download", url)
}

var _ Keyer = DefaultKeyer{}
