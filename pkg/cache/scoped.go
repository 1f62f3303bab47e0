package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments
// can share one Redis instance:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AnalysisKey generates a prefixed analysis key.
func (k *ScopedKeyer) AnalysisKey(digest string, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(digest, opts)
}

// RecordKey generates a prefixed record key.
func (k *ScopedKeyer) RecordKey(id string) string {
	return k.prefix + k.inner.RecordKey(id)
}

// DownloadKey generates a prefixed download key.
func (k *ScopedKeyer) DownloadKey(url string) string {
	return k.prefix + k.inner.DownloadKey(url)
}
