package cache

// formatVersion is mixed into every key. Bump it when the encoding of
// cached values changes so stale entries are never decoded.
const formatVersion = 1

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys for the pipeline stages.
type Keyer interface {
	// ParseKey is the key of a parse result for a source hash and extractor.
	ParseKey(sourceHash, parser string) string
	// ArtifactKey is the key of a rendered artifact for a DOT hash.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ParseKey implements [Keyer].
func (DefaultKeyer) ParseKey(sourceHash, parser string) string {
	return hashKey("parse", formatVersion, sourceHash, parser)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", formatVersion, dotHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance without seeing each other's entries.
//
//	keyer := cache.NewScopedKeyer(nil, "staging:")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ParseKey implements [Keyer].
func (k *ScopedKeyer) ParseKey(sourceHash, parser string) string {
	return k.prefix + k.inner.ParseKey(sourceHash, parser)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(dotHash, opts)
}
