package cache

// DesignKeyOpts holds the options that change a design's encoded form.
type DesignKeyOpts struct {
	Compress bool `json:"compress"`
}

// Keyer derives cache keys.
type Keyer interface {
	// DesignKey returns the key of an encoded snapshot. Digests identify
	// the design's files in load order; see [FileDigest].
	DesignKey(digests []string, opts DesignKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DesignKey implements Keyer.
func (DefaultKeyer) DesignKey(digests []string, opts DesignKeyOpts) string {
	return designKey(digests, opts)
}

// FileDigest identifies one design file by its role and content. The role
// is part of the digest because the same LEF loaded as a technology file
// or as a library file yields a different database.
func FileDigest(role string, content []byte) string {
	return role + ":" + Hash(content)
}

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis instance without seeing each other's entries.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// If inner is nil, a DefaultKeyer is used.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DesignKey generates a prefixed design key.
func (k *ScopedKeyer) DesignKey(digests []string, opts DesignKeyOpts) string {
	return k.prefix + k.inner.DesignKey(digests, opts)
}
