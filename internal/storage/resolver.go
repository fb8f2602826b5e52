package storage

import (
	"log/slog"
	"regexp"
	"time"
)

// SignedURLTTL is how long a resolved image URL remains valid.
const SignedURLTTL = time.Hour

// passThroughRe matches references that are already full URLs and need
// no signing: http(s) links, blob object URLs, and data URIs.
var passThroughRe = regexp.MustCompile(`^(https?://|blob:|data:)`)

// Resolver turns stored image references into URLs a client can load.
type Resolver struct {
	store  ObjectStore
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by the given object store.
func NewResolver(store ObjectStore, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve maps an image reference to a displayable URL.
// Empty references resolve to empty. References that are already URLs
// pass through untouched. Everything else is treated as an object key
// and exchanged for a signed URL; on failure the reference resolves to
// empty rather than surfacing a broken link.
func (r *Resolver) Resolve(ref string) string {
	if ref == "" {
		return ""
	}
	if passThroughRe.MatchString(ref) {
		return ref
	}

	signed, err := r.store.SignedURL(ref, SignedURLTTL)
	if err != nil {
		r.logger.Warn("failed to sign image url", "ref", ref, "error", err)
		return ""
	}
	return signed
}
