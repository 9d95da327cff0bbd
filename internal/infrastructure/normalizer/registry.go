package normalizer

import (
	"fmt"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
)

// Registry holds the configured platform normalizers keyed by platform code
type Registry struct {
	normalizers map[ingestion.Platform]ingestion.Normalizer
}

// NewRegistry creates a registry from the given normalizers. A later
// normalizer for the same platform replaces an earlier one.
func NewRegistry(normalizers ...ingestion.Normalizer) *Registry {
	r := &Registry{normalizers: make(map[ingestion.Platform]ingestion.Normalizer, len(normalizers))}
	for _, n := range normalizers {
		r.normalizers[n.Platform()] = n
	}
	return r
}

// NewDefaultRegistry creates a registry with every supported platform
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		NewShopifyNormalizer(),
		NewSquareNormalizer(),
		NewEbayNormalizer(),
		NewEtsyNormalizer(),
	)
}

// Get returns the normalizer for the platform
func (r *Registry) Get(platform ingestion.Platform) (ingestion.Normalizer, error) {
	n, ok := r.normalizers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ingestion.ErrUnknownPlatform, platform)
	}
	return n, nil
}

// List returns all registered normalizers
func (r *Registry) List() []ingestion.Normalizer {
	out := make([]ingestion.Normalizer, 0, len(r.normalizers))
	for _, n := range r.normalizers {
		out = append(out, n)
	}
	return out
}

// Ensure Registry implements the NormalizerRegistry interface
var _ ingestion.NormalizerRegistry = (*Registry)(nil)
