package ingestion

// Normalizer translates a platform-specific payload into the engine's
// canonical order shape. Implementations are pure: no I/O, no shared state,
// and no failures for structurally-valid payloads of their platform.
// Missing optional fields default to zero values; unknown status codes map
// to the least-committal status rather than aborting the import.
type Normalizer interface {
	// Platform returns the platform this normalizer handles
	Platform() Platform

	// Normalize converts a raw payload into a NormalizedOrder.
	// The only error condition is a payload missing its external order ID.
	Normalize(payload map[string]any) (*NormalizedOrder, error)
}

// NormalizerRegistry provides access to configured platform normalizers.
// Adapters are selected by platform code; the set of platforms is closed.
type NormalizerRegistry interface {
	// Get returns the normalizer for the platform
	Get(platform Platform) (Normalizer, error)

	// List returns all registered normalizers
	List() []Normalizer
}
