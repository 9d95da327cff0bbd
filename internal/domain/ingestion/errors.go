package ingestion

import "errors"

var (
	// ErrUnknownPlatform indicates no normalizer is registered for a platform
	ErrUnknownPlatform = errors.New("ingestion: unknown platform")
	// ErrMissingExternalOrderID indicates a payload without an order identifier
	ErrMissingExternalOrderID = errors.New("ingestion: payload missing external order id")
	// ErrConnectionNotFound indicates an unknown platform connection reference
	ErrConnectionNotFound = errors.New("ingestion: platform connection not found")
	// ErrAlreadyImported indicates an import attempt for an imported record
	ErrAlreadyImported = errors.New("ingestion: external order already imported")
)
