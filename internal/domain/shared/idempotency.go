package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed job IDs to prevent duplicate processing.
// Deferred jobs are delivered at least once; executors mark each job ID here
// before running so a redelivered job becomes a no-op.
type IdempotencyStore interface {
	// MarkProcessed marks a job as processed with a TTL.
	// Returns true if the job was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, jobID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a job has already been processed
	IsProcessed(ctx context.Context, jobID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed job IDs.
	// After this duration, the same job ID can be processed again.
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
