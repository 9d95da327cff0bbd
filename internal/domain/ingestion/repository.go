package ingestion

import (
	"context"

	"github.com/google/uuid"
)

// ExternalOrderRepository defines persistence for the external order ledger
type ExternalOrderRepository interface {
	// Upsert creates or updates the ledger row for (connection, external order
	// id). Normalized status fields, totals, raw platform data and
	// last_synced_at are written on every call; order_id is never touched.
	// Safe to call arbitrarily many times for the same external order.
	Upsert(ctx context.Context, conn *PlatformConnection, n *NormalizedOrder) (*ExternalOrderRecord, error)

	// FindByExternalID finds a ledger row by its natural key
	FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalOrderID string) (*ExternalOrderRecord, error)

	// Save persists changes to an existing ledger row
	Save(ctx context.Context, rec *ExternalOrderRecord) error
}

// ConnectionRepository defines persistence for platform connections
type ConnectionRepository interface {
	// FindByID finds a connection by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PlatformConnection, error)

	// Save persists changes to an existing connection
	Save(ctx context.Context, conn *PlatformConnection) error
}
