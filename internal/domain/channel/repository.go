package channel

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for sales channels
type Repository interface {
	// FindByID finds a channel by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*SalesChannel, error)

	// FindByConnection finds the channel linked to a platform connection
	FindByConnection(ctx context.Context, tenantID, connectionID uuid.UUID) (*SalesChannel, error)

	// FindByPlatform finds the first channel for a platform within a tenant
	FindByPlatform(ctx context.Context, tenantID uuid.UUID, platform string) (*SalesChannel, error)

	// ExistsByCode reports whether a channel with the code exists for the tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// Create persists a new channel. Returns shared.ErrAlreadyExists when the
	// (tenant, code) unique constraint is violated, so callers can retry with
	// the next collision suffix.
	Create(ctx context.Context, c *SalesChannel) error

	// Save persists changes to an existing channel
	Save(ctx context.Context, c *SalesChannel) error
}
