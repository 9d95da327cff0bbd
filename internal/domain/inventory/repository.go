package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PoolRepository defines persistence for inventory pools
type PoolRepository interface {
	// FindByVariantForUpdate loads all pools for a variant with quantity > 0,
	// ordered by quantity descending, under a row lock. The lock serializes
	// concurrent depletions against the same variant until the surrounding
	// transaction commits.
	FindByVariantForUpdate(ctx context.Context, tenantID, variantID uuid.UUID) ([]Pool, error)

	// DecrementQuantity atomically decrements a pool's quantity by take, only
	// if the current quantity is at least take. Returns true when a row was
	// actually updated; false means another process depleted the pool first.
	DecrementQuantity(ctx context.Context, poolID uuid.UUID, take decimal.Decimal) (bool, error)
}
