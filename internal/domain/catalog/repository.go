package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantRepository defines persistence for product variants
type VariantRepository interface {
	// FindBySKU finds a variant by exact SKU match within a tenant.
	// Returns shared.ErrNotFound when no variant carries the SKU.
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*ProductVariant, error)

	// DecrementQuantity atomically decrements the variant's aggregate quantity
	// by take, only if the current quantity is at least take. Returns true when
	// a row was actually updated.
	DecrementQuantity(ctx context.Context, tenantID, variantID uuid.UUID, take decimal.Decimal) (bool, error)

	// AggregateQuantity returns the variant's current aggregate quantity
	AggregateQuantity(ctx context.Context, tenantID, variantID uuid.UUID) (decimal.Decimal, error)
}
