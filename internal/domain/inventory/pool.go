package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// Pool holds the per-warehouse stock count for one product variant.
// Quantity never goes below zero: all depletions run through a conditional
// atomic decrement, never a read-modify-write.
type Pool struct {
	shared.TenantAggregateRoot
	VariantID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pool_variant_warehouse"`
	WarehouseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_pool_variant_warehouse"`
	Quantity         decimal.Decimal
	ReservedQuantity decimal.Decimal
}

// Available returns the quantity not held by reservations
func (p *Pool) Available() decimal.Decimal {
	available := p.Quantity.Sub(p.ReservedQuantity)
	if available.IsNegative() {
		return decimal.Zero
	}
	return available
}

// TableName maps Pool to the inventory_pools table
func (Pool) TableName() string { return "inventory_pools" }
