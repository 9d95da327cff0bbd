package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// ProductVariant is the sellable unit the ingestion engine matches line items
// against. Quantity is the variant's aggregate on-hand count, used as the
// depletion fallback when per-warehouse pools run dry.
type ProductVariant struct {
	shared.TenantAggregateRoot
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU            string    `gorm:"not null"`
	Title          string
	Quantity       decimal.Decimal
	Price          decimal.Decimal
	Cost           decimal.Decimal
	WholesalePrice decimal.Decimal
}

// TableName maps ProductVariant to the product_variants table
func (ProductVariant) TableName() string { return "product_variants" }
