package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/settatam/shop-sub015/internal/domain/catalog"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindBySKU finds a variant by exact SKU match within a tenant
func (r *GormVariantRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.ProductVariant, error) {
	var variant catalog.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&variant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &variant, nil
}

// DecrementQuantity atomically decrements the variant's aggregate quantity by
// take, only if the current quantity still covers it
func (r *GormVariantRepository) DecrementQuantity(ctx context.Context, tenantID, variantID uuid.UUID, take decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&catalog.ProductVariant{}).
		Where("tenant_id = ? AND id = ? AND quantity >= ?", tenantID, variantID, take).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", take),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AggregateQuantity returns the variant's current aggregate quantity
func (r *GormVariantRepository) AggregateQuantity(ctx context.Context, tenantID, variantID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Quantity decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&catalog.ProductVariant{}).
		Select("COALESCE(quantity, 0) as quantity").
		Where("tenant_id = ? AND id = ?", tenantID, variantID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Quantity, nil
}

// Ensure GormVariantRepository implements catalog.VariantRepository
var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
