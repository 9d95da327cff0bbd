package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/settatam/shop-sub015/internal/domain/inventory"
)

// GormPoolRepository implements inventory.PoolRepository using GORM
type GormPoolRepository struct {
	db *gorm.DB
}

// NewGormPoolRepository creates a new GormPoolRepository
func NewGormPoolRepository(db *gorm.DB) *GormPoolRepository {
	return &GormPoolRepository{db: db}
}

// FindByVariantForUpdate loads all pools for a variant with quantity > 0,
// ordered by quantity descending, under SELECT ... FOR UPDATE. The lock is
// held until the surrounding transaction commits, serializing concurrent
// depletions against the same variant.
func (r *GormPoolRepository) FindByVariantForUpdate(ctx context.Context, tenantID, variantID uuid.UUID) ([]inventory.Pool, error) {
	var pools []inventory.Pool
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND variant_id = ? AND quantity > 0", tenantID, variantID).
		Order("quantity DESC").
		Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

// DecrementQuantity atomically decrements a pool's quantity by take, only if
// the current quantity still covers it. The WHERE guard plus RowsAffected is
// what keeps quantity from ever going negative under concurrent depletions.
func (r *GormPoolRepository) DecrementQuantity(ctx context.Context, poolID uuid.UUID, take decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.Pool{}).
		Where("id = ? AND quantity >= ?", poolID, take).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", take),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Ensure GormPoolRepository implements inventory.PoolRepository
var _ inventory.PoolRepository = (*GormPoolRepository)(nil)
