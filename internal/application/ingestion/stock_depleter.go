package ingestion

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/catalog"
)

// StockDepleter walks an external sale's quantity through the variant's
// per-warehouse pools and, as a last resort, the variant's aggregate count.
// The sale already happened on the platform, so depletion takes what it can
// and reports the rest instead of rejecting the order.
type StockDepleter struct {
	logger *zap.Logger
}

// NewStockDepleter creates a stock depleter
func NewStockDepleter(logger *zap.Logger) *StockDepleter {
	return &StockDepleter{logger: logger}
}

// Deplete decrements stock for a variant by quantity and returns the portion
// it could not fulfill. It must run inside the import transaction: the locked
// pool read serializes concurrent depletions against the same variant until
// the transaction commits.
//
// Every write is a conditional decrement that only applies while the stored
// quantity still covers the take, so no pool or aggregate ever goes negative
// even when a competing transaction drained the row between our read and our
// write. A decrement that affects zero rows simply contributes nothing.
func (d *StockDepleter) Deplete(ctx context.Context, repos TransactionalRepositories, variant *catalog.ProductVariant, quantity decimal.Decimal) (decimal.Decimal, error) {
	remaining := quantity
	if !remaining.IsPositive() {
		return decimal.Zero, nil
	}

	pools, err := repos.PoolRepo().FindByVariantForUpdate(ctx, variant.TenantID, variant.ID)
	if err != nil {
		return remaining, err
	}

	for i := range pools {
		if !remaining.IsPositive() {
			break
		}
		pool := &pools[i]

		take := decimal.Min(pool.Available(), remaining)
		if !take.IsPositive() {
			continue
		}

		updated, err := repos.PoolRepo().DecrementQuantity(ctx, pool.ID, take)
		if err != nil {
			return remaining, err
		}
		if !updated {
			// Another process depleted this pool after our read.
			d.logger.Debug("pool depleted concurrently, skipping",
				zap.String("pool_id", pool.ID.String()),
				zap.String("variant_id", variant.ID.String()))
			continue
		}
		remaining = remaining.Sub(take)
	}

	if remaining.IsPositive() {
		remaining, err = d.depleteAggregate(ctx, repos, variant, remaining)
		if err != nil {
			return remaining, err
		}
	}

	if remaining.IsPositive() {
		d.logger.Warn("stock depletion left unfulfilled quantity",
			zap.String("variant_id", variant.ID.String()),
			zap.String("sku", variant.SKU),
			zap.String("requested", quantity.String()),
			zap.String("unfulfilled", remaining.String()))
	}

	return remaining, nil
}

func (d *StockDepleter) depleteAggregate(ctx context.Context, repos TransactionalRepositories, variant *catalog.ProductVariant, remaining decimal.Decimal) (decimal.Decimal, error) {
	available, err := repos.VariantRepo().AggregateQuantity(ctx, variant.TenantID, variant.ID)
	if err != nil {
		return remaining, err
	}

	take := decimal.Min(available, remaining)
	if !take.IsPositive() {
		return remaining, nil
	}

	updated, err := repos.VariantRepo().DecrementQuantity(ctx, variant.TenantID, variant.ID, take)
	if err != nil {
		return remaining, err
	}
	if !updated {
		return remaining, nil
	}
	return remaining.Sub(take), nil
}
