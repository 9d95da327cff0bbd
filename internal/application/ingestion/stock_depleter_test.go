package ingestion

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/catalog"
	"github.com/settatam/shop-sub015/internal/domain/inventory"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

func newTestVariant(tenantID uuid.UUID) *catalog.ProductVariant {
	return &catalog.ProductVariant{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           uuid.New(),
		SKU:                 "ABC",
	}
}

func newTestPool(tenantID, variantID uuid.UUID, qty, reserved int64) inventory.Pool {
	return inventory.Pool{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VariantID:           variantID,
		WarehouseID:         uuid.New(),
		Quantity:            decimal.NewFromInt(qty),
		ReservedQuantity:    decimal.NewFromInt(reserved),
	}
}

func decEq(v int64) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(v))
	})
}

func TestStockDepleter_Deplete_SinglePoolCoversAll(t *testing.T) {
	repos := newTestRepos()
	d := NewStockDepleter(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	variant := newTestVariant(tenantID)
	pool := newTestPool(tenantID, variant.ID, 10, 0)

	repos.poolRepo.On("FindByVariantForUpdate", ctx, tenantID, variant.ID).
		Return([]inventory.Pool{pool}, nil)
	repos.poolRepo.On("DecrementQuantity", ctx, pool.ID, decEq(4)).Return(true, nil)

	unfulfilled, err := d.Deplete(ctx, repos.scope, variant, decimal.NewFromInt(4))

	require.NoError(t, err)
	assert.True(t, unfulfilled.IsZero())
	repos.variantRepo.AssertNotCalled(t, "AggregateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestStockDepleter_Deplete_SpansPoolsLargestFirst(t *testing.T) {
	repos := newTestRepos()
	d := NewStockDepleter(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	variant := newTestVariant(tenantID)
	big := newTestPool(tenantID, variant.ID, 5, 0)
	small := newTestPool(tenantID, variant.ID, 3, 0)

	repos.poolRepo.On("FindByVariantForUpdate", ctx, tenantID, variant.ID).
		Return([]inventory.Pool{big, small}, nil)
	repos.poolRepo.On("DecrementQuantity", ctx, big.ID, decEq(5)).Return(true, nil)
	repos.poolRepo.On("DecrementQuantity", ctx, small.ID, decEq(2)).Return(true, nil)

	unfulfilled, err := d.Deplete(ctx, repos.scope, variant, decimal.NewFromInt(7))

	require.NoError(t, err)
	assert.True(t, unfulfilled.IsZero())
	repos.poolRepo.AssertExpectations(t)
}

func TestStockDepleter_Deplete_ReservedQuantityExcluded(t *testing.T) {
	repos := newTestRepos()
	d := NewStockDepleter(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	variant := newTestVariant(tenantID)
	pool := newTestPool(tenantID, variant.ID, 10, 8)

	repos.poolRepo.On("FindByVariantForUpdate", ctx, tenantID, variant.ID).
		Return([]inventory.Pool{pool}, nil)
	repos.poolRepo.On("DecrementQuantity", ctx, pool.ID, decEq(2)).Return(true, nil)
	repos.variantRepo.On("AggregateQuantity", ctx, tenantID, variant.ID).
		Return(decimal.Zero, nil)

	unfulfilled, err := d.Deplete(ctx, repos.scope, variant, decimal.NewFromInt(5))

	require.NoError(t, err)
	assert.True(t, unfulfilled.Equal(decimal.NewFromInt(3)))
}

func TestStockDepleter_Deplete_AggregateFallback(t *testing.T) {
	repos := newTestRepos()
	d := NewStockDepleter(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	variant := newTestVariant(tenantID)

	repos.poolRepo.On("FindByVariantForUpdate", ctx, tenantID, variant.ID).
		Return([]inventory.Pool{}, nil)
	repos.variantRepo.On("AggregateQuantity", ctx, tenantID, variant.ID).
		Return(decimal.NewFromInt(2), nil)
	repos.variantRepo.On("DecrementQuantity", ctx, tenantID, variant.ID, decEq(2)).
		Return(true, nil)

	unfulfilled, err := d.Deplete(ctx, repos.scope, variant, decimal.NewFromInt(3))

	require.NoError(t, err)
	assert.True(t, unfulfilled.Equal(decimal.NewFromInt(1)))
}

func TestStockDepleter_Deplete_ConcurrentDepletionSkipsPool(t *testing.T) {
	repos := newTestRepos()
	d := NewStockDepleter(zap.NewNop())
	ctx := context.Background()

	tenantID := uuid.New()
	variant := newTestVariant(tenantID)
	pool := newTestPool(tenantID, variant.ID, 5, 0)

	repos.poolRepo.On("FindByVariantForUpdate", ctx, tenantID, variant.ID).
		Return([]inventory.Pool{pool}, nil)
	// Another transaction drained the pool between read and write.
	repos.poolRepo.On("DecrementQuantity", ctx, pool.ID, decEq(3)).Return(false, nil)
	repos.variantRepo.On("AggregateQuantity", ctx, tenantID, variant.ID).
		Return(decimal.NewFromInt(3), nil)
	repos.variantRepo.On("DecrementQuantity", ctx, tenantID, variant.ID, decEq(3)).
		Return(true, nil)

	unfulfilled, err := d.Deplete(ctx, repos.scope, variant, decimal.NewFromInt(3))

	require.NoError(t, err)
	assert.True(t, unfulfilled.IsZero())
}

func TestStockDepleter_Deplete_ZeroQuantityNoOp(t *testing.T) {
	repos := newTestRepos()
	d := NewStockDepleter(zap.NewNop())
	ctx := context.Background()

	variant := newTestVariant(uuid.New())

	unfulfilled, err := d.Deplete(ctx, repos.scope, variant, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, unfulfilled.IsZero())
	repos.poolRepo.AssertNotCalled(t, "FindByVariantForUpdate", mock.Anything, mock.Anything, mock.Anything)
}
