package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/catalog"
	"github.com/settatam/shop-sub015/internal/domain/channel"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/inventory"
	"github.com/settatam/shop-sub015/internal/domain/order"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

type importerFixture struct {
	repos     *testRepos
	scheduler *MockJobScheduler
	notifier  *MockOversellNotifier
	importer  *Importer

	tenantID uuid.UUID
	conn     *ingestion.PlatformConnection
	chann    *channel.SalesChannel
}

func newImporterFixture(t *testing.T, normalized *ingestion.NormalizedOrder) *importerFixture {
	t.Helper()

	repos := newTestRepos()
	scheduler := new(MockJobScheduler)
	notifier := new(MockOversellNotifier)
	logger := zap.NewNop()

	tenantID := uuid.New()
	conn := &ingestion.PlatformConnection{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Platform:            ingestion.PlatformShopify,
		Name:                "Main Store",
	}

	chann, err := channel.New(tenantID, "Main Store", "SHOPIFY")
	require.NoError(t, err)
	chID := chann.ID
	conn.ChannelID = &chID

	registry := &stubRegistry{normalizer: &stubNormalizer{
		platform: ingestion.PlatformShopify,
		result:   normalized,
	}}

	importer := NewImporter(
		registry,
		repos.connRepo,
		repos.externalRepo,
		repos.scope,
		NewChannelProvisioner(logger),
		NewStockDepleter(logger),
		NewStatusSynchronizer(repos.scope, logger),
		scheduler,
		notifier,
		logger,
	)

	return &importerFixture{
		repos:     repos,
		scheduler: scheduler,
		notifier:  notifier,
		importer:  importer,
		tenantID:  tenantID,
		conn:      conn,
		chann:     chann,
	}
}

func normalizedOrderFixture() *ingestion.NormalizedOrder {
	return &ingestion.NormalizedOrder{
		ExternalOrderID:     "EXT-1001",
		ExternalOrderNumber: "#1001",
		Status:              order.StatusConfirmed,
		FulfillmentStatus:   order.FulfillmentUnfulfilled,
		PaymentStatus:       order.PaymentStatusPaid,
		Subtotal:            decimal.NewFromInt(80),
		ShippingTotal:       decimal.NewFromInt(10),
		TaxTotal:            decimal.NewFromInt(10),
		DiscountTotal:       decimal.Zero,
		Total:               decimal.NewFromInt(100),
		Currency:            "USD",
		Customer: ingestion.NormalizedCustomer{
			Email:     "buyer@example.com",
			FirstName: "Ana",
			LastName:  "Reyes",
		},
		OrderedAt: time.Now(),
		Items: []ingestion.NormalizedLineItem{
			{
				ExternalLineID: "line-1",
				SKU:            "ABC",
				Title:          "Widget",
				Quantity:       decimal.NewFromInt(2),
				UnitPrice:      decimal.NewFromInt(40),
			},
		},
	}
}

func TestImporter_ProcessWebhook_FirstImport(t *testing.T) {
	n := normalizedOrderFixture()
	f := newImporterFixture(t, n)
	ctx := context.Background()

	variant := &catalog.ProductVariant{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ProductID:           uuid.New(),
		SKU:                 "ABC",
		Quantity:            decimal.NewFromInt(10),
		Cost:                decimal.NewFromInt(15),
	}
	pool := inventory.Pool{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		VariantID:           variant.ID,
		WarehouseID:         uuid.New(),
		Quantity:            decimal.NewFromInt(5),
	}
	rec := &ingestion.ExternalOrderRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ConnectionID:        f.conn.ID,
		ExternalOrderID:     n.ExternalOrderID,
	}

	f.repos.connRepo.On("FindByID", ctx, f.conn.ID).Return(f.conn, nil)
	f.repos.externalRepo.On("Upsert", ctx, f.conn, n).Return(rec, nil)
	f.repos.channelRepo.On("FindByID", ctx, f.tenantID, f.chann.ID).Return(f.chann, nil)
	f.repos.orderRepo.On("NextOrderNumber", ctx, f.tenantID).Return("SO-2026-00001", nil)
	f.repos.customerRepo.On("FindOrCreateByEmail", ctx, f.tenantID,
		"buyer@example.com", "Ana", "Reyes", "").Return(&order.Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		Email:               "buyer@example.com",
	}, nil)
	f.repos.variantRepo.On("FindBySKU", ctx, f.tenantID, "ABC").Return(variant, nil)
	f.repos.orderRepo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.repos.poolRepo.On("FindByVariantForUpdate", ctx, f.tenantID, variant.ID).
		Return([]inventory.Pool{pool}, nil)
	f.repos.poolRepo.On("DecrementQuantity", ctx, pool.ID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(2)) })).
		Return(true, nil)
	f.repos.paymentRepo.On("Create", ctx, mock.AnythingOfType("*order.Payment")).Return(nil)
	f.repos.externalRepo.On("Save", ctx, rec).Return(nil)
	f.scheduler.On("Schedule", ctx, ingestion.JobTypeStatusResync,
		mock.AnythingOfType("ingestion.ResyncPayload"), 60*time.Second).Return(nil)

	result, err := f.importer.ProcessWebhook(ctx, f.conn.ID, map[string]any{"id": "EXT-1001"})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.AlreadyImported)
	require.NotNil(t, result.OrderID)
	assert.Empty(t, result.Oversells)
	assert.True(t, rec.IsImported())
	assert.Equal(t, *result.OrderID, *rec.OrderID)

	createdOrder := f.repos.orderRepo.Calls[1].Arguments.Get(1).(*order.Order)
	assert.Equal(t, "SO-2026-00001", createdOrder.OrderNumber)
	assert.Equal(t, order.StatusConfirmed, createdOrder.Status)
	assert.True(t, createdOrder.Total.Equal(decimal.NewFromInt(100)))
	require.Len(t, createdOrder.Items, 1)
	assert.Equal(t, "ABC", createdOrder.Items[0].SKU)
	assert.NotNil(t, createdOrder.Items[0].VariantID)
	assert.True(t, createdOrder.Items[0].UnitCost.Equal(decimal.NewFromInt(15)))

	createdPayment := f.repos.paymentRepo.Calls[0].Arguments.Get(1).(*order.Payment)
	assert.True(t, createdPayment.Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, order.PaymentMethodExternal, createdPayment.Method)

	f.notifier.AssertNotCalled(t, "NotifyOversold", mock.Anything, mock.Anything)
	f.scheduler.AssertExpectations(t)
}

func TestImporter_ProcessWebhook_DuplicateDelivery(t *testing.T) {
	n := normalizedOrderFixture()
	n.Status = order.StatusShipped
	f := newImporterFixture(t, n)
	ctx := context.Background()

	orderID := uuid.New()
	rec := &ingestion.ExternalOrderRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ConnectionID:        f.conn.ID,
		ExternalOrderID:     n.ExternalOrderID,
		OrderID:             &orderID,
	}

	existing, err := order.New(f.tenantID, "SO-2026-00001", order.StatusConfirmed)
	require.NoError(t, err)
	existing.ID = orderID

	f.repos.connRepo.On("FindByID", ctx, f.conn.ID).Return(f.conn, nil)
	f.repos.externalRepo.On("Upsert", ctx, f.conn, n).Return(rec, nil)
	f.repos.orderRepo.On("FindByIDForTenant", ctx, f.tenantID, orderID).Return(existing, nil)
	f.repos.orderRepo.On("UpdateStatus", ctx, f.tenantID, orderID, order.StatusShipped).Return(nil)

	result, err := f.importer.ProcessWebhook(ctx, f.conn.ID, map[string]any{"id": "EXT-1001"})

	require.NoError(t, err)
	assert.True(t, result.AlreadyImported)
	require.NotNil(t, result.OrderID)
	assert.Equal(t, orderID, *result.OrderID)

	// No second order, no payment, no new follow-up jobs.
	f.repos.orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.repos.paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.scheduler.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImporter_ProcessWebhook_BackwardStatusIgnoredOnDuplicate(t *testing.T) {
	n := normalizedOrderFixture()
	n.Status = order.StatusPending
	f := newImporterFixture(t, n)
	ctx := context.Background()

	orderID := uuid.New()
	rec := &ingestion.ExternalOrderRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ConnectionID:        f.conn.ID,
		ExternalOrderID:     n.ExternalOrderID,
		OrderID:             &orderID,
	}

	existing, err := order.New(f.tenantID, "SO-2026-00001", order.StatusShipped)
	require.NoError(t, err)
	existing.ID = orderID

	f.repos.connRepo.On("FindByID", ctx, f.conn.ID).Return(f.conn, nil)
	f.repos.externalRepo.On("Upsert", ctx, f.conn, n).Return(rec, nil)
	f.repos.orderRepo.On("FindByIDForTenant", ctx, f.tenantID, orderID).Return(existing, nil)

	_, err = f.importer.ProcessWebhook(ctx, f.conn.ID, map[string]any{"id": "EXT-1001"})

	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, existing.Status)
	f.repos.orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImporter_ProcessWebhook_Oversell(t *testing.T) {
	n := normalizedOrderFixture()
	n.Items[0].Quantity = decimal.NewFromInt(3)
	n.PaymentStatus = order.PaymentStatusPending
	f := newImporterFixture(t, n)
	ctx := context.Background()

	variant := &catalog.ProductVariant{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ProductID:           uuid.New(),
		SKU:                 "ABC",
	}
	pool := inventory.Pool{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		VariantID:           variant.ID,
		WarehouseID:         uuid.New(),
		Quantity:            decimal.NewFromInt(1),
	}
	rec := &ingestion.ExternalOrderRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ConnectionID:        f.conn.ID,
		ExternalOrderID:     n.ExternalOrderID,
	}

	f.repos.connRepo.On("FindByID", ctx, f.conn.ID).Return(f.conn, nil)
	f.repos.externalRepo.On("Upsert", ctx, f.conn, n).Return(rec, nil)
	f.repos.channelRepo.On("FindByID", ctx, f.tenantID, f.chann.ID).Return(f.chann, nil)
	f.repos.orderRepo.On("NextOrderNumber", ctx, f.tenantID).Return("SO-2026-00002", nil)
	f.repos.customerRepo.On("FindOrCreateByEmail", ctx, f.tenantID,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&order.Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
	}, nil)
	f.repos.variantRepo.On("FindBySKU", ctx, f.tenantID, "ABC").Return(variant, nil)
	f.repos.orderRepo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.repos.poolRepo.On("FindByVariantForUpdate", ctx, f.tenantID, variant.ID).
		Return([]inventory.Pool{pool}, nil)
	f.repos.poolRepo.On("DecrementQuantity", ctx, pool.ID,
		mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(1)) })).
		Return(true, nil)
	f.repos.variantRepo.On("AggregateQuantity", ctx, f.tenantID, variant.ID).
		Return(decimal.Zero, nil)
	f.repos.externalRepo.On("Save", ctx, rec).Return(nil)
	f.notifier.On("NotifyOversold", ctx, mock.MatchedBy(func(fact ingestion.OversellFact) bool {
		return fact.SKU == "ABC" && fact.Unfulfilled.Equal(decimal.NewFromInt(2))
	})).Return(nil)
	f.scheduler.On("Schedule", ctx, ingestion.JobTypeStatusResync,
		mock.AnythingOfType("ingestion.ResyncPayload"), 60*time.Second).Return(nil)

	result, err := f.importer.ProcessWebhook(ctx, f.conn.ID, map[string]any{"id": "EXT-1001"})

	require.NoError(t, err)
	require.Len(t, result.Oversells, 1)
	assert.True(t, result.Oversells[0].Requested.Equal(decimal.NewFromInt(3)))
	assert.True(t, result.Oversells[0].Unfulfilled.Equal(decimal.NewFromInt(2)))
	f.notifier.AssertExpectations(t)
}

func TestImporter_ProcessWebhook_RefundSchedulesReturnsResync(t *testing.T) {
	n := normalizedOrderFixture()
	n.PaymentStatus = order.PaymentStatusRefunded
	n.Status = order.StatusRefunded
	f := newImporterFixture(t, n)
	ctx := context.Background()

	rec := &ingestion.ExternalOrderRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ConnectionID:        f.conn.ID,
		ExternalOrderID:     n.ExternalOrderID,
	}

	f.repos.connRepo.On("FindByID", ctx, f.conn.ID).Return(f.conn, nil)
	f.repos.externalRepo.On("Upsert", ctx, f.conn, n).Return(rec, nil)
	f.repos.channelRepo.On("FindByID", ctx, f.tenantID, f.chann.ID).Return(f.chann, nil)
	f.repos.orderRepo.On("NextOrderNumber", ctx, f.tenantID).Return("SO-2026-00003", nil)
	f.repos.customerRepo.On("FindOrCreateByEmail", ctx, f.tenantID,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&order.Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
	}, nil)
	f.repos.variantRepo.On("FindBySKU", ctx, f.tenantID, "ABC").
		Return(nil, shared.ErrNotFound)
	f.repos.orderRepo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.repos.externalRepo.On("Save", ctx, rec).Return(nil)
	f.scheduler.On("Schedule", ctx, ingestion.JobTypeStatusResync,
		mock.AnythingOfType("ingestion.ResyncPayload"), 60*time.Second).Return(nil)
	f.scheduler.On("Schedule", ctx, ingestion.JobTypeReturnsResync,
		mock.AnythingOfType("ingestion.ResyncPayload"), 90*time.Second).Return(nil)

	result, err := f.importer.ProcessWebhook(ctx, f.conn.ID, map[string]any{"id": "EXT-1001"})

	require.NoError(t, err)
	require.NotNil(t, result.OrderID)
	f.scheduler.AssertExpectations(t)

	// Unmatched SKU leaves the item unlinked with no stock effect.
	createdOrder := f.repos.orderRepo.Calls[1].Arguments.Get(1).(*order.Order)
	require.Len(t, createdOrder.Items, 1)
	assert.Nil(t, createdOrder.Items[0].VariantID)
	f.repos.poolRepo.AssertNotCalled(t, "FindByVariantForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestImporter_ProcessWebhook_ScheduleFailureDoesNotFailImport(t *testing.T) {
	n := normalizedOrderFixture()
	n.PaymentStatus = order.PaymentStatusPending
	f := newImporterFixture(t, n)
	ctx := context.Background()

	rec := &ingestion.ExternalOrderRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ConnectionID:        f.conn.ID,
		ExternalOrderID:     n.ExternalOrderID,
	}

	f.repos.connRepo.On("FindByID", ctx, f.conn.ID).Return(f.conn, nil)
	f.repos.externalRepo.On("Upsert", ctx, f.conn, n).Return(rec, nil)
	f.repos.channelRepo.On("FindByID", ctx, f.tenantID, f.chann.ID).Return(f.chann, nil)
	f.repos.orderRepo.On("NextOrderNumber", ctx, f.tenantID).Return("SO-2026-00004", nil)
	f.repos.customerRepo.On("FindOrCreateByEmail", ctx, f.tenantID,
		mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&order.Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
	}, nil)
	f.repos.variantRepo.On("FindBySKU", ctx, f.tenantID, "ABC").
		Return(nil, shared.ErrNotFound)
	f.repos.orderRepo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
	f.repos.externalRepo.On("Save", ctx, rec).Return(nil)
	f.scheduler.On("Schedule", ctx, ingestion.JobTypeStatusResync,
		mock.AnythingOfType("ingestion.ResyncPayload"), 60*time.Second).
		Return(errors.New("queue full"))

	result, err := f.importer.ProcessWebhook(ctx, f.conn.ID, map[string]any{"id": "EXT-1001"})

	require.NoError(t, err)
	require.NotNil(t, result.OrderID)
}

func TestImporter_ProcessWebhook_ConnectionNotFound(t *testing.T) {
	f := newImporterFixture(t, normalizedOrderFixture())
	ctx := context.Background()
	unknownID := uuid.New()

	f.repos.connRepo.On("FindByID", ctx, unknownID).Return(nil, shared.ErrNotFound)

	result, err := f.importer.ProcessWebhook(ctx, unknownID, map[string]any{"id": "EXT-1001"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ingestion.ErrConnectionNotFound)
}

func TestImporter_Resync(t *testing.T) {
	f := newImporterFixture(t, normalizedOrderFixture())
	ctx := context.Background()

	orderID := uuid.New()
	rec := &ingestion.ExternalOrderRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(f.tenantID),
		ConnectionID:        f.conn.ID,
		ExternalOrderID:     "EXT-1001",
		Status:              order.StatusConfirmed,
		OrderID:             &orderID,
	}
	existing, err := order.New(f.tenantID, "SO-2026-00001", order.StatusConfirmed)
	require.NoError(t, err)
	existing.ID = orderID

	f.repos.externalRepo.On("FindByExternalID", ctx, f.conn.ID, "EXT-1001").Return(rec, nil)
	f.repos.externalRepo.On("Save", ctx, rec).Return(nil)
	f.repos.orderRepo.On("FindByIDForTenant", ctx, f.tenantID, orderID).Return(existing, nil)
	f.repos.orderRepo.On("UpdateStatus", ctx, f.tenantID, orderID, order.StatusShipped).Return(nil)

	err = f.importer.Resync(ctx, f.conn.ID, "EXT-1001", ResyncDTO{
		Status:            "shipped",
		FulfillmentStatus: "fulfilled",
	})

	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, rec.Status)
	assert.Equal(t, order.FulfillmentFulfilled, rec.FulfillmentStatus)
	assert.Equal(t, order.StatusShipped, existing.Status)
	f.repos.externalRepo.AssertExpectations(t)
}
