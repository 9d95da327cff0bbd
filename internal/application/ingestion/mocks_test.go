package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/settatam/shop-sub015/internal/domain/catalog"
	"github.com/settatam/shop-sub015/internal/domain/channel"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/inventory"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status order.Status) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockPaymentRepository is a mock implementation of order.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *order.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of order.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindOrCreateByEmail(ctx context.Context, tenantID uuid.UUID, email, firstName, lastName, phone string) (*order.Customer, error) {
	args := m.Called(ctx, tenantID, email, firstName, lastName, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Customer), args.Error(1)
}

// MockVariantRepository is a mock implementation of catalog.VariantRepository
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.ProductVariant, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductVariant), args.Error(1)
}

func (m *MockVariantRepository) DecrementQuantity(ctx context.Context, tenantID, variantID uuid.UUID, take decimal.Decimal) (bool, error) {
	args := m.Called(ctx, tenantID, variantID, take)
	return args.Bool(0), args.Error(1)
}

func (m *MockVariantRepository) AggregateQuantity(ctx context.Context, tenantID, variantID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, variantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockPoolRepository is a mock implementation of inventory.PoolRepository
type MockPoolRepository struct {
	mock.Mock
}

func (m *MockPoolRepository) FindByVariantForUpdate(ctx context.Context, tenantID, variantID uuid.UUID) ([]inventory.Pool, error) {
	args := m.Called(ctx, tenantID, variantID)
	return args.Get(0).([]inventory.Pool), args.Error(1)
}

func (m *MockPoolRepository) DecrementQuantity(ctx context.Context, poolID uuid.UUID, take decimal.Decimal) (bool, error) {
	args := m.Called(ctx, poolID, take)
	return args.Bool(0), args.Error(1)
}

// MockChannelRepository is a mock implementation of channel.Repository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*channel.SalesChannel, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SalesChannel), args.Error(1)
}

func (m *MockChannelRepository) FindByConnection(ctx context.Context, tenantID, connectionID uuid.UUID) (*channel.SalesChannel, error) {
	args := m.Called(ctx, tenantID, connectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SalesChannel), args.Error(1)
}

func (m *MockChannelRepository) FindByPlatform(ctx context.Context, tenantID uuid.UUID, platform string) (*channel.SalesChannel, error) {
	args := m.Called(ctx, tenantID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SalesChannel), args.Error(1)
}

func (m *MockChannelRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	args := m.Called(ctx, tenantID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockChannelRepository) Create(ctx context.Context, c *channel.SalesChannel) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockChannelRepository) Save(ctx context.Context, c *channel.SalesChannel) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockExternalOrderRepository is a mock implementation of ingestion.ExternalOrderRepository
type MockExternalOrderRepository struct {
	mock.Mock
}

func (m *MockExternalOrderRepository) Upsert(ctx context.Context, conn *ingestion.PlatformConnection, n *ingestion.NormalizedOrder) (*ingestion.ExternalOrderRecord, error) {
	args := m.Called(ctx, conn, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.ExternalOrderRecord), args.Error(1)
}

func (m *MockExternalOrderRepository) FindByExternalID(ctx context.Context, connectionID uuid.UUID, externalOrderID string) (*ingestion.ExternalOrderRecord, error) {
	args := m.Called(ctx, connectionID, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.ExternalOrderRecord), args.Error(1)
}

func (m *MockExternalOrderRepository) Save(ctx context.Context, rec *ingestion.ExternalOrderRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// MockConnectionRepository is a mock implementation of ingestion.ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingestion.PlatformConnection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingestion.PlatformConnection), args.Error(1)
}

func (m *MockConnectionRepository) Save(ctx context.Context, conn *ingestion.PlatformConnection) error {
	args := m.Called(ctx, conn)
	return args.Error(0)
}

// MockJobScheduler is a mock implementation of ingestion.JobScheduler
type MockJobScheduler struct {
	mock.Mock
}

func (m *MockJobScheduler) Schedule(ctx context.Context, jobType ingestion.JobType, payload ingestion.ResyncPayload, delay time.Duration) error {
	args := m.Called(ctx, jobType, payload, delay)
	return args.Error(0)
}

// MockOversellNotifier is a mock implementation of ingestion.OversellNotifier
type MockOversellNotifier struct {
	mock.Mock
}

func (m *MockOversellNotifier) NotifyOversold(ctx context.Context, fact ingestion.OversellFact) error {
	args := m.Called(ctx, fact)
	return args.Error(0)
}

// stubNormalizer returns a prepared normalized order regardless of payload
type stubNormalizer struct {
	platform ingestion.Platform
	result   *ingestion.NormalizedOrder
	err      error
}

func (s *stubNormalizer) Platform() ingestion.Platform { return s.platform }

func (s *stubNormalizer) Normalize(_ map[string]any) (*ingestion.NormalizedOrder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

// stubRegistry serves a single stub normalizer for every platform
type stubRegistry struct {
	normalizer ingestion.Normalizer
}

func (s *stubRegistry) Get(_ ingestion.Platform) (ingestion.Normalizer, error) {
	return s.normalizer, nil
}

func (s *stubRegistry) List() []ingestion.Normalizer {
	return []ingestion.Normalizer{s.normalizer}
}

// testRepos bundles all repository mocks behind a NoOpTransactionScope
type testRepos struct {
	orderRepo    *MockOrderRepository
	paymentRepo  *MockPaymentRepository
	customerRepo *MockCustomerRepository
	variantRepo  *MockVariantRepository
	poolRepo     *MockPoolRepository
	channelRepo  *MockChannelRepository
	externalRepo *MockExternalOrderRepository
	connRepo     *MockConnectionRepository
	scope        *NoOpTransactionScope
}

func newTestRepos() *testRepos {
	r := &testRepos{
		orderRepo:    new(MockOrderRepository),
		paymentRepo:  new(MockPaymentRepository),
		customerRepo: new(MockCustomerRepository),
		variantRepo:  new(MockVariantRepository),
		poolRepo:     new(MockPoolRepository),
		channelRepo:  new(MockChannelRepository),
		externalRepo: new(MockExternalOrderRepository),
		connRepo:     new(MockConnectionRepository),
	}
	r.scope = NewNoOpTransactionScope(
		r.orderRepo,
		r.paymentRepo,
		r.customerRepo,
		r.variantRepo,
		r.poolRepo,
		r.channelRepo,
		r.externalRepo,
		r.connRepo,
	)
	return r
}
