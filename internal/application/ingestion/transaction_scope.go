package ingestion

import (
	"context"

	"github.com/settatam/shop-sub015/internal/domain/catalog"
	"github.com/settatam/shop-sub015/internal/domain/channel"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/inventory"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

// TransactionScope provides transactional access to the repositories an
// import touches. When a function is executed within a transaction scope,
// all repository operations are part of the same database transaction and
// are committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() order.PaymentRepository
	// CustomerRepo returns the customer repository scoped to the current transaction
	CustomerRepo() order.CustomerRepository
	// VariantRepo returns the product variant repository scoped to the current transaction
	VariantRepo() catalog.VariantRepository
	// PoolRepo returns the inventory pool repository scoped to the current transaction
	PoolRepo() inventory.PoolRepository
	// ChannelRepo returns the sales channel repository scoped to the current transaction
	ChannelRepo() channel.Repository
	// ExternalOrderRepo returns the external order ledger repository scoped to the current transaction
	ExternalOrderRepo() ingestion.ExternalOrderRepository
	// ConnectionRepo returns the platform connection repository scoped to the current transaction
	ConnectionRepo() ingestion.ConnectionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	orderRepo         order.Repository
	paymentRepo       order.PaymentRepository
	customerRepo      order.CustomerRepository
	variantRepo       catalog.VariantRepository
	poolRepo          inventory.PoolRepository
	channelRepo       channel.Repository
	externalOrderRepo ingestion.ExternalOrderRepository
	connectionRepo    ingestion.ConnectionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	orderRepo order.Repository,
	paymentRepo order.PaymentRepository,
	customerRepo order.CustomerRepository,
	variantRepo catalog.VariantRepository,
	poolRepo inventory.PoolRepository,
	channelRepo channel.Repository,
	externalOrderRepo ingestion.ExternalOrderRepository,
	connectionRepo ingestion.ConnectionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:         orderRepo,
		paymentRepo:       paymentRepo,
		customerRepo:      customerRepo,
		variantRepo:       variantRepo,
		poolRepo:          poolRepo,
		channelRepo:       channelRepo,
		externalOrderRepo: externalOrderRepo,
		connectionRepo:    connectionRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository.
func (s *NoOpTransactionScope) OrderRepo() order.Repository { return s.orderRepo }

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() order.PaymentRepository { return s.paymentRepo }

// CustomerRepo returns the customer repository.
func (s *NoOpTransactionScope) CustomerRepo() order.CustomerRepository { return s.customerRepo }

// VariantRepo returns the product variant repository.
func (s *NoOpTransactionScope) VariantRepo() catalog.VariantRepository { return s.variantRepo }

// PoolRepo returns the inventory pool repository.
func (s *NoOpTransactionScope) PoolRepo() inventory.PoolRepository { return s.poolRepo }

// ChannelRepo returns the sales channel repository.
func (s *NoOpTransactionScope) ChannelRepo() channel.Repository { return s.channelRepo }

// ExternalOrderRepo returns the external order ledger repository.
func (s *NoOpTransactionScope) ExternalOrderRepo() ingestion.ExternalOrderRepository {
	return s.externalOrderRepo
}

// ConnectionRepo returns the platform connection repository.
func (s *NoOpTransactionScope) ConnectionRepo() ingestion.ConnectionRepository {
	return s.connectionRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
