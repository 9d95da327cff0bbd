package persistence

import (
	"context"

	"gorm.io/gorm"

	appingestion "github.com/settatam/shop-sub015/internal/application/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/catalog"
	"github.com/settatam/shop-sub015/internal/domain/channel"
	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/inventory"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appingestion.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PaymentRepo() order.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// CustomerRepo returns the customer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CustomerRepo() order.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

// VariantRepo returns the product variant repository scoped to the current transaction.
func (r *gormTransactionalRepositories) VariantRepo() catalog.VariantRepository {
	return NewGormVariantRepository(r.tx)
}

// PoolRepo returns the inventory pool repository scoped to the current transaction.
func (r *gormTransactionalRepositories) PoolRepo() inventory.PoolRepository {
	return NewGormPoolRepository(r.tx)
}

// ChannelRepo returns the sales channel repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ChannelRepo() channel.Repository {
	return NewGormSalesChannelRepository(r.tx)
}

// ExternalOrderRepo returns the external order ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ExternalOrderRepo() ingestion.ExternalOrderRepository {
	return NewGormExternalOrderRepository(r.tx)
}

// ConnectionRepo returns the platform connection repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ConnectionRepo() ingestion.ConnectionRepository {
	return NewGormConnectionRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appingestion.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appingestion.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
