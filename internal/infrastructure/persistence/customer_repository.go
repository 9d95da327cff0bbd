package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/settatam/shop-sub015/internal/domain/order"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// GormCustomerRepository implements order.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindOrCreateByEmail finds a customer by (tenant, email) or creates one.
// The lookup is case-insensitive; concurrent creates for the same email are
// resolved through ON CONFLICT plus a re-fetch.
func (r *GormCustomerRepository) FindOrCreateByEmail(ctx context.Context, tenantID uuid.UUID, email, firstName, lastName, phone string) (*order.Customer, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	customer, err := r.findByEmail(ctx, tenantID, normalized)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	customer = &order.Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Email:               normalized,
		FirstName:           firstName,
		LastName:            lastName,
		Phone:               phone,
	}

	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "email"}},
			DoNothing: true,
		}).
		Create(customer).Error; err != nil {
		return nil, err
	}

	// If the row wasn't created (conflict), fetch the existing one
	if customer.ID == uuid.Nil {
		return r.findByEmail(ctx, tenantID, normalized)
	}

	return customer, nil
}

func (r *GormCustomerRepository) findByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*order.Customer, error) {
	var customer order.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND LOWER(email) = ?", tenantID, email).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// Ensure GormCustomerRepository implements order.CustomerRepository
var _ order.CustomerRepository = (*GormCustomerRepository)(nil)
