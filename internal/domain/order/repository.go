package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for internal orders
type Repository interface {
	// FindByIDForTenant finds an order by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// Create persists a new order together with its items
	Create(ctx context.Context, o *Order) error

	// UpdateStatus persists a status change on an existing order
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error

	// NextOrderNumber generates the next order number for a tenant
	NextOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// PaymentRepository defines persistence for payments
type PaymentRepository interface {
	// Create persists a new payment record
	Create(ctx context.Context, p *Payment) error
}
