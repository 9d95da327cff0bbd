package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// Customer is the minimal customer fragment the ingestion engine consumes.
// The full CRM model lives outside this engine.
type Customer struct {
	shared.TenantAggregateRoot
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// TableName maps Customer to the customers table
func (Customer) TableName() string { return "customers" }

// CustomerRepository is the outbound port to the customer store
type CustomerRepository interface {
	// FindOrCreateByEmail finds a customer by (tenant, email) or creates one.
	// The lookup is case-insensitive on email.
	FindOrCreateByEmail(ctx context.Context, tenantID uuid.UUID, email, firstName, lastName, phone string) (*Customer, error)
}
