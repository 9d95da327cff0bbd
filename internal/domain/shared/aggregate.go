package shared

import (
	"github.com/google/uuid"
)

// TenantAggregateRoot is the base for aggregates scoped to one tenant. Every
// repository query on these types filters by TenantID; rows from different
// tenants never meet.
type TenantAggregateRoot struct {
	BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// NewTenantAggregateRoot creates a tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseEntity: NewBaseEntity(),
		TenantID:   tenantID,
	}
}
