package ingestion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/order"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// ExternalOrderRecord is the ledger row tracking one external order per
// platform connection. The (connection_id, external_order_id) unique key is
// the idempotency boundary for the whole engine: webhook delivery is
// at-least-once, and every delivery upserts this row. OrderID transitions
// nil -> set exactly once, on the first successful import.
type ExternalOrderRecord struct {
	shared.TenantAggregateRoot
	ConnectionID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_external_order_connection"`
	ExternalOrderID     string    `gorm:"not null;uniqueIndex:idx_external_order_connection"`
	ExternalOrderNumber string
	Platform            Platform
	Status              order.Status
	FulfillmentStatus   order.FulfillmentStatus
	PaymentStatus       order.PaymentStatus
	Total               decimal.Decimal
	Currency            string
	OrderID             *uuid.UUID `gorm:"type:uuid;index"`
	OrderedAt           time.Time
	LastSyncedAt        time.Time
	PlatformData        map[string]any `gorm:"serializer:json"`
}

// TableName maps ExternalOrderRecord to the external_orders table
func (ExternalOrderRecord) TableName() string { return "external_orders" }

// IsImported reports whether the external order has been turned into an
// internal order. This is the predicate callers branch on; never test
// OrderID against nil directly.
func (r *ExternalOrderRecord) IsImported() bool {
	return r.OrderID != nil
}

// AttachOrder links the record to its internal order. The link is set
// exactly once; a second attach is a programming error surfaced as a
// domain error rather than silently overwriting the linkage.
func (r *ExternalOrderRecord) AttachOrder(orderID uuid.UUID) error {
	if r.IsImported() {
		return shared.NewDomainError("ALREADY_IMPORTED", "External order is already linked to an internal order")
	}
	r.OrderID = &orderID
	r.LastSyncedAt = time.Now()
	r.UpdatedAt = time.Now()
	return nil
}

// ApplyStatus updates the ledger's status fields from a re-sync event.
// The ledger always reflects the latest known external truth, so this is
// unconditional regardless of ordering.
func (r *ExternalOrderRecord) ApplyStatus(update StatusUpdate) {
	if update.Status != "" {
		r.Status = update.Status
	}
	if update.FulfillmentStatus != "" {
		r.FulfillmentStatus = update.FulfillmentStatus
	}
	if update.PaymentStatus != "" {
		r.PaymentStatus = update.PaymentStatus
	}
	r.LastSyncedAt = time.Now()
	r.UpdatedAt = time.Now()
}
