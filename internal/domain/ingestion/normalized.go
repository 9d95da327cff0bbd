package ingestion

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/order"
	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// NormalizedOrder is the canonical order shape every platform normalizer
// produces. It is ephemeral: built per ingestion attempt, persisted only as
// denormalized columns on the external order ledger.
type NormalizedOrder struct {
	// ExternalOrderID is the order's identifier on the platform.
	// Non-empty and unique per connection.
	ExternalOrderID string
	// ExternalOrderNumber is the buyer-facing order number, if distinct
	ExternalOrderNumber string
	Status              order.Status
	FulfillmentStatus   order.FulfillmentStatus
	PaymentStatus       order.PaymentStatus
	Subtotal            decimal.Decimal
	ShippingTotal       decimal.Decimal
	TaxTotal            decimal.Decimal
	DiscountTotal       decimal.Decimal
	Total               decimal.Decimal
	Currency            string
	Customer            NormalizedCustomer
	ShippingAddress     order.Address
	BillingAddress      order.Address
	OrderedAt           time.Time
	Items               []NormalizedLineItem
	// PlatformData retains the raw payload for audit and debugging
	PlatformData map[string]any
}

// NormalizedCustomer is the customer fragment carried on a normalized order
type NormalizedCustomer struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
}

// NormalizedLineItem is the canonical line item shape
type NormalizedLineItem struct {
	ExternalLineID    string
	SKU               string
	Title             string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	Discount          decimal.Decimal
	Tax               decimal.Decimal
	ExternalProductID string
	ExternalVariantID string
}

// Validate checks the invariants a normalizer must satisfy
func (n *NormalizedOrder) Validate() error {
	if n.ExternalOrderID == "" {
		return shared.NewDomainError("MISSING_EXTERNAL_ORDER_ID", "Normalized order must carry an external order ID")
	}
	for _, item := range n.Items {
		if item.Quantity.LessThan(decimal.NewFromInt(1)) {
			return shared.NewDomainError("INVALID_LINE_QUANTITY", "Line item quantity must be at least 1")
		}
	}
	return nil
}

// StatusUpdate carries the status fields of a re-sync event
type StatusUpdate struct {
	Status            order.Status
	FulfillmentStatus order.FulfillmentStatus
	PaymentStatus     order.PaymentStatus
}

// StatusUpdateFrom extracts the status fields of a normalized order
func StatusUpdateFrom(n *NormalizedOrder) StatusUpdate {
	return StatusUpdate{
		Status:            n.Status,
		FulfillmentStatus: n.FulfillmentStatus,
		PaymentStatus:     n.PaymentStatus,
	}
}
