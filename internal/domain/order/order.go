package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/shared"
)

// Order represents an internal order aggregate root. Orders created by the
// ingestion engine are immutable after creation except for their status,
// which only the status synchronizer may advance.
type Order struct {
	shared.TenantAggregateRoot
	OrderNumber       string
	ChannelID         *uuid.UUID
	CustomerID        *uuid.UUID
	Status            Status
	FulfillmentStatus FulfillmentStatus
	PaymentStatus     PaymentStatus
	Subtotal          decimal.Decimal
	ShippingTotal     decimal.Decimal
	TaxTotal          decimal.Decimal
	DiscountTotal     decimal.Decimal
	Total             decimal.Decimal
	Currency          string
	ShippingAddress   Address `gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress    Address `gorm:"embedded;embeddedPrefix:billing_"`
	OrderedAt         time.Time
	Items             []Item `gorm:"foreignKey:OrderID"`
}

// Address holds a shipping or billing address fragment
type Address struct {
	Name       string
	Phone      string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
}

// Item represents a line item of an internal order. Product and variant
// linkage is nullable: items without a SKU match are still recorded.
type Item struct {
	shared.BaseEntity
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID  *uuid.UUID `gorm:"type:uuid"`
	VariantID  *uuid.UUID `gorm:"type:uuid"`
	SKU        string
	Title      string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	// UnitCost and WholesalePrice are snapshots captured at time of sale
	UnitCost       decimal.Decimal
	WholesalePrice decimal.Decimal
	ExternalID     string
}

// Payment records a settled payment against an order
type Payment struct {
	shared.TenantAggregateRoot
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount   decimal.Decimal
	Currency string
	Method   string
	PaidAt   time.Time
}

// PaymentMethodExternal marks payments settled on the originating platform
const PaymentMethodExternal = "external"

// New creates an internal order. Status defaults to pending when the caller
// passes an empty or unknown status.
func New(tenantID uuid.UUID, orderNumber string, status Status) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if !status.IsValid() {
		status = StatusPending
	}

	return &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		Status:              status,
		FulfillmentStatus:   FulfillmentUnfulfilled,
		PaymentStatus:       PaymentStatusPending,
		Subtotal:            decimal.Zero,
		ShippingTotal:       decimal.Zero,
		TaxTotal:            decimal.Zero,
		DiscountTotal:       decimal.Zero,
		Total:               decimal.Zero,
		Currency:            "USD",
		OrderedAt:           time.Now(),
		Items:               make([]Item, 0),
	}, nil
}

// AddItem appends a line item to the order
func (o *Order) AddItem(item Item) (*Item, error) {
	if item.Title == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_TITLE", "Item title cannot be empty")
	}
	if item.Quantity.LessThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
	}

	item.BaseEntity = shared.NewBaseEntity()
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
	o.UpdatedAt = time.Now()
	return &o.Items[len(o.Items)-1], nil
}

// ApplyExternalStatus applies a status reported by an external platform,
// honoring the forward-only progression. Terminal candidates always apply;
// equal or backward candidates are silently ignored. Returns true when the
// status actually changed.
func (o *Order) ApplyExternalStatus(candidate Status) bool {
	if !candidate.IsValid() || candidate == o.Status {
		return false
	}
	if !o.Status.CanProgressTo(candidate) {
		return false
	}
	o.Status = candidate
	o.UpdatedAt = time.Now()
	return true
}

// SetTotals sets the monetary totals from normalized platform data
func (o *Order) SetTotals(subtotal, shipping, tax, discount, total decimal.Decimal, currency string) {
	o.Subtotal = subtotal
	o.ShippingTotal = shipping
	o.TaxTotal = tax
	o.DiscountTotal = discount
	o.Total = total
	if currency != "" {
		o.Currency = currency
	}
	o.UpdatedAt = time.Now()
}

// NewPayment creates a payment record for an order
func NewPayment(tenantID, orderID uuid.UUID, amount decimal.Decimal, currency string) (*Payment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if currency == "" {
		currency = "USD"
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
		Amount:              amount,
		Currency:            currency,
		Method:              PaymentMethodExternal,
		PaidAt:              time.Now(),
	}, nil
}

// TableName maps Order to the orders table
func (Order) TableName() string { return "orders" }

// TableName maps Item to the order_items table
func (Item) TableName() string { return "order_items" }

// TableName maps Payment to the payments table
func (Payment) TableName() string { return "payments" }
