package normalizer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

// EtsyNormalizer normalizes Etsy receipt payloads. Etsy encodes money as
// {"amount": <minor units>, "divisor": <scale>, "currency_code": "USD"} and
// timestamps as Unix seconds. Receipt state lives on boolean flags plus a
// free-form status string.
type EtsyNormalizer struct{}

// NewEtsyNormalizer creates an Etsy normalizer
func NewEtsyNormalizer() *EtsyNormalizer {
	return &EtsyNormalizer{}
}

// Platform returns the platform code this normalizer handles
func (n *EtsyNormalizer) Platform() ingestion.Platform {
	return ingestion.PlatformEtsy
}

// Normalize converts an Etsy receipt payload into a NormalizedOrder
func (n *EtsyNormalizer) Normalize(payload map[string]any) (*ingestion.NormalizedOrder, error) {
	externalID := getString(payload, "receipt_id")
	if externalID == "" {
		return nil, ingestion.ErrMissingExternalOrderID
	}

	status := getString(payload, "status")
	isPaid := payload["is_paid"] == true
	isShipped := payload["is_shipped"] == true

	out := &ingestion.NormalizedOrder{
		ExternalOrderID:   externalID,
		Status:            mapEtsyStatus(status, isPaid, isShipped),
		FulfillmentStatus: mapEtsyFulfillment(isShipped),
		PaymentStatus:     mapEtsyPayment(status, isPaid),
		Subtotal:          etsyMoney(payload, "subtotal"),
		ShippingTotal:     etsyMoney(payload, "total_shipping_cost"),
		TaxTotal:          etsyMoney(payload, "total_tax_cost"),
		DiscountTotal:     etsyMoney(payload, "discount_amt"),
		Total:             etsyMoney(payload, "grandtotal"),
		PlatformData:      payload,
	}
	if money := getMap(payload, "grandtotal"); money != nil {
		out.Currency = getString(money, "currency_code")
	}
	if created := getInt(payload, "created_timestamp"); created > 0 {
		out.OrderedAt = time.Unix(created, 0).UTC()
	}

	first, last := splitName(getString(payload, "name"))
	out.Customer = ingestion.NormalizedCustomer{
		Email:     getString(payload, "buyer_email"),
		FirstName: first,
		LastName:  last,
	}

	out.ShippingAddress = order.Address{
		Name:       getString(payload, "name"),
		Line1:      getString(payload, "first_line"),
		Line2:      getString(payload, "second_line"),
		City:       getString(payload, "city"),
		Region:     getString(payload, "state"),
		PostalCode: getString(payload, "zip"),
		Country:    getString(payload, "country_iso"),
	}

	for _, txn := range getSlice(payload, "transactions") {
		qty := getInt(txn, "quantity")
		if qty <= 0 {
			qty = 1
		}
		out.Items = append(out.Items, ingestion.NormalizedLineItem{
			ExternalLineID:    getString(txn, "transaction_id"),
			SKU:               getString(txn, "sku"),
			Title:             getString(txn, "title"),
			Quantity:          decimal.NewFromInt(qty),
			UnitPrice:         etsyMoney(txn, "price"),
			ExternalProductID: getString(txn, "listing_id"),
			ExternalVariantID: getString(txn, "product_id"),
		})
	}

	return out, nil
}

// etsyMoney reads an Etsy money object, honoring its divisor. A missing or
// zero divisor falls back to minor units of 100.
func etsyMoney(m map[string]any, key string) decimal.Decimal {
	money := getMap(m, key)
	if money == nil {
		return decimal.Zero
	}
	divisor := getInt(money, "divisor")
	if divisor <= 0 {
		divisor = 100
	}
	return decimal.NewFromInt(getInt(money, "amount")).Div(decimal.NewFromInt(divisor))
}

func mapEtsyStatus(status string, isPaid, isShipped bool) order.Status {
	switch status {
	case "canceled", "cancelled":
		return order.StatusCancelled
	case "fully refunded":
		return order.StatusRefunded
	case "completed":
		return order.StatusCompleted
	}
	switch {
	case isShipped:
		return order.StatusShipped
	case isPaid:
		return order.StatusConfirmed
	default:
		return order.StatusPending
	}
}

func mapEtsyFulfillment(isShipped bool) order.FulfillmentStatus {
	if isShipped {
		return order.FulfillmentFulfilled
	}
	return order.FulfillmentUnfulfilled
}

func mapEtsyPayment(status string, isPaid bool) order.PaymentStatus {
	switch status {
	case "fully refunded":
		return order.PaymentStatusRefunded
	case "partially refunded":
		return order.PaymentStatusPartiallyRefunded
	}
	if isPaid {
		return order.PaymentStatusPaid
	}
	return order.PaymentStatusPending
}

// Ensure EtsyNormalizer implements the Normalizer interface
var _ ingestion.Normalizer = (*EtsyNormalizer)(nil)
