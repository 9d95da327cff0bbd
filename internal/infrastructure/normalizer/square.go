package normalizer

import (
	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

// SquareNormalizer normalizes Square order payloads. Square encodes every
// monetary amount as an integer count of minor currency units inside a
// money object, and line item quantities as decimal strings.
type SquareNormalizer struct{}

// NewSquareNormalizer creates a Square normalizer
func NewSquareNormalizer() *SquareNormalizer {
	return &SquareNormalizer{}
}

// Platform returns the platform code this normalizer handles
func (n *SquareNormalizer) Platform() ingestion.Platform {
	return ingestion.PlatformSquare
}

// Normalize converts a Square order payload into a NormalizedOrder
func (n *SquareNormalizer) Normalize(payload map[string]any) (*ingestion.NormalizedOrder, error) {
	// Webhook envelopes nest the order under data.object.order; direct API
	// fetches hand us the order itself. Accept both.
	o := payload
	if data := getMap(payload, "data"); data != nil {
		if object := getMap(data, "object"); object != nil {
			if inner := getMap(object, "order"); inner != nil {
				o = inner
			}
		}
	}

	externalID := getString(o, "id")
	if externalID == "" {
		return nil, ingestion.ErrMissingExternalOrderID
	}

	state := getString(o, "state")
	out := &ingestion.NormalizedOrder{
		ExternalOrderID:     externalID,
		ExternalOrderNumber: getString(o, "reference_id"),
		Status:              mapSquareState(state),
		FulfillmentStatus:   mapSquareFulfillment(getSlice(o, "fulfillments")),
		PaymentStatus:       mapSquarePayment(o, state),
		Total:               squareMoney(o, "total_money"),
		TaxTotal:            squareMoney(o, "total_tax_money"),
		DiscountTotal:       squareMoney(o, "total_discount_money"),
		ShippingTotal:       squareMoney(o, "total_service_charge_money"),
		OrderedAt:           parseTime(getString(o, "created_at")),
		PlatformData:        payload,
	}
	if money := getMap(o, "total_money"); money != nil {
		out.Currency = getString(money, "currency")
	}

	for _, line := range getSlice(o, "line_items") {
		qty := getDecimal(line, "quantity")
		if !qty.IsPositive() {
			qty = decimal.NewFromInt(1)
		}
		out.Items = append(out.Items, ingestion.NormalizedLineItem{
			ExternalLineID:    getString(line, "uid"),
			SKU:               getString(line, "sku"),
			Title:             getString(line, "name"),
			Quantity:          qty,
			UnitPrice:         squareMoney(line, "base_price_money"),
			Discount:          squareMoney(line, "total_discount_money"),
			Tax:               squareMoney(line, "total_tax_money"),
			ExternalProductID: getString(line, "catalog_object_id"),
			ExternalVariantID: getString(line, "catalog_object_id"),
		})
	}

	out.Subtotal = squareSubtotal(out)

	if fulfillments := getSlice(o, "fulfillments"); len(fulfillments) > 0 {
		if recipient := squareRecipient(fulfillments[0]); recipient != nil {
			out.Customer = ingestion.NormalizedCustomer{
				Email:     getString(recipient, "email_address"),
				FirstName: squareFirstName(getString(recipient, "display_name")),
				LastName:  squareLastName(getString(recipient, "display_name")),
				Phone:     getString(recipient, "phone_number"),
			}
			out.ShippingAddress = squareAddress(recipient)
		}
	}

	return out, nil
}

// squareMoney reads a Square money object: {"amount": <minor units>, "currency": "USD"}
func squareMoney(m map[string]any, key string) decimal.Decimal {
	money := getMap(m, key)
	if money == nil {
		return decimal.Zero
	}
	return minorUnits(getInt(money, "amount"))
}

// squareSubtotal derives the pre-tax, pre-discount subtotal Square does not
// carry as a top-level field
func squareSubtotal(out *ingestion.NormalizedOrder) decimal.Decimal {
	subtotal := out.Total.Sub(out.TaxTotal).Sub(out.ShippingTotal).Add(out.DiscountTotal)
	if subtotal.IsNegative() {
		return decimal.Zero
	}
	return subtotal
}

func squareRecipient(fulfillment map[string]any) map[string]any {
	for _, key := range []string{"shipment_details", "delivery_details", "pickup_details"} {
		if details := getMap(fulfillment, key); details != nil {
			if recipient := getMap(details, "recipient"); recipient != nil {
				return recipient
			}
		}
	}
	return nil
}

func squareAddress(recipient map[string]any) order.Address {
	addr := getMap(recipient, "address")
	if addr == nil {
		return order.Address{}
	}
	return order.Address{
		Name:       getString(recipient, "display_name"),
		Phone:      getString(recipient, "phone_number"),
		Line1:      getString(addr, "address_line_1"),
		Line2:      getString(addr, "address_line_2"),
		City:       getString(addr, "locality"),
		Region:     getString(addr, "administrative_district_level_1"),
		PostalCode: getString(addr, "postal_code"),
		Country:    getString(addr, "country"),
	}
}

func squareFirstName(displayName string) string {
	first, _ := splitName(displayName)
	return first
}

func squareLastName(displayName string) string {
	_, last := splitName(displayName)
	return last
}

func mapSquareState(state string) order.Status {
	switch state {
	case "COMPLETED":
		return order.StatusCompleted
	case "CANCELED":
		return order.StatusCancelled
	case "OPEN":
		return order.StatusPending
	default:
		return order.StatusPending
	}
}

func mapSquareFulfillment(fulfillments []map[string]any) order.FulfillmentStatus {
	if len(fulfillments) == 0 {
		return order.FulfillmentUnfulfilled
	}
	completed := 0
	for _, f := range fulfillments {
		if getString(f, "state") == "COMPLETED" {
			completed++
		}
	}
	switch {
	case completed == len(fulfillments):
		return order.FulfillmentFulfilled
	case completed > 0:
		return order.FulfillmentPartial
	default:
		return order.FulfillmentUnfulfilled
	}
}

func mapSquarePayment(o map[string]any, state string) order.PaymentStatus {
	refunded := squareMoney(o, "total_refund_money")
	if refunded.IsPositive() {
		total := squareMoney(o, "total_money")
		if refunded.GreaterThanOrEqual(total) {
			return order.PaymentStatusRefunded
		}
		return order.PaymentStatusPartiallyRefunded
	}
	if len(getSlice(o, "tenders")) > 0 || state == "COMPLETED" {
		return order.PaymentStatusPaid
	}
	return order.PaymentStatusPending
}

// Ensure SquareNormalizer implements the Normalizer interface
var _ ingestion.Normalizer = (*SquareNormalizer)(nil)
