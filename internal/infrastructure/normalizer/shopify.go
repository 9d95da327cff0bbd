package normalizer

import (
	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

// ShopifyNormalizer normalizes Shopify order webhook payloads. Shopify sends
// money as decimal strings, timestamps as RFC3339, and signals cancellation
// through a cancelled_at timestamp rather than a status value.
type ShopifyNormalizer struct{}

// NewShopifyNormalizer creates a Shopify normalizer
func NewShopifyNormalizer() *ShopifyNormalizer {
	return &ShopifyNormalizer{}
}

// Platform returns the platform code this normalizer handles
func (n *ShopifyNormalizer) Platform() ingestion.Platform {
	return ingestion.PlatformShopify
}

// Normalize converts a Shopify order payload into a NormalizedOrder
func (n *ShopifyNormalizer) Normalize(payload map[string]any) (*ingestion.NormalizedOrder, error) {
	externalID := getString(payload, "id")
	if externalID == "" {
		return nil, ingestion.ErrMissingExternalOrderID
	}

	cancelled := getString(payload, "cancelled_at") != ""
	financial := getString(payload, "financial_status")
	fulfillment := getString(payload, "fulfillment_status")

	out := &ingestion.NormalizedOrder{
		ExternalOrderID:     externalID,
		ExternalOrderNumber: getString(payload, "name"),
		Status:              mapShopifyStatus(financial, fulfillment, cancelled, getString(payload, "closed_at") != ""),
		FulfillmentStatus:   mapShopifyFulfillment(fulfillment),
		PaymentStatus:       mapShopifyPayment(financial),
		Subtotal:            getDecimal(payload, "subtotal_price"),
		TaxTotal:            getDecimal(payload, "total_tax"),
		DiscountTotal:       getDecimal(payload, "total_discounts"),
		Total:               getDecimal(payload, "total_price"),
		Currency:            getString(payload, "currency"),
		OrderedAt:           parseTime(getString(payload, "created_at")),
		PlatformData:        payload,
	}
	if out.ExternalOrderNumber == "" {
		out.ExternalOrderNumber = getString(payload, "order_number")
	}

	if set := getMap(payload, "total_shipping_price_set"); set != nil {
		if money := getMap(set, "shop_money"); money != nil {
			out.ShippingTotal = getDecimal(money, "amount")
		}
	}

	if customer := getMap(payload, "customer"); customer != nil {
		out.Customer = ingestion.NormalizedCustomer{
			Email:     getString(customer, "email"),
			FirstName: getString(customer, "first_name"),
			LastName:  getString(customer, "last_name"),
			Phone:     getString(customer, "phone"),
		}
	}
	if out.Customer.Email == "" {
		out.Customer.Email = getString(payload, "email")
	}

	out.ShippingAddress = shopifyAddress(getMap(payload, "shipping_address"))
	out.BillingAddress = shopifyAddress(getMap(payload, "billing_address"))

	for _, line := range getSlice(payload, "line_items") {
		qty := getInt(line, "quantity")
		if qty <= 0 {
			qty = 1
		}
		out.Items = append(out.Items, ingestion.NormalizedLineItem{
			ExternalLineID:    getString(line, "id"),
			SKU:               getString(line, "sku"),
			Title:             getString(line, "title"),
			Quantity:          decimal.NewFromInt(qty),
			UnitPrice:         getDecimal(line, "price"),
			Discount:          getDecimal(line, "total_discount"),
			Tax:               shopifyLineTax(line),
			ExternalProductID: getString(line, "product_id"),
			ExternalVariantID: getString(line, "variant_id"),
		})
	}

	return out, nil
}

func shopifyAddress(m map[string]any) order.Address {
	if m == nil {
		return order.Address{}
	}
	return order.Address{
		Name:       getString(m, "name"),
		Phone:      getString(m, "phone"),
		Line1:      getString(m, "address1"),
		Line2:      getString(m, "address2"),
		City:       getString(m, "city"),
		Region:     getString(m, "province"),
		PostalCode: getString(m, "zip"),
		Country:    getString(m, "country_code"),
	}
}

func shopifyLineTax(line map[string]any) decimal.Decimal {
	tax := decimal.Zero
	for _, tl := range getSlice(line, "tax_lines") {
		tax = tax.Add(getDecimal(tl, "price"))
	}
	return tax
}

func mapShopifyStatus(financial, fulfillment string, cancelled, closed bool) order.Status {
	switch {
	case cancelled:
		return order.StatusCancelled
	case financial == "refunded":
		return order.StatusRefunded
	case closed:
		return order.StatusCompleted
	case fulfillment == "fulfilled":
		return order.StatusShipped
	case fulfillment == "partial":
		return order.StatusProcessing
	case financial == "paid", financial == "partially_refunded":
		return order.StatusConfirmed
	default:
		return order.StatusPending
	}
}

func mapShopifyFulfillment(status string) order.FulfillmentStatus {
	switch status {
	case "fulfilled":
		return order.FulfillmentFulfilled
	case "partial":
		return order.FulfillmentPartial
	default:
		return order.FulfillmentUnfulfilled
	}
}

func mapShopifyPayment(financial string) order.PaymentStatus {
	switch financial {
	case "paid", "partially_paid":
		return order.PaymentStatusPaid
	case "refunded":
		return order.PaymentStatusRefunded
	case "partially_refunded":
		return order.PaymentStatusPartiallyRefunded
	case "voided":
		return order.PaymentStatusVoided
	default:
		return order.PaymentStatusPending
	}
}

// Ensure ShopifyNormalizer implements the Normalizer interface
var _ ingestion.Normalizer = (*ShopifyNormalizer)(nil)
