package normalizer

import (
	"github.com/shopspring/decimal"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

// EbayNormalizer normalizes eBay Fulfillment API order payloads. eBay splits
// order state across two axes, orderFulfillmentStatus and orderPaymentStatus,
// and wraps money as {"value": "12.34", "currency": "USD"} objects.
type EbayNormalizer struct{}

// NewEbayNormalizer creates an eBay normalizer
func NewEbayNormalizer() *EbayNormalizer {
	return &EbayNormalizer{}
}

// Platform returns the platform code this normalizer handles
func (n *EbayNormalizer) Platform() ingestion.Platform {
	return ingestion.PlatformEbay
}

// Normalize converts an eBay order payload into a NormalizedOrder
func (n *EbayNormalizer) Normalize(payload map[string]any) (*ingestion.NormalizedOrder, error) {
	externalID := getString(payload, "orderId")
	if externalID == "" {
		return nil, ingestion.ErrMissingExternalOrderID
	}

	fulfillment := getString(payload, "orderFulfillmentStatus")
	payment := getString(payload, "orderPaymentStatus")

	out := &ingestion.NormalizedOrder{
		ExternalOrderID:     externalID,
		ExternalOrderNumber: getString(payload, "legacyOrderId"),
		Status:              mapEbayStatus(fulfillment, payment, getString(payload, "cancelStatus")),
		FulfillmentStatus:   mapEbayFulfillment(fulfillment),
		PaymentStatus:       mapEbayPayment(payment),
		OrderedAt:           parseTime(getString(payload, "creationDate")),
		PlatformData:        payload,
	}

	if pricing := getMap(payload, "pricingSummary"); pricing != nil {
		out.Subtotal, out.Currency = ebayMoney(pricing, "priceSubtotal")
		out.ShippingTotal, _ = ebayMoney(pricing, "deliveryCost")
		out.TaxTotal, _ = ebayMoney(pricing, "tax")
		discount, _ := ebayMoney(pricing, "priceDiscount")
		out.DiscountTotal = discount.Abs()
		out.Total, _ = ebayMoney(pricing, "total")
	}

	if buyer := getMap(payload, "buyer"); buyer != nil {
		if reg := getMap(buyer, "buyerRegistrationAddress"); reg != nil {
			first, last := splitName(getString(reg, "fullName"))
			out.Customer = ingestion.NormalizedCustomer{
				Email:     getString(reg, "email"),
				FirstName: first,
				LastName:  last,
				Phone:     ebayPhone(reg),
			}
		}
	}

	for _, line := range getSlice(payload, "lineItems") {
		qty := getInt(line, "quantity")
		if qty <= 0 {
			qty = 1
		}
		price, _ := ebayMoney(line, "lineItemCost")
		tax, _ := ebayMoney(line, "ebayCollectAndRemitTaxes")
		unitPrice := price
		if qty > 1 {
			unitPrice = price.Div(decimal.NewFromInt(qty))
		}
		out.Items = append(out.Items, ingestion.NormalizedLineItem{
			ExternalLineID:    getString(line, "lineItemId"),
			SKU:               getString(line, "sku"),
			Title:             getString(line, "title"),
			Quantity:          decimal.NewFromInt(qty),
			UnitPrice:         unitPrice,
			Tax:               tax,
			ExternalProductID: getString(line, "legacyItemId"),
			ExternalVariantID: getString(line, "legacyVariationId"),
		})
	}

	if fulfillments := getSlice(payload, "fulfillmentStartInstructions"); len(fulfillments) > 0 {
		if shipTo := getMap(fulfillments[0], "shippingStep"); shipTo != nil {
			out.ShippingAddress = ebayAddress(getMap(shipTo, "shipTo"))
		}
	}

	return out, nil
}

// ebayMoney reads an eBay money object and returns the amount and currency
func ebayMoney(m map[string]any, key string) (decimal.Decimal, string) {
	money := getMap(m, key)
	if money == nil {
		return decimal.Zero, ""
	}
	return getDecimal(money, "value"), getString(money, "currency")
}

func ebayPhone(reg map[string]any) string {
	if phone := getMap(reg, "primaryPhone"); phone != nil {
		return getString(phone, "phoneNumber")
	}
	return ""
}

func ebayAddress(shipTo map[string]any) order.Address {
	if shipTo == nil {
		return order.Address{}
	}
	addr := getMap(shipTo, "contactAddress")
	if addr == nil {
		return order.Address{}
	}
	out := order.Address{
		Name:       getString(shipTo, "fullName"),
		Line1:      getString(addr, "addressLine1"),
		Line2:      getString(addr, "addressLine2"),
		City:       getString(addr, "city"),
		Region:     getString(addr, "stateOrProvince"),
		PostalCode: getString(addr, "postalCode"),
		Country:    getString(addr, "countryCode"),
	}
	if phone := getMap(shipTo, "primaryPhone"); phone != nil {
		out.Phone = getString(phone, "phoneNumber")
	}
	return out
}

func mapEbayStatus(fulfillment, payment, cancel string) order.Status {
	switch {
	case cancel == "CANCELED":
		return order.StatusCancelled
	case payment == "FULLY_REFUNDED":
		return order.StatusRefunded
	case fulfillment == "FULFILLED":
		return order.StatusShipped
	case fulfillment == "IN_PROGRESS":
		return order.StatusProcessing
	case payment == "PAID":
		return order.StatusConfirmed
	default:
		return order.StatusPending
	}
}

func mapEbayFulfillment(status string) order.FulfillmentStatus {
	switch status {
	case "FULFILLED":
		return order.FulfillmentFulfilled
	case "IN_PROGRESS":
		return order.FulfillmentPartial
	default:
		return order.FulfillmentUnfulfilled
	}
}

func mapEbayPayment(status string) order.PaymentStatus {
	switch status {
	case "PAID":
		return order.PaymentStatusPaid
	case "FULLY_REFUNDED":
		return order.PaymentStatusRefunded
	case "PARTIALLY_REFUNDED":
		return order.PaymentStatusPartiallyRefunded
	default:
		return order.PaymentStatusPending
	}
}

// Ensure EbayNormalizer implements the Normalizer interface
var _ ingestion.Normalizer = (*EbayNormalizer)(nil)
