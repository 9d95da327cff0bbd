package normalizer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/order"
)

func squareOrder() map[string]any {
	return map[string]any{
		"id":           "sq-order-1",
		"reference_id": "R-77",
		"state":        "OPEN",
		"created_at":   "2026-03-01T12:00:00Z",
		"total_money":  map[string]any{"amount": float64(10000), "currency": "USD"},
		"total_tax_money": map[string]any{
			"amount": float64(800), "currency": "USD",
		},
		"line_items": []any{
			map[string]any{
				"uid":               "line-1",
				"name":              "Widget",
				"sku":               "ABC",
				"quantity":          "2",
				"base_price_money":  map[string]any{"amount": float64(4000), "currency": "USD"},
				"catalog_object_id": "CAT123",
			},
		},
		"tenders": []any{
			map[string]any{"id": "tender-1", "type": "CARD"},
		},
	}
}

func TestSquareNormalizer_Normalize(t *testing.T) {
	out, err := NewSquareNormalizer().Normalize(squareOrder())
	require.NoError(t, err)

	assert.Equal(t, "sq-order-1", out.ExternalOrderID)
	assert.Equal(t, "R-77", out.ExternalOrderNumber)
	assert.Equal(t, order.StatusPending, out.Status)
	assert.Equal(t, order.PaymentStatusPaid, out.PaymentStatus)
	assert.Equal(t, "USD", out.Currency)

	// Minor units: 10000 -> 100, 800 -> 8
	assert.True(t, out.Total.Equal(decimal.NewFromInt(100)))
	assert.True(t, out.TaxTotal.Equal(decimal.NewFromInt(8)))

	require.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].UnitPrice.Equal(decimal.NewFromInt(40)))
	assert.True(t, out.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "CAT123", out.Items[0].ExternalProductID)
}

func TestSquareNormalizer_WebhookEnvelope(t *testing.T) {
	envelope := map[string]any{
		"type": "order.created",
		"data": map[string]any{
			"object": map[string]any{
				"order": squareOrder(),
			},
		},
	}

	out, err := NewSquareNormalizer().Normalize(envelope)
	require.NoError(t, err)
	assert.Equal(t, "sq-order-1", out.ExternalOrderID)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(100)))
}

func TestSquareNormalizer_MissingOrderID(t *testing.T) {
	_, err := NewSquareNormalizer().Normalize(map[string]any{"state": "OPEN"})
	assert.ErrorIs(t, err, ingestion.ErrMissingExternalOrderID)
}

func TestSquareNormalizer_RefundStates(t *testing.T) {
	o := squareOrder()
	o["total_refund_money"] = map[string]any{"amount": float64(10000), "currency": "USD"}

	out, err := NewSquareNormalizer().Normalize(o)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusRefunded, out.PaymentStatus)

	o["total_refund_money"] = map[string]any{"amount": float64(2500), "currency": "USD"}
	out, err = NewSquareNormalizer().Normalize(o)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPartiallyRefunded, out.PaymentStatus)
}

func TestSquareNormalizer_FulfillmentStates(t *testing.T) {
	o := squareOrder()
	o["fulfillments"] = []any{
		map[string]any{"uid": "f1", "state": "COMPLETED"},
		map[string]any{"uid": "f2", "state": "PROPOSED"},
	}

	out, err := NewSquareNormalizer().Normalize(o)
	require.NoError(t, err)
	assert.Equal(t, order.FulfillmentPartial, out.FulfillmentStatus)

	o["fulfillments"] = []any{
		map[string]any{"uid": "f1", "state": "COMPLETED"},
	}
	out, err = NewSquareNormalizer().Normalize(o)
	require.NoError(t, err)
	assert.Equal(t, order.FulfillmentFulfilled, out.FulfillmentStatus)
}

func TestSquareNormalizer_CanceledState(t *testing.T) {
	o := squareOrder()
	o["state"] = "CANCELED"
	delete(o, "tenders")

	out, err := NewSquareNormalizer().Normalize(o)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, out.Status)
	assert.Equal(t, order.PaymentStatusPending, out.PaymentStatus)
}
