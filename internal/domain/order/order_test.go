package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTenantID() uuid.UUID {
	return uuid.New()
}

func TestOrder_AddItem(t *testing.T) {
	o, err := New(newTestTenantID(), "SO-2026-00001", StatusPending)
	require.NoError(t, err)

	item, err := o.AddItem(Item{
		SKU:       "ABC",
		Title:     "Widget",
		Quantity:  decimal.NewFromInt(2),
		UnitPrice: decimal.NewFromInt(40),
	})

	require.NoError(t, err)
	assert.Equal(t, o.ID, item.OrderID)
	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Len(t, o.Items, 1)
}

func TestOrder_AddItem_Invalid(t *testing.T) {
	o, err := New(newTestTenantID(), "SO-2026-00001", StatusPending)
	require.NoError(t, err)

	_, err = o.AddItem(Item{Title: "", Quantity: decimal.NewFromInt(1)})
	assert.Error(t, err)

	_, err = o.AddItem(Item{Title: "Widget", Quantity: decimal.Zero})
	assert.Error(t, err)
}

func TestNew_RequiresOrderNumber(t *testing.T) {
	_, err := New(newTestTenantID(), "", StatusPending)
	assert.Error(t, err)
}

func TestNewPayment(t *testing.T) {
	tenantID := newTestTenantID()
	orderID := uuid.New()

	p, err := NewPayment(tenantID, orderID, decimal.NewFromInt(100), "EUR")
	require.NoError(t, err)
	assert.Equal(t, orderID, p.OrderID)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, PaymentMethodExternal, p.Method)

	_, err = NewPayment(tenantID, uuid.Nil, decimal.NewFromInt(100), "USD")
	assert.Error(t, err)

	_, err = NewPayment(tenantID, orderID, decimal.Zero, "USD")
	assert.Error(t, err)
}
