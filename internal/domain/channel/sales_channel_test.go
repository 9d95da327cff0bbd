package channel

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Shopify", "shopify"},
		{"spaces collapse", "My Shopify Store", "my_shopify_store"},
		{"punctuation collapses", "Bob's  Store!", "bob_s_store"},
		{"leading and trailing trimmed", "  --Store--  ", "store"},
		{"all symbols fall back", "!!!", "channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveCode(tt.input))
		})
	}
}

func TestCodeWithSuffix(t *testing.T) {
	assert.Equal(t, "shopify", CodeWithSuffix("shopify", 0))
	assert.Equal(t, "shopify_1", CodeWithSuffix("shopify", 1))
	assert.Equal(t, "shopify_7", CodeWithSuffix("shopify", 7))
}

func TestNew(t *testing.T) {
	ch, err := New(uuid.New(), "My Store", "SHOPIFY")
	require.NoError(t, err)
	assert.Equal(t, "my_store", ch.Code)
	assert.Equal(t, "SHOPIFY", ch.Platform)
	assert.Nil(t, ch.ConnectionID)

	connID := uuid.New()
	ch.LinkConnection(connID)
	require.NotNil(t, ch.ConnectionID)
	assert.Equal(t, connID, *ch.ConnectionID)

	_, err = New(uuid.New(), "", "SHOPIFY")
	assert.Error(t, err)
}
