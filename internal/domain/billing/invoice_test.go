package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	invoice, err := NewInvoice(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "INV-001", time.Now())
	require.NoError(t, err)
	return invoice
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates issued invoice", func(t *testing.T) {
		invoice := newTestInvoice(t)
		assert.Equal(t, InvoiceStatusIssued, invoice.Status)
		assert.True(t, invoice.TotalAmount.IsZero())
		assert.Empty(t, invoice.Items)
	})

	t.Run("fails with empty invoice number", func(t *testing.T) {
		_, err := NewInvoice(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "", time.Now())
		require.Error(t, err)
	})

	t.Run("defaults a zero invoice date to now", func(t *testing.T) {
		invoice, err := NewInvoice(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "INV-002", time.Time{})
		require.NoError(t, err)
		assert.False(t, invoice.InvoiceDate.IsZero())
	})
}

func TestInvoiceAddLine(t *testing.T) {
	t.Run("consolidates lines with matching SKU and price", func(t *testing.T) {
		invoice := newTestInvoice(t)
		skuID := uuid.New()

		require.NoError(t, invoice.AddLine(skuID, decimal.NewFromInt(10), decimal.NewFromInt(5)))
		require.NoError(t, invoice.AddLine(skuID, decimal.NewFromInt(4), decimal.NewFromInt(5)))

		require.Len(t, invoice.Items, 1)
		assert.True(t, invoice.Items[0].Quantity.Equal(decimal.NewFromInt(14)))
		assert.True(t, invoice.Items[0].Amount.Equal(decimal.NewFromInt(70)))
		assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(70)))
	})

	t.Run("keeps separate lines for differing prices", func(t *testing.T) {
		invoice := newTestInvoice(t)
		skuID := uuid.New()

		require.NoError(t, invoice.AddLine(skuID, decimal.NewFromInt(10), decimal.NewFromInt(5)))
		require.NoError(t, invoice.AddLine(skuID, decimal.NewFromInt(10), decimal.NewFromInt(6)))

		require.Len(t, invoice.Items, 2)
		assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(110)))
		assert.True(t, invoice.TotalQuantity().Equal(decimal.NewFromInt(20)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		invoice := newTestInvoice(t)
		require.Error(t, invoice.AddLine(uuid.New(), decimal.Zero, decimal.NewFromInt(5)))
	})
}

func TestInvoiceOrderLinks(t *testing.T) {
	invoice := newTestInvoice(t)
	orderID := uuid.New()

	t.Run("links orders once", func(t *testing.T) {
		require.NoError(t, invoice.LinkOrder(orderID))
		require.NoError(t, invoice.LinkOrder(uuid.New()))
		assert.Len(t, invoice.OrderIDs(), 2)

		require.Error(t, invoice.LinkOrder(orderID))
		assert.Len(t, invoice.OrderIDs(), 2)
	})
}
