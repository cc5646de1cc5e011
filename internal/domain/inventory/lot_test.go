package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradedist/backend/internal/domain/shared"
)

func TestNewLot(t *testing.T) {
	tenantID := uuid.New()
	warehouseID := uuid.New()
	skuID := uuid.New()
	receivedAt := time.Now()

	t.Run("creates lot with qty_available equal to qty_received", func(t *testing.T) {
		lot, err := NewLot(tenantID, warehouseID, skuID, "GOODS_RECEIPT", "GR-001",
			receivedAt, "", nil, decimal.NewFromInt(10), decimal.NewFromInt(100), SkuTracking{})
		require.NoError(t, err)
		require.NotNil(t, lot)

		assert.Equal(t, tenantID, lot.TenantID)
		assert.Equal(t, warehouseID, lot.WarehouseID)
		assert.Equal(t, skuID, lot.SkuID)
		assert.True(t, lot.QtyReceived.Equal(decimal.NewFromInt(100)))
		assert.True(t, lot.QtyAvailable.Equal(decimal.NewFromInt(100)))
		assert.NotEmpty(t, lot.ID)
	})

	t.Run("fails with non-positive quantity", func(t *testing.T) {
		_, err := NewLot(tenantID, warehouseID, skuID, "GOODS_RECEIPT", "GR-001",
			receivedAt, "", nil, decimal.Zero, decimal.Zero, SkuTracking{})
		require.Error(t, err)

		_, err = NewLot(tenantID, warehouseID, skuID, "GOODS_RECEIPT", "GR-001",
			receivedAt, "", nil, decimal.Zero, decimal.NewFromInt(-5), SkuTracking{})
		require.Error(t, err)
	})

	t.Run("fails with negative unit cost", func(t *testing.T) {
		_, err := NewLot(tenantID, warehouseID, skuID, "GOODS_RECEIPT", "GR-001",
			receivedAt, "", nil, decimal.NewFromInt(-1), decimal.NewFromInt(10), SkuTracking{})
		require.Error(t, err)
	})

	t.Run("requires batch number for batch-tracked SKU", func(t *testing.T) {
		tracking := SkuTracking{IsBatchTracked: true}
		_, err := NewLot(tenantID, warehouseID, skuID, "GOODS_RECEIPT", "GR-001",
			receivedAt, "", nil, decimal.Zero, decimal.NewFromInt(10), tracking)
		require.Error(t, err)

		lot, err := NewLot(tenantID, warehouseID, skuID, "GOODS_RECEIPT", "GR-001",
			receivedAt, "BATCH-42", nil, decimal.Zero, decimal.NewFromInt(10), tracking)
		require.NoError(t, err)
		assert.Equal(t, "BATCH-42", lot.BatchNumber)
	})

	t.Run("requires expiry date for expiry-tracked SKU", func(t *testing.T) {
		tracking := SkuTracking{IsExpiryTracked: true}
		_, err := NewLot(tenantID, warehouseID, skuID, "GOODS_RECEIPT", "GR-001",
			receivedAt, "", nil, decimal.Zero, decimal.NewFromInt(10), tracking)
		require.Error(t, err)

		expiry := receivedAt.AddDate(1, 0, 0)
		lot, err := NewLot(tenantID, warehouseID, skuID, "GOODS_RECEIPT", "GR-001",
			receivedAt, "", &expiry, decimal.Zero, decimal.NewFromInt(10), tracking)
		require.NoError(t, err)
		require.NotNil(t, lot.ExpiryDate)
	})
}

func TestLotDebit(t *testing.T) {
	lot := newTestLot(t, decimal.NewFromInt(100))

	t.Run("debits available quantity", func(t *testing.T) {
		err := lot.Debit(decimal.NewFromInt(30))
		require.NoError(t, err)
		assert.True(t, lot.QtyAvailable.Equal(decimal.NewFromInt(70)))
		assert.True(t, lot.QtyReceived.Equal(decimal.NewFromInt(100)))
	})

	t.Run("fails without mutation when quantity exceeds available", func(t *testing.T) {
		err := lot.Debit(decimal.NewFromInt(71))
		assert.ErrorIs(t, err, shared.ErrInsufficientLotQuantity)
		assert.True(t, lot.QtyAvailable.Equal(decimal.NewFromInt(70)))
	})

	t.Run("fails with non-positive quantity", func(t *testing.T) {
		require.Error(t, lot.Debit(decimal.Zero))
		require.Error(t, lot.Debit(decimal.NewFromInt(-1)))
	})

	t.Run("debit to zero exhausts the lot", func(t *testing.T) {
		require.NoError(t, lot.Debit(decimal.NewFromInt(70)))
		assert.True(t, lot.IsExhausted())
		assert.False(t, lot.HasAvailable())
	})
}

func TestLotCredit(t *testing.T) {
	t.Run("credit reverses a debit", func(t *testing.T) {
		lot := newTestLot(t, decimal.NewFromInt(50))
		require.NoError(t, lot.Debit(decimal.NewFromInt(20)))

		err := lot.Credit(decimal.NewFromInt(20))
		require.NoError(t, err)
		assert.True(t, lot.QtyAvailable.Equal(decimal.NewFromInt(50)))
	})

	t.Run("fails with over-replenishment past qty_received", func(t *testing.T) {
		lot := newTestLot(t, decimal.NewFromInt(50))
		require.NoError(t, lot.Debit(decimal.NewFromInt(10)))

		err := lot.Credit(decimal.NewFromInt(11))
		assert.ErrorIs(t, err, shared.ErrOverReplenishment)
		assert.True(t, lot.QtyAvailable.Equal(decimal.NewFromInt(40)))
	})

	t.Run("fails with non-positive quantity", func(t *testing.T) {
		lot := newTestLot(t, decimal.NewFromInt(50))
		require.Error(t, lot.Credit(decimal.Zero))
	})
}

func TestLotConsumedQuantity(t *testing.T) {
	lot := newTestLot(t, decimal.NewFromInt(80))
	require.NoError(t, lot.Debit(decimal.NewFromInt(25)))
	assert.True(t, lot.ConsumedQuantity().Equal(decimal.NewFromInt(25)))
}

func TestLotIsExpired(t *testing.T) {
	t.Run("no expiry date never expires", func(t *testing.T) {
		lot := newTestLot(t, decimal.NewFromInt(10))
		assert.False(t, lot.IsExpired())
	})

	t.Run("past expiry date is expired", func(t *testing.T) {
		past := time.Now().Add(-24 * time.Hour)
		lot, err := NewLot(uuid.New(), uuid.New(), uuid.New(), "GOODS_RECEIPT", "GR-001",
			time.Now().AddDate(0, -1, 0), "B1", &past, decimal.Zero, decimal.NewFromInt(10),
			SkuTracking{IsBatchTracked: true, IsExpiryTracked: true})
		require.NoError(t, err)
		assert.True(t, lot.IsExpired())
	})
}

func newTestLot(t *testing.T, qty decimal.Decimal) *Lot {
	t.Helper()
	lot, err := NewLot(uuid.New(), uuid.New(), uuid.New(), "GOODS_RECEIPT", "GR-001",
		time.Now(), "", nil, decimal.NewFromInt(5), qty, SkuTracking{})
	require.NoError(t, err)
	return lot
}
