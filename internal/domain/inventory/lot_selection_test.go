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

func makeLot(t *testing.T, receivedAt time.Time, qty int64) *Lot {
	t.Helper()
	lot, err := NewLot(uuid.New(), uuid.New(), uuid.New(), "GOODS_RECEIPT", "GR-001",
		receivedAt, "", nil, decimal.Zero, decimal.NewFromInt(qty), SkuTracking{})
	require.NoError(t, err)
	return lot
}

func TestSortLotsFIFO(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("orders by received time ascending", func(t *testing.T) {
		newest := makeLot(t, base.Add(2*time.Hour), 5)
		oldest := makeLot(t, base, 5)
		middle := makeLot(t, base.Add(time.Hour), 5)

		lots := []*Lot{newest, oldest, middle}
		SortLotsFIFO(lots)

		assert.Equal(t, oldest.ID, lots[0].ID)
		assert.Equal(t, middle.ID, lots[1].ID)
		assert.Equal(t, newest.ID, lots[2].ID)
	})

	t.Run("breaks received-time ties by lot id ascending", func(t *testing.T) {
		a := makeLot(t, base, 5)
		b := makeLot(t, base, 5)
		b.ReceivedAt = a.ReceivedAt

		lots := []*Lot{b, a}
		SortLotsFIFO(lots)

		want := []*Lot{a, b}
		if b.ID.String() < a.ID.String() {
			want = []*Lot{b, a}
		}
		assert.Equal(t, want[0].ID, lots[0].ID)
		assert.Equal(t, want[1].ID, lots[1].ID)
	})
}

func TestFIFOLotSplit(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	selector := NewFIFOLotSelector()

	t.Run("splits a request across lots oldest first", func(t *testing.T) {
		first := makeLot(t, base, 5)
		second := makeLot(t, base.Add(time.Hour), 5)
		third := makeLot(t, base.Add(2*time.Hour), 5)

		result, err := selector.Select(decimal.NewFromInt(7), []*Lot{third, first, second})
		require.NoError(t, err)
		require.Len(t, result.Debits, 2)

		assert.Equal(t, first.ID, result.Debits[0].Lot.ID)
		assert.True(t, result.Debits[0].Quantity.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, second.ID, result.Debits[1].Lot.ID)
		assert.True(t, result.Debits[1].Quantity.Equal(decimal.NewFromInt(2)))
		assert.True(t, result.TotalSelected.Equal(decimal.NewFromInt(7)))

		require.NoError(t, result.ApplyDebits())
		assert.True(t, first.IsExhausted())
		assert.True(t, second.QtyAvailable.Equal(decimal.NewFromInt(3)))
		assert.True(t, third.QtyAvailable.Equal(decimal.NewFromInt(5)))
	})

	t.Run("skips exhausted lots", func(t *testing.T) {
		empty := makeLot(t, base, 5)
		require.NoError(t, empty.Debit(decimal.NewFromInt(5)))
		full := makeLot(t, base.Add(time.Hour), 10)

		result, err := selector.Select(decimal.NewFromInt(4), []*Lot{empty, full})
		require.NoError(t, err)
		require.Len(t, result.Debits, 1)
		assert.Equal(t, full.ID, result.Debits[0].Lot.ID)
	})

	t.Run("fails with insufficient stock and selects nothing", func(t *testing.T) {
		lot := makeLot(t, base, 5)
		_, err := selector.Select(decimal.NewFromInt(6), []*Lot{lot})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, lot.QtyAvailable.Equal(decimal.NewFromInt(5)))
	})

	t.Run("fails with non-positive request", func(t *testing.T) {
		_, err := selector.Select(decimal.Zero, nil)
		require.Error(t, err)
	})
}

func TestSpecifiedLotSelection(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("honors the caller's lot split in given order", func(t *testing.T) {
		a := makeLot(t, base, 10)
		b := makeLot(t, base.Add(time.Hour), 10)

		selector := NewSpecifiedLotSelector([]LotRequest{
			{LotID: b.ID, Quantity: decimal.NewFromInt(4)},
			{LotID: a.ID, Quantity: decimal.NewFromInt(2)},
		})
		result, err := selector.Select(decimal.NewFromInt(6), []*Lot{a, b})
		require.NoError(t, err)
		require.Len(t, result.Debits, 2)
		assert.Equal(t, b.ID, result.Debits[0].Lot.ID)
		assert.Equal(t, a.ID, result.Debits[1].Lot.ID)
	})

	t.Run("fails when a named lot has too little available", func(t *testing.T) {
		a := makeLot(t, base, 3)
		selector := NewSpecifiedLotSelector([]LotRequest{
			{LotID: a.ID, Quantity: decimal.NewFromInt(4)},
		})
		_, err := selector.Select(decimal.NewFromInt(4), []*Lot{a})
		assert.ErrorIs(t, err, shared.ErrInsufficientLotQuantity)
	})

	t.Run("fails when repeated requests oversubscribe a lot", func(t *testing.T) {
		a := makeLot(t, base, 5)
		selector := NewSpecifiedLotSelector([]LotRequest{
			{LotID: a.ID, Quantity: decimal.NewFromInt(3)},
			{LotID: a.ID, Quantity: decimal.NewFromInt(3)},
		})
		_, err := selector.Select(decimal.NewFromInt(6), []*Lot{a})
		assert.ErrorIs(t, err, shared.ErrInsufficientLotQuantity)
	})

	t.Run("fails when the named lot is not a candidate", func(t *testing.T) {
		a := makeLot(t, base, 5)
		selector := NewSpecifiedLotSelector([]LotRequest{
			{LotID: uuid.New(), Quantity: decimal.NewFromInt(1)},
		})
		_, err := selector.Select(decimal.NewFromInt(1), []*Lot{a})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("fails when quantities do not sum to the request", func(t *testing.T) {
		a := makeLot(t, base, 5)
		selector := NewSpecifiedLotSelector([]LotRequest{
			{LotID: a.ID, Quantity: decimal.NewFromInt(2)},
		})
		_, err := selector.Select(decimal.NewFromInt(3), []*Lot{a})
		require.Error(t, err)
	})
}
