package trade_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/tradedist/backend/internal/application/inventory"
	apptrade "github.com/tradedist/backend/internal/application/trade"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/trade"
)

func (f *tradeFixture) seedStock(t *testing.T, skuID uuid.UUID, quantity string, receivedAt time.Time) {
	t.Helper()
	_, err := f.ledger.ReceiveGoods(context.Background(), appinventory.ReceiveGoodsCommand{
		TenantID:    f.tenantID,
		ActorID:     f.actorID,
		WarehouseID: f.warehouseID,
		SkuID:       skuID,
		ReceiptRef:  "GR-SEED",
		OccurredAt:  receivedAt,
		Lots:        []appinventory.ReceiptLot{{UnitCost: dec("2"), Quantity: dec(quantity)}},
	})
	require.NoError(t, err)
}

func (f *tradeFixture) approvedOrder(t *testing.T, lines ...apptrade.OrderLineInput) *apptrade.SalesOrderResponse {
	t.Helper()
	ctx := context.Background()
	order := f.createOrder(t, lines...)
	_, err := f.orders.SubmitOrder(ctx, f.tenantID, order.ID, f.actorID)
	require.NoError(t, err)
	approved, err := f.orders.ApproveOrder(ctx, f.tenantID, order.ID, f.actorID)
	require.NoError(t, err)
	return approved
}

func (f *tradeFixture) allocate(orderID uuid.UUID) (*apptrade.AllocationResponse, error) {
	return f.allocations.AllocateOrder(context.Background(), apptrade.AllocateOrderCommand{
		TenantID:    f.tenantID,
		ActorID:     f.actorID,
		OrderID:     orderID,
		WarehouseID: f.warehouseID,
	})
}

func TestAllocationService_AllocateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("reserves lots FIFO and raises the reserved balance", func(t *testing.T) {
		f := setupTradeFixture(t)
		skuID := uuid.New()
		base := time.Now().Add(-48 * time.Hour)
		f.seedStock(t, skuID, "30", base)
		f.seedStock(t, skuID, "50", base.Add(time.Hour))

		order := f.approvedOrder(t, apptrade.OrderLineInput{SkuID: skuID, Quantity: dec("40"), UnitPrice: dec("5")})

		allocation, err := f.allocate(order.ID)
		require.NoError(t, err)

		assert.Equal(t, trade.AllocationStatusActive.String(), allocation.Status)
		require.Len(t, allocation.Items, 1)
		item := allocation.Items[0]
		assert.True(t, item.QtyAllocated.Equal(dec("40")))
		require.Len(t, item.Lots, 2, "reservation spans two lots")
		assert.True(t, item.Lots[0].QtyReserved.Equal(dec("30")), "oldest lot reserved first")
		assert.True(t, item.Lots[1].QtyReserved.Equal(dec("10")))

		balance, err := f.ledger.GetBalance(ctx, f.tenantID, f.warehouseID, skuID)
		require.NoError(t, err)
		assert.True(t, balance.QtyOnHand.Equal(dec("80")), "reservation posts no ledger movement")
		assert.True(t, balance.QtyReserved.Equal(dec("40")))
		assert.True(t, balance.AvailableToPromise.Equal(dec("40")))
	})

	t.Run("allocation is all-or-nothing across lines", func(t *testing.T) {
		f := setupTradeFixture(t)
		stockedSku := uuid.New()
		shortSku := uuid.New()
		f.seedStock(t, stockedSku, "100", time.Now().Add(-time.Hour))
		f.seedStock(t, shortSku, "5", time.Now().Add(-time.Hour))

		order := f.approvedOrder(t,
			apptrade.OrderLineInput{SkuID: stockedSku, Quantity: dec("20"), UnitPrice: dec("1")},
			apptrade.OrderLineInput{SkuID: shortSku, Quantity: dec("10"), UnitPrice: dec("1")},
		)

		_, err := f.allocate(order.ID)
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		// The stocked line's reservation must have rolled back too.
		balance, err := f.ledger.GetBalance(ctx, f.tenantID, f.warehouseID, stockedSku)
		require.NoError(t, err)
		assert.True(t, balance.QtyReserved.IsZero())

		lots, err := f.ledger.ListLots(ctx, f.tenantID, f.warehouseID, stockedSku, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.True(t, lots[0].QtyAvailable.Equal(dec("100")))
	})

	t.Run("only approved orders can be allocated", func(t *testing.T) {
		f := setupTradeFixture(t)
		skuID := uuid.New()
		f.seedStock(t, skuID, "50", time.Now().Add(-time.Hour))
		order := f.createOrder(t, apptrade.OrderLineInput{SkuID: skuID, Quantity: dec("10"), UnitPrice: dec("1")})

		_, err := f.allocate(order.ID)
		require.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("a second active allocation is rejected", func(t *testing.T) {
		f := setupTradeFixture(t)
		skuID := uuid.New()
		f.seedStock(t, skuID, "100", time.Now().Add(-time.Hour))
		order := f.approvedOrder(t, apptrade.OrderLineInput{SkuID: skuID, Quantity: dec("10"), UnitPrice: dec("1")})

		_, err := f.allocate(order.ID)
		require.NoError(t, err)

		_, err = f.allocate(order.ID)
		require.ErrorIs(t, err, shared.ErrAlreadyAllocated)
	})
}

func TestAllocationService_CancelAllocation(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelling restores availability exactly", func(t *testing.T) {
		f := setupTradeFixture(t)
		skuID := uuid.New()
		f.seedStock(t, skuID, "60", time.Now().Add(-time.Hour))
		order := f.approvedOrder(t, apptrade.OrderLineInput{SkuID: skuID, Quantity: dec("25"), UnitPrice: dec("2")})

		allocation, err := f.allocate(order.ID)
		require.NoError(t, err)

		cancelled, err := f.allocations.CancelAllocation(ctx, apptrade.CancelAllocationCommand{
			TenantID:     f.tenantID,
			ActorID:      f.actorID,
			AllocationID: allocation.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, trade.AllocationStatusCancelled.String(), cancelled.Status)

		balance, err := f.ledger.GetBalance(ctx, f.tenantID, f.warehouseID, skuID)
		require.NoError(t, err)
		assert.True(t, balance.QtyOnHand.Equal(dec("60")))
		assert.True(t, balance.QtyReserved.IsZero())

		lots, err := f.ledger.ListLots(ctx, f.tenantID, f.warehouseID, skuID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.True(t, lots[0].QtyAvailable.Equal(dec("60")))

		t.Run("and the order can be allocated again", func(t *testing.T) {
			_, err := f.allocate(order.ID)
			require.NoError(t, err)
		})
	})

	t.Run("a cancelled allocation cannot be cancelled again", func(t *testing.T) {
		f := setupTradeFixture(t)
		skuID := uuid.New()
		f.seedStock(t, skuID, "20", time.Now().Add(-time.Hour))
		order := f.approvedOrder(t, apptrade.OrderLineInput{SkuID: skuID, Quantity: dec("5"), UnitPrice: dec("1")})

		allocation, err := f.allocate(order.ID)
		require.NoError(t, err)

		cmd := apptrade.CancelAllocationCommand{TenantID: f.tenantID, ActorID: f.actorID, AllocationID: allocation.ID}
		_, err = f.allocations.CancelAllocation(ctx, cmd)
		require.NoError(t, err)

		_, err = f.allocations.CancelAllocation(ctx, cmd)
		require.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestAllocationService_Queries(t *testing.T) {
	ctx := context.Background()
	f := setupTradeFixture(t)
	skuID := uuid.New()
	f.seedStock(t, skuID, "50", time.Now().Add(-time.Hour))
	order := f.approvedOrder(t, apptrade.OrderLineInput{SkuID: skuID, Quantity: dec("10"), UnitPrice: dec("1")})

	allocation, err := f.allocate(order.ID)
	require.NoError(t, err)

	t.Run("GetAllocation returns items with lot lines", func(t *testing.T) {
		found, err := f.allocations.GetAllocation(ctx, f.tenantID, allocation.ID)
		require.NoError(t, err)
		require.Len(t, found.Items, 1)
		assert.NotEmpty(t, found.Items[0].Lots)
	})

	t.Run("GetAllocationByOrder finds the active allocation", func(t *testing.T) {
		found, err := f.allocations.GetAllocationByOrder(ctx, f.tenantID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, allocation.ID, found.ID)
	})

	t.Run("unknown order has no allocation", func(t *testing.T) {
		_, err := f.allocations.GetAllocationByOrder(ctx, f.tenantID, uuid.New())
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}
