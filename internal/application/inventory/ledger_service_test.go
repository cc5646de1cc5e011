package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/infrastructure/persistence"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&inventory.Lot{},
		&inventory.StockBalance{},
		&inventory.StockTransaction{},
		&inventory.TransactionLotLine{},
	)
	require.NoError(t, err)

	return db
}

func newLedgerService(t *testing.T) *appinventory.LedgerService {
	t.Helper()
	db := setupLedgerTestDB(t)
	return appinventory.NewLedgerService(persistence.NewGormTransactionScope(db))
}

func qty(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func receiveGoods(t *testing.T, svc *appinventory.LedgerService, tenantID, warehouseID, skuID uuid.UUID, occurredAt time.Time, lots ...appinventory.ReceiptLot) *appinventory.StockTransactionResponse {
	t.Helper()
	resp, err := svc.ReceiveGoods(context.Background(), appinventory.ReceiveGoodsCommand{
		TenantID:    tenantID,
		ActorID:     uuid.New(),
		WarehouseID: warehouseID,
		SkuID:       skuID,
		ReceiptRef:  "GR-001",
		OccurredAt:  occurredAt,
		Lots:        lots,
	})
	require.NoError(t, err)
	return resp
}

func TestLedgerService_ReceiveGoods(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	warehouseID := uuid.New()
	skuID := uuid.New()

	t.Run("posts one IN transaction minting one lot per batch", func(t *testing.T) {
		svc := newLedgerService(t)

		resp, err := svc.ReceiveGoods(ctx, appinventory.ReceiveGoodsCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			WarehouseID: warehouseID,
			SkuID:       skuID,
			ReceiptRef:  "GR-100",
			OccurredAt:  time.Now(),
			Tracking:    inventory.SkuTracking{IsBatchTracked: true},
			Lots: []appinventory.ReceiptLot{
				{BatchNumber: "B-001", UnitCost: qty("2.50"), Quantity: qty("60")},
				{BatchNumber: "B-002", UnitCost: qty("2.75"), Quantity: qty("40")},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "IN", resp.Direction)
		assert.True(t, resp.Quantity.Equal(qty("100")))
		assert.Len(t, resp.Lines, 2)

		lots, err := svc.ListLots(ctx, tenantID, warehouseID, skuID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, lots, 2)

		balance, err := svc.GetBalance(ctx, tenantID, warehouseID, skuID)
		require.NoError(t, err)
		assert.True(t, balance.QtyOnHand.Equal(qty("100")))
		assert.True(t, balance.QtyReserved.IsZero())
		assert.True(t, balance.AvailableToPromise.Equal(qty("100")))
	})

	t.Run("rejects a receipt without lots", func(t *testing.T) {
		svc := newLedgerService(t)

		_, err := svc.ReceiveGoods(ctx, appinventory.ReceiveGoodsCommand{
			TenantID:    tenantID,
			WarehouseID: warehouseID,
			SkuID:       skuID,
			OccurredAt:  time.Now(),
		})
		require.Error(t, err)
		var derr *shared.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, "INVALID_INPUT", derr.Code)
	})

	t.Run("rejects a non-positive lot quantity", func(t *testing.T) {
		svc := newLedgerService(t)

		_, err := svc.ReceiveGoods(ctx, appinventory.ReceiveGoodsCommand{
			TenantID:    tenantID,
			WarehouseID: warehouseID,
			SkuID:       skuID,
			OccurredAt:  time.Now(),
			Lots:        []appinventory.ReceiptLot{{Quantity: qty("0")}},
		})
		require.Error(t, err)
	})
}

func TestLedgerService_AdjustOut(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	warehouseID := uuid.New()
	skuID := uuid.New()

	t.Run("consumes lots in receipt order", func(t *testing.T) {
		svc := newLedgerService(t)
		base := time.Now().Add(-48 * time.Hour)

		first := receiveGoods(t, svc, tenantID, warehouseID, skuID, base,
			appinventory.ReceiptLot{Quantity: qty("30"), UnitCost: qty("1")})
		second := receiveGoods(t, svc, tenantID, warehouseID, skuID, base.Add(24*time.Hour),
			appinventory.ReceiptLot{Quantity: qty("50"), UnitCost: qty("1")})
		firstLotID := first.Lines[0].LotID
		secondLotID := second.Lines[0].LotID

		resp, err := svc.AdjustOut(ctx, appinventory.AdjustOutCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			WarehouseID: warehouseID,
			SkuID:       skuID,
			Quantity:    qty("40"),
			RefDocID:    "ADJ-001",
			OccurredAt:  time.Now(),
		})
		require.NoError(t, err)

		assert.Equal(t, "OUT", resp.Direction)
		require.Len(t, resp.Lines, 2)
		assert.Equal(t, firstLotID, resp.Lines[0].LotID)
		assert.True(t, resp.Lines[0].Quantity.Equal(qty("30")), "oldest lot drains first")
		assert.Equal(t, secondLotID, resp.Lines[1].LotID)
		assert.True(t, resp.Lines[1].Quantity.Equal(qty("10")))

		balance, err := svc.GetBalance(ctx, tenantID, warehouseID, skuID)
		require.NoError(t, err)
		assert.True(t, balance.QtyOnHand.Equal(qty("40")))
	})

	t.Run("honors an explicit lot split", func(t *testing.T) {
		svc := newLedgerService(t)
		base := time.Now().Add(-48 * time.Hour)

		first := receiveGoods(t, svc, tenantID, warehouseID, skuID, base,
			appinventory.ReceiptLot{Quantity: qty("30"), UnitCost: qty("1")})
		second := receiveGoods(t, svc, tenantID, warehouseID, skuID, base.Add(24*time.Hour),
			appinventory.ReceiptLot{Quantity: qty("50"), UnitCost: qty("1")})

		resp, err := svc.AdjustOut(ctx, appinventory.AdjustOutCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			WarehouseID: warehouseID,
			SkuID:       skuID,
			Quantity:    qty("20"),
			RefDocID:    "ADJ-002",
			OccurredAt:  time.Now(),
			LotRequests: []appinventory.LotRequestInput{
				{LotID: second.Lines[0].LotID, Quantity: qty("20")},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, second.Lines[0].LotID, resp.Lines[0].LotID)

		lots, err := svc.ListLots(ctx, tenantID, warehouseID, skuID, shared.DefaultFilter())
		require.NoError(t, err)
		for _, lot := range lots {
			if lot.ID == first.Lines[0].LotID {
				assert.True(t, lot.QtyAvailable.Equal(qty("30")), "older lot untouched")
			}
		}
	})

	t.Run("fails with InsufficientStock when availability is short", func(t *testing.T) {
		svc := newLedgerService(t)
		receiveGoods(t, svc, tenantID, warehouseID, skuID, time.Now(),
			appinventory.ReceiptLot{Quantity: qty("10"), UnitCost: qty("1")})

		_, err := svc.AdjustOut(ctx, appinventory.AdjustOutCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			WarehouseID: warehouseID,
			SkuID:       skuID,
			Quantity:    qty("11"),
			RefDocID:    "ADJ-OVER",
			OccurredAt:  time.Now(),
		})
		require.ErrorIs(t, err, shared.ErrInsufficientStock)

		// Nothing is posted on failure.
		balance, err := svc.GetBalance(ctx, tenantID, warehouseID, skuID)
		require.NoError(t, err)
		assert.True(t, balance.QtyOnHand.Equal(qty("10")))
	})
}

func TestLedgerService_ReverseTransaction(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	warehouseID := uuid.New()
	skuID := uuid.New()

	t.Run("reversing an OUT credits the consumed lots back", func(t *testing.T) {
		svc := newLedgerService(t)
		receiveGoods(t, svc, tenantID, warehouseID, skuID, time.Now().Add(-time.Hour),
			appinventory.ReceiptLot{Quantity: qty("100"), UnitCost: qty("1")})

		out, err := svc.AdjustOut(ctx, appinventory.AdjustOutCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			WarehouseID: warehouseID,
			SkuID:       skuID,
			Quantity:    qty("35"),
			RefDocID:    "ADJ-REV-35",
			OccurredAt:  time.Now(),
		})
		require.NoError(t, err)

		reversal, err := svc.ReverseTransaction(ctx, appinventory.ReverseTransactionCommand{
			TenantID:      tenantID,
			ActorID:       uuid.New(),
			TransactionID: out.ID,
			OccurredAt:    time.Now(),
		})
		require.NoError(t, err)

		assert.Equal(t, "IN", reversal.Direction)
		require.NotNil(t, reversal.ReversalOfID)
		assert.Equal(t, out.ID, *reversal.ReversalOfID)
		assert.True(t, reversal.Quantity.Equal(qty("35")))

		balance, err := svc.GetBalance(ctx, tenantID, warehouseID, skuID)
		require.NoError(t, err)
		assert.True(t, balance.QtyOnHand.Equal(qty("100")))

		lots, err := svc.ListLots(ctx, tenantID, warehouseID, skuID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.True(t, lots[0].QtyAvailable.Equal(qty("100")))
	})

	t.Run("reverses an OUT carrying two lines against the same lot", func(t *testing.T) {
		svc := newLedgerService(t)
		in := receiveGoods(t, svc, tenantID, warehouseID, skuID, time.Now().Add(-time.Hour),
			appinventory.ReceiptLot{Quantity: qty("50"), UnitCost: qty("1")})
		lotID := in.Lines[0].LotID

		out, err := svc.AdjustOut(ctx, appinventory.AdjustOutCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			WarehouseID: warehouseID,
			SkuID:       skuID,
			Quantity:    qty("6"),
			RefDocID:    "ADJ-SPLIT",
			OccurredAt:  time.Now(),
			LotRequests: []appinventory.LotRequestInput{
				{LotID: lotID, Quantity: qty("2")},
				{LotID: lotID, Quantity: qty("4")},
			},
		})
		require.NoError(t, err)
		require.Len(t, out.Lines, 2)

		reversal, err := svc.ReverseTransaction(ctx, appinventory.ReverseTransactionCommand{
			TenantID:      tenantID,
			ActorID:       uuid.New(),
			TransactionID: out.ID,
			OccurredAt:    time.Now(),
		})
		require.NoError(t, err)
		assert.True(t, reversal.Quantity.Equal(qty("6")))

		lots, err := svc.ListLots(ctx, tenantID, warehouseID, skuID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, lots, 1)
		assert.True(t, lots[0].QtyAvailable.Equal(qty("50")), "both lines credited back to the lot")
	})

	t.Run("reversing an IN fails once its stock was consumed", func(t *testing.T) {
		svc := newLedgerService(t)
		in := receiveGoods(t, svc, tenantID, warehouseID, skuID, time.Now().Add(-time.Hour),
			appinventory.ReceiptLot{Quantity: qty("20"), UnitCost: qty("1")})

		_, err := svc.AdjustOut(ctx, appinventory.AdjustOutCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			WarehouseID: warehouseID,
			SkuID:       skuID,
			Quantity:    qty("5"),
			RefDocID:    "ADJ-REV-5",
			OccurredAt:  time.Now(),
		})
		require.NoError(t, err)

		_, err = svc.ReverseTransaction(ctx, appinventory.ReverseTransactionCommand{
			TenantID:      tenantID,
			ActorID:       uuid.New(),
			TransactionID: in.ID,
			OccurredAt:    time.Now(),
		})
		require.ErrorIs(t, err, shared.ErrInsufficientLotQuantity)
	})

	t.Run("a posting can be reversed only once", func(t *testing.T) {
		svc := newLedgerService(t)
		in := receiveGoods(t, svc, tenantID, warehouseID, skuID, time.Now().Add(-time.Hour),
			appinventory.ReceiptLot{Quantity: qty("20"), UnitCost: qty("1")})

		cmd := appinventory.ReverseTransactionCommand{
			TenantID:      tenantID,
			ActorID:       uuid.New(),
			TransactionID: in.ID,
			OccurredAt:    time.Now(),
		}
		reversal, err := svc.ReverseTransaction(ctx, cmd)
		require.NoError(t, err)

		_, err = svc.ReverseTransaction(ctx, cmd)
		require.ErrorIs(t, err, shared.ErrInvalidState)

		t.Run("and a reversal cannot itself be reversed", func(t *testing.T) {
			_, err := svc.ReverseTransaction(ctx, appinventory.ReverseTransactionCommand{
				TenantID:      tenantID,
				ActorID:       uuid.New(),
				TransactionID: reversal.ID,
				OccurredAt:    time.Now(),
			})
			require.ErrorIs(t, err, shared.ErrInvalidState)
		})
	})

	t.Run("unknown transaction yields NotFound", func(t *testing.T) {
		svc := newLedgerService(t)
		_, err := svc.ReverseTransaction(ctx, appinventory.ReverseTransactionCommand{
			TenantID:      tenantID,
			ActorID:       uuid.New(),
			TransactionID: uuid.New(),
			OccurredAt:    time.Now(),
		})
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLedgerService_RebuildBalance(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	warehouseID := uuid.New()
	skuID := uuid.New()

	t.Run("replaying the ledger reproduces the cached balance", func(t *testing.T) {
		svc := newLedgerService(t)
		base := time.Now().Add(-72 * time.Hour)

		receiveGoods(t, svc, tenantID, warehouseID, skuID, base,
			appinventory.ReceiptLot{Quantity: qty("120"), UnitCost: qty("3")})
		receiveGoods(t, svc, tenantID, warehouseID, skuID, base.Add(time.Hour),
			appinventory.ReceiptLot{Quantity: qty("80"), UnitCost: qty("3.10")})

		_, err := svc.AdjustOut(ctx, appinventory.AdjustOutCommand{
			TenantID:    tenantID,
			ActorID:     uuid.New(),
			WarehouseID: warehouseID,
			SkuID:       skuID,
			Quantity:    qty("50"),
			RefDocID:    "ADJ-REBUILD-50",
			OccurredAt:  base.Add(2 * time.Hour),
		})
		require.NoError(t, err)

		cached, err := svc.GetBalance(ctx, tenantID, warehouseID, skuID)
		require.NoError(t, err)

		rebuilt, err := svc.RebuildBalance(ctx, tenantID, warehouseID, skuID)
		require.NoError(t, err)

		assert.True(t, rebuilt.QtyOnHand.Equal(cached.QtyOnHand))
		assert.True(t, rebuilt.QtyReserved.Equal(cached.QtyReserved))
		assert.True(t, rebuilt.QtyOnHand.Equal(qty("150")))
	})

	t.Run("conservation holds between balance and lots", func(t *testing.T) {
		svc := newLedgerService(t)
		receiveGoods(t, svc, tenantID, warehouseID, skuID, time.Now().Add(-time.Hour),
			appinventory.ReceiptLot{Quantity: qty("42"), UnitCost: qty("1")})

		balance, err := svc.RebuildBalance(ctx, tenantID, warehouseID, skuID)
		require.NoError(t, err)

		lots, err := svc.ListLots(ctx, tenantID, warehouseID, skuID, shared.DefaultFilter())
		require.NoError(t, err)

		available := decimal.Zero
		for _, lot := range lots {
			available = available.Add(lot.QtyAvailable)
		}
		assert.True(t, balance.QtyOnHand.Sub(balance.QtyReserved).Equal(available))
	})
}

func TestLedgerService_Queries(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	warehouseID := uuid.New()
	skuID := uuid.New()

	t.Run("GetBalance returns NotFound for an unknown key", func(t *testing.T) {
		svc := newLedgerService(t)
		_, err := svc.GetBalance(ctx, tenantID, warehouseID, skuID)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("transactions are scoped to their tenant", func(t *testing.T) {
		svc := newLedgerService(t)
		in := receiveGoods(t, svc, tenantID, warehouseID, skuID, time.Now(),
			appinventory.ReceiptLot{Quantity: qty("10"), UnitCost: qty("1")})

		_, err := svc.GetTransaction(ctx, uuid.New(), in.ID)
		require.ErrorIs(t, err, shared.ErrNotFound)

		found, err := svc.GetTransaction(ctx, tenantID, in.ID)
		require.NoError(t, err)
		assert.Equal(t, in.ID, found.ID)
	})

	t.Run("ListTransactions returns the key's ledger entries", func(t *testing.T) {
		svc := newLedgerService(t)
		receiveGoods(t, svc, tenantID, warehouseID, skuID, time.Now(),
			appinventory.ReceiptLot{Quantity: qty("10"), UnitCost: qty("1")})
		receiveGoods(t, svc, tenantID, warehouseID, uuid.New(), time.Now(),
			appinventory.ReceiptLot{Quantity: qty("5"), UnitCost: qty("1")})

		txns, err := svc.ListTransactions(ctx, tenantID, warehouseID, skuID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, skuID, txns[0].SkuID)
	})
}
