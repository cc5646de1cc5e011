package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/tradedist/backend/internal/application/inventory"
	apptransfer "github.com/tradedist/backend/internal/application/transfer"
	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/transfer"
	"github.com/tradedist/backend/internal/infrastructure/persistence"
)

type transferSetup struct {
	Transfers *apptransfer.TransferService
	Ledger    *appinventory.LedgerService

	TenantID uuid.UUID
	ActorID  uuid.UUID
	FromWH   uuid.UUID
	ToWH     uuid.UUID
	SkuID    uuid.UUID
}

func newTransferSetup(t *testing.T) *transferSetup {
	t.Helper()
	db := NewSharedTestDB(t)
	scope := persistence.NewGormTransactionScope(db.DB)
	return &transferSetup{
		Transfers: apptransfer.NewTransferService(scope),
		Ledger:    appinventory.NewLedgerService(scope),
		TenantID:  uuid.New(),
		ActorID:   uuid.New(),
		FromWH:    uuid.New(),
		ToWH:      uuid.New(),
		SkuID:     uuid.New(),
	}
}

func (s *transferSetup) seedSource(t *testing.T, quantity, batch string) {
	t.Helper()
	_, err := s.Ledger.ReceiveGoods(context.Background(), appinventory.ReceiveGoodsCommand{
		TenantID:    s.TenantID,
		ActorID:     s.ActorID,
		WarehouseID: s.FromWH,
		SkuID:       s.SkuID,
		ReceiptRef:  "GR-TRF",
		OccurredAt:  time.Now().Add(-24 * time.Hour),
		Tracking:    inventory.SkuTracking{IsBatchTracked: batch != ""},
		Lots:        []appinventory.ReceiptLot{{BatchNumber: batch, UnitCost: d("3"), Quantity: d(quantity)}},
	})
	require.NoError(t, err)
}

func (s *transferSetup) open(t *testing.T, planned string) *apptransfer.TransferResponse {
	t.Helper()
	resp, err := s.Transfers.CreateTransfer(context.Background(), apptransfer.CreateTransferCommand{
		TenantID:        s.TenantID,
		ActorID:         s.ActorID,
		FromWarehouseID: s.FromWH,
		ToWarehouseID:   s.ToWH,
		TransferNumber:  "TRF-" + uuid.NewString()[:8],
		Lines:           []apptransfer.TransferLineInput{{SkuID: s.SkuID, QtyPlanned: d(planned)}},
	})
	require.NoError(t, err)
	return resp
}

func (s *transferSetup) dispatch(t *testing.T, transferID, itemID uuid.UUID, quantity string) {
	t.Helper()
	_, err := s.Transfers.Dispatch(context.Background(), apptransfer.DispatchTransferCommand{
		TenantID:     s.TenantID,
		ActorID:      s.ActorID,
		TransferID:   transferID,
		DispatchedAt: time.Now(),
		Lines:        []apptransfer.DispatchLine{{ItemID: itemID, Quantity: d(quantity)}},
	})
	require.NoError(t, err)
}

func (s *transferSetup) receive(transferID, itemID uuid.UUID, quantity, key string) (*apptransfer.TransferResponse, error) {
	return s.Transfers.Receive(context.Background(), apptransfer.ReceiveTransferCommand{
		TenantID:       s.TenantID,
		ActorID:        s.ActorID,
		TransferID:     transferID,
		IdempotencyKey: key,
		ReceivedAt:     time.Now(),
		Lines:          []apptransfer.ReceiveLine{{ItemID: itemID, Quantity: d(quantity)}},
	})
}

func TestTransferFlow_SplitReceiptReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := newTransferSetup(t)
	s.seedSource(t, "150", "BATCH-9")

	created := s.open(t, "100")
	itemID := created.Items[0].ID
	s.dispatch(t, created.ID, itemID, "100")

	partial, err := s.receive(created.ID, itemID, "60", "key-"+uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, transfer.TransferStatusPartiallyReceived.String(), partial.Status)

	closed, err := s.receive(created.ID, itemID, "40", "key-"+uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, transfer.TransferStatusClosed.String(), closed.Status)

	// Stock conservation across both warehouses.
	source, err := s.Ledger.GetBalance(ctx, s.TenantID, s.FromWH, s.SkuID)
	require.NoError(t, err)
	dest, err := s.Ledger.GetBalance(ctx, s.TenantID, s.ToWH, s.SkuID)
	require.NoError(t, err)
	assert.True(t, source.QtyOnHand.Equal(d("50")))
	assert.True(t, dest.QtyOnHand.Equal(d("100")))
	assert.True(t, source.QtyOnHand.Add(dest.QtyOnHand).Equal(d("150")))

	// Batch metadata carried onto the destination lots.
	destLots, err := s.Ledger.ListLots(ctx, s.TenantID, s.ToWH, s.SkuID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, destLots, 2)
	for _, lot := range destLots {
		assert.Equal(t, "BATCH-9", lot.BatchNumber)
	}
}

func TestTransferFlow_OverReceiptRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := newTransferSetup(t)
	s.seedSource(t, "100", "")

	created := s.open(t, "100")
	itemID := created.Items[0].ID
	s.dispatch(t, created.ID, itemID, "80")

	_, err := s.receive(created.ID, itemID, "81", "key-"+uuid.NewString())
	require.ErrorIs(t, err, shared.ErrOverReceipt)

	// The failed receipt posted nothing at the destination.
	_, err = s.Ledger.GetBalance(ctx, s.TenantID, s.ToWH, s.SkuID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	// A second dispatch raises the ceiling and the receipt then succeeds.
	s.dispatch(t, created.ID, itemID, "20")
	resp, err := s.receive(created.ID, itemID, "100", "key-"+uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, transfer.TransferStatusClosed.String(), resp.Status)
}

func TestTransferFlow_IdempotentReceive(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := newTransferSetup(t)
	s.seedSource(t, "100", "")

	created := s.open(t, "100")
	itemID := created.Items[0].ID
	s.dispatch(t, created.ID, itemID, "100")

	key := "receipt-" + uuid.NewString()
	_, err := s.receive(created.ID, itemID, "60", key)
	require.NoError(t, err)

	// Replaying the same key must fail atomically: the unique index on
	// (tenant_id, key) rejects the insert and the whole receipt rolls back.
	_, err = s.receive(created.ID, itemID, "40", key)
	require.ErrorIs(t, err, shared.ErrDuplicateOperation)

	dest, err := s.Ledger.GetBalance(ctx, s.TenantID, s.ToWH, s.SkuID)
	require.NoError(t, err)
	assert.True(t, dest.QtyOnHand.Equal(d("60")), "replay must not double-post")

	current, err := s.Transfers.GetTransfer(ctx, s.TenantID, created.ID)
	require.NoError(t, err)
	assert.True(t, current.Items[0].QtyReceivedTotal.Equal(d("60")))

	// The same key is fine for a different tenant's operation scope, but a
	// fresh key completes this transfer.
	_, err = s.receive(created.ID, itemID, "40", "receipt-"+uuid.NewString())
	require.NoError(t, err)
}

func TestTransferFlow_CancelBeforeReceipt(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	s := newTransferSetup(t)
	s.seedSource(t, "50", "")

	created := s.open(t, "50")
	s.dispatch(t, created.ID, created.Items[0].ID, "50")

	cancelled, err := s.Transfers.Cancel(ctx, apptransfer.CancelTransferCommand{
		TenantID:   s.TenantID,
		ActorID:    s.ActorID,
		TransferID: created.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, transfer.TransferStatusCancelled.String(), cancelled.Status)

	// Dispatched stock stays posted; the ledger reversal is the
	// compensating path for it.
	source, err := s.Ledger.GetBalance(ctx, s.TenantID, s.FromWH, s.SkuID)
	require.NoError(t, err)
	assert.True(t, source.QtyOnHand.IsZero())
}
