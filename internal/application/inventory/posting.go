package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/inventory"
)

// The posting helpers below are the only way stock transactions enter the
// ledger. They run inside a caller-supplied transaction so the caller's
// document writes (transfer rows, allocations, invoices) commit atomically
// with the postings. Each helper keeps the balance cache in step with the
// ledger rows it appends.

// NewLotInput describes one lot to mint during an inbound posting
type NewLotInput struct {
	BatchNumber string
	ExpiryDate  *time.Time
	UnitCost    decimal.Decimal
	Quantity    decimal.Decimal
	Tracking    inventory.SkuTracking
}

// StockInCommand posts stock entering a warehouse, minting one lot per input
type StockInCommand struct {
	TenantID    uuid.UUID
	WarehouseID uuid.UUID
	SkuID       uuid.UUID
	OccurredAt  time.Time
	RefDocType  inventory.RefDocType
	RefDocID    string
	ActorID     uuid.UUID
	Lots        []NewLotInput
}

// StockOutCommand posts stock leaving a warehouse. When LotRequests is empty
// the lots are chosen FIFO; otherwise the explicit split is honored.
type StockOutCommand struct {
	TenantID    uuid.UUID
	WarehouseID uuid.UUID
	SkuID       uuid.UUID
	Quantity    decimal.Decimal
	OccurredAt  time.Time
	RefDocType  inventory.RefDocType
	RefDocID    string
	ActorID     uuid.UUID
	LotRequests []inventory.LotRequest
}

// LotLineInput is one pre-resolved lot line for a reserved outbound posting
type LotLineInput struct {
	LotID    uuid.UUID
	Quantity decimal.Decimal
}

// ReservedStockOutCommand posts the settlement of reserved stock. The lots
// were already debited when the reservation was made, so only the balance
// and the ledger move here.
type ReservedStockOutCommand struct {
	TenantID    uuid.UUID
	WarehouseID uuid.UUID
	SkuID       uuid.UUID
	OccurredAt  time.Time
	RefDocType  inventory.RefDocType
	RefDocID    string
	ActorID     uuid.UUID
	Lines       []LotLineInput
}

// PostStockIn appends an IN transaction, creates its lots and raises the
// balance. Returns the transaction and the minted lots.
func PostStockIn(ctx context.Context, repos TransactionalRepositories, cmd StockInCommand) (*inventory.StockTransaction, []*inventory.Lot, error) {
	total := decimal.Zero
	lots := make([]*inventory.Lot, 0, len(cmd.Lots))
	for _, input := range cmd.Lots {
		lot, err := inventory.NewLot(
			cmd.TenantID, cmd.WarehouseID, cmd.SkuID,
			cmd.RefDocType.String(), cmd.RefDocID,
			cmd.OccurredAt,
			input.BatchNumber, input.ExpiryDate,
			input.UnitCost, input.Quantity,
			input.Tracking,
		)
		if err != nil {
			return nil, nil, err
		}
		lots = append(lots, lot)
		total = total.Add(input.Quantity)
	}

	txn, err := inventory.NewStockTransaction(
		cmd.TenantID, cmd.WarehouseID, cmd.SkuID,
		inventory.DirectionIn, total, cmd.OccurredAt,
		cmd.RefDocType, cmd.RefDocID,
	)
	if err != nil {
		return nil, nil, err
	}
	txn.WithCreatedBy(cmd.ActorID)
	for _, lot := range lots {
		if err := txn.AddLotLine(lot.ID, lot.QtyReceived); err != nil {
			return nil, nil, err
		}
	}
	if err := txn.VerifyLines(); err != nil {
		return nil, nil, err
	}

	if err := repos.LotRepo().SaveAll(ctx, lots); err != nil {
		return nil, nil, err
	}
	if err := repos.TransactionRepo().Create(ctx, txn); err != nil {
		return nil, nil, err
	}

	balance, err := repos.BalanceRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.WarehouseID, cmd.SkuID)
	if err != nil {
		return nil, nil, err
	}
	if err := balance.ApplyInbound(total); err != nil {
		return nil, nil, err
	}
	if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
		return nil, nil, err
	}
	return txn, lots, nil
}

// PostStockOut appends an OUT transaction, debiting the selected lots and
// lowering the balance. Returns the transaction and the lot debits so the
// caller can carry lot metadata onward (e.g. onto in-transit rows).
func PostStockOut(ctx context.Context, repos TransactionalRepositories, cmd StockOutCommand) (*inventory.StockTransaction, []inventory.LotDebit, error) {
	var selector inventory.LotSelector = inventory.NewFIFOLotSelector()
	if len(cmd.LotRequests) > 0 {
		selector = inventory.NewSpecifiedLotSelector(cmd.LotRequests)
	}

	candidates, err := repos.LotRepo().FindAvailableForStock(ctx, cmd.TenantID, cmd.WarehouseID, cmd.SkuID)
	if err != nil {
		return nil, nil, err
	}
	result, err := selector.Select(cmd.Quantity, candidates)
	if err != nil {
		return nil, nil, err
	}
	if err := result.ApplyDebits(); err != nil {
		return nil, nil, err
	}

	txn, err := inventory.NewStockTransaction(
		cmd.TenantID, cmd.WarehouseID, cmd.SkuID,
		inventory.DirectionOut, cmd.Quantity, cmd.OccurredAt,
		cmd.RefDocType, cmd.RefDocID,
	)
	if err != nil {
		return nil, nil, err
	}
	txn.WithCreatedBy(cmd.ActorID)
	touched := make([]*inventory.Lot, 0, len(result.Debits))
	for _, debit := range result.Debits {
		if err := txn.AddLotLine(debit.Lot.ID, debit.Quantity); err != nil {
			return nil, nil, err
		}
		touched = append(touched, debit.Lot)
	}
	if err := txn.VerifyLines(); err != nil {
		return nil, nil, err
	}

	if err := repos.LotRepo().SaveAll(ctx, touched); err != nil {
		return nil, nil, err
	}
	if err := repos.TransactionRepo().Create(ctx, txn); err != nil {
		return nil, nil, err
	}

	balance, err := repos.BalanceRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.WarehouseID, cmd.SkuID)
	if err != nil {
		return nil, nil, err
	}
	if err := balance.ApplyOutbound(cmd.Quantity); err != nil {
		return nil, nil, err
	}
	if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
		return nil, nil, err
	}
	return txn, result.Debits, nil
}

// PostReservedStockOut appends an OUT transaction for stock that was
// reserved earlier: the lot availability was debited at reservation time,
// so this settles the reservation on the balance and records which lots the
// quantity came from.
func PostReservedStockOut(ctx context.Context, repos TransactionalRepositories, cmd ReservedStockOutCommand) (*inventory.StockTransaction, error) {
	total := decimal.Zero
	for _, line := range cmd.Lines {
		total = total.Add(line.Quantity)
	}

	txn, err := inventory.NewStockTransaction(
		cmd.TenantID, cmd.WarehouseID, cmd.SkuID,
		inventory.DirectionOut, total, cmd.OccurredAt,
		cmd.RefDocType, cmd.RefDocID,
	)
	if err != nil {
		return nil, err
	}
	txn.WithCreatedBy(cmd.ActorID)
	for _, line := range cmd.Lines {
		if err := txn.AddLotLine(line.LotID, line.Quantity); err != nil {
			return nil, err
		}
	}
	if err := txn.VerifyLines(); err != nil {
		return nil, err
	}

	if err := repos.TransactionRepo().Create(ctx, txn); err != nil {
		return nil, err
	}

	balance, err := repos.BalanceRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.WarehouseID, cmd.SkuID)
	if err != nil {
		return nil, err
	}
	if err := balance.ConsumeReservation(total); err != nil {
		return nil, err
	}
	if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
		return nil, err
	}
	return txn, nil
}
