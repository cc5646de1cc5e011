package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
)

// LedgerService owns the stock ledger: external receipts, adjustments,
// reversals and the derived balance cache. Transfer and billing flows post
// through the same helpers inside their own transaction scopes.
type LedgerService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope TransactionScope) *LedgerService {
	return &LedgerService{scope: scope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *LedgerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *LedgerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// ReceiveGoods posts an external goods receipt: one IN transaction minting
// one lot per received batch.
func (s *LedgerService) ReceiveGoods(ctx context.Context, cmd ReceiveGoodsCommand) (*StockTransactionResponse, error) {
	if len(cmd.Lots) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Goods receipt requires at least one lot")
	}

	var posted *inventory.StockTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lots := make([]NewLotInput, 0, len(cmd.Lots))
		for _, lot := range cmd.Lots {
			lots = append(lots, NewLotInput{
				BatchNumber: lot.BatchNumber,
				ExpiryDate:  lot.ExpiryDate,
				UnitCost:    lot.UnitCost,
				Quantity:    lot.Quantity,
				Tracking:    cmd.Tracking,
			})
		}
		txn, _, err := PostStockIn(ctx, repos, StockInCommand{
			TenantID:    cmd.TenantID,
			WarehouseID: cmd.WarehouseID,
			SkuID:       cmd.SkuID,
			OccurredAt:  cmd.OccurredAt,
			RefDocType:  inventory.RefDocTypeGoodsReceipt,
			RefDocID:    cmd.ReceiptRef,
			ActorID:     cmd.ActorID,
			Lots:        lots,
		})
		if err != nil {
			return err
		}
		posted = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockReceivedEvent(posted))
	response := ToStockTransactionResponse(posted)
	return &response, nil
}

// AdjustIn posts a positive stock correction as a new lot
func (s *LedgerService) AdjustIn(ctx context.Context, cmd AdjustInCommand) (*StockTransactionResponse, error) {
	var posted *inventory.StockTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txn, _, err := PostStockIn(ctx, repos, StockInCommand{
			TenantID:    cmd.TenantID,
			WarehouseID: cmd.WarehouseID,
			SkuID:       cmd.SkuID,
			OccurredAt:  cmd.OccurredAt,
			RefDocType:  inventory.RefDocTypeAdjustment,
			RefDocID:    cmd.RefDocID,
			ActorID:     cmd.ActorID,
			Lots: []NewLotInput{{
				BatchNumber: cmd.Lot.BatchNumber,
				ExpiryDate:  cmd.Lot.ExpiryDate,
				UnitCost:    cmd.Lot.UnitCost,
				Quantity:    cmd.Lot.Quantity,
				Tracking:    cmd.Tracking,
			}},
		})
		if err != nil {
			return err
		}
		posted = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockReceivedEvent(posted))
	response := ToStockTransactionResponse(posted)
	return &response, nil
}

// AdjustOut posts a negative stock correction, consuming lots FIFO unless
// an explicit lot split is given.
func (s *LedgerService) AdjustOut(ctx context.Context, cmd AdjustOutCommand) (*StockTransactionResponse, error) {
	var posted *inventory.StockTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txn, _, err := PostStockOut(ctx, repos, StockOutCommand{
			TenantID:    cmd.TenantID,
			WarehouseID: cmd.WarehouseID,
			SkuID:       cmd.SkuID,
			Quantity:    cmd.Quantity,
			OccurredAt:  cmd.OccurredAt,
			RefDocType:  inventory.RefDocTypeAdjustment,
			RefDocID:    cmd.RefDocID,
			ActorID:     cmd.ActorID,
			LotRequests: toLotRequests(cmd.LotRequests),
		})
		if err != nil {
			return err
		}
		posted = txn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewStockIssuedEvent(posted))
	response := ToStockTransactionResponse(posted)
	return &response, nil
}

// ReverseTransaction appends the inverse of a prior posting. An OUT is
// undone by crediting the consumed lots back; an IN by debiting the minted
// lots, which fails if their stock was consumed in the meantime. A posting
// can be reversed once, and a reversal cannot itself be reversed.
func (s *LedgerService) ReverseTransaction(ctx context.Context, cmd ReverseTransactionCommand) (*StockTransactionResponse, error) {
	var original, reversal *inventory.StockTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txn, err := repos.TransactionRepo().FindByIDForTenant(ctx, cmd.TenantID, cmd.TransactionID)
		if err != nil {
			return err
		}
		if txn.IsReversal() {
			return shared.ErrInvalidState
		}
		if _, err := repos.TransactionRepo().FindReversalOf(ctx, cmd.TenantID, txn.ID); err == nil {
			return shared.ErrInvalidState
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		inverse, err := inventory.NewStockTransaction(
			txn.TenantID, txn.WarehouseID, txn.SkuID,
			txn.Direction.Opposite(), txn.Quantity(), cmd.OccurredAt,
			txn.RefDocType, txn.RefDocID,
		)
		if err != nil {
			return err
		}
		inverse.WithCreatedBy(cmd.ActorID).WithReversalOf(txn.ID)

		lotIDs := make([]uuid.UUID, 0, len(txn.Lines))
		for _, line := range txn.Lines {
			lotIDs = append(lotIDs, line.LotID)
		}
		lots, err := repos.LotRepo().FindByIDsForUpdate(ctx, cmd.TenantID, lotIDs)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*inventory.Lot, len(lots))
		for _, lot := range lots {
			byID[lot.ID] = lot
		}

		for _, line := range txn.Lines {
			lot, ok := byID[line.LotID]
			if !ok {
				return shared.ErrNotFound
			}
			if txn.Direction == inventory.DirectionOut {
				err = lot.Credit(line.Quantity)
			} else {
				err = lot.Debit(line.Quantity)
			}
			if err != nil {
				return err
			}
			if err := inverse.AddLotLine(lot.ID, line.Quantity); err != nil {
				return err
			}
		}
		if err := inverse.VerifyLines(); err != nil {
			return err
		}

		if err := repos.LotRepo().SaveAll(ctx, lots); err != nil {
			return err
		}
		if err := repos.TransactionRepo().Create(ctx, inverse); err != nil {
			return err
		}

		balance, err := repos.BalanceRepo().GetOrCreateForUpdate(ctx, txn.TenantID, txn.WarehouseID, txn.SkuID)
		if err != nil {
			return err
		}
		if txn.Direction == inventory.DirectionOut {
			err = balance.ApplyInbound(txn.Quantity())
		} else {
			err = balance.ApplyOutbound(txn.Quantity())
		}
		if err != nil {
			return err
		}
		if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
			return err
		}

		original, reversal = txn, inverse
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inventory.NewTransactionReversedEvent(original, reversal))
	response := ToStockTransactionResponse(reversal)
	return &response, nil
}

// GetTransaction returns one ledger entry with its lot lines
func (s *LedgerService) GetTransaction(ctx context.Context, tenantID, txnID uuid.UUID) (*StockTransactionResponse, error) {
	var response StockTransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txn, err := repos.TransactionRepo().FindByIDForTenant(ctx, tenantID, txnID)
		if err != nil {
			return err
		}
		response = ToStockTransactionResponse(txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListTransactions returns the ledger entries for a (warehouse, sku) key
func (s *LedgerService) ListTransactions(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID, filter shared.Filter) ([]StockTransactionResponse, error) {
	var responses []StockTransactionResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		txns, err := repos.TransactionRepo().FindByStock(ctx, tenantID, warehouseID, skuID, filter)
		if err != nil {
			return err
		}
		responses = make([]StockTransactionResponse, 0, len(txns))
		for idx := range txns {
			responses = append(responses, ToStockTransactionResponse(&txns[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetBalance returns the cached balance for a (warehouse, sku) key
func (s *LedgerService) GetBalance(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (*StockBalanceResponse, error) {
	var response StockBalanceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := repos.BalanceRepo().FindByStock(ctx, tenantID, warehouseID, skuID)
		if err != nil {
			return err
		}
		response = ToStockBalanceResponse(balance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListLots returns the lots for a (warehouse, sku) key
func (s *LedgerService) ListLots(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID, filter shared.Filter) ([]LotResponse, error) {
	var responses []LotResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		lots, err := repos.LotRepo().FindByStock(ctx, tenantID, warehouseID, skuID, filter)
		if err != nil {
			return err
		}
		responses = make([]LotResponse, 0, len(lots))
		for idx := range lots {
			responses = append(responses, ToLotResponse(&lots[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// RebuildBalance recomputes the cached balance for a key by replaying the
// ledger. On-hand is the ledger's in/out delta; the reserved quantity is the
// gap between on-hand and the lots' remaining availability.
func (s *LedgerService) RebuildBalance(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (*StockBalanceResponse, error) {
	var response StockBalanceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		totalIn, totalOut, err := repos.TransactionRepo().SumByStock(ctx, tenantID, warehouseID, skuID)
		if err != nil {
			return err
		}
		available, err := repos.LotRepo().SumAvailableForStock(ctx, tenantID, warehouseID, skuID)
		if err != nil {
			return err
		}

		balance, err := repos.BalanceRepo().GetOrCreateForUpdate(ctx, tenantID, warehouseID, skuID)
		if err != nil {
			return err
		}
		onHand := totalIn.Sub(totalOut)
		balance.Rebuild(totalIn, totalOut, onHand.Sub(available))
		if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
			return err
		}
		response = ToStockBalanceResponse(balance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
