package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/transfer"
)

// TransferService coordinates inter-warehouse transfers: each dispatch posts
// an OUT at the source, each receipt posts an IN at the destination, and the
// document writes commit in the same transaction as the postings.
type TransferService struct {
	scope          appinventory.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewTransferService creates a new TransferService
func NewTransferService(scope appinventory.TransactionScope) *TransferService {
	return &TransferService{scope: scope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransferService) publishDomainEvents(ctx context.Context, t *transfer.Transfer) {
	if s.eventPublisher == nil {
		return
	}
	events := t.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	t.ClearDomainEvents()
}

// CreateTransfer opens a transfer with its planned lines
func (s *TransferService) CreateTransfer(ctx context.Context, cmd CreateTransferCommand) (*TransferResponse, error) {
	lines := make([]transfer.PlannedLine, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		lines = append(lines, transfer.PlannedLine{SkuID: line.SkuID, QtyPlanned: line.QtyPlanned})
	}
	t, err := transfer.NewTransfer(cmd.TenantID, cmd.ActorID, cmd.FromWarehouseID, cmd.ToWarehouseID, cmd.TransferNumber, lines)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		return repos.TransferRepo().Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	response := ToTransferResponse(t)
	return &response, nil
}

// Dispatch posts stock out of the source warehouse for the given lines.
// For each line the consumed lots' batch/expiry/cost metadata is copied onto
// in-transit rows so receipts can mint equivalent lots at the destination.
func (s *TransferService) Dispatch(ctx context.Context, cmd DispatchTransferCommand) (*TransferResponse, error) {
	if len(cmd.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Dispatch requires at least one line")
	}

	var dispatched *transfer.Transfer
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		t, err := repos.TransferRepo().FindByIDForUpdate(ctx, cmd.TenantID, cmd.TransferID)
		if err != nil {
			return err
		}
		if !t.CanDispatch() {
			return shared.ErrInvalidState
		}

		for _, line := range cmd.Lines {
			if line.Quantity.LessThanOrEqual(decimal.Zero) {
				return shared.ErrInvalidDispatchQuantity
			}
			item, err := t.Item(line.ItemID)
			if err != nil {
				return err
			}

			lotRequests := make([]inventory.LotRequest, 0, len(line.LotRequests))
			for _, req := range line.LotRequests {
				lotRequests = append(lotRequests, inventory.LotRequest{LotID: req.LotID, Quantity: req.Quantity})
			}
			_, debits, err := appinventory.PostStockOut(ctx, repos, appinventory.StockOutCommand{
				TenantID:    cmd.TenantID,
				WarehouseID: t.FromWarehouseID,
				SkuID:       item.SkuID,
				Quantity:    line.Quantity,
				OccurredAt:  cmd.DispatchedAt,
				RefDocType:  inventory.RefDocTypeTransfer,
				RefDocID:    t.TransferNumber,
				ActorID:     cmd.ActorID,
				LotRequests: lotRequests,
			})
			if err != nil {
				return err
			}

			dispatchedLots := make([]transfer.DispatchedLot, 0, len(debits))
			for _, debit := range debits {
				dispatchedLots = append(dispatchedLots, transfer.DispatchedLot{
					LotID:       debit.Lot.ID,
					BatchNumber: debit.Lot.BatchNumber,
					ExpiryDate:  debit.Lot.ExpiryDate,
					UnitCost:    debit.Lot.UnitCost,
					Quantity:    debit.Quantity,
				})
			}
			if err := t.RecordDispatch(line.ItemID, dispatchedLots, cmd.DispatchedAt); err != nil {
				return err
			}
		}
		t.StampUpdatedBy(cmd.ActorID)
		if err := repos.TransferRepo().Save(ctx, t); err != nil {
			return err
		}
		dispatched = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, dispatched)
	response := ToTransferResponse(dispatched)
	return &response, nil
}

// Receive posts stock into the destination warehouse for the given lines,
// minting one destination lot per consumed in-transit row so the carried
// batch/expiry metadata survives. The idempotency key is registered in the
// same transaction; a replay rolls everything back with DuplicateOperation.
func (s *TransferService) Receive(ctx context.Context, cmd ReceiveTransferCommand) (*TransferResponse, error) {
	if len(cmd.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Receipt requires at least one line")
	}
	opKey, err := shared.NewOperationKey(cmd.TenantID, cmd.IdempotencyKey, "TRANSFER_RECEIVE")
	if err != nil {
		return nil, err
	}

	var received *transfer.Transfer
	err = s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		if err := repos.OperationKeyRepo().Register(ctx, opKey); err != nil {
			return err
		}

		t, err := repos.TransferRepo().FindByIDForUpdate(ctx, cmd.TenantID, cmd.TransferID)
		if err != nil {
			return err
		}

		for _, line := range cmd.Lines {
			item, err := t.Item(line.ItemID)
			if err != nil {
				return err
			}
			allocations, err := t.RecordReceipt(line.ItemID, line.Quantity, cmd.ReceivedAt)
			if err != nil {
				return err
			}

			lots := make([]appinventory.NewLotInput, 0, len(allocations))
			for _, alloc := range allocations {
				lots = append(lots, appinventory.NewLotInput{
					BatchNumber: alloc.InTransit.BatchNumber,
					ExpiryDate:  alloc.InTransit.ExpiryDate,
					UnitCost:    alloc.InTransit.UnitCost,
					Quantity:    alloc.Quantity,
				})
			}
			_, _, err = appinventory.PostStockIn(ctx, repos, appinventory.StockInCommand{
				TenantID:    cmd.TenantID,
				WarehouseID: t.ToWarehouseID,
				SkuID:       item.SkuID,
				OccurredAt:  cmd.ReceivedAt,
				RefDocType:  inventory.RefDocTypeTransfer,
				RefDocID:    t.TransferNumber,
				ActorID:     cmd.ActorID,
				Lots:        lots,
			})
			if err != nil {
				return err
			}
		}
		t.StampUpdatedBy(cmd.ActorID)
		if err := repos.TransferRepo().Save(ctx, t); err != nil {
			return err
		}
		received = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, received)
	response := ToTransferResponse(received)
	return &response, nil
}

// Cancel aborts a transfer before anything is received. Stock already
// dispatched stays posted; the ledger's reverse operation is the
// compensating path for it.
func (s *TransferService) Cancel(ctx context.Context, cmd CancelTransferCommand) (*TransferResponse, error) {
	var cancelled *transfer.Transfer
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		t, err := repos.TransferRepo().FindByIDForUpdate(ctx, cmd.TenantID, cmd.TransferID)
		if err != nil {
			return err
		}
		if err := t.Cancel(); err != nil {
			return err
		}
		t.StampUpdatedBy(cmd.ActorID)
		if err := repos.TransferRepo().Save(ctx, t); err != nil {
			return err
		}
		cancelled = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, cancelled)
	response := ToTransferResponse(cancelled)
	return &response, nil
}

// GetTransfer returns one transfer with its lines and in-transit rows
func (s *TransferService) GetTransfer(ctx context.Context, tenantID, transferID uuid.UUID) (*TransferResponse, error) {
	var response TransferResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		t, err := repos.TransferRepo().FindByIDForTenant(ctx, tenantID, transferID)
		if err != nil {
			return err
		}
		response = ToTransferResponse(t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListTransfers returns a page of the tenant's transfers
func (s *TransferService) ListTransfers(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[TransferResponse], error) {
	var page shared.Paginated[TransferResponse]
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		transfers, err := repos.TransferRepo().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err := repos.TransferRepo().CountForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		responses := make([]TransferResponse, 0, len(transfers))
		for idx := range transfers {
			responses = append(responses, ToTransferResponse(&transfers[idx]))
		}
		page = shared.NewPaginated(responses, total, filter.Page, filter.Limit())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
