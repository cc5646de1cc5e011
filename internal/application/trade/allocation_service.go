package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/trade"
)

// AllocationService is the fulfillment allocation engine. Allocating an
// order reserves specific lot quantities at a warehouse: lot availability
// drops and the balance's reserved quantity rises, but no ledger transaction
// is posted until invoicing settles the reservation.
type AllocationService struct {
	scope          appinventory.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(scope appinventory.TransactionScope) *AllocationService {
	return &AllocationService{scope: scope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AllocationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AllocationService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// AllocateOrder reserves lots for every line of an approved order,
// all-or-nothing: any line that cannot be fully reserved rolls the whole
// allocation back with InsufficientStock. Lots are reserved FIFO and the
// FIFO order is recorded on the allocation for later consumption.
func (s *AllocationService) AllocateOrder(ctx context.Context, cmd AllocateOrderCommand) (*AllocationResponse, error) {
	var created *trade.Allocation
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, cmd.TenantID, cmd.OrderID)
		if err != nil {
			return err
		}
		if !order.CanAllocate() {
			return shared.ErrInvalidState
		}
		if _, err := repos.AllocationRepo().FindActiveByOrder(ctx, cmd.TenantID, cmd.OrderID); err == nil {
			return shared.ErrAlreadyAllocated
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		allocation, err := trade.NewAllocation(cmd.TenantID, cmd.ActorID, cmd.OrderID, cmd.WarehouseID)
		if err != nil {
			return err
		}

		selector := inventory.NewFIFOLotSelector()
		for _, item := range order.Items {
			candidates, err := repos.LotRepo().FindAvailableForStock(ctx, cmd.TenantID, cmd.WarehouseID, item.SkuID)
			if err != nil {
				return err
			}
			result, err := selector.Select(item.Quantity, candidates)
			if err != nil {
				return err
			}
			if err := result.ApplyDebits(); err != nil {
				return err
			}

			touched := make([]*inventory.Lot, 0, len(result.Debits))
			reserved := make([]trade.ReservedLot, 0, len(result.Debits))
			for _, debit := range result.Debits {
				touched = append(touched, debit.Lot)
				reserved = append(reserved, trade.ReservedLot{LotID: debit.Lot.ID, Quantity: debit.Quantity})
			}
			if err := repos.LotRepo().SaveAll(ctx, touched); err != nil {
				return err
			}

			balance, err := repos.BalanceRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, cmd.WarehouseID, item.SkuID)
			if err != nil {
				return err
			}
			if err := balance.Reserve(item.Quantity); err != nil {
				return err
			}
			if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
				return err
			}

			if err := allocation.AddItem(item.ID, item.SkuID, item.Quantity, reserved); err != nil {
				return err
			}
		}

		if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
			return err
		}
		created = allocation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, trade.NewOrderAllocatedEvent(created))
	response := ToAllocationResponse(created)
	return &response, nil
}

// CancelAllocation releases every reservation of an active allocation:
// lot availability is credited back and the balance's reserved quantity
// drops, restoring the pre-allocation state exactly. Fails with
// PartiallyConsumed once any lot line has been invoiced.
func (s *AllocationService) CancelAllocation(ctx context.Context, cmd CancelAllocationCommand) (*AllocationResponse, error) {
	var cancelled *trade.Allocation
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		allocation, err := repos.AllocationRepo().FindByIDForUpdate(ctx, cmd.TenantID, cmd.AllocationID)
		if err != nil {
			return err
		}
		releases, err := allocation.CancelReservations()
		if err != nil {
			return err
		}

		lotIDs := make([]uuid.UUID, 0, len(releases))
		for _, release := range releases {
			lotIDs = append(lotIDs, release.LotID)
		}
		lots, err := repos.LotRepo().FindByIDsForUpdate(ctx, cmd.TenantID, lotIDs)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*inventory.Lot, len(lots))
		for _, lot := range lots {
			byID[lot.ID] = lot
		}
		for _, release := range releases {
			lot, ok := byID[release.LotID]
			if !ok {
				return shared.ErrNotFound
			}
			if err := lot.Credit(release.Quantity); err != nil {
				return err
			}
		}
		if err := repos.LotRepo().SaveAll(ctx, lots); err != nil {
			return err
		}

		for idx := range allocation.Items {
			item := &allocation.Items[idx]
			balance, err := repos.BalanceRepo().GetOrCreateForUpdate(ctx, cmd.TenantID, allocation.WarehouseID, item.SkuID)
			if err != nil {
				return err
			}
			if err := balance.ReleaseReservation(item.QtyAllocated); err != nil {
				return err
			}
			if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
				return err
			}
		}

		allocation.StampUpdatedBy(cmd.ActorID)
		if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
			return err
		}
		cancelled = allocation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, trade.NewAllocationCancelledEvent(cancelled))
	response := ToAllocationResponse(cancelled)
	return &response, nil
}

// GetAllocation returns one allocation with its items and lot lines
func (s *AllocationService) GetAllocation(ctx context.Context, tenantID, allocationID uuid.UUID) (*AllocationResponse, error) {
	var response AllocationResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		allocation, err := repos.AllocationRepo().FindByIDForTenant(ctx, tenantID, allocationID)
		if err != nil {
			return err
		}
		response = ToAllocationResponse(allocation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetAllocationByOrder returns the order's active allocation
func (s *AllocationService) GetAllocationByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*AllocationResponse, error) {
	var response AllocationResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		allocation, err := repos.AllocationRepo().FindActiveByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		response = ToAllocationResponse(allocation)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}
