package trade

import (
	"context"

	"github.com/google/uuid"
	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/trade"
)

// SalesOrderService manages the order lifecycle up to the point where the
// allocation engine takes over.
type SalesOrderService struct {
	scope          appinventory.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(scope appinventory.TransactionScope) *SalesOrderService {
	return &SalesOrderService{scope: scope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *SalesOrderService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// CreateOrder creates a draft order
func (s *SalesOrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*SalesOrderResponse, error) {
	lines := make([]trade.OrderLine, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		lines = append(lines, trade.OrderLine{
			SkuID:     line.SkuID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	order, err := trade.NewSalesOrder(cmd.TenantID, cmd.ActorID, cmd.DistributorID, cmd.OutletID, cmd.OrderNumber, lines)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// transition applies one lifecycle mutation inside a transaction
func (s *SalesOrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, mutate func(*trade.SalesOrder) error) (*SalesOrderResponse, error) {
	var mutated *trade.SalesOrder
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := mutate(order); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}
		mutated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	response := ToSalesOrderResponse(mutated)
	return &response, nil
}

// SubmitOrder moves a draft order to SUBMITTED
func (s *SalesOrderService) SubmitOrder(ctx context.Context, tenantID, orderID, actorID uuid.UUID) (*SalesOrderResponse, error) {
	response, err := s.transition(ctx, tenantID, orderID, func(order *trade.SalesOrder) error {
		if err := order.Submit(actorID); err != nil {
			return err
		}
		s.publish(ctx, trade.NewOrderSubmittedEvent(order))
		return nil
	})
	return response, err
}

// ApproveOrder moves a submitted order to APPROVED, unlocking allocation
func (s *SalesOrderService) ApproveOrder(ctx context.Context, tenantID, orderID, actorID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(order *trade.SalesOrder) error {
		if err := order.Approve(actorID); err != nil {
			return err
		}
		s.publish(ctx, trade.NewOrderApprovedEvent(order, actorID))
		return nil
	})
}

// RejectOrder moves a submitted order to REJECTED
func (s *SalesOrderService) RejectOrder(ctx context.Context, tenantID, orderID, actorID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(order *trade.SalesOrder) error {
		if err := order.Reject(actorID); err != nil {
			return err
		}
		s.publish(ctx, trade.NewOrderRejectedEvent(order, actorID))
		return nil
	})
}

// CancelOrder moves a draft or submitted order to CANCELLED
func (s *SalesOrderService) CancelOrder(ctx context.Context, tenantID, orderID, actorID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, func(order *trade.SalesOrder) error {
		if err := order.Cancel(actorID); err != nil {
			return err
		}
		s.publish(ctx, trade.NewOrderCancelledEvent(order))
		return nil
	})
}

// GetOrder returns one order with its lines
func (s *SalesOrderService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	var response SalesOrderResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		order, err := repos.OrderRepo().FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		response = ToSalesOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListOrders returns a page of the tenant's orders
func (s *SalesOrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[SalesOrderResponse], error) {
	var page shared.Paginated[SalesOrderResponse]
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		orders, err := repos.OrderRepo().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err := repos.OrderRepo().CountForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		responses := make([]SalesOrderResponse, 0, len(orders))
		for _, order := range orders {
			responses = append(responses, ToSalesOrderResponse(order))
		}
		page = shared.NewPaginated(responses, total, filter.Page, filter.Limit())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
