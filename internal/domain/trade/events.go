package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

const (
	AggregateTypeSalesOrder = "SalesOrder"
	AggregateTypeAllocation = "Allocation"

	EventTypeOrderSubmitted      = "OrderSubmitted"
	EventTypeOrderApproved       = "OrderApproved"
	EventTypeOrderRejected       = "OrderRejected"
	EventTypeOrderCancelled      = "OrderCancelled"
	EventTypeOrderAllocated      = "OrderAllocated"
	EventTypeAllocationCancelled = "AllocationCancelled"
)

// OrderSubmittedEvent is raised when a draft order is submitted for approval
type OrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string
	DistributorID uuid.UUID
	TotalAmount   decimal.Decimal
}

// NewOrderSubmittedEvent creates a new order submitted event
func NewOrderSubmittedEvent(order *SalesOrder) *OrderSubmittedEvent {
	return &OrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderSubmitted, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		DistributorID:   order.DistributorID,
		TotalAmount:     order.TotalAmount,
	}
}

// OrderApprovedEvent is raised when a submitted order is approved
type OrderApprovedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string
	ApprovedBy  uuid.UUID
}

// NewOrderApprovedEvent creates a new order approved event
func NewOrderApprovedEvent(order *SalesOrder, approvedBy uuid.UUID) *OrderApprovedEvent {
	return &OrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderApproved, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		ApprovedBy:      approvedBy,
	}
}

// OrderRejectedEvent is raised when a submitted order is rejected
type OrderRejectedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string
	RejectedBy  uuid.UUID
}

// NewOrderRejectedEvent creates a new order rejected event
func NewOrderRejectedEvent(order *SalesOrder, rejectedBy uuid.UUID) *OrderRejectedEvent {
	return &OrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRejected, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
		RejectedBy:      rejectedBy,
	}
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string
}

// NewOrderCancelledEvent creates a new order cancelled event
func NewOrderCancelledEvent(order *SalesOrder) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderNumber:     order.OrderNumber,
	}
}

// OrderAllocatedEvent is raised when stock reservations are placed for an order
type OrderAllocatedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID
	WarehouseID   uuid.UUID
	TotalReserved decimal.Decimal
}

// NewOrderAllocatedEvent creates a new order allocated event
func NewOrderAllocatedEvent(allocation *Allocation) *OrderAllocatedEvent {
	return &OrderAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderAllocated, AggregateTypeAllocation, allocation.ID, allocation.TenantID),
		OrderID:         allocation.OrderID,
		WarehouseID:     allocation.WarehouseID,
		TotalReserved:   allocation.TotalReserved(),
	}
}

// AllocationCancelledEvent is raised when reservations are returned to stock
type AllocationCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID
	WarehouseID uuid.UUID
}

// NewAllocationCancelledEvent creates a new allocation cancelled event
func NewAllocationCancelledEvent(allocation *Allocation) *AllocationCancelledEvent {
	return &AllocationCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationCancelled, AggregateTypeAllocation, allocation.ID, allocation.TenantID),
		OrderID:         allocation.OrderID,
		WarehouseID:     allocation.WarehouseID,
	}
}
