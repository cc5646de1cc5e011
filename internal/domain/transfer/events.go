package transfer

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTransfer = "Transfer"

// Event type constants
const (
	EventTypeTransferDispatched = "TransferDispatched"
	EventTypeTransferReceived   = "TransferReceived"
	EventTypeTransferClosed     = "TransferClosed"
	EventTypeTransferCancelled  = "TransferCancelled"
)

// TransferDispatchedEvent is raised when stock leaves the source warehouse
type TransferDispatchedEvent struct {
	shared.BaseDomainEvent
	TransferID      uuid.UUID       `json:"transfer_id"`
	FromWarehouseID uuid.UUID       `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID       `json:"to_warehouse_id"`
	SkuID           uuid.UUID       `json:"sku_id"`
	Quantity        decimal.Decimal `json:"quantity"`
}

// NewTransferDispatchedEvent creates a new TransferDispatchedEvent
func NewTransferDispatchedEvent(t *Transfer, skuID uuid.UUID, qty decimal.Decimal) *TransferDispatchedEvent {
	return &TransferDispatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferDispatched, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		SkuID:           skuID,
		Quantity:        qty,
	}
}

// TransferReceivedEvent is raised when stock arrives at the destination
type TransferReceivedEvent struct {
	shared.BaseDomainEvent
	TransferID    uuid.UUID       `json:"transfer_id"`
	ToWarehouseID uuid.UUID       `json:"to_warehouse_id"`
	SkuID         uuid.UUID       `json:"sku_id"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// NewTransferReceivedEvent creates a new TransferReceivedEvent
func NewTransferReceivedEvent(t *Transfer, skuID uuid.UUID, qty decimal.Decimal) *TransferReceivedEvent {
	return &TransferReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferReceived, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
		ToWarehouseID:   t.ToWarehouseID,
		SkuID:           skuID,
		Quantity:        qty,
	}
}

// TransferClosedEvent is raised when every dispatched quantity has been received
type TransferClosedEvent struct {
	shared.BaseDomainEvent
	TransferID uuid.UUID `json:"transfer_id"`
}

// NewTransferClosedEvent creates a new TransferClosedEvent
func NewTransferClosedEvent(t *Transfer) *TransferClosedEvent {
	return &TransferClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferClosed, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
	}
}

// TransferCancelledEvent is raised when a transfer is aborted before receipt
type TransferCancelledEvent struct {
	shared.BaseDomainEvent
	TransferID uuid.UUID `json:"transfer_id"`
}

// NewTransferCancelledEvent creates a new TransferCancelledEvent
func NewTransferCancelledEvent(t *Transfer) *TransferCancelledEvent {
	return &TransferCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferCancelled, AggregateTypeTransfer, t.ID, t.TenantID),
		TransferID:      t.ID,
	}
}
