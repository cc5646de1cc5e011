package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/trade"
)

// OrderLineInput is one SKU line of a new order
type OrderLineInput struct {
	SkuID     uuid.UUID       `json:"sku_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderCommand creates a draft sales order
type CreateOrderCommand struct {
	TenantID      uuid.UUID
	ActorID       uuid.UUID
	DistributorID uuid.UUID
	OutletID      *uuid.UUID
	OrderNumber   string
	Lines         []OrderLineInput
}

// AllocateOrderCommand reserves stock for an approved order at a warehouse
type AllocateOrderCommand struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	OrderID     uuid.UUID
	WarehouseID uuid.UUID
}

// CancelAllocationCommand releases an allocation's reservations
type CancelAllocationCommand struct {
	TenantID     uuid.UUID
	ActorID      uuid.UUID
	AllocationID uuid.UUID
}

// OrderItemResponse is the API representation of an order line
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	SkuID     uuid.UUID       `json:"sku_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// SalesOrderResponse is the API representation of a sales order
type SalesOrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	DistributorID uuid.UUID           `json:"distributor_id"`
	OutletID      *uuid.UUID          `json:"outlet_id,omitempty"`
	Status        string              `json:"status"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	SubmittedAt   *time.Time          `json:"submitted_at,omitempty"`
	ApprovedAt    *time.Time          `json:"approved_at,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToSalesOrderResponse converts a sales order to its API representation
func ToSalesOrderResponse(order *trade.SalesOrder) SalesOrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			SkuID:     item.SkuID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    item.Amount,
		})
	}
	return SalesOrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		DistributorID: order.DistributorID,
		OutletID:      order.OutletID,
		Status:        order.Status.String(),
		TotalAmount:   order.TotalAmount,
		SubmittedAt:   order.SubmittedAt,
		ApprovedAt:    order.ApprovedAt,
		Items:         items,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// AllocationLotResponse is one reserved lot line
type AllocationLotResponse struct {
	LotID       uuid.UUID       `json:"lot_id"`
	QtyReserved decimal.Decimal `json:"qty_reserved"`
	QtyConsumed decimal.Decimal `json:"qty_consumed"`
	Position    int             `json:"position"`
}

// AllocationItemResponse is the API representation of an allocation item
type AllocationItemResponse struct {
	ID           uuid.UUID               `json:"id"`
	OrderItemID  uuid.UUID               `json:"order_item_id"`
	SkuID        uuid.UUID               `json:"sku_id"`
	QtyAllocated decimal.Decimal         `json:"qty_allocated"`
	QtyInvoiced  decimal.Decimal         `json:"qty_invoiced"`
	Lots         []AllocationLotResponse `json:"lots"`
}

// AllocationResponse is the API representation of an allocation
type AllocationResponse struct {
	ID          uuid.UUID                `json:"id"`
	OrderID     uuid.UUID                `json:"order_id"`
	WarehouseID uuid.UUID                `json:"warehouse_id"`
	Status      string                   `json:"status"`
	Items       []AllocationItemResponse `json:"items"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// ToAllocationResponse converts an allocation to its API representation
func ToAllocationResponse(allocation *trade.Allocation) AllocationResponse {
	items := make([]AllocationItemResponse, 0, len(allocation.Items))
	for idx := range allocation.Items {
		item := &allocation.Items[idx]
		lots := make([]AllocationLotResponse, 0, len(item.Lots))
		for _, lot := range item.Lots {
			lots = append(lots, AllocationLotResponse{
				LotID:       lot.LotID,
				QtyReserved: lot.QtyReserved,
				QtyConsumed: lot.QtyConsumed,
				Position:    lot.Position,
			})
		}
		items = append(items, AllocationItemResponse{
			ID:           item.ID,
			OrderItemID:  item.OrderItemID,
			SkuID:        item.SkuID,
			QtyAllocated: item.QtyAllocated,
			QtyInvoiced:  item.QtyInvoiced,
			Lots:         lots,
		})
	}
	return AllocationResponse{
		ID:          allocation.ID,
		OrderID:     allocation.OrderID,
		WarehouseID: allocation.WarehouseID,
		Status:      allocation.Status.String(),
		Items:       items,
		CreatedAt:   allocation.CreatedAt,
		UpdatedAt:   allocation.UpdatedAt,
	}
}
