package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/transfer"
)

// TransferLineInput is one planned SKU line of a new transfer
type TransferLineInput struct {
	SkuID      uuid.UUID       `json:"sku_id"`
	QtyPlanned decimal.Decimal `json:"qty_planned"`
}

// CreateTransferCommand opens a transfer between two warehouses
type CreateTransferCommand struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	FromWarehouseID uuid.UUID
	ToWarehouseID   uuid.UUID
	TransferNumber  string
	Lines           []TransferLineInput
}

// DispatchLine is one item line of a dispatch call. Lots are consumed FIFO
// at the source warehouse unless an explicit split is given.
type DispatchLine struct {
	ItemID      uuid.UUID                      `json:"item_id"`
	Quantity    decimal.Decimal                `json:"quantity"`
	LotRequests []appinventory.LotRequestInput `json:"lot_requests,omitempty"`
}

// DispatchTransferCommand posts stock out of the source warehouse
type DispatchTransferCommand struct {
	TenantID     uuid.UUID
	ActorID      uuid.UUID
	TransferID   uuid.UUID
	DispatchedAt time.Time
	Lines        []DispatchLine
}

// ReceiveLine is one item line of a receipt call
type ReceiveLine struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReceiveTransferCommand posts stock into the destination warehouse. The
// idempotency key identifies the physical receipt; replaying it fails with
// DuplicateOperation.
type ReceiveTransferCommand struct {
	TenantID       uuid.UUID
	ActorID        uuid.UUID
	TransferID     uuid.UUID
	IdempotencyKey string
	ReceivedAt     time.Time
	Lines          []ReceiveLine
}

// CancelTransferCommand aborts a transfer before anything is received
type CancelTransferCommand struct {
	TenantID   uuid.UUID
	ActorID    uuid.UUID
	TransferID uuid.UUID
}

// InTransitResponse is the API representation of an in-transit row
type InTransitResponse struct {
	ID            uuid.UUID       `json:"id"`
	SourceLotID   uuid.UUID       `json:"source_lot_id"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	QtyDispatched decimal.Decimal `json:"qty_dispatched"`
	QtyReceived   decimal.Decimal `json:"qty_received"`
	DispatchedAt  time.Time       `json:"dispatched_at"`
}

// TransferItemResponse is the API representation of a transfer line
type TransferItemResponse struct {
	ID                 uuid.UUID           `json:"id"`
	SkuID              uuid.UUID           `json:"sku_id"`
	QtyPlanned         decimal.Decimal     `json:"qty_planned"`
	QtyDispatchedTotal decimal.Decimal     `json:"qty_dispatched_total"`
	QtyReceivedTotal   decimal.Decimal     `json:"qty_received_total"`
	InTransit          []InTransitResponse `json:"in_transit"`
}

// TransferResponse is the API representation of a transfer
type TransferResponse struct {
	ID              uuid.UUID              `json:"id"`
	TransferNumber  string                 `json:"transfer_number"`
	FromWarehouseID uuid.UUID              `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID              `json:"to_warehouse_id"`
	Status          string                 `json:"status"`
	DispatchedAt    *time.Time             `json:"dispatched_at,omitempty"`
	ReceivedAt      *time.Time             `json:"received_at,omitempty"`
	Items           []TransferItemResponse `json:"items"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ToTransferResponse converts a transfer to its API representation
func ToTransferResponse(t *transfer.Transfer) TransferResponse {
	items := make([]TransferItemResponse, 0, len(t.Items))
	for idx := range t.Items {
		item := &t.Items[idx]
		rows := make([]InTransitResponse, 0, len(item.InTransit))
		for _, row := range item.InTransit {
			rows = append(rows, InTransitResponse{
				ID:            row.ID,
				SourceLotID:   row.SourceLotID,
				BatchNumber:   row.BatchNumber,
				ExpiryDate:    row.ExpiryDate,
				QtyDispatched: row.QtyDispatched,
				QtyReceived:   row.QtyReceived,
				DispatchedAt:  row.DispatchedAt,
			})
		}
		items = append(items, TransferItemResponse{
			ID:                 item.ID,
			SkuID:              item.SkuID,
			QtyPlanned:         item.QtyPlanned,
			QtyDispatchedTotal: item.QtyDispatchedTotal,
			QtyReceivedTotal:   item.QtyReceivedTotal,
			InTransit:          rows,
		})
	}
	return TransferResponse{
		ID:              t.ID,
		TransferNumber:  t.TransferNumber,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Status:          t.Status.String(),
		DispatchedAt:    t.DispatchedAt,
		ReceivedAt:      t.ReceivedAt,
		Items:           items,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
