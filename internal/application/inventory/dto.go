package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/inventory"
)

// ReceiptLot is one lot of a goods receipt or inbound adjustment
type ReceiptLot struct {
	BatchNumber string          `json:"batch_number"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ReceiveGoodsCommand posts an external goods receipt into a warehouse
type ReceiveGoodsCommand struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	WarehouseID uuid.UUID
	SkuID       uuid.UUID
	ReceiptRef  string
	OccurredAt  time.Time
	Tracking    inventory.SkuTracking
	Lots        []ReceiptLot
}

// AdjustInCommand posts a positive stock correction, minting a new lot
type AdjustInCommand struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	WarehouseID uuid.UUID
	SkuID       uuid.UUID
	RefDocID    string
	OccurredAt  time.Time
	Tracking    inventory.SkuTracking
	Lot         ReceiptLot
}

// LotRequestInput names a specific lot and quantity for explicit selection
type LotRequestInput struct {
	LotID    uuid.UUID       `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// AdjustOutCommand posts a negative stock correction. Lots are consumed
// FIFO unless an explicit split is given.
type AdjustOutCommand struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	WarehouseID uuid.UUID
	SkuID       uuid.UUID
	Quantity    decimal.Decimal
	RefDocID    string
	OccurredAt  time.Time
	LotRequests []LotRequestInput
}

// ReverseTransactionCommand inverts a prior posting
type ReverseTransactionCommand struct {
	TenantID      uuid.UUID
	ActorID       uuid.UUID
	TransactionID uuid.UUID
	OccurredAt    time.Time
}

// LotResponse is the API representation of a lot
type LotResponse struct {
	ID            uuid.UUID       `json:"id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	SkuID         uuid.UUID       `json:"sku_id"`
	SourceDocType string          `json:"source_doc_type"`
	SourceDocRef  string          `json:"source_doc_ref"`
	ReceivedAt    time.Time       `json:"received_at"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	QtyReceived   decimal.Decimal `json:"qty_received"`
	QtyAvailable  decimal.Decimal `json:"qty_available"`
}

// ToLotResponse converts a lot to its API representation
func ToLotResponse(lot *inventory.Lot) LotResponse {
	return LotResponse{
		ID:            lot.ID,
		WarehouseID:   lot.WarehouseID,
		SkuID:         lot.SkuID,
		SourceDocType: lot.SourceDocType,
		SourceDocRef:  lot.SourceDocRef,
		ReceivedAt:    lot.ReceivedAt,
		BatchNumber:   lot.BatchNumber,
		ExpiryDate:    lot.ExpiryDate,
		UnitCost:      lot.UnitCost,
		QtyReceived:   lot.QtyReceived,
		QtyAvailable:  lot.QtyAvailable,
	}
}

// TransactionLineResponse is one lot line of a transaction
type TransactionLineResponse struct {
	LotID    uuid.UUID       `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Position int             `json:"position"`
}

// StockTransactionResponse is the API representation of a ledger entry
type StockTransactionResponse struct {
	ID           uuid.UUID                 `json:"id"`
	WarehouseID  uuid.UUID                 `json:"warehouse_id"`
	SkuID        uuid.UUID                 `json:"sku_id"`
	Direction    string                    `json:"direction"`
	Quantity     decimal.Decimal           `json:"quantity"`
	OccurredAt   time.Time                 `json:"occurred_at"`
	RefDocType   string                    `json:"ref_doc_type"`
	RefDocID     string                    `json:"ref_doc_id"`
	ReversalOfID *uuid.UUID                `json:"reversal_of_id,omitempty"`
	Lines        []TransactionLineResponse `json:"lines"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// ToStockTransactionResponse converts a transaction to its API representation
func ToStockTransactionResponse(txn *inventory.StockTransaction) StockTransactionResponse {
	lines := make([]TransactionLineResponse, 0, len(txn.Lines))
	for _, line := range txn.Lines {
		lines = append(lines, TransactionLineResponse{
			LotID:    line.LotID,
			Quantity: line.Quantity,
			Position: line.Position,
		})
	}
	return StockTransactionResponse{
		ID:           txn.ID,
		WarehouseID:  txn.WarehouseID,
		SkuID:        txn.SkuID,
		Direction:    txn.Direction.String(),
		Quantity:     txn.Quantity(),
		OccurredAt:   txn.OccurredAt,
		RefDocType:   txn.RefDocType.String(),
		RefDocID:     txn.RefDocID,
		ReversalOfID: txn.ReversalOfID,
		Lines:        lines,
		CreatedAt:    txn.CreatedAt,
	}
}

// StockBalanceResponse is the API representation of a balance row
type StockBalanceResponse struct {
	WarehouseID        uuid.UUID       `json:"warehouse_id"`
	SkuID              uuid.UUID       `json:"sku_id"`
	QtyOnHand          decimal.Decimal `json:"qty_on_hand"`
	QtyReserved        decimal.Decimal `json:"qty_reserved"`
	AvailableToPromise decimal.Decimal `json:"available_to_promise"`
}

// ToStockBalanceResponse converts a balance to its API representation
func ToStockBalanceResponse(balance *inventory.StockBalance) StockBalanceResponse {
	return StockBalanceResponse{
		WarehouseID:        balance.WarehouseID,
		SkuID:              balance.SkuID,
		QtyOnHand:          balance.QtyOnHand,
		QtyReserved:        balance.QtyReserved,
		AvailableToPromise: balance.AvailableToPromise(),
	}
}

// toLotRequests converts API lot requests to domain lot requests
func toLotRequests(inputs []LotRequestInput) []inventory.LotRequest {
	if len(inputs) == 0 {
		return nil
	}
	requests := make([]inventory.LotRequest, 0, len(inputs))
	for _, input := range inputs {
		requests = append(requests, inventory.LotRequest{LotID: input.LotID, Quantity: input.Quantity})
	}
	return requests
}
