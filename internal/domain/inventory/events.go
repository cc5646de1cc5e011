package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeStockTransaction = "StockTransaction"

// Event type constants
const (
	EventTypeStockReceived       = "StockReceived"
	EventTypeStockIssued         = "StockIssued"
	EventTypeTransactionReversed = "TransactionReversed"
)

// StockReceivedEvent is raised when an IN posting creates stock
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	SkuID         uuid.UUID       `json:"sku_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	RefDocType    string          `json:"ref_doc_type"`
	RefDocID      string          `json:"ref_doc_id"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(txn *StockTransaction) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStockTransaction, txn.ID, txn.TenantID),
		TransactionID:   txn.ID,
		WarehouseID:     txn.WarehouseID,
		SkuID:           txn.SkuID,
		Quantity:        txn.QtyIn,
		RefDocType:      txn.RefDocType.String(),
		RefDocID:        txn.RefDocID,
	}
}

// StockIssuedEvent is raised when an OUT posting consumes stock
type StockIssuedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	WarehouseID   uuid.UUID       `json:"warehouse_id"`
	SkuID         uuid.UUID       `json:"sku_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	RefDocType    string          `json:"ref_doc_type"`
	RefDocID      string          `json:"ref_doc_id"`
}

// NewStockIssuedEvent creates a new StockIssuedEvent
func NewStockIssuedEvent(txn *StockTransaction) *StockIssuedEvent {
	return &StockIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockIssued, AggregateTypeStockTransaction, txn.ID, txn.TenantID),
		TransactionID:   txn.ID,
		WarehouseID:     txn.WarehouseID,
		SkuID:           txn.SkuID,
		Quantity:        txn.QtyOut,
		RefDocType:      txn.RefDocType.String(),
		RefDocID:        txn.RefDocID,
	}
}

// TransactionReversedEvent is raised when a posting is inverted
type TransactionReversedEvent struct {
	shared.BaseDomainEvent
	OriginalID uuid.UUID       `json:"original_transaction_id"`
	ReversalID uuid.UUID       `json:"reversal_transaction_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// NewTransactionReversedEvent creates a new TransactionReversedEvent
func NewTransactionReversedEvent(original, reversal *StockTransaction) *TransactionReversedEvent {
	return &TransactionReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionReversed, AggregateTypeStockTransaction, reversal.ID, reversal.TenantID),
		OriginalID:      original.ID,
		ReversalID:      reversal.ID,
		Quantity:        original.Quantity(),
	}
}
