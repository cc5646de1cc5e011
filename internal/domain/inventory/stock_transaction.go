package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// TransactionDirection indicates whether a stock transaction moves quantity
// into or out of a warehouse.
type TransactionDirection string

const (
	// DirectionIn represents stock entering a warehouse
	DirectionIn TransactionDirection = "IN"
	// DirectionOut represents stock leaving a warehouse
	DirectionOut TransactionDirection = "OUT"
)

// IsValid returns true if the direction is valid
func (d TransactionDirection) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// String returns the string representation of the direction
func (d TransactionDirection) String() string {
	return string(d)
}

// Opposite returns the inverse direction, used when reversing a posting
func (d TransactionDirection) Opposite() TransactionDirection {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// RefDocType identifies the business document a stock transaction settles
type RefDocType string

const (
	RefDocTypeGoodsReceipt RefDocType = "GOODS_RECEIPT"
	RefDocTypeTransfer     RefDocType = "TRANSFER"
	RefDocTypeInvoice      RefDocType = "INVOICE"
	RefDocTypeAdjustment   RefDocType = "ADJUSTMENT"
)

// IsValid returns true if the reference document type is valid
func (t RefDocType) IsValid() bool {
	switch t {
	case RefDocTypeGoodsReceipt, RefDocTypeTransfer, RefDocTypeInvoice, RefDocTypeAdjustment:
		return true
	}
	return false
}

// String returns the string representation of the type
func (t RefDocType) String() string {
	return string(t)
}

// TransactionLotLine links a stock transaction to one of the lots it moved.
// The sum of line quantities equals the transaction quantity.
type TransactionLotLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Position      int             `gorm:"not null"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (TransactionLotLine) TableName() string {
	return "stock_transaction_lot_lines"
}

// StockTransaction is an immutable record of a single stock movement.
// Exactly one of QtyIn/QtyOut is non-zero. The ledger is append-only:
// corrections are made by posting a reversal, never by mutating a row.
type StockTransaction struct {
	shared.BaseEntity
	TenantID     uuid.UUID            `gorm:"type:uuid;not null;index:idx_stock_txn_stock,priority:1"`
	WarehouseID  uuid.UUID            `gorm:"type:uuid;not null;index:idx_stock_txn_stock,priority:2"`
	SkuID        uuid.UUID            `gorm:"type:uuid;not null;index:idx_stock_txn_stock,priority:3"`
	Direction    TransactionDirection `gorm:"type:varchar(5);not null"`
	QtyIn        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	QtyOut       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	OccurredAt   time.Time            `gorm:"not null;index"`
	RefDocType   RefDocType           `gorm:"type:varchar(30);not null;index:idx_stock_txn_ref,priority:1"`
	RefDocID     string               `gorm:"type:varchar(100);not null;index:idx_stock_txn_ref,priority:2"`
	ReversalOfID *uuid.UUID           `gorm:"type:uuid;index"`
	CreatedBy    *uuid.UUID           `gorm:"type:uuid"`

	Lines []TransactionLotLine `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a stock transaction for the given direction
func NewStockTransaction(
	tenantID, warehouseID, skuID uuid.UUID,
	direction TransactionDirection,
	qty decimal.Decimal,
	occurredAt time.Time,
	refDocType RefDocType,
	refDocID string,
) (*StockTransaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if skuID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Transaction direction must be IN or OUT")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Transaction quantity must be positive")
	}
	if !refDocType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REF_DOC_TYPE", "Invalid reference document type")
	}
	if refDocID == "" {
		return nil, shared.NewDomainError("INVALID_REF_DOC_ID", "Reference document ID cannot be empty")
	}

	txn := &StockTransaction{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		SkuID:       skuID,
		Direction:   direction,
		OccurredAt:  occurredAt,
		RefDocType:  refDocType,
		RefDocID:    refDocID,
		Lines:       make([]TransactionLotLine, 0),
	}
	if direction == DirectionIn {
		txn.QtyIn = qty
	} else {
		txn.QtyOut = qty
	}
	return txn, nil
}

// WithCreatedBy stamps the acting user on the transaction
func (t *StockTransaction) WithCreatedBy(actorID uuid.UUID) *StockTransaction {
	if actorID != uuid.Nil {
		t.CreatedBy = &actorID
	}
	return t
}

// WithReversalOf marks the transaction as the inverse of a prior posting
func (t *StockTransaction) WithReversalOf(txnID uuid.UUID) *StockTransaction {
	t.ReversalOfID = &txnID
	return t
}

// Quantity returns the moved quantity regardless of direction
func (t *StockTransaction) Quantity() decimal.Decimal {
	if t.Direction == DirectionIn {
		return t.QtyIn
	}
	return t.QtyOut
}

// SignedQuantity returns the quantity signed by direction
func (t *StockTransaction) SignedQuantity() decimal.Decimal {
	if t.Direction == DirectionOut {
		return t.QtyOut.Neg()
	}
	return t.QtyIn
}

// IsReversal returns true if this transaction inverts a prior posting
func (t *StockTransaction) IsReversal() bool {
	return t.ReversalOfID != nil
}

// AddLotLine appends a lot line to the transaction
func (t *StockTransaction) AddLotLine(lotID uuid.UUID, qty decimal.Decimal) error {
	if lotID == uuid.Nil {
		return shared.NewDomainError("INVALID_LOT", "Lot ID cannot be empty")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Lot line quantity must be positive")
	}
	t.Lines = append(t.Lines, TransactionLotLine{
		ID:            uuid.New(),
		TransactionID: t.ID,
		LotID:         lotID,
		Quantity:      qty,
		Position:      len(t.Lines),
		CreatedAt:     time.Now(),
	})
	return nil
}

// LineTotal returns the sum of lot line quantities
func (t *StockTransaction) LineTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range t.Lines {
		total = total.Add(line.Quantity)
	}
	return total
}

// VerifyLines checks the reconciliation invariant: the lot lines must
// account for exactly the transaction quantity.
func (t *StockTransaction) VerifyLines() error {
	if !t.LineTotal().Equal(t.Quantity()) {
		return shared.NewDomainError("UNBALANCED_TRANSACTION", "Lot lines do not sum to the transaction quantity")
	}
	return nil
}
