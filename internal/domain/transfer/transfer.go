package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// TransferStatus represents the lifecycle state of a stock transfer
type TransferStatus string

const (
	TransferStatusOpen              TransferStatus = "OPEN"
	TransferStatusDispatched        TransferStatus = "DISPATCHED"
	TransferStatusPartiallyReceived TransferStatus = "PARTIALLY_RECEIVED"
	TransferStatusClosed            TransferStatus = "CLOSED"
	TransferStatusCancelled         TransferStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusOpen, TransferStatusDispatched, TransferStatusPartiallyReceived,
		TransferStatusClosed, TransferStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransferStatus
func (s TransferStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusOpen:
		return target == TransferStatusDispatched || target == TransferStatusCancelled
	case TransferStatusDispatched:
		return target == TransferStatusPartiallyReceived || target == TransferStatusClosed ||
			target == TransferStatusCancelled
	case TransferStatusPartiallyReceived:
		return target == TransferStatusClosed || target == TransferStatusPartiallyReceived
	case TransferStatusClosed, TransferStatusCancelled:
		return false
	}
	return false
}

// TransferInTransit tracks one dispatched slice of stock that has left the
// source warehouse but not yet arrived at the destination. One row is
// created per (dispatch, source lot) so the original batch/expiry/cost
// metadata travels with the goods and is stamped onto the destination lot
// at receipt. qty_received never exceeds qty_dispatched on a row.
type TransferInTransit struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TransferItemID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FromWarehouseID uuid.UUID `gorm:"type:uuid;not null"`
	ToWarehouseID   uuid.UUID `gorm:"type:uuid;not null"`
	SkuID           uuid.UUID `gorm:"type:uuid;not null"`
	SourceLotID     uuid.UUID `gorm:"type:uuid;not null"`
	BatchNumber     string    `gorm:"type:varchar(100)"`
	ExpiryDate      *time.Time
	UnitCost        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QtyDispatched   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyReceived     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DispatchedAt    time.Time       `gorm:"not null"`
	Position        int             `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (TransferInTransit) TableName() string {
	return "transfer_in_transits"
}

// Outstanding returns the dispatched quantity not yet received
func (t *TransferInTransit) Outstanding() decimal.Decimal {
	return t.QtyDispatched.Sub(t.QtyReceived)
}

// TransferItem is one SKU line of a transfer. Over-dispatch against the
// plan is allowed; under-receipt is normal until the transfer closes.
type TransferItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransferID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SkuID              uuid.UUID       `gorm:"type:uuid;not null"`
	QtyPlanned         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyDispatchedTotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QtyReceivedTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	InTransit []TransferInTransit `gorm:"foreignKey:TransferItemID;references:ID"`
}

// TableName returns the table name for GORM
func (TransferItem) TableName() string {
	return "transfer_items"
}

// OutstandingInTransit returns the item's total dispatched-not-received quantity
func (i *TransferItem) OutstandingInTransit() decimal.Decimal {
	return i.QtyDispatchedTotal.Sub(i.QtyReceivedTotal)
}

// IsReconciled returns true once everything dispatched has been received
func (i *TransferItem) IsReconciled() bool {
	return i.QtyReceivedTotal.Equal(i.QtyDispatchedTotal)
}

// DispatchedLot describes one source lot consumed by a dispatch, with the
// metadata to carry in transit.
type DispatchedLot struct {
	LotID       uuid.UUID
	BatchNumber string
	ExpiryDate  *time.Time
	UnitCost    decimal.Decimal
	Quantity    decimal.Decimal
}

// ReceiptAllocation maps a received quantity onto an in-transit row; the
// caller mints the destination lot from the row's carried metadata.
type ReceiptAllocation struct {
	InTransit *TransferInTransit
	Quantity  decimal.Decimal
}

// PlannedLine is one SKU line of a new transfer
type PlannedLine struct {
	SkuID      uuid.UUID
	QtyPlanned decimal.Decimal
}

// Transfer models goods moving between two warehouses of the same tenant.
// It is the aggregate root for dispatch/receipt reconciliation.
type Transfer struct {
	shared.TenantAggregateRoot
	TransferNumber  string         `gorm:"type:varchar(50);not null"`
	FromWarehouseID uuid.UUID      `gorm:"type:uuid;not null;index"`
	ToWarehouseID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status          TransferStatus `gorm:"type:varchar(30);not null"`
	DispatchedAt    *time.Time
	ReceivedAt      *time.Time

	Items []TransferItem `gorm:"foreignKey:TransferID;references:ID"`
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "transfers"
}

// NewTransfer creates an OPEN transfer with its planned lines
func NewTransfer(tenantID, actorID, fromWarehouseID, toWarehouseID uuid.UUID, transferNumber string, lines []PlannedLine) (*Transfer, error) {
	if fromWarehouseID == uuid.Nil || toWarehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if fromWarehouseID == toWarehouseID {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Source and destination warehouses must differ")
	}
	if transferNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer requires at least one line")
	}

	t := &Transfer{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithActor(tenantID, actorID),
		TransferNumber:      transferNumber,
		FromWarehouseID:     fromWarehouseID,
		ToWarehouseID:       toWarehouseID,
		Status:              TransferStatusOpen,
		Items:               make([]TransferItem, 0, len(lines)),
	}
	now := time.Now()
	for _, line := range lines {
		if line.SkuID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_SKU", "SKU ID cannot be empty")
		}
		if line.QtyPlanned.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Planned quantity must be positive")
		}
		t.Items = append(t.Items, TransferItem{
			ID:         uuid.New(),
			TransferID: t.ID,
			SkuID:      line.SkuID,
			QtyPlanned: line.QtyPlanned,
			CreatedAt:  now,
			UpdatedAt:  now,
			InTransit:  make([]TransferInTransit, 0),
		})
	}
	return t, nil
}

// Item returns the line with the given ID
func (t *Transfer) Item(itemID uuid.UUID) (*TransferItem, error) {
	for idx := range t.Items {
		if t.Items[idx].ID == itemID {
			return &t.Items[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

// CanDispatch returns true while further dispatches are allowed
func (t *Transfer) CanDispatch() bool {
	switch t.Status {
	case TransferStatusOpen, TransferStatusDispatched, TransferStatusPartiallyReceived:
		return true
	}
	return false
}

// RecordDispatch registers stock leaving the source warehouse for one line.
// One in-transit row is created per consumed source lot so batch and expiry
// metadata survive the trip.
func (t *Transfer) RecordDispatch(itemID uuid.UUID, lots []DispatchedLot, dispatchedAt time.Time) error {
	if !t.CanDispatch() {
		return shared.ErrInvalidState
	}
	item, err := t.Item(itemID)
	if err != nil {
		return err
	}

	total := decimal.Zero
	for _, lot := range lots {
		total = total.Add(lot.Quantity)
	}
	if total.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidDispatchQuantity
	}

	for _, lot := range lots {
		if lot.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.ErrInvalidDispatchQuantity
		}
		item.InTransit = append(item.InTransit, TransferInTransit{
			ID:              uuid.New(),
			TransferItemID:  item.ID,
			FromWarehouseID: t.FromWarehouseID,
			ToWarehouseID:   t.ToWarehouseID,
			SkuID:           item.SkuID,
			SourceLotID:     lot.LotID,
			BatchNumber:     lot.BatchNumber,
			ExpiryDate:      lot.ExpiryDate,
			UnitCost:        lot.UnitCost,
			QtyDispatched:   lot.Quantity,
			QtyReceived:     decimal.Zero,
			DispatchedAt:    dispatchedAt,
			Position:        len(item.InTransit),
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		})
	}
	item.QtyDispatchedTotal = item.QtyDispatchedTotal.Add(total)
	item.UpdatedAt = time.Now()

	if t.Status == TransferStatusOpen {
		t.Status = TransferStatusDispatched
	}
	t.AddDomainEvent(NewTransferDispatchedEvent(t, item.SkuID, total))
	if t.DispatchedAt == nil {
		at := dispatchedAt
		t.DispatchedAt = &at
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// RecordReceipt registers stock arriving at the destination for one line.
// In-transit rows are consumed in dispatch order; the returned allocations
// tell the caller which carried metadata to stamp on the new lots.
// Fails with OverReceipt if qty exceeds the line's outstanding quantity.
func (t *Transfer) RecordReceipt(itemID uuid.UUID, qty decimal.Decimal, receivedAt time.Time) ([]ReceiptAllocation, error) {
	if t.Status != TransferStatusDispatched && t.Status != TransferStatusPartiallyReceived {
		return nil, shared.ErrInvalidState
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Receipt quantity must be positive")
	}
	item, err := t.Item(itemID)
	if err != nil {
		return nil, err
	}
	if qty.GreaterThan(item.OutstandingInTransit()) {
		return nil, shared.ErrOverReceipt
	}

	allocations := make([]ReceiptAllocation, 0)
	remaining := qty
	for idx := range item.InTransit {
		if remaining.IsZero() {
			break
		}
		row := &item.InTransit[idx]
		outstanding := row.Outstanding()
		if outstanding.LessThanOrEqual(decimal.Zero) {
			continue
		}
		take := decimal.Min(remaining, outstanding)
		row.QtyReceived = row.QtyReceived.Add(take)
		row.UpdatedAt = time.Now()
		allocations = append(allocations, ReceiptAllocation{InTransit: row, Quantity: take})
		remaining = remaining.Sub(take)
	}

	item.QtyReceivedTotal = item.QtyReceivedTotal.Add(qty)
	item.UpdatedAt = time.Now()
	at := receivedAt
	t.ReceivedAt = &at
	t.refreshReceiptStatus()
	t.AddDomainEvent(NewTransferReceivedEvent(t, item.SkuID, qty))
	if t.Status == TransferStatusClosed {
		t.AddDomainEvent(NewTransferClosedEvent(t))
	}
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return allocations, nil
}

// refreshReceiptStatus recomputes the status after a receipt
func (t *Transfer) refreshReceiptStatus() {
	allReconciled := true
	anyDispatched := false
	for idx := range t.Items {
		if t.Items[idx].QtyDispatchedTotal.GreaterThan(decimal.Zero) {
			anyDispatched = true
		}
		if !t.Items[idx].IsReconciled() {
			allReconciled = false
		}
	}
	if anyDispatched && allReconciled {
		t.Status = TransferStatusClosed
	} else {
		t.Status = TransferStatusPartiallyReceived
	}
}

// TotalReceived sums received quantity across all items
func (t *Transfer) TotalReceived() decimal.Decimal {
	total := decimal.Zero
	for idx := range t.Items {
		total = total.Add(t.Items[idx].QtyReceivedTotal)
	}
	return total
}

// TotalDispatched sums dispatched quantity across all items
func (t *Transfer) TotalDispatched() decimal.Decimal {
	total := decimal.Zero
	for idx := range t.Items {
		total = total.Add(t.Items[idx].QtyDispatchedTotal)
	}
	return total
}

// Cancel aborts the transfer. Only allowed before anything is received.
func (t *Transfer) Cancel() error {
	if t.Status != TransferStatusOpen && t.Status != TransferStatusDispatched {
		return shared.ErrInvalidState
	}
	if t.TotalReceived().GreaterThan(decimal.Zero) {
		return shared.ErrInvalidState
	}
	t.Status = TransferStatusCancelled
	t.AddDomainEvent(NewTransferCancelledEvent(t))
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}
