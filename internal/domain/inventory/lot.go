package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// SkuTracking carries the two per-SKU booleans resolved by the master-data
// layer that govern which attributes a lot must carry.
type SkuTracking struct {
	IsBatchTracked  bool
	IsExpiryTracked bool
}

// Lot is a traceable batch of stock from a single receipt event (goods
// receipt or transfer receipt) with its own remaining quantity. Lots are
// never deleted; exhausted lots remain for audit and FIFO history.
type Lot struct {
	shared.BaseEntity
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index:idx_lot_stock,priority:1"`
	WarehouseID   uuid.UUID `gorm:"type:uuid;not null;index:idx_lot_stock,priority:2"`
	SkuID         uuid.UUID `gorm:"type:uuid;not null;index:idx_lot_stock,priority:3"`
	SourceDocType string    `gorm:"type:varchar(30);not null"`
	SourceDocRef  string    `gorm:"type:varchar(100);not null"`
	ReceivedAt    time.Time `gorm:"not null;index"`
	BatchNumber   string    `gorm:"type:varchar(100)"`
	ExpiryDate    *time.Time
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QtyReceived   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyAvailable  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (Lot) TableName() string {
	return "lots"
}

// NewLot creates a lot with qty_available = qty_received = qty.
// Batch number and expiry date are mandatory when the SKU is tracked.
func NewLot(
	tenantID, warehouseID, skuID uuid.UUID,
	sourceDocType, sourceDocRef string,
	receivedAt time.Time,
	batchNumber string,
	expiryDate *time.Time,
	unitCost decimal.Decimal,
	qty decimal.Decimal,
	tracking SkuTracking,
) (*Lot, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if skuID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU ID cannot be empty")
	}
	if sourceDocRef == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_REF", "Source document reference cannot be empty")
	}
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Lot quantity must be positive")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if tracking.IsBatchTracked && batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Batch number is required for batch-tracked SKUs")
	}
	if tracking.IsExpiryTracked && expiryDate == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Expiry date is required for expiry-tracked SKUs")
	}

	return &Lot{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		WarehouseID:   warehouseID,
		SkuID:         skuID,
		SourceDocType: sourceDocType,
		SourceDocRef:  sourceDocRef,
		ReceivedAt:    receivedAt,
		BatchNumber:   batchNumber,
		ExpiryDate:    expiryDate,
		UnitCost:      unitCost,
		QtyReceived:   qty,
		QtyAvailable:  qty,
	}, nil
}

// Debit decrements the available quantity. Fails without mutating the lot
// if qty exceeds what is available.
func (l *Lot) Debit(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Debit quantity must be positive")
	}
	if qty.GreaterThan(l.QtyAvailable) {
		return shared.ErrInsufficientLotQuantity
	}
	l.QtyAvailable = l.QtyAvailable.Sub(qty)
	l.UpdatedAt = time.Now()
	return nil
}

// Credit reverses a prior debit. Fails with OverReplenishment if it would
// push availability above the received quantity.
func (l *Lot) Credit(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Credit quantity must be positive")
	}
	if l.QtyAvailable.Add(qty).GreaterThan(l.QtyReceived) {
		return shared.ErrOverReplenishment
	}
	l.QtyAvailable = l.QtyAvailable.Add(qty)
	l.UpdatedAt = time.Now()
	return nil
}

// IsExhausted returns true once the lot has no remaining quantity
func (l *Lot) IsExhausted() bool {
	return l.QtyAvailable.IsZero()
}

// HasAvailable returns true if the lot has remaining quantity
func (l *Lot) HasAvailable() bool {
	return l.QtyAvailable.GreaterThan(decimal.Zero)
}

// IsExpired returns true if the lot has an expiry date in the past
func (l *Lot) IsExpired() bool {
	if l.ExpiryDate == nil {
		return false
	}
	return l.ExpiryDate.Before(time.Now())
}

// ConsumedQuantity returns how much of the lot has been consumed so far
func (l *Lot) ConsumedQuantity() decimal.Decimal {
	return l.QtyReceived.Sub(l.QtyAvailable)
}
