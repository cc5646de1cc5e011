package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// StockBalance is the derived per-(warehouse, sku) balance cache. It is a
// materialized view of the ledger, always updated in the same transaction
// as the postings it reflects, and rebuildable by replaying the ledger.
//
// QtyOnHand tracks physical stock (sum of ledger ins minus outs). While an
// allocation is active its reserved quantity is carved out of the lots'
// availability but remains on hand, so
//
//	QtyOnHand == sum(Lot.QtyAvailable) + QtyReserved
//
// and available-to-promise is QtyOnHand - QtyReserved.
type StockBalance struct {
	shared.BaseEntity
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_key,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_key,priority:2"`
	SkuID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_balance_key,priority:3"`
	QtyOnHand   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QtyReserved decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockBalance) TableName() string {
	return "stock_balances"
}

// NewStockBalance creates an empty balance row for a warehouse-SKU key
func NewStockBalance(tenantID, warehouseID, skuID uuid.UUID) (*StockBalance, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if skuID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU ID cannot be empty")
	}
	return &StockBalance{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		WarehouseID: warehouseID,
		SkuID:       skuID,
		QtyOnHand:   decimal.Zero,
		QtyReserved: decimal.Zero,
	}, nil
}

// AvailableToPromise returns on-hand minus reserved quantity
func (b *StockBalance) AvailableToPromise() decimal.Decimal {
	return b.QtyOnHand.Sub(b.QtyReserved)
}

// ApplyInbound increases on-hand quantity for an IN posting
func (b *StockBalance) ApplyInbound(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Inbound quantity must be positive")
	}
	b.QtyOnHand = b.QtyOnHand.Add(qty)
	b.UpdatedAt = time.Now()
	return nil
}

// ApplyOutbound decreases on-hand quantity for an OUT posting of
// unreserved stock
func (b *StockBalance) ApplyOutbound(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Outbound quantity must be positive")
	}
	if qty.GreaterThan(b.AvailableToPromise()) {
		return shared.ErrInsufficientStock
	}
	b.QtyOnHand = b.QtyOnHand.Sub(qty)
	b.UpdatedAt = time.Now()
	return nil
}

// Reserve moves quantity from promisable to reserved without a movement
func (b *StockBalance) Reserve(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if qty.GreaterThan(b.AvailableToPromise()) {
		return shared.ErrInsufficientStock
	}
	b.QtyReserved = b.QtyReserved.Add(qty)
	b.UpdatedAt = time.Now()
	return nil
}

// ReleaseReservation returns reserved quantity to promisable stock
func (b *StockBalance) ReleaseReservation(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if qty.GreaterThan(b.QtyReserved) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity exceeds reserved quantity")
	}
	b.QtyReserved = b.QtyReserved.Sub(qty)
	b.UpdatedAt = time.Now()
	return nil
}

// ConsumeReservation settles reserved quantity into an OUT movement:
// both on-hand and reserved drop together.
func (b *StockBalance) ConsumeReservation(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Consume quantity must be positive")
	}
	if qty.GreaterThan(b.QtyReserved) {
		return shared.NewDomainError("INVALID_QUANTITY", "Consume quantity exceeds reserved quantity")
	}
	b.QtyOnHand = b.QtyOnHand.Sub(qty)
	b.QtyReserved = b.QtyReserved.Sub(qty)
	b.UpdatedAt = time.Now()
	return nil
}

// Rebuild overwrites the cached quantities from replayed ledger sums and
// the active reservation total.
func (b *StockBalance) Rebuild(totalIn, totalOut, reserved decimal.Decimal) {
	b.QtyOnHand = totalIn.Sub(totalOut)
	b.QtyReserved = reserved
	b.UpdatedAt = time.Now()
}
