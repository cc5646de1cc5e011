package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// AllocationStatus represents the lifecycle state of an order allocation
type AllocationStatus string

const (
	// AllocationStatusActive means reservations are held against lots
	AllocationStatusActive AllocationStatus = "ACTIVE"
	// AllocationStatusInvoiced means the full allocation has been billed
	AllocationStatusInvoiced AllocationStatus = "INVOICED"
	// AllocationStatusCancelled means reservations were returned to stock
	AllocationStatusCancelled AllocationStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s AllocationStatus) IsValid() bool {
	switch s {
	case AllocationStatusActive, AllocationStatusInvoiced, AllocationStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of AllocationStatus
func (s AllocationStatus) String() string {
	return string(s)
}

// AllocationLot records a reservation of a specific lot's quantity for one
// allocation item. Position preserves the FIFO order established when the
// reservation was made; invoicing consumes lots in this order.
type AllocationLot struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AllocationItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	LotID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	QtyReserved      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyConsumed      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Position         int             `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (AllocationLot) TableName() string {
	return "allocation_lots"
}

// Unconsumed returns the reserved quantity not yet invoiced
func (l *AllocationLot) Unconsumed() decimal.Decimal {
	return l.QtyReserved.Sub(l.QtyConsumed)
}

// AllocationItem mirrors one order line: how much was reserved and how
// much of the reservation has been invoiced.
type AllocationItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AllocationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderItemID  uuid.UUID       `gorm:"type:uuid;not null"`
	SkuID        uuid.UUID       `gorm:"type:uuid;not null"`
	QtyAllocated decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyInvoiced  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Lots []AllocationLot `gorm:"foreignKey:AllocationItemID;references:ID"`
}

// TableName returns the table name for GORM
func (AllocationItem) TableName() string {
	return "allocation_items"
}

// RemainingToInvoice returns allocated quantity not yet invoiced
func (i *AllocationItem) RemainingToInvoice() decimal.Decimal {
	return i.QtyAllocated.Sub(i.QtyInvoiced)
}

// ReservedLot is one lot's share of a new reservation
type ReservedLot struct {
	LotID    uuid.UUID
	Quantity decimal.Decimal
}

// LotConsumption maps an invoiced quantity back onto a reserved lot
type LotConsumption struct {
	LotID    uuid.UUID
	Quantity decimal.Decimal
}

// LotRelease is a reservation returned to a lot on cancellation
type LotRelease struct {
	LotID    uuid.UUID
	Quantity decimal.Decimal
}

// Allocation is the one-to-one fulfillment reservation for a sales order:
// specific lot quantities held at a warehouse until invoiced or cancelled.
type Allocation struct {
	shared.TenantAggregateRoot
	OrderID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status      AllocationStatus `gorm:"type:varchar(30);not null"`

	Items []AllocationItem `gorm:"foreignKey:AllocationID;references:ID"`
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "allocations"
}

// NewAllocation creates an active allocation shell for an order
func NewAllocation(tenantID, actorID, orderID, warehouseID uuid.UUID) (*Allocation, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	return &Allocation{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithActor(tenantID, actorID),
		OrderID:             orderID,
		WarehouseID:         warehouseID,
		Status:              AllocationStatusActive,
		Items:               make([]AllocationItem, 0),
	}, nil
}

// IsActive returns true while reservations are held
func (a *Allocation) IsActive() bool {
	return a.Status == AllocationStatusActive
}

// AddItem records the reservation result for one order line. The reserved
// lot quantities must sum to the allocated quantity.
func (a *Allocation) AddItem(orderItemID, skuID uuid.UUID, qtyAllocated decimal.Decimal, lots []ReservedLot) error {
	if orderItemID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER_ITEM", "Order item ID cannot be empty")
	}
	if qtyAllocated.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Allocated quantity must be positive")
	}

	total := decimal.Zero
	now := time.Now()
	item := AllocationItem{
		ID:           uuid.New(),
		AllocationID: a.ID,
		OrderItemID:  orderItemID,
		SkuID:        skuID,
		QtyAllocated: qtyAllocated,
		QtyInvoiced:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
		Lots:         make([]AllocationLot, 0, len(lots)),
	}
	for idx, lot := range lots {
		if lot.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Reserved lot quantity must be positive")
		}
		item.Lots = append(item.Lots, AllocationLot{
			ID:               uuid.New(),
			AllocationItemID: item.ID,
			LotID:            lot.LotID,
			QtyReserved:      lot.Quantity,
			QtyConsumed:      decimal.Zero,
			Position:         idx,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		total = total.Add(lot.Quantity)
	}
	if !total.Equal(qtyAllocated) {
		return shared.NewDomainError("UNBALANCED_ALLOCATION", "Reserved lot quantities must sum to the allocated quantity")
	}
	a.Items = append(a.Items, item)
	a.UpdatedAt = now
	return nil
}

// Item returns the allocation item with the given ID
func (a *Allocation) Item(itemID uuid.UUID) (*AllocationItem, error) {
	for idx := range a.Items {
		if a.Items[idx].ID == itemID {
			return &a.Items[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

// ConsumeForInvoice settles the item's full remaining allocation, consuming
// reserved lots in the order they were reserved. Returns the per-lot
// consumptions for the ledger posting and the total consumed quantity.
func (a *Allocation) ConsumeForInvoice(itemID uuid.UUID) ([]LotConsumption, decimal.Decimal, error) {
	if !a.IsActive() {
		return nil, decimal.Zero, shared.ErrInvalidState
	}
	item, err := a.Item(itemID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	toInvoice := item.RemainingToInvoice()
	if toInvoice.LessThanOrEqual(decimal.Zero) {
		return nil, decimal.Zero, shared.ErrNothingToInvoice
	}

	consumptions := make([]LotConsumption, 0, len(item.Lots))
	remaining := toInvoice
	now := time.Now()
	for idx := range item.Lots {
		if remaining.IsZero() {
			break
		}
		lot := &item.Lots[idx]
		available := lot.Unconsumed()
		if available.LessThanOrEqual(decimal.Zero) {
			continue
		}
		take := decimal.Min(remaining, available)
		lot.QtyConsumed = lot.QtyConsumed.Add(take)
		lot.UpdatedAt = now
		consumptions = append(consumptions, LotConsumption{LotID: lot.LotID, Quantity: take})
		remaining = remaining.Sub(take)
	}
	if remaining.GreaterThan(decimal.Zero) {
		return nil, decimal.Zero, shared.NewDomainError("UNBALANCED_ALLOCATION", "Reserved lots do not cover the remaining allocation")
	}

	item.QtyInvoiced = item.QtyInvoiced.Add(toInvoice)
	item.UpdatedAt = now
	a.UpdatedAt = now
	return consumptions, toInvoice, nil
}

// MarkInvoiced closes the allocation once every item is fully invoiced
func (a *Allocation) MarkInvoiced() error {
	if !a.IsActive() {
		return shared.ErrInvalidState
	}
	if !a.IsFullyInvoiced() {
		return shared.ErrInvalidState
	}
	a.Status = AllocationStatusInvoiced
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// CancelReservations returns every reservation to its lot. Fails with
// PartiallyConsumed if any lot line has invoiced quantity; the invoice
// must be reversed first.
func (a *Allocation) CancelReservations() ([]LotRelease, error) {
	if !a.IsActive() {
		return nil, shared.ErrInvalidState
	}
	for idx := range a.Items {
		for _, lot := range a.Items[idx].Lots {
			if lot.QtyConsumed.GreaterThan(decimal.Zero) {
				return nil, shared.ErrPartiallyConsumed
			}
		}
	}

	releases := make([]LotRelease, 0)
	for idx := range a.Items {
		for _, lot := range a.Items[idx].Lots {
			releases = append(releases, LotRelease{LotID: lot.LotID, Quantity: lot.QtyReserved})
		}
	}
	a.Status = AllocationStatusCancelled
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return releases, nil
}

// IsFullyInvoiced returns true once every item's allocation is billed
func (a *Allocation) IsFullyInvoiced() bool {
	for idx := range a.Items {
		if a.Items[idx].RemainingToInvoice().GreaterThan(decimal.Zero) {
			return false
		}
	}
	return true
}

// TotalReserved sums reserved quantity across all lot lines
func (a *Allocation) TotalReserved() decimal.Decimal {
	total := decimal.Zero
	for idx := range a.Items {
		for _, lot := range a.Items[idx].Lots {
			total = total.Add(lot.QtyReserved)
		}
	}
	return total
}

// TotalUnconsumed sums reserved-but-uninvoiced quantity across lot lines
func (a *Allocation) TotalUnconsumed() decimal.Decimal {
	total := decimal.Zero
	for idx := range a.Items {
		for _, lot := range a.Items[idx].Lots {
			total = total.Add(lot.Unconsumed())
		}
	}
	return total
}
