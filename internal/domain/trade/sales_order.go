package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusInvoiced  OrderStatus = "INVOICED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusSubmitted, OrderStatusApproved,
		OrderStatusRejected, OrderStatusInvoiced, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusSubmitted || target == OrderStatusCancelled
	case OrderStatusSubmitted:
		return target == OrderStatusApproved || target == OrderStatusRejected ||
			target == OrderStatusCancelled
	case OrderStatusApproved:
		return target == OrderStatusInvoiced
	case OrderStatusRejected, OrderStatusInvoiced, OrderStatusCancelled:
		return false
	}
	return false
}

// SalesOrderItem represents a line item in a sales order
type SalesOrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SkuID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}

// OrderLine is the input for creating a sales order line
type OrderLine struct {
	SkuID     uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// SalesOrder represents a distributor/outlet order. It manages the
// lifecycle from draft through approval to invoicing; fulfillment itself
// is the allocation engine's job.
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber   string          `gorm:"type:varchar(50);not null"`
	DistributorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	OutletID      *uuid.UUID      `gorm:"type:uuid;index"`
	Status        OrderStatus     `gorm:"type:varchar(30);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SubmittedAt   *time.Time
	ApprovedAt    *time.Time

	Items []SalesOrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a draft order with its lines
func NewSalesOrder(tenantID, actorID, distributorID uuid.UUID, outletID *uuid.UUID, orderNumber string, lines []OrderLine) (*SalesOrder, error) {
	if distributorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DISTRIBUTOR", "Distributor ID cannot be empty")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order requires at least one line")
	}

	order := &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithActor(tenantID, actorID),
		OrderNumber:         orderNumber,
		DistributorID:       distributorID,
		OutletID:            outletID,
		Status:              OrderStatusDraft,
		TotalAmount:         decimal.Zero,
		Items:               make([]SalesOrderItem, 0, len(lines)),
	}
	now := time.Now()
	for _, line := range lines {
		if line.SkuID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_SKU", "SKU ID cannot be empty")
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Order line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		amount := line.Quantity.Mul(line.UnitPrice)
		order.Items = append(order.Items, SalesOrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			SkuID:     line.SkuID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    amount,
			CreatedAt: now,
			UpdatedAt: now,
		})
		order.TotalAmount = order.TotalAmount.Add(amount)
	}
	return order, nil
}

// Item returns the line with the given ID
func (o *SalesOrder) Item(itemID uuid.UUID) (*SalesOrderItem, error) {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

// transition moves the order to the target status or fails with InvalidState
func (o *SalesOrder) transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Submit moves a draft order to SUBMITTED
func (o *SalesOrder) Submit(actorID uuid.UUID) error {
	if err := o.transition(OrderStatusSubmitted); err != nil {
		return err
	}
	now := time.Now()
	o.SubmittedAt = &now
	o.StampUpdatedBy(actorID)
	return nil
}

// Approve moves a submitted order to APPROVED, unlocking allocation
func (o *SalesOrder) Approve(actorID uuid.UUID) error {
	if err := o.transition(OrderStatusApproved); err != nil {
		return err
	}
	now := time.Now()
	o.ApprovedAt = &now
	o.StampUpdatedBy(actorID)
	return nil
}

// Reject moves a submitted order to REJECTED
func (o *SalesOrder) Reject(actorID uuid.UUID) error {
	if err := o.transition(OrderStatusRejected); err != nil {
		return err
	}
	o.StampUpdatedBy(actorID)
	return nil
}

// Cancel moves a draft or submitted order to CANCELLED
func (o *SalesOrder) Cancel(actorID uuid.UUID) error {
	if err := o.transition(OrderStatusCancelled); err != nil {
		return err
	}
	o.StampUpdatedBy(actorID)
	return nil
}

// MarkInvoiced moves an approved order to its terminal INVOICED state
func (o *SalesOrder) MarkInvoiced(actorID uuid.UUID) error {
	if err := o.transition(OrderStatusInvoiced); err != nil {
		return err
	}
	o.StampUpdatedBy(actorID)
	return nil
}

// CanAllocate returns true once the order may be allocated against stock
func (o *SalesOrder) CanAllocate() bool {
	return o.Status == OrderStatusApproved
}
