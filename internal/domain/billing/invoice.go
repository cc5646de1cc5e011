package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	// InvoiceStatusIssued means the invoice has been posted against stock
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	// InvoiceStatusReversed means the invoice was backed out via a reversal
	InvoiceStatusReversed InvoiceStatus = "REVERSED"
)

// IsValid checks if the status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusIssued, InvoiceStatusReversed:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// InvoiceItem is a billed line aggregated across the consolidated orders.
// Lines from different orders merge when SKU and unit price match.
type InvoiceItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SkuID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// InvoiceOrderLink ties the consolidated invoice back to a billed order
type InvoiceOrderLink struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_order_link"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (InvoiceOrderLink) TableName() string {
	return "invoice_order_links"
}

// Invoice is a consolidated bill covering one or more approved orders of
// a single distributor, fulfilled from a single warehouse.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_number_tenant"`
	DistributorID uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null"`
	Status        InvoiceStatus   `gorm:"type:varchar(30);not null"`
	InvoiceDate   time.Time       `gorm:"not null"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Items      []InvoiceItem      `gorm:"foreignKey:InvoiceID;references:ID"`
	OrderLinks []InvoiceOrderLink `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an issued invoice shell; lines are added per billed order
func NewInvoice(tenantID, actorID, distributorID, warehouseID uuid.UUID, invoiceNumber string, invoiceDate time.Time) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if distributorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DISTRIBUTOR", "Distributor ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}
	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithActor(tenantID, actorID),
		InvoiceNumber:       invoiceNumber,
		DistributorID:       distributorID,
		WarehouseID:         warehouseID,
		Status:              InvoiceStatusIssued,
		InvoiceDate:         invoiceDate,
		TotalAmount:         decimal.Zero,
		Items:               make([]InvoiceItem, 0),
		OrderLinks:          make([]InvoiceOrderLink, 0),
	}, nil
}

// AddLine merges a billed quantity into the invoice. Lines with the same
// SKU and unit price consolidate into one item.
func (inv *Invoice) AddLine(skuID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if skuID == uuid.Nil {
		return shared.NewDomainError("INVALID_SKU", "SKU ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Invoiced quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	amount := quantity.Mul(unitPrice)
	now := time.Now()
	for idx := range inv.Items {
		item := &inv.Items[idx]
		if item.SkuID == skuID && item.UnitPrice.Equal(unitPrice) {
			item.Quantity = item.Quantity.Add(quantity)
			item.Amount = item.Amount.Add(amount)
			item.UpdatedAt = now
			inv.TotalAmount = inv.TotalAmount.Add(amount)
			inv.UpdatedAt = now
			return nil
		}
	}

	inv.Items = append(inv.Items, InvoiceItem{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		SkuID:     skuID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	})
	inv.TotalAmount = inv.TotalAmount.Add(amount)
	inv.UpdatedAt = now
	return nil
}

// LinkOrder records that the given order is billed by this invoice
func (inv *Invoice) LinkOrder(orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	for _, link := range inv.OrderLinks {
		if link.OrderID == orderID {
			return shared.NewDomainError("DUPLICATE_ORDER_LINK", "Order is already covered by this invoice")
		}
	}
	inv.OrderLinks = append(inv.OrderLinks, InvoiceOrderLink{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	})
	return nil
}

// TotalQuantity sums the invoiced quantity across all lines
func (inv *Invoice) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.Quantity)
	}
	return total
}

// OrderIDs returns the IDs of the orders consolidated into this invoice
func (inv *Invoice) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(inv.OrderLinks))
	for _, link := range inv.OrderLinks {
		ids = append(ids, link.OrderID)
	}
	return ids
}
