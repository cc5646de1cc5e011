package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

const (
	AggregateTypeInvoice = "Invoice"

	EventTypeInvoiceIssued = "InvoiceIssued"
)

// InvoiceIssuedEvent is raised when a consolidated invoice is posted
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string
	DistributorID uuid.UUID
	WarehouseID   uuid.UUID
	OrderIDs      []uuid.UUID
	TotalAmount   decimal.Decimal
}

// NewInvoiceIssuedEvent creates a new invoice issued event
func NewInvoiceIssuedEvent(invoice *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, invoice.ID, invoice.TenantID),
		InvoiceNumber:   invoice.InvoiceNumber,
		DistributorID:   invoice.DistributorID,
		WarehouseID:     invoice.WarehouseID,
		OrderIDs:        invoice.OrderIDs(),
		TotalAmount:     invoice.TotalAmount,
	}
}
