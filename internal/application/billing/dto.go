package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/billing"
)

// InvoiceOrdersCommand consolidates one or more approved orders of the same
// distributor into a single invoice fulfilled from one warehouse
type InvoiceOrdersCommand struct {
	TenantID      uuid.UUID
	ActorID       uuid.UUID
	OrderIDs      []uuid.UUID
	WarehouseID   uuid.UUID
	InvoiceNumber string
	InvoiceDate   time.Time
}

// InvoiceItemResponse is one consolidated invoice line
type InvoiceItemResponse struct {
	SkuID     uuid.UUID       `json:"sku_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// InvoiceResponse is the API representation of an invoice
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	DistributorID uuid.UUID             `json:"distributor_id"`
	WarehouseID   uuid.UUID             `json:"warehouse_id"`
	Status        string                `json:"status"`
	InvoiceDate   time.Time             `json:"invoice_date"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	OrderIDs      []uuid.UUID           `json:"order_ids"`
	Items         []InvoiceItemResponse `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
}

// ToInvoiceResponse converts an invoice to its API representation
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, InvoiceItemResponse{
			SkuID:     item.SkuID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    item.Amount,
		})
	}
	return InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		DistributorID: invoice.DistributorID,
		WarehouseID:   invoice.WarehouseID,
		Status:        invoice.Status.String(),
		InvoiceDate:   invoice.InvoiceDate,
		TotalAmount:   invoice.TotalAmount,
		OrderIDs:      invoice.OrderIDs(),
		Items:         items,
		CreatedAt:     invoice.CreatedAt,
	}
}
