package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradedist/backend/internal/domain/shared"
)

// InvoiceRepository defines the persistence interface for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Invoice, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Save(ctx context.Context, invoice *Invoice) error
}
