package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradedist/backend/internal/domain/shared"
)

// SalesOrderRepository defines the persistence interface for sales orders
type SalesOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)
	// FindByIDForUpdate loads the order with a row lock inside the current
	// transaction so concurrent allocation or invoicing serializes.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*SalesOrder, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Save(ctx context.Context, order *SalesOrder) error
}

// AllocationRepository defines the persistence interface for allocations
type AllocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Allocation, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Allocation, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Allocation, error)
	// FindActiveByOrder returns the order's ACTIVE allocation, or
	// shared.ErrNotFound when none exists.
	FindActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*Allocation, error)
	FindActiveByOrderForUpdate(ctx context.Context, tenantID, orderID uuid.UUID) (*Allocation, error)
	Save(ctx context.Context, allocation *Allocation) error
}
