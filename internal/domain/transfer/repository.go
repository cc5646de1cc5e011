package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradedist/backend/internal/domain/shared"
)

// TransferRepository defines the interface for transfer persistence
type TransferRepository interface {
	// FindByIDForTenant loads a transfer with its items and in-transit rows
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)

	// FindByIDForUpdate loads a transfer holding a row lock on the
	// aggregate root so concurrent dispatch/receive calls serialize.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Transfer, error)

	// FindAllForTenant lists transfers for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Transfer, error)

	// Save persists the transfer aggregate including items and in-transit rows
	Save(ctx context.Context, t *Transfer) error

	// CountForTenant counts transfers for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
