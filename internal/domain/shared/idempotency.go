package shared

import (
	"context"

	"github.com/google/uuid"
)

// OperationKey records an externally supplied idempotency key for a
// business operation. Replaying an operation with a key that was already
// registered is rejected with ErrDuplicateOperation, never silently ignored.
type OperationKey struct {
	BaseEntity
	TenantID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_operation_key_tenant_key,priority:1"`
	Key           string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_operation_key_tenant_key,priority:2"`
	OperationType string    `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (OperationKey) TableName() string {
	return "operation_keys"
}

// NewOperationKey creates a new operation key record
func NewOperationKey(tenantID uuid.UUID, key, operationType string) (*OperationKey, error) {
	if tenantID == uuid.Nil {
		return nil, NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if key == "" {
		return nil, NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot be empty")
	}
	return &OperationKey{
		BaseEntity:    NewBaseEntity(),
		TenantID:      tenantID,
		Key:           key,
		OperationType: operationType,
	}, nil
}

// OperationKeyRepository persists idempotency keys. Register must run in the
// same transaction as the operation it guards so a duplicate key rolls the
// whole operation back.
type OperationKeyRepository interface {
	// Register stores the key, failing with ErrDuplicateOperation if the
	// (tenant, key) pair already exists.
	Register(ctx context.Context, key *OperationKey) error
}
