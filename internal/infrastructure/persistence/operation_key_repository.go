package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/tradedist/backend/internal/domain/shared"
)

// GormOperationKeyRepository implements OperationKeyRepository using GORM
type GormOperationKeyRepository struct {
	db *gorm.DB
}

// NewGormOperationKeyRepository creates a new GormOperationKeyRepository
func NewGormOperationKeyRepository(db *gorm.DB) *GormOperationKeyRepository {
	return &GormOperationKeyRepository{db: db}
}

// Register stores the key, failing with ErrDuplicateOperation if the
// (tenant, key) pair already exists. The unique index is the source of
// truth; a prior read-then-insert would race under concurrent replays.
func (r *GormOperationKeyRepository) Register(ctx context.Context, key *shared.OperationKey) error {
	if err := r.db.WithContext(ctx).Create(key).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateOperation
		}
		return err
	}
	return nil
}

// isUniqueViolation detects a unique index violation across the supported
// drivers. SQLSTATE 23505 is unique_violation on Postgres; SQLite reports
// the constraint in the error message.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Ensure GormOperationKeyRepository implements OperationKeyRepository
var _ shared.OperationKeyRepository = (*GormOperationKeyRepository)(nil)
