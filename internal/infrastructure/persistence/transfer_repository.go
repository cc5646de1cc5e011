package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/transfer"
)

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByIDForTenant loads a transfer with its items and in-transit rows
func (r *GormTransferRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*transfer.Transfer, error) {
	return r.findByID(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads a transfer holding a row lock on the aggregate
// root so concurrent dispatch and receive calls serialize.
func (r *GormTransferRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*transfer.Transfer, error) {
	return r.findByID(withRowLock(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormTransferRepository) findByID(query *gorm.DB, tenantID, id uuid.UUID) (*transfer.Transfer, error) {
	var t transfer.Transfer
	if err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.InTransit", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&t, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// FindAllForTenant lists transfers for a tenant
func (r *GormTransferRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]transfer.Transfer, error) {
	var transfers []transfer.Transfer
	orderBy := ValidateSortField(filter.OrderBy, TransferSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	query := r.db.WithContext(ctx).Model(&transfer.Transfer{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.InTransit", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("tenant_id = ?", tenantID).
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// Save persists the transfer aggregate including items and in-transit rows.
// Items and in-transit rows are only ever added or updated in place, never
// removed, so an upsert by primary key covers the whole aggregate.
func (r *GormTransferRepository) Save(ctx context.Context, t *transfer.Transfer) error {
	tx := r.db.WithContext(ctx)

	if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
		return err
	}
	for i := range t.Items {
		item := &t.Items[i]
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		for j := range item.InTransit {
			if err := tx.Save(&item.InTransit[j]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// CountForTenant counts transfers for a tenant
func (r *GormTransferRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&transfer.Transfer{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormTransferRepository implements TransferRepository
var _ transfer.TransferRepository = (*GormTransferRepository)(nil)
