package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/trade"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByID finds an allocation by its ID
func (r *GormAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Allocation, error) {
	var allocation trade.Allocation
	if err := r.preloaded(r.db.WithContext(ctx)).
		First(&allocation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &allocation, nil
}

// FindByIDForTenant finds an allocation by ID within a tenant
func (r *GormAllocationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Allocation, error) {
	return r.findForTenant(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads the allocation with a row lock on the root
func (r *GormAllocationRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.Allocation, error) {
	return r.findForTenant(withRowLock(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormAllocationRepository) findForTenant(query *gorm.DB, tenantID, id uuid.UUID) (*trade.Allocation, error) {
	var allocation trade.Allocation
	if err := r.preloaded(query).
		First(&allocation, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &allocation, nil
}

// FindActiveByOrder returns the order's ACTIVE allocation, or ErrNotFound
func (r *GormAllocationRepository) FindActiveByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*trade.Allocation, error) {
	return r.findActiveByOrder(r.db.WithContext(ctx), tenantID, orderID)
}

// FindActiveByOrderForUpdate locks the ACTIVE allocation row for the order
func (r *GormAllocationRepository) FindActiveByOrderForUpdate(ctx context.Context, tenantID, orderID uuid.UUID) (*trade.Allocation, error) {
	return r.findActiveByOrder(withRowLock(r.db.WithContext(ctx)), tenantID, orderID)
}

func (r *GormAllocationRepository) findActiveByOrder(query *gorm.DB, tenantID, orderID uuid.UUID) (*trade.Allocation, error) {
	var allocation trade.Allocation
	if err := r.preloaded(query).
		First(&allocation, "tenant_id = ? AND order_id = ? AND status = ?", tenantID, orderID, trade.AllocationStatusActive).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &allocation, nil
}

// Save persists the allocation aggregate including items and lot rows.
// Reservation lots are only added or consumed in place, never removed.
func (r *GormAllocationRepository) Save(ctx context.Context, allocation *trade.Allocation) error {
	tx := r.db.WithContext(ctx)

	if err := tx.Omit(clause.Associations).Save(allocation).Error; err != nil {
		return err
	}
	for i := range allocation.Items {
		item := &allocation.Items[i]
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		for j := range item.Lots {
			if err := tx.Save(&item.Lots[j]).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// preloaded attaches the item and lot associations in reservation order
func (r *GormAllocationRepository) preloaded(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Lots", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// Ensure GormAllocationRepository implements AllocationRepository
var _ trade.AllocationRepository = (*GormAllocationRepository)(nil)
