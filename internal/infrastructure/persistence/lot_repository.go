package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
)

// GormLotRepository implements LotRepository using GORM
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a new GormLotRepository
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Lot, error) {
	var lot inventory.Lot
	if err := r.db.WithContext(ctx).First(&lot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindByIDForTenant finds a lot by ID within a tenant
func (r *GormLotRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Lot, error) {
	var lot inventory.Lot
	if err := r.db.WithContext(ctx).
		First(&lot, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// FindAvailableForStock returns lots with available quantity for a
// (warehouse, sku) key. Rows come back in consumption order (received_at,
// then id ascending) and are locked in that same order, so concurrent
// selections over the same key acquire locks in a consistent sequence.
func (r *GormLotRepository) FindAvailableForStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) ([]*inventory.Lot, error) {
	var lots []*inventory.Lot
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND warehouse_id = ? AND sku_id = ?", tenantID, warehouseID, skuID).
		Where("qty_available > 0").
		Order("received_at ASC, id ASC")
	query = withRowLock(query)

	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// FindByIDsForUpdate loads specific lots with row locks, in ascending id
// order so overlapping lot sets lock in the same sequence. Callers may pass
// the same id more than once (a posting can carry several lines against one
// lot), so ids are deduplicated before the completeness check.
func (r *GormLotRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*inventory.Lot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var lots []*inventory.Lot
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id IN ?", tenantID, unique).
		Order("id ASC")
	query = withRowLock(query)

	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	if len(lots) != len(unique) {
		return nil, shared.ErrNotFound
	}
	return lots, nil
}

// FindByStock lists lots for a (warehouse, sku) key
func (r *GormLotRepository) FindByStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID, filter shared.Filter) ([]inventory.Lot, error) {
	var lots []inventory.Lot
	query := r.db.WithContext(ctx).Model(&inventory.Lot{}).
		Where("tenant_id = ? AND warehouse_id = ? AND sku_id = ?", tenantID, warehouseID, skuID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

// SumAvailableForStock sums available quantity across lots of a key
func (r *GormLotRepository) SumAvailableForStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&inventory.Lot{}).
		Where("tenant_id = ? AND warehouse_id = ? AND sku_id = ?", tenantID, warehouseID, skuID).
		Select("COALESCE(SUM(qty_available), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Save creates or updates a lot
func (r *GormLotRepository) Save(ctx context.Context, lot *inventory.Lot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

// SaveAll persists multiple lots
func (r *GormLotRepository) SaveAll(ctx context.Context, lots []*inventory.Lot) error {
	if len(lots) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(&lots).Error
}

// applyFilter applies pagination and ordering to the query
func (r *GormLotRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, LotSortFields, "received_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if orderBy == "received_at" && filter.OrderBy == "" {
		orderDir = "ASC"
	}
	return query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}

// Ensure GormLotRepository implements LotRepository
var _ inventory.LotRepository = (*GormLotRepository)(nil)
