package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
)

// GormStockBalanceRepository implements StockBalanceRepository using GORM
type GormStockBalanceRepository struct {
	db *gorm.DB
}

// NewGormStockBalanceRepository creates a new GormStockBalanceRepository
func NewGormStockBalanceRepository(db *gorm.DB) *GormStockBalanceRepository {
	return &GormStockBalanceRepository{db: db}
}

// GetOrCreateForUpdate returns the balance row for a key, creating it if
// absent, and holds a row lock for the remainder of the transaction. A
// concurrent insert of the same key surfaces as a unique violation, which
// under SERIALIZABLE is reported as contention and retried by the caller.
func (r *GormStockBalanceRepository) GetOrCreateForUpdate(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (*inventory.StockBalance, error) {
	var balance inventory.StockBalance
	query := withRowLock(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND warehouse_id = ? AND sku_id = ?", tenantID, warehouseID, skuID)

	err := query.First(&balance).Error
	if err == nil {
		return &balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := inventory.NewStockBalance(tenantID, warehouseID, skuID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

// FindByStock returns the balance row without locking
func (r *GormStockBalanceRepository) FindByStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (*inventory.StockBalance, error) {
	var balance inventory.StockBalance
	if err := r.db.WithContext(ctx).
		First(&balance, "tenant_id = ? AND warehouse_id = ? AND sku_id = ?", tenantID, warehouseID, skuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindByWarehouse lists balances for a warehouse
func (r *GormStockBalanceRepository) FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]inventory.StockBalance, error) {
	var balances []inventory.StockBalance
	orderBy := ValidateSortField(filter.OrderBy, StockBalanceSortFields, "sku_id")
	orderDir := ValidateSortOrder(filter.OrderDir)

	query := r.db.WithContext(ctx).Model(&inventory.StockBalance{}).
		Where("tenant_id = ? AND warehouse_id = ?", tenantID, warehouseID).
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// Save persists the balance row
func (r *GormStockBalanceRepository) Save(ctx context.Context, balance *inventory.StockBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// Ensure GormStockBalanceRepository implements StockBalanceRepository
var _ inventory.StockBalanceRepository = (*GormStockBalanceRepository)(nil)
