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

// GormStockTransactionRepository implements StockTransactionRepository using
// GORM. The ledger is append-only: the repository exposes no update or
// delete, and rows are never modified after Create.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Create appends a transaction together with its lot lines
func (r *GormStockTransactionRepository) Create(ctx context.Context, txn *inventory.StockTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindByID finds a transaction by ID
func (r *GormStockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockTransaction, error) {
	var txn inventory.StockTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// FindByIDForTenant finds a transaction by ID within a tenant, loading its lot lines
func (r *GormStockTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockTransaction, error) {
	var txn inventory.StockTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&txn, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// FindByStock lists transactions for a (warehouse, sku) key
func (r *GormStockTransactionRepository) FindByStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID, filter shared.Filter) ([]inventory.StockTransaction, error) {
	var txns []inventory.StockTransaction
	query := r.db.WithContext(ctx).Model(&inventory.StockTransaction{}).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("tenant_id = ? AND warehouse_id = ? AND sku_id = ?", tenantID, warehouseID, skuID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

// FindReversalOf returns the reversal of a transaction, or ErrNotFound
func (r *GormStockTransactionRepository) FindReversalOf(ctx context.Context, tenantID, txnID uuid.UUID) (*inventory.StockTransaction, error) {
	var txn inventory.StockTransaction
	if err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&txn, "tenant_id = ? AND reversal_of_id = ?", tenantID, txnID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// SumByStock returns total qty_in and qty_out for a key
func (r *GormStockTransactionRepository) SumByStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	var sums struct {
		TotalIn  decimal.Decimal
		TotalOut decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&inventory.StockTransaction{}).
		Where("tenant_id = ? AND warehouse_id = ? AND sku_id = ?", tenantID, warehouseID, skuID).
		Select("COALESCE(SUM(qty_in), 0) AS total_in, COALESCE(SUM(qty_out), 0) AS total_out").
		Scan(&sums).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return sums.TotalIn, sums.TotalOut, nil
}

// applyFilter applies pagination and ordering to the query
func (r *GormStockTransactionRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, StockTransactionSortFields, "occurred_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}

// Ensure GormStockTransactionRepository implements StockTransactionRepository
var _ inventory.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
