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

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order by its ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDForTenant finds a sales order by ID within a tenant
func (r *GormSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.findForTenant(r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate loads the order with a row lock inside the current
// transaction so concurrent allocation or invoicing serializes.
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.findForTenant(withRowLock(r.db.WithContext(ctx)), tenantID, id)
}

func (r *GormSalesOrderRepository) findForTenant(query *gorm.DB, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := query.
		Preload("Items").
		First(&order, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAllForTenant lists sales orders for a tenant
func (r *GormSalesOrderRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*trade.SalesOrder, error) {
	var orders []*trade.SalesOrder
	orderBy := ValidateSortField(filter.OrderBy, SalesOrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	query := r.db.WithContext(ctx).Model(&trade.SalesOrder{}).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountForTenant counts sales orders for a tenant
func (r *GormSalesOrderRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&trade.SalesOrder{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a sales order. Order lines are immutable after
// creation, so the upsert never has to reconcile removed items.
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	tx := r.db.WithContext(ctx)

	if err := tx.Omit(clause.Associations).Save(order).Error; err != nil {
		return err
	}
	for i := range order.Items {
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormSalesOrderRepository implements SalesOrderRepository
var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
