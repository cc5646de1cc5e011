package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tradedist/backend/internal/domain/billing"
	"github.com/tradedist/backend/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.preloaded(r.db.WithContext(ctx)).
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.preloaded(r.db.WithContext(ctx)).
		First(&invoice, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByOrder returns invoices linked to a sales order
func (r *GormInvoiceRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	query := r.preloaded(r.db.WithContext(ctx)).
		Joins("JOIN invoice_order_links ON invoice_order_links.invoice_id = invoices.id").
		Where("invoices.tenant_id = ? AND invoice_order_links.order_id = ?", tenantID, orderID).
		Order("invoices.created_at ASC")

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAllForTenant lists invoices for a tenant
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*billing.Invoice, error) {
	var invoices []*billing.Invoice
	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	query := r.preloaded(r.db.WithContext(ctx)).Model(&billing.Invoice{}).
		Where("tenant_id = ?", tenantID).
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// CountForTenant counts invoices for a tenant
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the invoice aggregate including lines and order links
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	tx := r.db.WithContext(ctx)

	if err := tx.Omit(clause.Associations).Save(invoice).Error; err != nil {
		return err
	}
	for i := range invoice.Items {
		if err := tx.Save(&invoice.Items[i]).Error; err != nil {
			return err
		}
	}
	for i := range invoice.OrderLinks {
		if err := tx.Save(&invoice.OrderLinks[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// preloaded attaches invoice lines and order links
func (r *GormInvoiceRepository) preloaded(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("OrderLinks")
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
