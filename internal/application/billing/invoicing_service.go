package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/billing"
	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
)

// InvoicingService settles allocations into real stock movements. Each
// invoiced order's reserved lots are consumed in the order they were
// reserved and one OUT transaction per SKU records the movement. The lots
// themselves were already debited at allocation time, so settlement only
// moves the balance and the ledger.
type InvoicingService struct {
	scope          appinventory.TransactionScope
	eventPublisher shared.EventPublisher
}

// NewInvoicingService creates a new InvoicingService
func NewInvoicingService(scope appinventory.TransactionScope) *InvoicingService {
	return &InvoicingService{scope: scope}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InvoicingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InvoicingService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}

// InvoiceOrders creates one consolidated invoice over the given orders.
// Every order must belong to the same distributor and hold an active
// allocation at the given warehouse. Each allocation item's full remaining
// quantity is billed; if nothing remains across every order the call fails
// with NothingToInvoice and no invoice is created.
func (s *InvoicingService) InvoiceOrders(ctx context.Context, cmd InvoiceOrdersCommand) (*InvoiceResponse, error) {
	if len(cmd.OrderIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoicing requires at least one order")
	}

	var created *billing.Invoice
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		var invoice *billing.Invoice
		grandTotal := decimal.Zero
		// Per-SKU consumption lines feeding the OUT postings.
		skuLines := make(map[uuid.UUID][]appinventory.LotLineInput)
		skuOrder := make([]uuid.UUID, 0)

		for _, orderID := range cmd.OrderIDs {
			order, err := repos.OrderRepo().FindByIDForUpdate(ctx, cmd.TenantID, orderID)
			if err != nil {
				return err
			}
			if invoice == nil {
				invoice, err = billing.NewInvoice(cmd.TenantID, cmd.ActorID, order.DistributorID,
					cmd.WarehouseID, cmd.InvoiceNumber, cmd.InvoiceDate)
				if err != nil {
					return err
				}
			} else if order.DistributorID != invoice.DistributorID {
				return shared.NewDomainError("INVALID_INPUT", "Consolidated orders must share one distributor")
			}

			allocation, err := repos.AllocationRepo().FindActiveByOrderForUpdate(ctx, cmd.TenantID, orderID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return shared.ErrInvalidState
				}
				return err
			}
			if allocation.WarehouseID != cmd.WarehouseID {
				return shared.ErrInvalidState
			}

			for idx := range allocation.Items {
				item := &allocation.Items[idx]
				consumptions, consumed, err := allocation.ConsumeForInvoice(item.ID)
				if err != nil {
					if errors.Is(err, shared.ErrNothingToInvoice) {
						continue
					}
					return err
				}

				orderItem, err := order.Item(item.OrderItemID)
				if err != nil {
					return err
				}
				if err := invoice.AddLine(item.SkuID, consumed, orderItem.UnitPrice); err != nil {
					return err
				}

				if _, seen := skuLines[item.SkuID]; !seen {
					skuOrder = append(skuOrder, item.SkuID)
				}
				for _, consumption := range consumptions {
					skuLines[item.SkuID] = append(skuLines[item.SkuID], appinventory.LotLineInput{
						LotID:    consumption.LotID,
						Quantity: consumption.Quantity,
					})
				}
				grandTotal = grandTotal.Add(consumed)
			}

			if allocation.IsFullyInvoiced() {
				if err := allocation.MarkInvoiced(); err != nil {
					return err
				}
				if err := order.MarkInvoiced(cmd.ActorID); err != nil {
					return err
				}
			}
			allocation.StampUpdatedBy(cmd.ActorID)
			if err := repos.AllocationRepo().Save(ctx, allocation); err != nil {
				return err
			}
			if err := repos.OrderRepo().Save(ctx, order); err != nil {
				return err
			}
			if err := invoice.LinkOrder(orderID); err != nil {
				return err
			}
		}

		if grandTotal.LessThanOrEqual(decimal.Zero) {
			return shared.ErrNothingToInvoice
		}

		for _, skuID := range skuOrder {
			_, err := appinventory.PostReservedStockOut(ctx, repos, appinventory.ReservedStockOutCommand{
				TenantID:    cmd.TenantID,
				WarehouseID: cmd.WarehouseID,
				SkuID:       skuID,
				OccurredAt:  cmd.InvoiceDate,
				RefDocType:  inventory.RefDocTypeInvoice,
				RefDocID:    invoice.InvoiceNumber,
				ActorID:     cmd.ActorID,
				Lines:       skuLines[skuID],
			})
			if err != nil {
				return err
			}
		}

		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}
		created = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, billing.NewInvoiceIssuedEvent(created))
	response := ToInvoiceResponse(created)
	return &response, nil
}

// GetInvoice returns one invoice with its consolidated lines
func (s *InvoicingService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var response InvoiceResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		invoice, err := repos.InvoiceRepo().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		response = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListInvoices returns a page of the tenant's invoices
func (s *InvoicingService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	var page shared.Paginated[InvoiceResponse]
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		invoices, err := repos.InvoiceRepo().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err := repos.InvoiceRepo().CountForTenant(ctx, tenantID)
		if err != nil {
			return err
		}
		responses := make([]InvoiceResponse, 0, len(invoices))
		for _, invoice := range invoices {
			responses = append(responses, ToInvoiceResponse(invoice))
		}
		page = shared.NewPaginated(responses, total, filter.Page, filter.Limit())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
