package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appbilling "github.com/tradedist/backend/internal/application/billing"
)

// InvoiceHandler exposes consolidated invoicing
type InvoiceHandler struct {
	BaseHandler
	invoicingService *appbilling.InvoicingService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoicingService *appbilling.InvoicingService) *InvoiceHandler {
	return &InvoiceHandler{invoicingService: invoicingService}
}

// InvoiceOrdersRequest is the request body for invoicing one or more orders
// of the same distributor out of one warehouse
type InvoiceOrdersRequest struct {
	OrderIDs      []string   `json:"order_ids" binding:"required,min=1,dive,uuid"`
	WarehouseID   string     `json:"warehouse_id" binding:"required,uuid"`
	InvoiceNumber string     `json:"invoice_number" binding:"required,min=1,max=50"`
	InvoiceDate   *time.Time `json:"invoice_date"`
}

// InvoiceOrders consolidates the orders into a single invoice, consuming
// their reservations and posting the outbound stock transaction
func (h *InvoiceHandler) InvoiceOrders(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req InvoiceOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	orderIDs := make([]uuid.UUID, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		orderID, _ := uuid.Parse(raw)
		orderIDs = append(orderIDs, orderID)
	}
	warehouseID, _ := uuid.Parse(req.WarehouseID)

	cmd := appbilling.InvoiceOrdersCommand{
		TenantID:      tenantID,
		ActorID:       getActorID(c),
		OrderIDs:      orderIDs,
		WarehouseID:   warehouseID,
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   occurredAtOrNow(req.InvoiceDate),
	}

	result, err := h.invoicingService.InvoiceOrders(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Get fetches a single invoice with its consolidated lines
func (h *InvoiceHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	result, err := h.invoicingService.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List lists invoices for the tenant
func (h *InvoiceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoicingService.ListInvoices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RegisterRoutes registers all invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoiceGroup := rg.Group("/invoices")
	{
		invoiceGroup.POST("", h.InvoiceOrders)
		invoiceGroup.GET("", h.List)
		invoiceGroup.GET("/:id", h.Get)
	}
}
