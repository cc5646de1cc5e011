package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apptrade "github.com/tradedist/backend/internal/application/trade"
)

// SalesOrderHandler exposes the sales order lifecycle
type SalesOrderHandler struct {
	BaseHandler
	orderService *apptrade.SalesOrderService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(orderService *apptrade.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{orderService: orderService}
}

// OrderLineRequest is one SKU line of a new order
type OrderLineRequest struct {
	SkuID     string `json:"sku_id" binding:"required,uuid"`
	Quantity  string `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

// CreateOrderRequest is the request body for creating a draft order
type CreateOrderRequest struct {
	DistributorID string             `json:"distributor_id" binding:"required,uuid"`
	OutletID      *string            `json:"outlet_id" binding:"omitempty,uuid"`
	OrderNumber   string             `json:"order_number" binding:"required,min=1,max=50"`
	Lines         []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// Create creates a draft sales order
func (h *SalesOrderHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	distributorID, _ := uuid.Parse(req.DistributorID)
	var outletID *uuid.UUID
	if req.OutletID != nil {
		id, _ := uuid.Parse(*req.OutletID)
		outletID = &id
	}

	lines := make([]apptrade.OrderLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		skuID, _ := uuid.Parse(line.SkuID)
		quantity, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			h.BadRequest(c, "Invalid quantity format")
			return
		}
		unitPrice, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			h.BadRequest(c, "Invalid unit price format")
			return
		}
		lines = append(lines, apptrade.OrderLineInput{
			SkuID:     skuID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
	}

	cmd := apptrade.CreateOrderCommand{
		TenantID:      tenantID,
		ActorID:       getActorID(c),
		DistributorID: distributorID,
		OutletID:      outletID,
		OrderNumber:   req.OrderNumber,
		Lines:         lines,
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

type orderTransition func(h *SalesOrderHandler, c *gin.Context, tenantID, orderID uuid.UUID)

func (h *SalesOrderHandler) transition(c *gin.Context, apply orderTransition) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	apply(h, c, tenantID, orderID)
}

// Submit moves a draft order into the approval queue
func (h *SalesOrderHandler) Submit(c *gin.Context) {
	h.transition(c, func(h *SalesOrderHandler, c *gin.Context, tenantID, orderID uuid.UUID) {
		result, err := h.orderService.SubmitOrder(c.Request.Context(), tenantID, orderID, getActorID(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	})
}

// Approve accepts a submitted order for fulfilment
func (h *SalesOrderHandler) Approve(c *gin.Context) {
	h.transition(c, func(h *SalesOrderHandler, c *gin.Context, tenantID, orderID uuid.UUID) {
		result, err := h.orderService.ApproveOrder(c.Request.Context(), tenantID, orderID, getActorID(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	})
}

// Reject sends a submitted order back to draft
func (h *SalesOrderHandler) Reject(c *gin.Context) {
	h.transition(c, func(h *SalesOrderHandler, c *gin.Context, tenantID, orderID uuid.UUID) {
		result, err := h.orderService.RejectOrder(c.Request.Context(), tenantID, orderID, getActorID(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	})
}

// Cancel terminates an order that has not been invoiced
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	h.transition(c, func(h *SalesOrderHandler, c *gin.Context, tenantID, orderID uuid.UUID) {
		result, err := h.orderService.CancelOrder(c.Request.Context(), tenantID, orderID, getActorID(c))
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	})
}

// Get fetches a single order with its lines
func (h *SalesOrderHandler) Get(c *gin.Context) {
	h.transition(c, func(h *SalesOrderHandler, c *gin.Context, tenantID, orderID uuid.UUID) {
		result, err := h.orderService.GetOrder(c.Request.Context(), tenantID, orderID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	})
}

// List lists orders for the tenant
func (h *SalesOrderHandler) List(c *gin.Context) {
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

	result, err := h.orderService.ListOrders(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RegisterRoutes registers all sales order routes
func (h *SalesOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orderGroup := rg.Group("/sales-orders")
	{
		orderGroup.POST("", h.Create)
		orderGroup.GET("", h.List)
		orderGroup.GET("/:id", h.Get)
		orderGroup.POST("/:id/submit", h.Submit)
		orderGroup.POST("/:id/approve", h.Approve)
		orderGroup.POST("/:id/reject", h.Reject)
		orderGroup.POST("/:id/cancel", h.Cancel)
	}
}
