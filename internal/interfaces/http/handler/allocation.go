package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apptrade "github.com/tradedist/backend/internal/application/trade"
)

// AllocationHandler exposes order allocation: reserving warehouse stock
// against approved orders and releasing those reservations.
type AllocationHandler struct {
	BaseHandler
	allocationService *apptrade.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(allocationService *apptrade.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// AllocateOrderRequest is the request body for allocating an order
type AllocateOrderRequest struct {
	OrderID     string `json:"order_id" binding:"required,uuid"`
	WarehouseID string `json:"warehouse_id" binding:"required,uuid"`
}

// Allocate reserves stock for every line of an approved order at one
// warehouse. The reservation is all-or-nothing.
func (h *AllocationHandler) Allocate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req AllocateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	orderID, _ := uuid.Parse(req.OrderID)
	warehouseID, _ := uuid.Parse(req.WarehouseID)

	cmd := apptrade.AllocateOrderCommand{
		TenantID:    tenantID,
		ActorID:     getActorID(c),
		OrderID:     orderID,
		WarehouseID: warehouseID,
	}

	result, err := h.allocationService.AllocateOrder(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Cancel releases every reservation held by an allocation
func (h *AllocationHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	allocationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	cmd := apptrade.CancelAllocationCommand{
		TenantID:     tenantID,
		ActorID:      getActorID(c),
		AllocationID: allocationID,
	}

	result, err := h.allocationService.CancelAllocation(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get fetches a single allocation with its items and lot reservations
func (h *AllocationHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	allocationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid allocation ID format")
		return
	}

	result, err := h.allocationService.GetAllocation(c.Request.Context(), tenantID, allocationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetByOrder fetches the active allocation of an order
func (h *AllocationHandler) GetByOrder(c *gin.Context) {
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

	result, err := h.allocationService.GetAllocationByOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers all allocation routes
func (h *AllocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	allocationGroup := rg.Group("/allocations")
	{
		allocationGroup.POST("", h.Allocate)
		allocationGroup.GET("/:id", h.Get)
		allocationGroup.POST("/:id/cancel", h.Cancel)
	}
	rg.GET("/sales-orders/:id/allocation", h.GetByOrder)
}
