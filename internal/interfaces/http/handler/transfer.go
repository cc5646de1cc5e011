package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apptransfer "github.com/tradedist/backend/internal/application/transfer"
)

// IdempotencyKeyHeader carries the caller-chosen identity of a physical
// receipt. Replaying the same key fails with DUPLICATE_OPERATION.
const IdempotencyKeyHeader = "Idempotency-Key"

// TransferHandler exposes inter-warehouse transfers
type TransferHandler struct {
	BaseHandler
	transferService *apptransfer.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *apptransfer.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// TransferLineRequest is one planned SKU line of a new transfer
type TransferLineRequest struct {
	SkuID      string `json:"sku_id" binding:"required,uuid"`
	QtyPlanned string `json:"qty_planned" binding:"required"`
}

// CreateTransferRequest is the request body for opening a transfer
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id" binding:"required,uuid"`
	ToWarehouseID   string                `json:"to_warehouse_id" binding:"required,uuid"`
	TransferNumber  string                `json:"transfer_number" binding:"required,min=1,max=50"`
	Lines           []TransferLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// DispatchLineRequest is one item line of a dispatch call
type DispatchLineRequest struct {
	ItemID      string            `json:"item_id" binding:"required,uuid"`
	Quantity    string            `json:"quantity" binding:"required"`
	LotRequests []LotRequestInput `json:"lot_requests" binding:"omitempty,dive"`
}

// DispatchTransferRequest is the request body for dispatching stock
type DispatchTransferRequest struct {
	DispatchedAt *time.Time            `json:"dispatched_at"`
	Lines        []DispatchLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReceiveLineRequest is one item line of a receipt call
type ReceiveLineRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity string `json:"quantity" binding:"required"`
}

// ReceiveTransferRequest is the request body for receiving dispatched stock
type ReceiveTransferRequest struct {
	ReceivedAt *time.Time           `json:"received_at"`
	Lines      []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// Create opens a transfer between two warehouses
func (h *TransferHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	fromID, _ := uuid.Parse(req.FromWarehouseID)
	toID, _ := uuid.Parse(req.ToWarehouseID)

	lines := make([]apptransfer.TransferLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		skuID, _ := uuid.Parse(line.SkuID)
		qty, err := decimal.NewFromString(line.QtyPlanned)
		if err != nil {
			h.BadRequest(c, "Invalid planned quantity format")
			return
		}
		lines = append(lines, apptransfer.TransferLineInput{SkuID: skuID, QtyPlanned: qty})
	}

	cmd := apptransfer.CreateTransferCommand{
		TenantID:        tenantID,
		ActorID:         getActorID(c),
		FromWarehouseID: fromID,
		ToWarehouseID:   toID,
		TransferNumber:  req.TransferNumber,
		Lines:           lines,
	}

	result, err := h.transferService.CreateTransfer(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Dispatch posts stock out of the source warehouse
func (h *TransferHandler) Dispatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	var req DispatchTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	lines := make([]apptransfer.DispatchLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		itemID, _ := uuid.Parse(line.ItemID)
		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			h.BadRequest(c, "Invalid dispatch quantity format")
			return
		}
		lotRequests, err := parseLotRequests(line.LotRequests)
		if err != nil {
			h.BadRequest(c, "Invalid lot request: "+err.Error())
			return
		}
		lines = append(lines, apptransfer.DispatchLine{
			ItemID:      itemID,
			Quantity:    qty,
			LotRequests: lotRequests,
		})
	}

	cmd := apptransfer.DispatchTransferCommand{
		TenantID:     tenantID,
		ActorID:      getActorID(c),
		TransferID:   transferID,
		DispatchedAt: occurredAtOrNow(req.DispatchedAt),
		Lines:        lines,
	}

	result, err := h.transferService.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Receive posts dispatched stock into the destination warehouse. The
// Idempotency-Key header is required.
func (h *TransferHandler) Receive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
	if idempotencyKey == "" {
		h.BadRequest(c, "Missing Idempotency-Key header")
		return
	}

	var req ReceiveTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	lines := make([]apptransfer.ReceiveLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		itemID, _ := uuid.Parse(line.ItemID)
		qty, err := decimal.NewFromString(line.Quantity)
		if err != nil {
			h.BadRequest(c, "Invalid receive quantity format")
			return
		}
		lines = append(lines, apptransfer.ReceiveLine{ItemID: itemID, Quantity: qty})
	}

	cmd := apptransfer.ReceiveTransferCommand{
		TenantID:       tenantID,
		ActorID:        getActorID(c),
		TransferID:     transferID,
		IdempotencyKey: idempotencyKey,
		ReceivedAt:     occurredAtOrNow(req.ReceivedAt),
		Lines:          lines,
	}

	result, err := h.transferService.Receive(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel aborts a transfer before anything has been received
func (h *TransferHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	cmd := apptransfer.CancelTransferCommand{
		TenantID:   tenantID,
		ActorID:    getActorID(c),
		TransferID: transferID,
	}

	result, err := h.transferService.Cancel(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get fetches a single transfer with its items and in-transit rows
func (h *TransferHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID format")
		return
	}

	result, err := h.transferService.GetTransfer(c.Request.Context(), tenantID, transferID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List lists transfers for the tenant
func (h *TransferHandler) List(c *gin.Context) {
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

	result, err := h.transferService.ListTransfers(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RegisterRoutes registers all transfer routes
func (h *TransferHandler) RegisterRoutes(rg *gin.RouterGroup) {
	transferGroup := rg.Group("/transfers")
	{
		transferGroup.POST("", h.Create)
		transferGroup.GET("", h.List)
		transferGroup.GET("/:id", h.Get)
		transferGroup.POST("/:id/dispatch", h.Dispatch)
		transferGroup.POST("/:id/receive", h.Receive)
		transferGroup.POST("/:id/cancel", h.Cancel)
	}
}
