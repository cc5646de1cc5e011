package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/inventory"
)

// LedgerHandler exposes the stock ledger: receipts, adjustments, reversals,
// balances and lots.
type LedgerHandler struct {
	BaseHandler
	ledgerService *appinventory.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *appinventory.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// ReceiptLotInput is one lot of a goods receipt request
type ReceiptLotInput struct {
	BatchNumber string     `json:"batch_number" binding:"max=100"`
	ExpiryDate  *time.Time `json:"expiry_date"`
	UnitCost    string     `json:"unit_cost"`
	Quantity    string     `json:"quantity" binding:"required"`
}

// ReceiveGoodsRequest is the request body for posting a goods receipt
type ReceiveGoodsRequest struct {
	WarehouseID     string            `json:"warehouse_id" binding:"required,uuid"`
	SkuID           string            `json:"sku_id" binding:"required,uuid"`
	ReceiptRef      string            `json:"receipt_ref" binding:"required,min=1,max=100"`
	OccurredAt      *time.Time        `json:"occurred_at"`
	IsBatchTracked  bool              `json:"is_batch_tracked"`
	IsExpiryTracked bool              `json:"is_expiry_tracked"`
	Lots            []ReceiptLotInput `json:"lots" binding:"required,min=1,dive"`
}

// AdjustInRequest is the request body for a positive stock correction
type AdjustInRequest struct {
	WarehouseID     string          `json:"warehouse_id" binding:"required,uuid"`
	SkuID           string          `json:"sku_id" binding:"required,uuid"`
	RefDocID        string          `json:"ref_doc_id" binding:"required,min=1,max=100"`
	OccurredAt      *time.Time      `json:"occurred_at"`
	IsBatchTracked  bool            `json:"is_batch_tracked"`
	IsExpiryTracked bool            `json:"is_expiry_tracked"`
	Lot             ReceiptLotInput `json:"lot" binding:"required"`
}

// LotRequestInput names an explicit lot split for an outbound posting
type LotRequestInput struct {
	LotID    string `json:"lot_id" binding:"required,uuid"`
	Quantity string `json:"quantity" binding:"required"`
}

// AdjustOutRequest is the request body for a negative stock correction
type AdjustOutRequest struct {
	WarehouseID string            `json:"warehouse_id" binding:"required,uuid"`
	SkuID       string            `json:"sku_id" binding:"required,uuid"`
	Quantity    string            `json:"quantity" binding:"required"`
	RefDocID    string            `json:"ref_doc_id" binding:"required,min=1,max=100"`
	OccurredAt  *time.Time        `json:"occurred_at"`
	LotRequests []LotRequestInput `json:"lot_requests" binding:"omitempty,dive"`
}

// ReverseTransactionRequest is the request body for reversing a posting
type ReverseTransactionRequest struct {
	OccurredAt *time.Time `json:"occurred_at"`
}

// StockQuery identifies a warehouse/SKU pair in list and balance queries
type StockQuery struct {
	WarehouseID string `form:"warehouse_id" binding:"required,uuid"`
	SkuID       string `form:"sku_id" binding:"required,uuid"`
}

func parseReceiptLot(input ReceiptLotInput) (appinventory.ReceiptLot, error) {
	quantity, err := decimal.NewFromString(input.Quantity)
	if err != nil {
		return appinventory.ReceiptLot{}, err
	}
	unitCost := decimal.Zero
	if input.UnitCost != "" {
		unitCost, err = decimal.NewFromString(input.UnitCost)
		if err != nil {
			return appinventory.ReceiptLot{}, err
		}
	}
	return appinventory.ReceiptLot{
		BatchNumber: input.BatchNumber,
		ExpiryDate:  input.ExpiryDate,
		UnitCost:    unitCost,
		Quantity:    quantity,
	}, nil
}

func parseLotRequests(inputs []LotRequestInput) ([]appinventory.LotRequestInput, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	requests := make([]appinventory.LotRequestInput, 0, len(inputs))
	for _, input := range inputs {
		lotID, err := uuid.Parse(input.LotID)
		if err != nil {
			return nil, err
		}
		quantity, err := decimal.NewFromString(input.Quantity)
		if err != nil {
			return nil, err
		}
		requests = append(requests, appinventory.LotRequestInput{LotID: lotID, Quantity: quantity})
	}
	return requests, nil
}

func occurredAtOrNow(at *time.Time) time.Time {
	if at != nil {
		return *at
	}
	return time.Now().UTC()
}

// ReceiveGoods posts an external goods receipt into a warehouse
func (h *LedgerHandler) ReceiveGoods(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ReceiveGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	warehouseID, _ := uuid.Parse(req.WarehouseID)
	skuID, _ := uuid.Parse(req.SkuID)

	lots := make([]appinventory.ReceiptLot, 0, len(req.Lots))
	for _, input := range req.Lots {
		lot, err := parseReceiptLot(input)
		if err != nil {
			h.BadRequest(c, "Invalid lot quantity or cost: "+err.Error())
			return
		}
		lots = append(lots, lot)
	}

	cmd := appinventory.ReceiveGoodsCommand{
		TenantID:    tenantID,
		ActorID:     getActorID(c),
		WarehouseID: warehouseID,
		SkuID:       skuID,
		ReceiptRef:  req.ReceiptRef,
		OccurredAt:  occurredAtOrNow(req.OccurredAt),
		Tracking: inventory.SkuTracking{
			IsBatchTracked:  req.IsBatchTracked,
			IsExpiryTracked: req.IsExpiryTracked,
		},
		Lots: lots,
	}

	result, err := h.ledgerService.ReceiveGoods(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// AdjustIn posts a positive stock correction, minting a new lot
func (h *LedgerHandler) AdjustIn(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req AdjustInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	warehouseID, _ := uuid.Parse(req.WarehouseID)
	skuID, _ := uuid.Parse(req.SkuID)

	lot, err := parseReceiptLot(req.Lot)
	if err != nil {
		h.BadRequest(c, "Invalid lot quantity or cost: "+err.Error())
		return
	}

	cmd := appinventory.AdjustInCommand{
		TenantID:    tenantID,
		ActorID:     getActorID(c),
		WarehouseID: warehouseID,
		SkuID:       skuID,
		RefDocID:    req.RefDocID,
		OccurredAt:  occurredAtOrNow(req.OccurredAt),
		Tracking: inventory.SkuTracking{
			IsBatchTracked:  req.IsBatchTracked,
			IsExpiryTracked: req.IsExpiryTracked,
		},
		Lot: lot,
	}

	result, err := h.ledgerService.AdjustIn(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// AdjustOut posts a negative stock correction consuming lots FIFO, or an
// explicit split when lot_requests is given
func (h *LedgerHandler) AdjustOut(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req AdjustOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	warehouseID, _ := uuid.Parse(req.WarehouseID)
	skuID, _ := uuid.Parse(req.SkuID)

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		h.BadRequest(c, "Invalid quantity format")
		return
	}

	lotRequests, err := parseLotRequests(req.LotRequests)
	if err != nil {
		h.BadRequest(c, "Invalid lot request: "+err.Error())
		return
	}

	cmd := appinventory.AdjustOutCommand{
		TenantID:    tenantID,
		ActorID:     getActorID(c),
		WarehouseID: warehouseID,
		SkuID:       skuID,
		Quantity:    quantity,
		RefDocID:    req.RefDocID,
		OccurredAt:  occurredAtOrNow(req.OccurredAt),
		LotRequests: lotRequests,
	}

	result, err := h.ledgerService.AdjustOut(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ReverseTransaction posts the inverse of a prior ledger entry
func (h *LedgerHandler) ReverseTransaction(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	var req ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BindingError(c, err)
		return
	}

	cmd := appinventory.ReverseTransactionCommand{
		TenantID:      tenantID,
		ActorID:       getActorID(c),
		TransactionID: txnID,
		OccurredAt:    occurredAtOrNow(req.OccurredAt),
	}

	result, err := h.ledgerService.ReverseTransaction(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetTransaction fetches a single ledger entry
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	result, err := h.ledgerService.GetTransaction(c.Request.Context(), tenantID, txnID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListTransactions lists ledger entries for one warehouse/SKU pair
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query StockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	warehouseID, _ := uuid.Parse(query.WarehouseID)
	skuID, _ := uuid.Parse(query.SkuID)

	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.ListTransactions(c.Request.Context(), tenantID, warehouseID, skuID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetBalance fetches the cached balance for one warehouse/SKU pair
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query StockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	warehouseID, _ := uuid.Parse(query.WarehouseID)
	skuID, _ := uuid.Parse(query.SkuID)

	result, err := h.ledgerService.GetBalance(c.Request.Context(), tenantID, warehouseID, skuID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RebuildBalance recomputes the cached balance from lots and verifies it
// against the transaction history
func (h *LedgerHandler) RebuildBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query StockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	warehouseID, _ := uuid.Parse(query.WarehouseID)
	skuID, _ := uuid.Parse(query.SkuID)

	result, err := h.ledgerService.RebuildBalance(c.Request.Context(), tenantID, warehouseID, skuID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListLots lists lots for one warehouse/SKU pair in FIFO order
func (h *LedgerHandler) ListLots(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query StockQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}
	warehouseID, _ := uuid.Parse(query.WarehouseID)
	skuID, _ := uuid.Parse(query.SkuID)

	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.ledgerService.ListLots(c.Request.Context(), tenantID, warehouseID, skuID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers all stock ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	inventoryGroup := rg.Group("/inventory")
	{
		inventoryGroup.POST("/receipts", h.ReceiveGoods)
		inventoryGroup.POST("/adjustments/in", h.AdjustIn)
		inventoryGroup.POST("/adjustments/out", h.AdjustOut)
		inventoryGroup.GET("/transactions", h.ListTransactions)
		inventoryGroup.GET("/transactions/:id", h.GetTransaction)
		inventoryGroup.POST("/transactions/:id/reverse", h.ReverseTransaction)
		inventoryGroup.GET("/balance", h.GetBalance)
		inventoryGroup.POST("/balance/rebuild", h.RebuildBalance)
		inventoryGroup.GET("/lots", h.ListLots)
	}
}
