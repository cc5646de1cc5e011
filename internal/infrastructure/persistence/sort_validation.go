package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// LotSortFields contains allowed sort fields for lots
var LotSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"received_at":   true,
	"batch_number":  true,
	"expiry_date":   true,
	"unit_cost":     true,
	"qty_received":  true,
	"qty_available": true,
}

// StockTransactionSortFields contains allowed sort fields for stock transactions
var StockTransactionSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"occurred_at":  true,
	"direction":    true,
	"qty_in":       true,
	"qty_out":      true,
	"ref_doc_type": true,
	"ref_doc_id":   true,
}

// StockBalanceSortFields contains allowed sort fields for stock balances
var StockBalanceSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"sku_id":       true,
	"qty_on_hand":  true,
	"qty_reserved": true,
}

// TransferSortFields contains allowed sort fields for transfers
var TransferSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"transfer_number": true,
	"status":          true,
	"dispatched_at":   true,
	"received_at":     true,
}

// SalesOrderSortFields contains allowed sort fields for sales orders
var SalesOrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"distributor_id": true,
	"status":         true,
	"submitted_at":   true,
	"approved_at":    true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"invoice_date":   true,
	"distributor_id": true,
	"status":         true,
}
