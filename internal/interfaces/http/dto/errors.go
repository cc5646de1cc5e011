package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInsufficientStock is used when available-to-promise is insufficient
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeInsufficientLotQuantity is used when a named lot cannot cover a debit
	ErrCodeInsufficientLotQuantity = "ERR_INSUFFICIENT_LOT_QUANTITY"
	// ErrCodeOverReplenishment is used when a credit would exceed a lot's received quantity
	ErrCodeOverReplenishment = "ERR_OVER_REPLENISHMENT"
	// ErrCodeInvalidDispatchQuantity is used when a dispatch line quantity is not positive
	ErrCodeInvalidDispatchQuantity = "ERR_INVALID_DISPATCH_QUANTITY"
	// ErrCodeOverReceipt is used when a receipt exceeds the outstanding in-transit quantity
	ErrCodeOverReceipt = "ERR_OVER_RECEIPT"
	// ErrCodeAlreadyAllocated is used when an order already holds an active allocation
	ErrCodeAlreadyAllocated = "ERR_ALREADY_ALLOCATED"
	// ErrCodePartiallyConsumed is used when a partially invoiced allocation is cancelled
	ErrCodePartiallyConsumed = "ERR_PARTIALLY_CONSUMED"
	// ErrCodeNothingToInvoice is used when no allocated quantity remains to bill
	ErrCodeNothingToInvoice = "ERR_NOTHING_TO_INVOICE"
)

// Concurrency error codes
const (
	// ErrCodeContention is used when a transaction lost a serialization or
	// lock conflict; the request may be retried as-is
	ErrCodeContention = "ERR_CONTENTION"
	// ErrCodeDuplicateOperation is used when an idempotency key is replayed
	ErrCodeDuplicateOperation = "ERR_DUPLICATE_OPERATION"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:            http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientLotQuantity: http.StatusUnprocessableEntity,
	ErrCodeOverReplenishment:       http.StatusUnprocessableEntity,
	ErrCodeInvalidDispatchQuantity: http.StatusUnprocessableEntity,
	ErrCodeOverReceipt:             http.StatusUnprocessableEntity,
	ErrCodeAlreadyAllocated:        http.StatusUnprocessableEntity,
	ErrCodePartiallyConsumed:       http.StatusUnprocessableEntity,
	ErrCodeNothingToInvoice:        http.StatusUnprocessableEntity,

	// Concurrency errors -> 409 Conflict
	ErrCodeContention:         http.StatusConflict,
	ErrCodeDuplicateOperation: http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to transport codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"ALREADY_EXISTS":            ErrCodeAlreadyExists,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"INVALID_STATE":             ErrCodeInvalidState,
	"INSUFFICIENT_STOCK":        ErrCodeInsufficientStock,
	"INSUFFICIENT_LOT_QUANTITY": ErrCodeInsufficientLotQuantity,
	"OVER_REPLENISHMENT":        ErrCodeOverReplenishment,
	"INVALID_DISPATCH_QUANTITY": ErrCodeInvalidDispatchQuantity,
	"OVER_RECEIPT":              ErrCodeOverReceipt,
	"ALREADY_ALLOCATED":         ErrCodeAlreadyAllocated,
	"PARTIALLY_CONSUMED":        ErrCodePartiallyConsumed,
	"NOTHING_TO_INVOICE":        ErrCodeNothingToInvoice,
	"CONTENTION":                ErrCodeContention,
	"DUPLICATE_OPERATION":       ErrCodeDuplicateOperation,
	"VALIDATION_ERROR":          ErrCodeValidation,
	"BAD_REQUEST":               ErrCodeBadRequest,
	"INTERNAL_ERROR":            ErrCodeInternal,
	"INVALID_TENANT":            ErrCodeInvalidInput,
	"INVALID_IDEMPOTENCY_KEY":   ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the transport format
// If the code is already in the transport format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
