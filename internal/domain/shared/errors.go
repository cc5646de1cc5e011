package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Retry indicates the caller may retry the same request after backoff.
	// Only contention-class errors are retryable; every other kind requires
	// a corrected request.
	Retry bool `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Retryable reports whether the caller should retry the operation
func (e *DomainError) Retryable() bool {
	return e.Retry
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a domain error the caller may retry
func NewRetryableError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Retry:   true,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Stock ledger errors
var (
	ErrInsufficientStock       = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrInsufficientLotQuantity = NewDomainError("INSUFFICIENT_LOT_QUANTITY", "Lot does not have enough available quantity")
	ErrOverReplenishment       = NewDomainError("OVER_REPLENISHMENT", "Credit would exceed the lot's received quantity")
)

// Transfer reconciliation errors
var (
	ErrInvalidDispatchQuantity = NewDomainError("INVALID_DISPATCH_QUANTITY", "Dispatch quantity must be positive")
	ErrOverReceipt             = NewDomainError("OVER_RECEIPT", "Receipt quantity exceeds outstanding in-transit quantity")
	ErrDuplicateOperation      = NewDomainError("DUPLICATE_OPERATION", "Operation with this idempotency key was already processed")
)

// Allocation and invoicing errors
var (
	ErrAlreadyAllocated  = NewDomainError("ALREADY_ALLOCATED", "Order already has an active allocation")
	ErrPartiallyConsumed = NewDomainError("PARTIALLY_CONSUMED", "Allocation has consumed quantity and cannot be cancelled")
	ErrNothingToInvoice  = NewDomainError("NOTHING_TO_INVOICE", "No remaining allocated quantity to invoice")
)

// ErrContention is surfaced when a transaction loses a lock-wait or
// serialization conflict. It is the only retryable kind in the taxonomy.
var ErrContention = NewRetryableError("CONTENTION", "Operation conflicted with a concurrent transaction, retry")

// IsRetryable reports whether err is, or wraps, a retryable domain error
func IsRetryable(err error) bool {
	var derr *DomainError
	if errors.As(err, &derr) {
		return derr.Retryable()
	}
	return false
}
