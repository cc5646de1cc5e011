package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found maps to 404", ErrCodeNotFound, http.StatusNotFound},
		{"invalid input maps to 400", ErrCodeInvalidInput, http.StatusBadRequest},
		{"insufficient stock maps to 422", ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{"over receipt maps to 422", ErrCodeOverReceipt, http.StatusUnprocessableEntity},
		{"already allocated maps to 422", ErrCodeAlreadyAllocated, http.StatusUnprocessableEntity},
		{"contention maps to 409", ErrCodeContention, http.StatusConflict},
		{"duplicate operation maps to 409", ErrCodeDuplicateOperation, http.StatusConflict},
		{"internal maps to 500", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown code falls back to 500", "ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	t.Run("maps domain codes to transport codes", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
		assert.Equal(t, ErrCodeContention, NormalizeErrorCode("CONTENTION"))
		assert.Equal(t, ErrCodeOverReceipt, NormalizeErrorCode("OVER_RECEIPT"))
		assert.Equal(t, ErrCodeNothingToInvoice, NormalizeErrorCode("NOTHING_TO_INVOICE"))
	})

	t.Run("passes through transport codes unchanged", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound))
	})

	t.Run("passes through unknown codes unchanged", func(t *testing.T) {
		assert.Equal(t, "SOMETHING_ODD", NormalizeErrorCode("SOMETHING_ODD"))
	})
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	requestID := "req-abc-123"
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Resource not found", requestID)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.Equal(t, requestID, resp.Error.RequestID)
}

func TestErrorResponseJSONRoundTrip(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Lot not found", "req-test-123")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "quantity", Message: "must be positive"},
	}
	resp := NewValidationErrorResponse("Request validation failed", "req-1", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}
