package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("WAL_001", "Insufficient wallet balance", http.StatusPaymentRequired),
			expected: "[WAL_001] Insufficient wallet balance",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("WAL_002", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"CustomerNotFound", ErrCustomerNotFound(), "CUS_001", 404},
		{"DuplicateMobile", ErrDuplicateMobile(), "CUS_002", 409},
		{"CustomerHasActivity", ErrCustomerHasActivity(), "CUS_003", 409},
		{"ProductNotFound", ErrProductNotFound(), "PRD_001", 404},
		{"InvalidBulkField", ErrInvalidBulkField("id"), "PRD_002", 400},
		{"OrderNotFound", ErrOrderNotFound(), "ORD_001", 404},
		{"EmptyOrder", ErrEmptyOrder(), "ORD_002", 400},
		{"InvalidStatusTransition", ErrInvalidStatusTransition("cancelled", "pending"), "ORD_003", 400},
		{"InsufficientBalance", ErrInsufficientBalance(), "WAL_001", 402},
		{"InvalidAmount", ErrInvalidAmount(), "WAL_002", 400},
		{"TransactionNotFound", ErrTransactionNotFound(), "WAL_003", 404},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

// WAL_001 drives caller branching: its identity must never collide with the
// not-found or validation cases.
func TestInsufficientBalance_DistinctFromOtherFailures(t *testing.T) {
	insufficient := ErrInsufficientBalance()
	assert.NotEqual(t, insufficient.Code, ErrCustomerNotFound().Code)
	assert.NotEqual(t, insufficient.Code, ErrInvalidAmount().Code)
	assert.NotEqual(t, insufficient.HTTPStatus, ErrInvalidAmount().HTTPStatus)
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	intErr := InternalError(inner)
	assert.Equal(t, "SYS_001", intErr.Code)
	assert.Equal(t, 500, intErr.HTTPStatus)
}

func TestValidation(t *testing.T) {
	err := Validation("mobile number is required")
	assert.Equal(t, "VAL_001", err.Code)
	assert.Equal(t, 400, err.HTTPStatus)
	assert.Contains(t, err.Message, "mobile number")
}

func TestInvalidBulkFieldMessage(t *testing.T) {
	err := ErrInvalidBulkField("created_at")
	assert.Contains(t, err.Message, "created_at")
}
