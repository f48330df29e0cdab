package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Customers (CUS) ----

func ErrCustomerNotFound() *AppError {
	return New("CUS_001", "Customer not found", http.StatusNotFound)
}

func ErrDuplicateMobile() *AppError {
	return New("CUS_002", "A customer with this mobile number already exists", http.StatusConflict)
}

func ErrCustomerHasActivity() *AppError {
	return New("CUS_003", "Customer has orders or wallet activity and cannot be deleted", http.StatusConflict)
}

// ---- Products (PRD) ----

func ErrProductNotFound() *AppError {
	return New("PRD_001", "Product not found", http.StatusNotFound)
}

func ErrInvalidBulkField(field string) *AppError {
	return New("PRD_002", fmt.Sprintf("Field %q cannot be bulk updated", field), http.StatusBadRequest)
}

// ---- Orders (ORD) ----

func ErrOrderNotFound() *AppError {
	return New("ORD_001", "Order not found", http.StatusNotFound)
}

func ErrEmptyOrder() *AppError {
	return New("ORD_002", "Order must contain at least one item", http.StatusBadRequest)
}

func ErrInvalidStatusTransition(from, to string) *AppError {
	return New("ORD_003", fmt.Sprintf("Cannot change order status from %s to %s", from, to), http.StatusBadRequest)
}

// ---- Wallet ledger (WAL) ----

// ErrInsufficientBalance is returned when a deduction exceeds the current
// balance. Callers branch on WAL_001 to request payment by other means, so
// the message must stay distinct from not-found and validation failures.
func ErrInsufficientBalance() *AppError {
	return New("WAL_001", "Insufficient wallet balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_002", "Amount must be a positive number", http.StatusBadRequest)
}

func ErrTransactionNotFound() *AppError {
	return New("WAL_003", "Wallet transaction not found", http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}
