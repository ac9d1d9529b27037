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

// ---- Action Requests (ACT) ----

// Validation returns an ACT_001 error for a payload or input that fails
// structural checks at submission time.
func Validation(message string) *AppError {
	return New("ACT_001", message, http.StatusBadRequest)
}

func ErrUnknownActionType(actionType string) *AppError {
	return New("ACT_002", fmt.Sprintf("Unknown action type %q", actionType), http.StatusBadRequest)
}

func ErrInvalidStateTransition(requestID string) *AppError {
	return New("ACT_003", fmt.Sprintf("Action request %s is already resolved", requestID), http.StatusConflict)
}

// ErrEffectApplication wraps a handler Apply failure that is not a funds
// issue. The request stays pending for manual re-attempt or explicit reject.
func ErrEffectApplication(requestID string, actionType string, err error) *AppError {
	return Wrap("ACT_004",
		fmt.Sprintf("Applying %s effect for request %s failed", actionType, requestID),
		http.StatusUnprocessableEntity, err)
}

// ---- Wallet (WAL) ----

func ErrInvalidAmount() *AppError {
	return New("WAL_001", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrInsufficientFunds() *AppError {
	return New("WAL_002", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

// ---- Generic (GEN) ----

func ErrNotFound(entity string) *AppError {
	return New("GEN_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Authentication & Authorization (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrForbidden() *AppError {
	return New("AUTH_002", "Caller may not resolve action requests", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error. Used for any
// storage failure so that partial state is never reported as success.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
