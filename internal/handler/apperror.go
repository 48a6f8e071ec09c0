package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
	ErrRateLimited      = &AppError{http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please retry later"}

	ErrCustomerNotFound        = &AppError{http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found"}
	ErrBankAccountNotFound     = &AppError{http.StatusNotFound, "BANK_ACCOUNT_NOT_FOUND", "Bank account not found"}
	ErrTransferNotFound        = &AppError{http.StatusNotFound, "TRANSFER_NOT_FOUND", "Transfer not found"}
	ErrBalanceNotSufficient    = &AppError{http.StatusUnprocessableEntity, "BALANCE_NOT_SUFFICIENT", "Balance not sufficient"}
	ErrAccountSuspended        = &AppError{http.StatusUnprocessableEntity, "ACCOUNT_SUSPENDED", "Account is suspended"}
	ErrSelfTransfer            = &AppError{http.StatusUnprocessableEntity, "SELF_TRANSFER_NOT_ALLOWED", "Cannot transfer to the same account"}
	ErrInvalidStatusTransition = &AppError{http.StatusUnprocessableEntity, "INVALID_STATUS_TRANSITION", "Account status transition not allowed"}
	ErrInvalidAmount           = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be positive, below 10^15, with at most 4 decimal places"}
	ErrVersionConflict         = &AppError{http.StatusConflict, "VERSION_CONFLICT", "Resource was modified concurrently, please retry"}
	ErrIdempotencyConflict     = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
)
