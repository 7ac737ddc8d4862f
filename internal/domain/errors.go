package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// NewValidationError builds a VALIDATION_FAILED error naming the offending field.
func NewValidationError(field, reason string) *AppError {
	return &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    fmt.Sprintf("%s: %s", field, reason),
		StatusCode: 422,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing credentials",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Access denied",
		StatusCode: 403,
	}

	ErrOrderNotFound = &AppError{
		Code:       "ORDER_NOT_FOUND",
		Message:    "Order not found",
		StatusCode: 404,
	}

	ErrOnlyPendingEditable = &AppError{
		Code:       "FORBIDDEN",
		Message:    "can only edit pending orders",
		StatusCode: 403,
	}

	ErrOnlyPendingDeletable = &AppError{
		Code:       "FORBIDDEN",
		Message:    "can only delete pending orders",
		StatusCode: 403,
	}

	ErrUserNotFound = &AppError{
		Code:       "USER_NOT_FOUND",
		Message:    "User not found",
		StatusCode: 404,
	}

	ErrEmailExists = &AppError{
		Code:       "EMAIL_ALREADY_REGISTERED",
		Message:    "Email is already registered",
		StatusCode: 409,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password",
		StatusCode: 401,
	}

	ErrPendingApproval = &AppError{
		Code:       "PENDING_APPROVAL",
		Message:    "Account is pending administrator approval",
		StatusCode: 403,
	}

	ErrAccountRejected = &AppError{
		Code:       "ACCOUNT_REJECTED",
		Message:    "Account registration was rejected",
		StatusCode: 403,
	}

	ErrSelfRemoval = &AppError{
		Code:       "SELF_REMOVAL",
		Message:    "Users cannot remove their own account",
		StatusCode: 403,
	}

	ErrLastAdmin = &AppError{
		Code:       "LAST_ADMIN",
		Message:    "At least one administrator account must remain",
		StatusCode: 409,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, slow down",
		StatusCode: 429,
	}

	ErrWebhookNotFound = &AppError{
		Code:       "WEBHOOK_NOT_FOUND",
		Message:    "Webhook configuration not found",
		StatusCode: 404,
	}
)
