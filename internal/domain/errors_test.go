package domain

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without wrapped error",
			appErr:   ErrOrderNotFound,
			expected: "Order not found",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:       "TEST_ERROR",
				Message:    "Test message",
				StatusCode: 500,
				Err:        errors.New("underlying error"),
			},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_WithError(t *testing.T) {
	underlying := errors.New("connection refused")
	wrapped := ErrInternal.WithError(underlying)

	if wrapped == ErrInternal {
		t.Error("WithError() should return a copy, not mutate the sentinel")
	}
	if wrapped.Code != ErrInternal.Code {
		t.Errorf("Code = %v, want %v", wrapped.Code, ErrInternal.Code)
	}
	if !errors.Is(wrapped, underlying) {
		t.Error("wrapped error should match errors.Is on the underlying error")
	}
	if ErrInternal.Err != nil {
		t.Error("sentinel should remain unwrapped")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("quantity", "must be greater than zero")

	if err.Code != "VALIDATION_FAILED" {
		t.Errorf("Code = %v, want VALIDATION_FAILED", err.Code)
	}
	if err.StatusCode != 422 {
		t.Errorf("StatusCode = %v, want 422", err.StatusCode)
	}
	if err.Message != "quantity: must be greater than zero" {
		t.Errorf("Message = %v", err.Message)
	}
}
