package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorCategory represents the category of error for handling
type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "validation"
	CategoryGatewayError   ErrorCategory = "gateway_error"
	CategoryNetworkError   ErrorCategory = "network_error"
	CategoryTimeout        ErrorCategory = "timeout"
	CategoryInvalidRequest ErrorCategory = "invalid_request"
	CategoryAuthentication ErrorCategory = "authentication"
	CategoryInternal       ErrorCategory = "internal"
)

// ValidationError represents input validation errors. It is raised before any
// network I/O and is always recoverable by fixing the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// GatewayError represents a protocol-level failure talking to CyberSource:
// the gateway rejected the request, was unreachable, or timed out. A declined
// payment is NOT a GatewayError; declines come back as normal transactions.
type GatewayError struct {
	Err        error
	Details    map[string]interface{}
	Reason     string
	Message    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("gateway error %d (%s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("gateway error %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the underlying transport error, if any
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new gateway error
func NewGatewayError(statusCode int, reason, message string) *GatewayError {
	return &GatewayError{
		StatusCode: statusCode,
		Reason:     reason,
		Message:    message,
		Details:    make(map[string]interface{}),
	}
}

// WrapGatewayError wraps a transport error (connection failure, timeout)
func WrapGatewayError(message string, err error) *GatewayError {
	return &GatewayError{
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// PaymentError is the single error type surfaced to callers of the payment
// service. It wraps validation and gateway failures with the original
// message, code and structured error data preserved.
type PaymentError struct {
	Err      error
	Details  map[string]interface{}
	Code     string
	Message  string
	Category ErrorCategory
}

func (e *PaymentError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, category ErrorCategory) *PaymentError {
	return &PaymentError{
		Code:     code,
		Message:  message,
		Category: category,
		Details:  make(map[string]interface{}),
	}
}

// WrapPaymentError classifies an error from the request builder or gateway
// client into a PaymentError. Already-wrapped PaymentErrors pass through.
func WrapPaymentError(err error) *PaymentError {
	var paymentErr *PaymentError
	if errors.As(err, &paymentErr) {
		return paymentErr
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return &PaymentError{
			Code:     "VALIDATION_FAILED",
			Message:  validationErr.Error(),
			Category: CategoryValidation,
			Details:  map[string]interface{}{"field": validationErr.Field},
			Err:      err,
		}
	}

	var gatewayErr *GatewayError
	if errors.As(err, &gatewayErr) {
		code := gatewayErr.Reason
		if code == "" {
			code = "GATEWAY_ERROR"
		}
		category := CategoryGatewayError
		switch {
		case gatewayErr.StatusCode == 0:
			category = CategoryNetworkError
			if isTimeoutError(gatewayErr.Err) {
				category = CategoryTimeout
			}
		case gatewayErr.StatusCode == 401 || gatewayErr.StatusCode == 403:
			category = CategoryAuthentication
		case gatewayErr.StatusCode >= 400 && gatewayErr.StatusCode < 500:
			category = CategoryInvalidRequest
		case gatewayErr.StatusCode == 504:
			category = CategoryTimeout
		}
		return &PaymentError{
			Code:     code,
			Message:  gatewayErr.Message,
			Category: category,
			Details:  gatewayErr.Details,
			Err:      err,
		}
	}

	return &PaymentError{
		Code:     "INTERNAL_ERROR",
		Message:  err.Error(),
		Category: CategoryInternal,
		Details:  make(map[string]interface{}),
		Err:      err,
	}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
