package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeAuthorization  ErrorType = "AUTHORIZATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeConflict       ErrorType = "CONFLICT"
	ErrorTypeProvider       ErrorType = "PROVIDER_ERROR"
	ErrorTypeFraud          ErrorType = "FRAUD_ERROR"
	ErrorTypeConfiguration  ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidation        ErrorCode = "validation_error"
	ErrCodeAuthentication    ErrorCode = "authentication_error"
	ErrCodeAuthorization     ErrorCode = "authorization_error"
	ErrCodeNotFound          ErrorCode = "not_found_error"
	ErrCodeProvider          ErrorCode = "provider_error"
	ErrCodePaymentDeclined   ErrorCode = "payment_declined"
	ErrCodeRateLimit         ErrorCode = "rate_limit_error"
	ErrCodeTimeout           ErrorCode = "timeout_error"
	ErrCodeDuplicate         ErrorCode = "duplicate_error"
	ErrCodePaymentMethod     ErrorCode = "payment_method_error"
	ErrCodeFraud             ErrorCode = "fraud_error"
	ErrCodeInsufficientFunds ErrorCode = "insufficient_funds"
	ErrCodeConfiguration     ErrorCode = "configuration_error"
	ErrCodePayment           ErrorCode = "payment_error"

	ErrCodeProviderNotFound    ErrorCode = "provider_not_found"
	ErrCodeTransactionNotFound ErrorCode = "transaction_not_found"
	ErrCodeInvalidState        ErrorCode = "invalid_transaction_state"
	ErrCodeHighRiskPayment     ErrorCode = "high_risk_payment"
)

// AppError is the single error currency of the orchestration core. Every
// failure crossing a component boundary is one of these; Normalize coerces
// anything else.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Retryable  bool        `json:"retryable"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message},
			},
		},
	}
}

func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Code:       ErrCodeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Code:       ErrCodeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewProviderError is retryable by default: upstream backend failures are
// transient until proven otherwise.
func NewProviderError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Code:       ErrCodeProvider,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Retryable:  true,
		Cause:      cause,
	}
}

func NewPaymentDeclinedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Code:       ErrCodePaymentDeclined,
		Message:    message,
		StatusCode: http.StatusPaymentRequired,
	}
}

func NewRateLimitError(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Code:       ErrCodeRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		Retryable:  true,
		Details:    map[string]interface{}{"retry_after_seconds": retryAfterSeconds},
	}
}

func NewTimeoutError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Code:       ErrCodeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Retryable:  true,
	}
}

// NewDuplicateError carries the id of the resource that already consumed the
// idempotency key.
func NewDuplicateError(message, existingID string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       ErrCodeDuplicate,
		Message:    message,
		StatusCode: http.StatusConflict,
		Details:    map[string]interface{}{"existing_id": existingID},
	}
}

func NewPaymentMethodError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodePaymentMethod,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewFraudError(message string, riskScore float64) *AppError {
	return &AppError{
		Type:       ErrorTypeFraud,
		Code:       ErrCodeFraud,
		Message:    message,
		StatusCode: http.StatusForbidden,
		Details:    map[string]interface{}{"risk_score": riskScore},
	}
}

func NewInsufficientFundsError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeProvider,
		Code:       ErrCodeInsufficientFunds,
		Message:    message,
		StatusCode: http.StatusPaymentRequired,
	}
}

// NewConfigurationError is the sole fatal category: it aborts initialization
// instead of being returned inside a per-call envelope.
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConfiguration,
		Code:       ErrCodeConfiguration,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewPaymentError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodePayment,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewInvalidStateError(transactionID, currentStatus, attempted string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       ErrCodeInvalidState,
		Message:    fmt.Sprintf("transaction %s cannot %s from status %s", transactionID, attempted, currentStatus),
		StatusCode: http.StatusConflict,
		Details: map[string]interface{}{
			"transaction_id": transactionID,
			"current_status": currentStatus,
		},
	}
}

var (
	ErrTransactionNotFound = NewNotFoundError("transaction not found", ErrCodeTransactionNotFound)
	ErrProviderNotFound    = NewNotFoundError("no provider registered for payment method type", ErrCodeProviderNotFound)
	ErrCustomerNotFound    = NewNotFoundError("customer not found", ErrCodeNotFound)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

// Normalize converts any error into an AppError. It is total and idempotent:
// an already-typed error passes through unchanged, everything else becomes a
// generic payment error preserving message and cause.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := IsAppError(err); ok {
		return appErr
	}
	return NewPaymentError(err.Error(), err)
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      ErrorType   `json:"type"`
		Code      ErrorCode   `json:"code"`
		Message   string      `json:"message"`
		Retryable bool        `json:"retryable"`
		Details   interface{} `json:"details,omitempty"`
	}{
		Type:      e.Type,
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	})
}
