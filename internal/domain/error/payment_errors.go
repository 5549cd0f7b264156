// Package error defines domain-specific errors for the Bill Tracker application.
package error

import "errors"

// Payment validation errors.
var (
	// ErrInvalidPaymentDate is returned when the payment date is missing or malformed.
	ErrInvalidPaymentDate = errors.New("invalid payment date")

	// ErrFuturePaymentDate is returned when the payment date is after today.
	ErrFuturePaymentDate = errors.New("payment date is in the future")
)

// PaymentErrorCode defines error codes for payment validation errors.
// Format: PAY-XXYYYY where XX is category and YYYY is specific error.
type PaymentErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidPaymentDate PaymentErrorCode = "PAY-010001"
	ErrCodeFuturePaymentDate  PaymentErrorCode = "PAY-010002"
)

// PaymentError is the validation error raised by the payment processor.
// It is returned before any state is computed.
type PaymentError struct {
	Code    PaymentErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError with the given code and message.
func NewPaymentError(code PaymentErrorCode, message string, err error) *PaymentError {
	return &PaymentError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
