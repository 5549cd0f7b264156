// Package error defines domain-specific errors for the Bill Tracker application.
package error

import "errors"

// Bill domain errors.
var (
	// ErrBillNotFound is returned when a bill is not found in the system.
	ErrBillNotFound = errors.New("bill not found")

	// ErrInvalidFrequency is returned when the bill frequency is not supported.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidBaseAmount is returned when the base amount is zero or negative.
	ErrInvalidBaseAmount = errors.New("invalid base amount")

	// ErrInvalidDueDate is returned when the due date is missing.
	ErrInvalidDueDate = errors.New("invalid due date")

	// ErrInvalidEndDate is returned when the end date precedes the due date.
	ErrInvalidEndDate = errors.New("end date must not be before due date")

	// ErrBillNameRequired is returned when the bill name is empty.
	ErrBillNameRequired = errors.New("bill name is required")

	// ErrBillArchived is returned when a payment targets an archived bill.
	ErrBillArchived = errors.New("bill is archived")

	// ErrInvalidTag is returned when a tag is empty or too long.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrInvalidForecastMonth is returned when a forecast month cannot be parsed.
	ErrInvalidForecastMonth = errors.New("invalid forecast month")

	// ErrInvalidForecastRange is returned when a forecast range count is out of bounds.
	ErrInvalidForecastRange = errors.New("invalid forecast range")

	// ErrBillStateChanged is returned when a bill changed between being read and written.
	ErrBillStateChanged = errors.New("bill state changed")
)

// BillErrorCode defines error codes for bill errors.
// Format: BIL-XXYYYY where XX is category and YYYY is specific error.
type BillErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeBillNotFound         BillErrorCode = "BIL-010001"
	ErrCodeInvalidFrequency     BillErrorCode = "BIL-010002"
	ErrCodeInvalidBaseAmount    BillErrorCode = "BIL-010003"
	ErrCodeInvalidDueDate       BillErrorCode = "BIL-010004"
	ErrCodeInvalidEndDate       BillErrorCode = "BIL-010005"
	ErrCodeBillNameRequired     BillErrorCode = "BIL-010006"
	ErrCodeBillArchived         BillErrorCode = "BIL-010007"
	ErrCodeInvalidTag           BillErrorCode = "BIL-010008"
	ErrCodeMissingBillFields    BillErrorCode = "BIL-010009"
	ErrCodeInvalidForecastMonth BillErrorCode = "BIL-010010"
	ErrCodeInvalidForecastRange BillErrorCode = "BIL-010011"
	ErrCodeBillStateChanged     BillErrorCode = "BIL-010012"

	// Rate limiting (02XXXX)
	ErrCodeRateLimited BillErrorCode = "BIL-020001"
)

// BillError represents a bill error with code and message.
type BillError struct {
	Code    BillErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BillError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *BillError) Unwrap() error {
	return e.Err
}

// NewBillError creates a new BillError with the given code and message.
func NewBillError(code BillErrorCode, message string, err error) *BillError {
	return &BillError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
