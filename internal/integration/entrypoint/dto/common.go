// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/bill-tracker/backend/internal/domain/billing"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ParseDate parses a YYYY-MM-DD date in the given location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, loc)
}

// ParseOptionalDate parses value when it is set.
func ParseOptionalDate(value *string, loc *time.Location) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := ParseDate(*value, loc)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// formatAmount renders minor units as a decimal string, e.g. 12345 -> "123.45".
func formatAmount(minorUnits int64) string {
	return billing.ToDecimal(minorUnits).StringFixed(2)
}
