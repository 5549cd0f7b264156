// Package bill contains bill-related use cases.
package bill

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

const (
	maxNameLength  = 100
	maxTagLength   = 50
	maxTagsPerBill = 20
)

// validateName trims the bill name and ensures it is present.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return "", domainerror.NewBillError(
			domainerror.ErrCodeBillNameRequired,
			"name is required and must be at most 100 characters",
			domainerror.ErrBillNameRequired,
		)
	}
	return name, nil
}

func validateBaseAmount(amount int64) error {
	if amount <= 0 {
		return domainerror.NewBillError(
			domainerror.ErrCodeInvalidBaseAmount,
			"base amount must be greater than zero",
			domainerror.ErrInvalidBaseAmount,
		)
	}
	return nil
}

func validateFrequency(frequency entity.Frequency) error {
	if !frequency.IsValid() {
		return domainerror.NewBillError(
			domainerror.ErrCodeInvalidFrequency,
			"frequency must be one of once, weekly, biweekly, twicemonthly, monthly, bimonthly, quarterly, yearly",
			domainerror.ErrInvalidFrequency,
		)
	}
	return nil
}

func validateEndDate(endDate *time.Time, dueDate time.Time) error {
	if endDate != nil && endDate.Before(dueDate) {
		return domainerror.NewBillError(
			domainerror.ErrCodeInvalidEndDate,
			"end date must not be before the due date",
			domainerror.ErrInvalidEndDate,
		)
	}
	return nil
}

// normalizeTags trims, deduplicates and validates tags, keeping their order.
func normalizeTags(tags []string) ([]string, error) {
	if len(tags) > maxTagsPerBill {
		return nil, domainerror.NewBillError(
			domainerror.ErrCodeInvalidTag,
			"a bill can carry at most 20 tags",
			domainerror.ErrInvalidTag,
		)
	}

	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || len(tag) > maxTagLength {
			return nil, domainerror.NewBillError(
				domainerror.ErrCodeInvalidTag,
				"tags must be non-empty and at most 50 characters",
				domainerror.ErrInvalidTag,
			)
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result, nil
}

// notFound converts a repository miss into a coded bill error.
func notFound() error {
	return domainerror.NewBillError(
		domainerror.ErrCodeBillNotFound,
		"bill not found",
		domainerror.ErrBillNotFound,
	)
}

// stateChanged reports a bill that moved while a payment was being applied.
func stateChanged() error {
	return domainerror.NewBillError(
		domainerror.ErrCodeBillStateChanged,
		"bill changed while the payment was being applied, retry",
		domainerror.ErrBillStateChanged,
	)
}

// invalidateForecasts drops cached forecasts after a write. Failures only log.
func invalidateForecasts(ctx context.Context, cache adapter.ForecastCache) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		slog.Warn("Failed to invalidate forecast cache", "error", err)
	}
}
