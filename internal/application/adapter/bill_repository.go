// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// BillFilter defines filter options for listing bills.
type BillFilter struct {
	Status          *entity.BillStatus
	Tag             string // Exact tag match, empty for all
	IncludeArchived bool
}

// BillRepository defines the interface for bill persistence operations.
// Dates passed in are calendar dates; time of day is ignored.
type BillRepository interface {
	// Create creates a new bill together with its tags.
	Create(ctx context.Context, bill *entity.Bill) error

	// FindByID retrieves a bill by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)

	// FindByFilter retrieves bills matching the filter, ordered by due date.
	FindByFilter(ctx context.Context, filter BillFilter) ([]*entity.Bill, error)

	// FindActive retrieves non-archived bills that are not paid.
	// An empty tag matches every bill.
	FindActive(ctx context.Context, tag string) ([]*entity.Bill, error)

	// FindAutoPayDue retrieves auto-pay bills that are not paid, not archived
	// and due on or before the given date.
	FindAutoPayDue(ctx context.Context, today time.Time) ([]*entity.Bill, error)

	// FindOverdueCandidates retrieves non-archived pending bills due strictly before the given date.
	FindOverdueCandidates(ctx context.Context, today time.Time) ([]*entity.Bill, error)

	// UpdateStatusIf sets the status only when the bill still holds the expected status.
	// Returns false when no row matched.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, status entity.BillStatus) (bool, error)

	// Update updates the bill's editable fields, derived state and tags.
	Update(ctx context.Context, bill *entity.Bill) error
}
