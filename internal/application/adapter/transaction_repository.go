// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// TransactionRepository defines the interface for payment persistence operations.
//
// Every write takes an optional bill change. When it is not nil, the bill row is
// updated in the same database transaction as the payment row, and the whole
// unit fails with ErrBillStateChanged if the stored bill no longer matches
// change.From.
type TransactionRepository interface {
	// FindByID retrieves a transaction by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Transaction, error)

	// FindByBillID retrieves all transactions for a bill, most recent first.
	FindByBillID(ctx context.Context, billID uuid.UUID) ([]*entity.Transaction, error)

	// FindByBillIDAndMonth retrieves the bill's transactions paid within the given month, most recent first.
	FindByBillIDAndMonth(ctx context.Context, billID uuid.UUID, year int, month time.Month) ([]*entity.Transaction, error)

	// GetTotals counts and sums the transactions of a bill.
	GetTotals(ctx context.Context, billID uuid.UUID) (*entity.TransactionTotals, error)

	// RecordPayment inserts a transaction and applies the bill change as one unit.
	RecordPayment(ctx context.Context, transaction *entity.Transaction, change *entity.BillChange) error

	// UpdateWithState updates a transaction and applies the bill change as one unit.
	UpdateWithState(ctx context.Context, transaction *entity.Transaction, change *entity.BillChange) error

	// DeleteWithState removes a transaction and applies the bill change as one unit.
	DeleteWithState(ctx context.Context, transaction *entity.Transaction, change *entity.BillChange) error
}
