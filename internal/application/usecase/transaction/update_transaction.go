package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// MaxNotesLength is the maximum length of payment notes.
const MaxNotesLength = 500

// UpdateTransactionInput represents the input for payment update.
// Nil fields are left unchanged.
type UpdateTransactionInput struct {
	TransactionID uuid.UUID
	Amount        *int64
	PaidAt        *time.Time
	Notes         *string
}

// UpdateTransactionOutput represents the output of payment update.
type UpdateTransactionOutput struct {
	Transaction *entity.Transaction
	Bill        *entity.Bill
	Recomputed  bool
}

// UpdateTransactionUseCase edits a payment and rebuilds the bill state when
// its amount or date changes and the payment touches the current cycle.
type UpdateTransactionUseCase struct {
	recomputer
	cache adapter.ForecastCache
}

// NewUpdateTransactionUseCase creates a new UpdateTransactionUseCase instance.
func NewUpdateTransactionUseCase(
	billRepo adapter.BillRepository,
	transactionRepo adapter.TransactionRepository,
	processor *billing.Processor,
	cache adapter.ForecastCache,
) *UpdateTransactionUseCase {
	return &UpdateTransactionUseCase{
		recomputer: recomputer{
			billRepo:        billRepo,
			transactionRepo: transactionRepo,
			processor:       processor,
		},
		cache: cache,
	}
}

// Execute performs the payment update.
func (uc *UpdateTransactionUseCase) Execute(ctx context.Context, input UpdateTransactionInput) (*UpdateTransactionOutput, error) {
	existing, err := uc.transactionRepo.FindByID(ctx, input.TransactionID)
	if err != nil {
		if errors.Is(err, domainerror.ErrTransactionNotFound) {
			return nil, transactionNotFound()
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	updated := *existing

	if input.Amount != nil {
		if *input.Amount <= 0 {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeInvalidTransactionAmount,
				"amount must be greater than zero",
				domainerror.ErrInvalidTransactionAmount,
			)
		}
		updated.Amount = *input.Amount
	}

	if input.PaidAt != nil {
		paidAt := billing.DateOf(*input.PaidAt)
		if err := uc.processor.ValidatePaidAt(paidAt); err != nil {
			return nil, err
		}
		updated.PaidAt = paidAt
	}

	if input.Notes != nil {
		if len(*input.Notes) > MaxNotesLength {
			return nil, domainerror.NewTransactionError(
				domainerror.ErrCodeNotesTooLong,
				"notes must be at most 500 characters",
				domainerror.ErrNotesTooLong,
			)
		}
		updated.Notes = *input.Notes
	}

	updated.UpdatedAt = time.Now().UTC()

	bill, err := uc.loadBill(ctx, existing)
	if err != nil {
		return nil, err
	}

	var change *entity.BillChange
	if updated.Amount != existing.Amount || billing.CompareDates(updated.PaidAt, existing.PaidAt) != 0 {
		result, err := uc.stateAfter(ctx, bill, historyChange{before: existing, after: &updated})
		if err != nil {
			return nil, err
		}
		if result != nil {
			change = bill.ChangeTo(result.BillState)
		}
	}

	if err := uc.transactionRepo.UpdateWithState(ctx, &updated, change); err != nil {
		if errors.Is(err, domainerror.ErrBillStateChanged) {
			return nil, stateChanged()
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if change != nil {
		bill.Apply(change.To)
	}
	invalidateForecasts(ctx, uc.cache)

	return &UpdateTransactionOutput{
		Transaction: &updated,
		Bill:        bill,
		Recomputed:  change != nil,
	}, nil
}
