package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// DeleteTransactionInput represents the input for payment deletion.
type DeleteTransactionInput struct {
	TransactionID uuid.UUID
}

// DeleteTransactionOutput represents the output of payment deletion.
type DeleteTransactionOutput struct {
	Bill       *entity.Bill
	Recomputed bool
	Reverted   bool // The bill moved back to its previous cycle
}

// DeleteTransactionUseCase removes a payment and rebuilds the bill state when
// the payment touched the current cycle.
type DeleteTransactionUseCase struct {
	recomputer
	cache adapter.ForecastCache
}

// NewDeleteTransactionUseCase creates a new DeleteTransactionUseCase instance.
func NewDeleteTransactionUseCase(
	billRepo adapter.BillRepository,
	transactionRepo adapter.TransactionRepository,
	processor *billing.Processor,
	cache adapter.ForecastCache,
) *DeleteTransactionUseCase {
	return &DeleteTransactionUseCase{
		recomputer: recomputer{
			billRepo:        billRepo,
			transactionRepo: transactionRepo,
			processor:       processor,
		},
		cache: cache,
	}
}

// Execute performs the payment deletion.
func (uc *DeleteTransactionUseCase) Execute(ctx context.Context, input DeleteTransactionInput) (*DeleteTransactionOutput, error) {
	existing, err := uc.transactionRepo.FindByID(ctx, input.TransactionID)
	if err != nil {
		if errors.Is(err, domainerror.ErrTransactionNotFound) {
			return nil, transactionNotFound()
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	bill, err := uc.loadBill(ctx, existing)
	if err != nil {
		return nil, err
	}

	result, err := uc.stateAfter(ctx, bill, historyChange{before: existing})
	if err != nil {
		return nil, err
	}

	var change *entity.BillChange
	if result != nil {
		change = bill.ChangeTo(result.BillState)
	}

	if err := uc.transactionRepo.DeleteWithState(ctx, existing, change); err != nil {
		if errors.Is(err, domainerror.ErrTransactionNotFound) {
			return nil, transactionNotFound()
		}
		if errors.Is(err, domainerror.ErrBillStateChanged) {
			return nil, stateChanged()
		}
		return nil, fmt.Errorf("failed to delete transaction: %w", err)
	}

	output := &DeleteTransactionOutput{
		Bill:       bill,
		Recomputed: change != nil,
	}
	if change != nil {
		bill.Apply(change.To)
		output.Reverted = result.Reverted
	}
	invalidateForecasts(ctx, uc.cache)

	return output, nil
}
