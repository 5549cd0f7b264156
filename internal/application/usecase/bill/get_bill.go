package bill

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// GetBillInput represents the input for fetching a bill.
type GetBillInput struct {
	BillID uuid.UUID
}

// GetBillOutput represents a bill with its payment totals.
type GetBillOutput struct {
	Bill   *entity.Bill
	Totals *entity.TransactionTotals
}

// GetBillUseCase handles fetching a single bill.
type GetBillUseCase struct {
	billRepo        adapter.BillRepository
	transactionRepo adapter.TransactionRepository
}

// NewGetBillUseCase creates a new GetBillUseCase instance.
func NewGetBillUseCase(billRepo adapter.BillRepository, transactionRepo adapter.TransactionRepository) *GetBillUseCase {
	return &GetBillUseCase{
		billRepo:        billRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute retrieves the bill.
func (uc *GetBillUseCase) Execute(ctx context.Context, input GetBillInput) (*GetBillOutput, error) {
	bill, err := uc.billRepo.FindByID(ctx, input.BillID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBillNotFound) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("failed to find bill: %w", err)
	}

	totals, err := uc.transactionRepo.GetTotals(ctx, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment totals: %w", err)
	}

	return &GetBillOutput{
		Bill:   bill,
		Totals: totals,
	}, nil
}
