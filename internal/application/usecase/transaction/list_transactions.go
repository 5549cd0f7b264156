package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// ListTransactionsInput represents the input for listing a bill's payments.
type ListTransactionsInput struct {
	BillID uuid.UUID
}

// ListTransactionsOutput represents a bill's payments, most recent first.
type ListTransactionsOutput struct {
	Transactions []*entity.Transaction
	Totals       entity.TransactionTotals
}

// ListTransactionsUseCase handles listing payments of a bill.
type ListTransactionsUseCase struct {
	billRepo        adapter.BillRepository
	transactionRepo adapter.TransactionRepository
}

// NewListTransactionsUseCase creates a new ListTransactionsUseCase instance.
func NewListTransactionsUseCase(
	billRepo adapter.BillRepository,
	transactionRepo adapter.TransactionRepository,
) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{
		billRepo:        billRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute lists the payments.
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, input ListTransactionsInput) (*ListTransactionsOutput, error) {
	if _, err := uc.billRepo.FindByID(ctx, input.BillID); err != nil {
		if errors.Is(err, domainerror.ErrBillNotFound) {
			return nil, domainerror.NewBillError(
				domainerror.ErrCodeBillNotFound,
				"bill not found",
				domainerror.ErrBillNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find bill: %w", err)
	}

	transactions, err := uc.transactionRepo.FindByBillID(ctx, input.BillID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	output := &ListTransactionsOutput{
		Transactions: transactions,
	}
	if output.Transactions == nil {
		output.Transactions = []*entity.Transaction{}
	}
	for _, txn := range transactions {
		output.Totals.Count++
		output.Totals.Total += txn.Amount
	}

	return output, nil
}
