package bill

import (
	"context"
	"fmt"
	"strings"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// ListBillsInput represents the input for listing bills.
type ListBillsInput struct {
	Status          *entity.BillStatus // Optional
	Tag             string             // Optional
	IncludeArchived bool
}

// ListBillsOutput represents the output of listing bills.
type ListBillsOutput struct {
	Bills []*entity.Bill
}

// ListBillsUseCase handles listing bills.
type ListBillsUseCase struct {
	billRepo adapter.BillRepository
}

// NewListBillsUseCase creates a new ListBillsUseCase instance.
func NewListBillsUseCase(billRepo adapter.BillRepository) *ListBillsUseCase {
	return &ListBillsUseCase{
		billRepo: billRepo,
	}
}

// Execute lists the bills matching the input filters.
func (uc *ListBillsUseCase) Execute(ctx context.Context, input ListBillsInput) (*ListBillsOutput, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, domainerror.NewBillError(
			domainerror.ErrCodeMissingBillFields,
			"status must be 'pending', 'overdue' or 'paid'",
			nil,
		)
	}

	bills, err := uc.billRepo.FindByFilter(ctx, adapter.BillFilter{
		Status:          input.Status,
		Tag:             strings.ToLower(strings.TrimSpace(input.Tag)),
		IncludeArchived: input.IncludeArchived,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}

	if bills == nil {
		bills = []*entity.Bill{}
	}

	return &ListBillsOutput{
		Bills: bills,
	}, nil
}
