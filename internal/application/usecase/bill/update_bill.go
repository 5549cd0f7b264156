package bill

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

// UpdateBillInput represents the input for bill update.
// Nil fields are left unchanged.
type UpdateBillInput struct {
	BillID       uuid.UUID
	Name         *string
	BaseAmount   *int64
	EndDate      *time.Time
	ClearEndDate bool
	IsAutoPay    *bool
	IsVariable   *bool
	Tags         *[]string
}

// UpdateBillOutput represents the output of bill update.
type UpdateBillOutput struct {
	Bill *entity.Bill
}

// UpdateBillUseCase handles bill update logic.
// Schedule fields (due date, frequency) are owned by the billing engine and cannot be edited.
type UpdateBillUseCase struct {
	billRepo        adapter.BillRepository
	transactionRepo adapter.TransactionRepository
	processor       *billing.Processor
	cache           adapter.ForecastCache
}

// NewUpdateBillUseCase creates a new UpdateBillUseCase instance.
func NewUpdateBillUseCase(
	billRepo adapter.BillRepository,
	transactionRepo adapter.TransactionRepository,
	processor *billing.Processor,
	cache adapter.ForecastCache,
) *UpdateBillUseCase {
	return &UpdateBillUseCase{
		billRepo:        billRepo,
		transactionRepo: transactionRepo,
		processor:       processor,
		cache:           cache,
	}
}

// Execute performs the bill update.
func (uc *UpdateBillUseCase) Execute(ctx context.Context, input UpdateBillInput) (*UpdateBillOutput, error) {
	bill, err := uc.billRepo.FindByID(ctx, input.BillID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBillNotFound) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("failed to find bill: %w", err)
	}

	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		bill.Name = name
	}

	if input.ClearEndDate {
		bill.EndDate = nil
	} else if input.EndDate != nil {
		end := billing.DateOf(*input.EndDate)
		if err := validateEndDate(&end, bill.DueDate); err != nil {
			return nil, err
		}
		bill.EndDate = &end
	}

	if input.IsAutoPay != nil {
		bill.IsAutoPay = *input.IsAutoPay
	}
	if input.IsVariable != nil {
		bill.IsVariable = *input.IsVariable
	}

	if input.Tags != nil {
		tags, err := normalizeTags(*input.Tags)
		if err != nil {
			return nil, err
		}
		bill.Tags = tags
	}

	if input.BaseAmount != nil && *input.BaseAmount != bill.BaseAmount {
		if err := validateBaseAmount(*input.BaseAmount); err != nil {
			return nil, err
		}
		if err := uc.rebaseAmountDue(ctx, bill, *input.BaseAmount); err != nil {
			return nil, err
		}
	}

	bill.UpdatedAt = time.Now().UTC()

	if err := uc.billRepo.Update(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}
	invalidateForecasts(ctx, uc.cache)

	return &UpdateBillOutput{
		Bill: bill,
	}, nil
}

// rebaseAmountDue applies a new base amount to the open cycle, keeping
// current-cycle payments counted. Settled bills keep a zero balance.
func (uc *UpdateBillUseCase) rebaseAmountDue(ctx context.Context, bill *entity.Bill, baseAmount int64) error {
	if bill.Status == entity.BillStatusPaid {
		bill.BaseAmount = baseAmount
		return nil
	}

	transactions, err := uc.transactionRepo.FindByBillID(ctx, bill.ID)
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}

	// Earlier cycles were billed at the old base amount.
	paid := billing.CurrentCyclePaid(bill, transactions)
	bill.BaseAmount = baseAmount
	bill.AmountDue = max(0, baseAmount-paid)
	return nil
}
