package bill

import (
	"context"
	"fmt"
	"time"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// CreateBillInput represents the input for bill creation.
type CreateBillInput struct {
	Name       string
	BaseAmount int64 // Minor currency units
	DueDate    time.Time
	EndDate    *time.Time // Optional
	Frequency  entity.Frequency
	IsAutoPay  bool
	IsVariable bool
	Tags       []string
}

// CreateBillOutput represents the output of bill creation.
type CreateBillOutput struct {
	Bill *entity.Bill
}

// CreateBillUseCase handles bill creation logic.
type CreateBillUseCase struct {
	billRepo  adapter.BillRepository
	processor *billing.Processor
	cache     adapter.ForecastCache
}

// NewCreateBillUseCase creates a new CreateBillUseCase instance.
func NewCreateBillUseCase(
	billRepo adapter.BillRepository,
	processor *billing.Processor,
	cache adapter.ForecastCache,
) *CreateBillUseCase {
	return &CreateBillUseCase{
		billRepo:  billRepo,
		processor: processor,
		cache:     cache,
	}
}

// Execute performs the bill creation.
func (uc *CreateBillUseCase) Execute(ctx context.Context, input CreateBillInput) (*CreateBillOutput, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateBaseAmount(input.BaseAmount); err != nil {
		return nil, err
	}
	if err := validateFrequency(input.Frequency); err != nil {
		return nil, err
	}
	if input.DueDate.IsZero() {
		return nil, domainerror.NewBillError(
			domainerror.ErrCodeInvalidDueDate,
			"due date is required",
			domainerror.ErrInvalidDueDate,
		)
	}

	dueDate := billing.DateOf(input.DueDate)
	var endDate *time.Time
	if input.EndDate != nil {
		end := billing.DateOf(*input.EndDate)
		endDate = &end
	}
	if err := validateEndDate(endDate, dueDate); err != nil {
		return nil, err
	}

	tags, err := normalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	bill := entity.NewBill(
		name,
		input.BaseAmount,
		dueDate,
		endDate,
		input.Frequency,
		input.IsAutoPay,
		input.IsVariable,
		tags,
	)
	bill.Status = billing.DeriveStatus(dueDate, uc.processor.Today())

	if err := uc.billRepo.Create(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}
	invalidateForecasts(ctx, uc.cache)

	return &CreateBillOutput{
		Bill: bill,
	}, nil
}
