package forecast

import (
	"context"
	"fmt"
	"strings"

	"github.com/bill-tracker/backend/internal/application/adapter"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// MaxRangeMonths bounds the number of months in a single range projection.
const MaxRangeMonths = 36

// MonthlyTotal is one month of a range projection.
type MonthlyTotal struct {
	Month              Month
	Label              string
	BillCount          int
	Summary            ForecastSummary
	ChangeFromPrevious int64 // Grand total difference to the previous month, zero for the first
}

// ProjectRangeInput represents the input for a range projection.
type ProjectRangeInput struct {
	Start Month
	Count int
	Tag   string // Optional
}

// ProjectRangeOutput represents consecutive projected months.
type ProjectRangeOutput struct {
	Months []MonthlyTotal
	Total  ForecastSummary
}

// ProjectRangeUseCase projects the active bills into consecutive months.
// A year view is a range of 12 starting in January.
type ProjectRangeUseCase struct {
	billRepo  adapter.BillRepository
	projector *Projector
}

// NewProjectRangeUseCase creates a new ProjectRangeUseCase instance.
func NewProjectRangeUseCase(billRepo adapter.BillRepository, projector *Projector) *ProjectRangeUseCase {
	return &ProjectRangeUseCase{
		billRepo:  billRepo,
		projector: projector,
	}
}

// Execute performs the range projection.
func (uc *ProjectRangeUseCase) Execute(ctx context.Context, input ProjectRangeInput) (*ProjectRangeOutput, error) {
	if input.Count < 1 || input.Count > MaxRangeMonths {
		return nil, domainerror.NewBillError(
			domainerror.ErrCodeInvalidForecastRange,
			fmt.Sprintf("count must be between 1 and %d", MaxRangeMonths),
			domainerror.ErrInvalidForecastRange,
		)
	}

	tag := strings.ToLower(strings.TrimSpace(input.Tag))
	bills, err := uc.billRepo.FindActive(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	output := &ProjectRangeOutput{
		Months: make([]MonthlyTotal, 0, input.Count),
	}

	for i := 0; i < input.Count; i++ {
		month := input.Start.Add(i)

		projected, err := uc.projector.ProjectMonth(ctx, bills, month, tag)
		if err != nil {
			return nil, fmt.Errorf("failed to project %s: %w", month, err)
		}

		total := MonthlyTotal{
			Month:     month,
			Label:     month.Label(),
			BillCount: len(projected),
			Summary:   Summarize(projected),
		}
		if i > 0 {
			total.ChangeFromPrevious = total.Summary.GrandTotal - output.Months[i-1].Summary.GrandTotal
		}

		output.Months = append(output.Months, total)
		output.Total.TotalDue += total.Summary.TotalDue
		output.Total.TotalToSave += total.Summary.TotalToSave
		output.Total.GrandTotal += total.Summary.GrandTotal
	}

	return output, nil
}
