package autopay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
)

// SweepOverdueOutput summarizes one overdue sweep.
type SweepOverdueOutput struct {
	Updated int
	Skipped int // Changed by another writer first, or failed to write
}

// SweepOverdueUseCase marks pending bills whose due date has passed as overdue.
type SweepOverdueUseCase struct {
	billRepo  adapter.BillRepository
	processor *billing.Processor
	cache     adapter.ForecastCache
}

// NewSweepOverdueUseCase creates a new SweepOverdueUseCase instance.
func NewSweepOverdueUseCase(
	billRepo adapter.BillRepository,
	processor *billing.Processor,
	cache adapter.ForecastCache,
) *SweepOverdueUseCase {
	return &SweepOverdueUseCase{
		billRepo:  billRepo,
		processor: processor,
		cache:     cache,
	}
}

// Execute runs the sweep. Each write is conditional on the bill still being pending.
func (uc *SweepOverdueUseCase) Execute(ctx context.Context) (*SweepOverdueOutput, error) {
	bills, err := uc.billRepo.FindOverdueCandidates(ctx, uc.processor.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue candidates: %w", err)
	}

	output := &SweepOverdueOutput{}
	for _, bill := range bills {
		updated, err := uc.billRepo.UpdateStatusIf(ctx, bill.ID, entity.BillStatusPending, entity.BillStatusOverdue)
		if err != nil {
			slog.Error("Failed to mark bill overdue", "bill_id", bill.ID, "error", err)
			output.Skipped++
			continue
		}
		if !updated {
			output.Skipped++
			continue
		}
		output.Updated++
	}

	if output.Updated > 0 && uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			slog.Warn("Failed to invalidate forecast cache", "error", err)
		}
	}

	slog.Info("Overdue sweep completed", "updated", output.Updated, "skipped", output.Skipped)
	return output, nil
}
