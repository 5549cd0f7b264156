package bill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// ArchiveBillInput represents the input for archiving a bill.
type ArchiveBillInput struct {
	BillID uuid.UUID
}

// ArchiveBillUseCase excludes a bill from sweeps, auto-pay and forecasts.
// Payments stay on record. Archiving an archived bill is a no-op.
type ArchiveBillUseCase struct {
	billRepo adapter.BillRepository
	cache    adapter.ForecastCache
}

// NewArchiveBillUseCase creates a new ArchiveBillUseCase instance.
func NewArchiveBillUseCase(billRepo adapter.BillRepository, cache adapter.ForecastCache) *ArchiveBillUseCase {
	return &ArchiveBillUseCase{
		billRepo: billRepo,
		cache:    cache,
	}
}

// Execute archives the bill.
func (uc *ArchiveBillUseCase) Execute(ctx context.Context, input ArchiveBillInput) error {
	bill, err := uc.billRepo.FindByID(ctx, input.BillID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBillNotFound) {
			return notFound()
		}
		return fmt.Errorf("failed to find bill: %w", err)
	}

	if bill.IsArchived {
		return nil
	}

	bill.IsArchived = true
	bill.UpdatedAt = time.Now().UTC()

	if err := uc.billRepo.Update(ctx, bill); err != nil {
		return fmt.Errorf("failed to archive bill: %w", err)
	}
	invalidateForecasts(ctx, uc.cache)

	return nil
}
