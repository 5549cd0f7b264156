// Package autopay contains the unattended settlement jobs: the auto-pay batch,
// the overdue sweep and the startup reconciler that runs both.
package autopay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// DefaultMaxCatchUp bounds how many missed cycles a single bill settles in one run.
const DefaultMaxCatchUp = 24

// autoPayNote is stored on every payment written by the batch.
const autoPayNote = "auto-pay"

// RunAutoPayOutput summarizes one auto-pay batch.
type RunAutoPayOutput struct {
	Processed int // Payments recorded
	Skipped   int // Bills changed by another writer during the run
	Failed    int // Bills whose settlement failed
	FailedIDs []uuid.UUID
}

// RunAutoPayUseCase settles every auto-pay bill that is due. Each cycle of
// each bill is one atomic unit; a failing bill never stops the batch.
// Runs are serialized, and every write is conditional on the bill state the
// cycle was computed from.
type RunAutoPayUseCase struct {
	mu sync.Mutex

	billRepo        adapter.BillRepository
	transactionRepo adapter.TransactionRepository
	processor       *billing.Processor
	cache           adapter.ForecastCache
	maxCatchUp      int
}

// NewRunAutoPayUseCase creates a new RunAutoPayUseCase instance.
// A non-positive maxCatchUp falls back to DefaultMaxCatchUp.
func NewRunAutoPayUseCase(
	billRepo adapter.BillRepository,
	transactionRepo adapter.TransactionRepository,
	processor *billing.Processor,
	cache adapter.ForecastCache,
	maxCatchUp int,
) *RunAutoPayUseCase {
	if maxCatchUp <= 0 {
		maxCatchUp = DefaultMaxCatchUp
	}
	return &RunAutoPayUseCase{
		billRepo:        billRepo,
		transactionRepo: transactionRepo,
		processor:       processor,
		cache:           cache,
		maxCatchUp:      maxCatchUp,
	}
}

// Execute runs the batch. It only returns an error when the eligible bills
// cannot be loaded.
func (uc *RunAutoPayUseCase) Execute(ctx context.Context) (*RunAutoPayOutput, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	today := uc.processor.Today()

	bills, err := uc.billRepo.FindAutoPayDue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to find auto-pay bills: %w", err)
	}

	output := &RunAutoPayOutput{FailedIDs: []uuid.UUID{}}
	if len(bills) == 0 {
		return output, nil
	}

	slog.Debug("Processing auto-pay batch", "count", len(bills))

	for _, bill := range bills {
		if ctx.Err() != nil {
			break
		}

		processed, err := uc.settle(ctx, bill)
		output.Processed += processed
		if errors.Is(err, domainerror.ErrBillStateChanged) {
			output.Skipped++
			continue
		}
		if err != nil {
			output.Failed++
			output.FailedIDs = append(output.FailedIDs, bill.ID)
		}
	}

	if output.Processed > 0 && uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			slog.Warn("Failed to invalidate forecast cache", "error", err)
		}
	}

	slog.Info("Auto-pay batch completed",
		"processed", output.Processed,
		"skipped", output.Skipped,
		"failed", output.Failed,
	)

	return output, nil
}

// settle pays the bill's due cycles until it is current, ended or the
// catch-up limit is reached. It returns the number of payments recorded.
func (uc *RunAutoPayUseCase) settle(ctx context.Context, bill *entity.Bill) (int, error) {
	logger := slog.With(
		"bill_id", bill.ID,
		"bill_name", bill.Name,
	)
	today := uc.processor.Today()

	processed := 0
	for processed < uc.maxCatchUp {
		paidAt := bill.DueDate

		result, err := uc.processor.ProcessPayment(bill, bill.BaseAmount, paidAt, true)
		if err != nil {
			logger.Error("Failed to process auto-payment", "due_date", paidAt, "error", err)
			return processed, err
		}

		transaction := entity.NewTransaction(bill.ID, bill.BaseAmount, paidAt, autoPayNote, true)
		transaction.SettlesCycle = true
		if err := uc.transactionRepo.RecordPayment(ctx, transaction, bill.ChangeTo(result.BillState)); err != nil {
			if errors.Is(err, domainerror.ErrBillStateChanged) {
				logger.Info("Bill changed during auto-pay, skipping", "due_date", paidAt)
				return processed, err
			}
			logger.Error("Failed to record auto-payment", "due_date", paidAt, "error", err)
			return processed, err
		}

		bill.Apply(result.BillState)
		processed++

		if result.BillEnded || billing.CompareDates(bill.DueDate, today) > 0 {
			break
		}
	}

	if processed == uc.maxCatchUp && bill.Status != entity.BillStatusPaid && billing.CompareDates(bill.DueDate, today) <= 0 {
		logger.Warn("Auto-pay catch-up limit reached", "limit", uc.maxCatchUp, "due_date", bill.DueDate)
	}

	logger.Info("Auto-pay settled", "payments", processed, "next_due_date", bill.DueDate, "status", bill.Status)
	return processed, nil
}
