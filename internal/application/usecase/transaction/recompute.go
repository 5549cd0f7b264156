// Package transaction contains payment record use cases.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// historyChange describes how one payment changes in the bill's history.
// A nil after means the payment is removed.
type historyChange struct {
	before *entity.Transaction
	after  *entity.Transaction
}

// recomputer rebuilds a bill's state after one of its payments changes.
type recomputer struct {
	billRepo        adapter.BillRepository
	transactionRepo adapter.TransactionRepository
	processor       *billing.Processor
}

// loadBill fetches the bill owning a payment.
func (r recomputer) loadBill(ctx context.Context, transaction *entity.Transaction) (*entity.Bill, error) {
	bill, err := r.billRepo.FindByID(ctx, transaction.BillID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBillNotFound) {
			return nil, domainerror.NewBillError(
				domainerror.ErrCodeBillNotFound,
				"bill not found",
				domainerror.ErrBillNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find bill: %w", err)
	}
	return bill, nil
}

// stateAfter returns the bill state to persist with the change, or nil when
// the bill must stay as it is.
func (r recomputer) stateAfter(ctx context.Context, bill *entity.Bill, change historyChange) (*billing.RecomputeResult, error) {
	if bill.IsArchived {
		return nil, nil
	}

	affected := billing.AffectsCurrentCycle(bill, change.before)
	if change.after != nil && billing.AffectsCurrentCycle(bill, change.after) {
		affected = true
	}
	if !affected {
		return nil, nil
	}

	history, err := r.transactionRepo.FindByBillID(ctx, bill.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	updated := make([]*entity.Transaction, 0, len(history))
	for _, txn := range history {
		if txn.ID != change.before.ID {
			updated = append(updated, txn)
		}
	}
	if change.after != nil {
		updated = append(updated, change.after)
	}

	result := r.processor.RecomputeFromHistory(bill, updated)

	slog.Debug("Bill recomputed from payment history",
		"bill_id", bill.ID,
		"payments", len(updated),
		"advanced", result.Advanced,
		"reverted", result.Reverted,
	)

	return result, nil
}

// transactionNotFound converts a repository miss into a coded transaction error.
func transactionNotFound() error {
	return domainerror.NewTransactionError(
		domainerror.ErrCodeTransactionNotFound,
		"transaction not found",
		domainerror.ErrTransactionNotFound,
	)
}

// stateChanged reports a bill that moved while a payment change was being applied.
func stateChanged() error {
	return domainerror.NewBillError(
		domainerror.ErrCodeBillStateChanged,
		"bill changed while the payment was being applied, retry",
		domainerror.ErrBillStateChanged,
	)
}

func invalidateForecasts(ctx context.Context, cache adapter.ForecastCache) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		slog.Warn("Failed to invalidate forecast cache", "error", err)
	}
}
