package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// MaxNotesLength is the maximum length of payment notes.
const MaxNotesLength = 500

// PayBillInput represents the input for logging a payment.
type PayBillInput struct {
	BillID       uuid.UUID
	Amount       int64 // Minor currency units
	PaidAt       time.Time
	Notes        string
	AdvanceCycle bool // Full payment: move the bill to its next occurrence
}

// PayBillOutput represents the output of logging a payment.
type PayBillOutput struct {
	Transaction  *entity.Transaction
	Bill         *entity.Bill
	IsHistorical bool
	Advanced     bool
	BillEnded    bool
}

// PayBillUseCase records a payment and applies its effect on the bill.
type PayBillUseCase struct {
	billRepo        adapter.BillRepository
	transactionRepo adapter.TransactionRepository
	processor       *billing.Processor
	cache           adapter.ForecastCache
}

// NewPayBillUseCase creates a new PayBillUseCase instance.
func NewPayBillUseCase(
	billRepo adapter.BillRepository,
	transactionRepo adapter.TransactionRepository,
	processor *billing.Processor,
	cache adapter.ForecastCache,
) *PayBillUseCase {
	return &PayBillUseCase{
		billRepo:        billRepo,
		transactionRepo: transactionRepo,
		processor:       processor,
		cache:           cache,
	}
}

// Execute records the payment. The transaction is always stored; the bill
// changes only when the payment belongs to its current cycle.
func (uc *PayBillUseCase) Execute(ctx context.Context, input PayBillInput) (*PayBillOutput, error) {
	if input.Amount <= 0 {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionAmount,
			"amount must be greater than zero",
			domainerror.ErrInvalidTransactionAmount,
		)
	}
	if len(input.Notes) > MaxNotesLength {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeNotesTooLong,
			"notes must be at most 500 characters",
			domainerror.ErrNotesTooLong,
		)
	}

	bill, err := uc.billRepo.FindByID(ctx, input.BillID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBillNotFound) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("failed to find bill: %w", err)
	}

	if bill.IsArchived {
		return nil, domainerror.NewBillError(
			domainerror.ErrCodeBillArchived,
			"cannot log payments against an archived bill",
			domainerror.ErrBillArchived,
		)
	}

	paidAt := billing.DateOf(input.PaidAt)
	output := &PayBillOutput{Bill: bill}
	var change *entity.BillChange
	settles := false

	if bill.Status == entity.BillStatusPaid {
		// Settled bills only record the payment.
		if err := uc.processor.ValidatePaidAt(paidAt); err != nil {
			return nil, err
		}
	} else {
		result, err := uc.processor.ProcessPayment(bill, input.Amount, paidAt, input.AdvanceCycle)
		if err != nil {
			return nil, err
		}
		output.IsHistorical = result.IsHistorical
		output.Advanced = result.Advanced
		output.BillEnded = result.BillEnded
		if !result.IsHistorical {
			change = bill.ChangeTo(result.BillState)
			// A late payment that clears the balance closes the overdue cycle.
			settles = result.Advanced || result.BillEnded ||
				(result.AmountDue == 0 && billing.CompareDates(paidAt, bill.DueDate) > 0)
		}
	}

	transaction := entity.NewTransaction(bill.ID, input.Amount, paidAt, input.Notes, false)
	transaction.SettlesCycle = settles
	if err := uc.transactionRepo.RecordPayment(ctx, transaction, change); err != nil {
		if errors.Is(err, domainerror.ErrBillStateChanged) {
			return nil, stateChanged()
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if change != nil {
		bill.Apply(change.To)
	}
	invalidateForecasts(ctx, uc.cache)

	slog.Debug("Payment recorded",
		"bill_id", bill.ID,
		"amount", input.Amount,
		"historical", output.IsHistorical,
		"advanced", output.Advanced,
	)

	output.Transaction = transaction
	return output, nil
}
