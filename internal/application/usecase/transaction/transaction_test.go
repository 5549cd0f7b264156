package transaction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter/adaptertest"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

var today = time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store *adaptertest.Store
	cache *adaptertest.Cache
	bill  *entity.Bill
}

// newFixture stores a monthly bill due 2025-06-10 that a payment on 2025-05-08
// advanced from 2025-05-10.
func newFixture(t *testing.T) (*fixture, *entity.Transaction) {
	t.Helper()
	store := adaptertest.NewStore()

	bill := entity.NewBill("Power", 20000, date(2025, time.June, 10), nil, entity.FrequencyMonthly, false, false, nil)
	bill.StartDate = date(2025, time.February, 10)
	bill.Status = entity.BillStatusPending
	store.AddBill(bill)

	advancing := entity.NewTransaction(bill.ID, 20000, date(2025, time.May, 8), "", false)
	store.AddTransaction(advancing)

	return &fixture{store: store, cache: adaptertest.NewCache(), bill: bill}, advancing
}

func (f *fixture) processor() *billing.Processor {
	return billing.NewProcessor(adaptertest.NewClock(today.Add(12*time.Hour)), time.UTC)
}

func TestDeleteTransactionUseCase_RevertsAdvancedCycle(t *testing.T) {
	f, advancing := newFixture(t)
	uc := NewDeleteTransactionUseCase(f.store, f.store.TransactionRepo(), f.processor(), f.cache)

	output, err := uc.Execute(context.Background(), DeleteTransactionInput{TransactionID: advancing.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !output.Recomputed || !output.Reverted {
		t.Errorf("expected a recomputed revert, got %+v", output)
	}

	stored := f.store.Bill(f.bill.ID)
	if !stored.DueDate.Equal(date(2025, time.May, 10)) {
		t.Errorf("expected due date 2025-05-10, got %s", stored.DueDate)
	}
	if stored.AmountDue != 20000 || stored.Status != entity.BillStatusOverdue {
		t.Errorf("unexpected state %+v", stored.State())
	}
	if len(f.store.Transactions(f.bill.ID)) != 0 {
		t.Error("expected payment to be deleted")
	}
	if f.cache.Invalidations != 1 {
		t.Errorf("expected cache invalidation, got %d", f.cache.Invalidations)
	}
}

func TestDeleteTransactionUseCase_OldPaymentLeavesBill(t *testing.T) {
	f, _ := newFixture(t)
	old := entity.NewTransaction(f.bill.ID, 20000, date(2025, time.March, 9), "", false)
	f.store.AddTransaction(old)
	uc := NewDeleteTransactionUseCase(f.store, f.store.TransactionRepo(), f.processor(), nil)

	output, err := uc.Execute(context.Background(), DeleteTransactionInput{TransactionID: old.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Recomputed {
		t.Error("expected no recomputation for a payment two cycles back")
	}
	if f.store.Bill(f.bill.ID).State() != f.bill.State() {
		t.Error("expected bill state to be unchanged")
	}
}

func TestDeleteTransactionUseCase_NotFound(t *testing.T) {
	f, _ := newFixture(t)
	uc := NewDeleteTransactionUseCase(f.store, f.store.TransactionRepo(), f.processor(), nil)

	_, err := uc.Execute(context.Background(), DeleteTransactionInput{TransactionID: uuid.New()})
	var txnErr *domainerror.TransactionError
	if !errors.As(err, &txnErr) || txnErr.Code != domainerror.ErrCodeTransactionNotFound {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestUpdateTransactionUseCase(t *testing.T) {
	tests := []struct {
		name           string
		input          func(id uuid.UUID) UpdateTransactionInput
		expectedDue    time.Time
		expectedAmount int64
		recomputed     bool
	}{
		{
			name: "lowering the advancing payment reverts with the remainder",
			input: func(id uuid.UUID) UpdateTransactionInput {
				amount := int64(12000)
				return UpdateTransactionInput{TransactionID: id, Amount: &amount}
			},
			expectedDue:    date(2025, time.May, 10),
			expectedAmount: 8000,
			recomputed:     true,
		},
		{
			name: "moving the payment into the current cycle counts against it",
			input: func(id uuid.UUID) UpdateTransactionInput {
				paidAt := date(2025, time.June, 1)
				amount := int64(5000)
				return UpdateTransactionInput{TransactionID: id, PaidAt: &paidAt, Amount: &amount}
			},
			expectedDue:    date(2025, time.June, 10),
			expectedAmount: 15000,
			recomputed:     true,
		},
		{
			name: "editing notes keeps the state",
			input: func(id uuid.UUID) UpdateTransactionInput {
				notes := "paid by card"
				return UpdateTransactionInput{TransactionID: id, Notes: &notes}
			},
			expectedDue:    date(2025, time.June, 10),
			expectedAmount: 20000,
			recomputed:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, advancing := newFixture(t)
			uc := NewUpdateTransactionUseCase(f.store, f.store.TransactionRepo(), f.processor(), f.cache)

			output, err := uc.Execute(context.Background(), tt.input(advancing.ID))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.Recomputed != tt.recomputed {
				t.Errorf("expected recomputed %v, got %v", tt.recomputed, output.Recomputed)
			}

			stored := f.store.Bill(f.bill.ID)
			if !stored.DueDate.Equal(tt.expectedDue) {
				t.Errorf("expected due date %s, got %s", tt.expectedDue.Format("2006-01-02"), stored.DueDate.Format("2006-01-02"))
			}
			if stored.AmountDue != tt.expectedAmount {
				t.Errorf("expected amount due %d, got %d", tt.expectedAmount, stored.AmountDue)
			}
		})
	}
}

func TestUpdateTransactionUseCase_PaymentOnDueDate(t *testing.T) {
	tests := []struct {
		name       string
		input      func(id uuid.UUID) UpdateTransactionInput
		recomputed bool
	}{
		{
			name: "notes only",
			input: func(id uuid.UUID) UpdateTransactionInput {
				notes := "bank transfer"
				return UpdateTransactionInput{TransactionID: id, Notes: &notes}
			},
		},
		{
			name: "same amount and date",
			input: func(id uuid.UUID) UpdateTransactionInput {
				amount := int64(20000)
				paidAt := date(2025, time.June, 5)
				notes := "bank transfer"
				return UpdateTransactionInput{TransactionID: id, Amount: &amount, PaidAt: &paidAt, Notes: &notes}
			},
		},
		{
			name: "larger amount",
			input: func(id uuid.UUID) UpdateTransactionInput {
				amount := int64(25000)
				return UpdateTransactionInput{TransactionID: id, Amount: &amount}
			},
			recomputed: true,
		},
		{
			name: "earlier date in the same cycle",
			input: func(id uuid.UUID) UpdateTransactionInput {
				paidAt := date(2025, time.June, 3)
				return UpdateTransactionInput{TransactionID: id, PaidAt: &paidAt}
			},
			recomputed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := adaptertest.NewStore()

			// A full payment on 2025-06-05 moved the bill to 2025-07-05.
			bill := entity.NewBill("Internet", 20000, date(2025, time.July, 5), nil, entity.FrequencyMonthly, false, false, nil)
			bill.StartDate = date(2025, time.June, 5)
			bill.Status = entity.BillStatusPending
			store.AddBill(bill)
			paid := entity.NewTransaction(bill.ID, 20000, date(2025, time.June, 5), "", false)
			paid.SettlesCycle = true
			store.AddTransaction(paid)

			processor := billing.NewProcessor(adaptertest.NewClock(today.Add(12*time.Hour)), time.UTC)
			uc := NewUpdateTransactionUseCase(store, store.TransactionRepo(), processor, nil)

			for i := 0; i < 2; i++ {
				output, err := uc.Execute(context.Background(), tt.input(paid.ID))
				if err != nil {
					t.Fatalf("edit %d: unexpected error: %v", i+1, err)
				}
				// Repeating an edit changes nothing.
				if want := tt.recomputed && i == 0; output.Recomputed != want {
					t.Errorf("edit %d: expected recomputed %v, got %v", i+1, want, output.Recomputed)
				}

				stored := store.Bill(bill.ID)
				if !stored.DueDate.Equal(date(2025, time.July, 5)) || stored.AmountDue != 20000 {
					t.Fatalf("edit %d: expected the bill to stay due 2025-07-05 for 20000, got %+v", i+1, stored.State())
				}
			}
		})
	}
}

func TestUpdateTransactionUseCase_Validation(t *testing.T) {
	f, advancing := newFixture(t)
	uc := NewUpdateTransactionUseCase(f.store, f.store.TransactionRepo(), f.processor(), nil)

	future := today.AddDate(0, 0, 2)
	if _, err := uc.Execute(context.Background(), UpdateTransactionInput{TransactionID: advancing.ID, PaidAt: &future}); !errors.Is(err, domainerror.ErrFuturePaymentDate) {
		t.Errorf("expected future date error, got %v", err)
	}

	zero := int64(0)
	if _, err := uc.Execute(context.Background(), UpdateTransactionInput{TransactionID: advancing.ID, Amount: &zero}); !errors.Is(err, domainerror.ErrInvalidTransactionAmount) {
		t.Errorf("expected invalid amount error, got %v", err)
	}
}

func TestUpdateTransactionUseCase_ArchivedBillIsNotRecomputed(t *testing.T) {
	f, advancing := newFixture(t)
	archived := f.store.Bill(f.bill.ID)
	archived.IsArchived = true
	f.store.AddBill(archived)
	uc := NewUpdateTransactionUseCase(f.store, f.store.TransactionRepo(), f.processor(), nil)

	amount := int64(1)
	output, err := uc.Execute(context.Background(), UpdateTransactionInput{TransactionID: advancing.ID, Amount: &amount})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Recomputed {
		t.Error("expected archived bill to stay untouched")
	}
	if got := f.store.Transactions(f.bill.ID)[0].Amount; got != 1 {
		t.Errorf("expected amount to be updated, got %d", got)
	}
}

func TestListTransactionsUseCase(t *testing.T) {
	f, _ := newFixture(t)
	f.store.AddTransaction(entity.NewTransaction(f.bill.ID, 3000, date(2025, time.June, 2), "", false))
	uc := NewListTransactionsUseCase(f.store, f.store.TransactionRepo())

	output, err := uc.Execute(context.Background(), ListTransactionsInput{BillID: f.bill.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Transactions) != 2 || output.Totals.Total != 23000 {
		t.Errorf("unexpected output %+v", output.Totals)
	}
	if !output.Transactions[0].PaidAt.Equal(date(2025, time.June, 2)) {
		t.Error("expected most recent payment first")
	}

	_, err = uc.Execute(context.Background(), ListTransactionsInput{BillID: uuid.New()})
	if !errors.Is(err, domainerror.ErrBillNotFound) {
		t.Errorf("expected bill not found, got %v", err)
	}
}
