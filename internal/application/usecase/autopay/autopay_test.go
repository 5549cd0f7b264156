package autopay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bill-tracker/backend/internal/application/adapter"
	"github.com/bill-tracker/backend/internal/application/adapter/adaptertest"
	"github.com/bill-tracker/backend/internal/domain/billing"
	"github.com/bill-tracker/backend/internal/domain/entity"
)

var today = time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newProcessor() *billing.Processor {
	return billing.NewProcessor(adaptertest.NewClock(today.Add(6*time.Hour)), time.UTC)
}

func addBill(store *adaptertest.Store, name string, mutate func(*entity.Bill)) *entity.Bill {
	bill := entity.NewBill(name, 10000, date(2025, time.June, 1), nil, entity.FrequencyMonthly, true, false, nil)
	bill.Status = entity.BillStatusOverdue
	if mutate != nil {
		mutate(bill)
	}
	store.AddBill(bill)
	return bill
}

func TestRunAutoPayUseCase_IsolatesFailures(t *testing.T) {
	store := adaptertest.NewStore()
	cache := adaptertest.NewCache()
	bill1 := addBill(store, "bill-1", nil)
	bill2 := addBill(store, "bill-2", nil)
	bill3 := addBill(store, "bill-3", nil)
	store.FailWritesFor(bill2.ID, errors.New("connection reset"))

	uc := NewRunAutoPayUseCase(store, store.TransactionRepo(), newProcessor(), cache, 0)

	output, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.Processed != 2 || output.Failed != 1 {
		t.Errorf("expected processed 2 failed 1, got %+v", output)
	}
	if len(output.FailedIDs) != 1 || output.FailedIDs[0] != bill2.ID {
		t.Errorf("expected failed ids [%s], got %v", bill2.ID, output.FailedIDs)
	}

	for _, bill := range []*entity.Bill{bill1, bill3} {
		stored := store.Bill(bill.ID)
		if !stored.DueDate.Equal(date(2025, time.July, 1)) {
			t.Errorf("%s: expected due date 2025-07-01, got %s", bill.Name, stored.DueDate)
		}
		if stored.Status != entity.BillStatusPending || stored.AmountDue != 10000 {
			t.Errorf("%s: unexpected state %+v", bill.Name, stored.State())
		}

		payments := store.Transactions(bill.ID)
		if len(payments) != 1 {
			t.Fatalf("%s: expected 1 payment, got %d", bill.Name, len(payments))
		}
		if !payments[0].PaidAt.Equal(date(2025, time.June, 1)) || !payments[0].IsAutoPay || !payments[0].SettlesCycle {
			t.Errorf("%s: expected auto-payment dated on the due date, got %+v", bill.Name, payments[0])
		}
	}

	if stored := store.Bill(bill2.ID); stored.State() != bill2.State() {
		t.Error("expected failed bill to stay unchanged")
	}
	if cache.Invalidations != 1 {
		t.Errorf("expected cache invalidation, got %d", cache.Invalidations)
	}
}

func TestRunAutoPayUseCase_CatchUp(t *testing.T) {
	tests := []struct {
		name             string
		mutate           func(*entity.Bill)
		maxCatchUp       int
		expectedPayments int
		expectedDue      time.Time
		expectedStatus   entity.BillStatus
	}{
		{
			name:             "settles every missed cycle",
			mutate:           func(b *entity.Bill) { b.DueDate = date(2025, time.March, 1) },
			expectedPayments: 4,
			expectedDue:      date(2025, time.July, 1),
			expectedStatus:   entity.BillStatusPending,
		},
		{
			name:             "stops at the catch-up limit",
			mutate:           func(b *entity.Bill) { b.DueDate = date(2025, time.March, 1) },
			maxCatchUp:       2,
			expectedPayments: 2,
			expectedDue:      date(2025, time.May, 1),
			expectedStatus:   entity.BillStatusOverdue,
		},
		{
			name: "stops when the end date is reached",
			mutate: func(b *entity.Bill) {
				b.DueDate = date(2025, time.March, 1)
				end := date(2025, time.April, 15)
				b.EndDate = &end
			},
			expectedPayments: 2,
			expectedDue:      date(2025, time.April, 1),
			expectedStatus:   entity.BillStatusPaid,
		},
		{
			name: "one-time bill is settled once",
			mutate: func(b *entity.Bill) {
				b.Frequency = entity.FrequencyOnce
			},
			expectedPayments: 1,
			expectedDue:      date(2025, time.June, 1),
			expectedStatus:   entity.BillStatusPaid,
		},
		{
			name:             "due today is paid",
			mutate:           func(b *entity.Bill) { b.DueDate = today; b.Status = entity.BillStatusPending },
			expectedPayments: 1,
			expectedDue:      date(2025, time.July, 5),
			expectedStatus:   entity.BillStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := adaptertest.NewStore()
			bill := addBill(store, "Insurance", tt.mutate)
			uc := NewRunAutoPayUseCase(store, store.TransactionRepo(), newProcessor(), nil, tt.maxCatchUp)

			output, err := uc.Execute(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.Processed != tt.expectedPayments {
				t.Errorf("expected %d payments, got %d", tt.expectedPayments, output.Processed)
			}

			stored := store.Bill(bill.ID)
			if !stored.DueDate.Equal(tt.expectedDue) {
				t.Errorf("expected due date %s, got %s", tt.expectedDue.Format("2006-01-02"), stored.DueDate.Format("2006-01-02"))
			}
			if stored.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, stored.Status)
			}
			if n := len(store.Transactions(bill.ID)); n != tt.expectedPayments {
				t.Errorf("expected %d stored payments, got %d", tt.expectedPayments, n)
			}
		})
	}
}

func TestRunAutoPayUseCase_Eligibility(t *testing.T) {
	store := adaptertest.NewStore()
	addBill(store, "manual", func(b *entity.Bill) { b.IsAutoPay = false })
	addBill(store, "archived", func(b *entity.Bill) { b.IsArchived = true })
	addBill(store, "paid", func(b *entity.Bill) { b.Status = entity.BillStatusPaid })
	addBill(store, "future", func(b *entity.Bill) { b.DueDate = date(2025, time.June, 6); b.Status = entity.BillStatusPending })

	uc := NewRunAutoPayUseCase(store, store.TransactionRepo(), newProcessor(), nil, 0)

	output, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Processed != 0 || output.Failed != 0 || len(output.FailedIDs) != 0 {
		t.Errorf("expected an empty batch, got %+v", output)
	}
}

func TestRunAutoPayUseCase_RerunIsNoOp(t *testing.T) {
	store := adaptertest.NewStore()
	bill := addBill(store, "Phone", nil)
	uc := NewRunAutoPayUseCase(store, store.TransactionRepo(), newProcessor(), nil, 0)

	for i := 0; i < 2; i++ {
		if _, err := uc.Execute(context.Background()); err != nil {
			t.Fatalf("run %d: unexpected error: %v", i+1, err)
		}
	}

	if n := len(store.Transactions(bill.ID)); n != 1 {
		t.Errorf("expected a single payment after two runs, got %d", n)
	}
}

// movingBillRepo hands out bills and then moves the listed ones, the way a
// payment logged between the read and the write would.
type movingBillRepo struct {
	adapter.BillRepository
	store *adaptertest.Store
	moved map[uuid.UUID]time.Time
}

func (r movingBillRepo) FindAutoPayDue(ctx context.Context, today time.Time) ([]*entity.Bill, error) {
	bills, err := r.BillRepository.FindAutoPayDue(ctx, today)
	if err != nil {
		return nil, err
	}
	for id, due := range r.moved {
		bill := r.store.Bill(id)
		bill.DueDate = due
		bill.Status = entity.BillStatusPending
		r.store.AddBill(bill)
	}
	return bills, nil
}

func TestRunAutoPayUseCase_SkipsBillsChangedDuringRun(t *testing.T) {
	tests := []struct {
		name             string
		moveTo           time.Time
		expectedSkipped  int
		expectedPayments int
		expectedDue      time.Time
	}{
		{
			name:             "bill paid elsewhere is left alone",
			moveTo:           date(2025, time.July, 1),
			expectedSkipped:  1,
			expectedPayments: 0,
			expectedDue:      date(2025, time.July, 1),
		},
		{
			name:             "unchanged bill is settled",
			expectedPayments: 1,
			expectedDue:      date(2025, time.July, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := adaptertest.NewStore()
			bill := addBill(store, "Gym", nil)
			repo := movingBillRepo{BillRepository: store, store: store, moved: map[uuid.UUID]time.Time{}}
			if !tt.moveTo.IsZero() {
				repo.moved[bill.ID] = tt.moveTo
			}

			uc := NewRunAutoPayUseCase(repo, store.TransactionRepo(), newProcessor(), nil, 0)
			output, err := uc.Execute(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if output.Skipped != tt.expectedSkipped || output.Failed != 0 {
				t.Errorf("expected skipped %d failed 0, got %+v", tt.expectedSkipped, output)
			}
			if n := len(store.Transactions(bill.ID)); n != tt.expectedPayments {
				t.Errorf("expected %d stored payments, got %d", tt.expectedPayments, n)
			}
			if stored := store.Bill(bill.ID); !stored.DueDate.Equal(tt.expectedDue) {
				t.Errorf("expected due date %s, got %s", tt.expectedDue.Format("2006-01-02"), stored.DueDate.Format("2006-01-02"))
			}
		})
	}
}

func TestSweepOverdueUseCase(t *testing.T) {
	store := adaptertest.NewStore()
	cache := adaptertest.NewCache()
	late := addBill(store, "late", func(b *entity.Bill) { b.Status = entity.BillStatusPending })
	dueToday := addBill(store, "today", func(b *entity.Bill) { b.Status = entity.BillStatusPending; b.DueDate = today })
	addBill(store, "archived", func(b *entity.Bill) { b.Status = entity.BillStatusPending; b.IsArchived = true })
	broken := addBill(store, "broken", func(b *entity.Bill) { b.Status = entity.BillStatusPending })
	store.FailWritesFor(broken.ID, errors.New("timeout"))

	uc := NewSweepOverdueUseCase(store, newProcessor(), cache)

	output, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Updated != 1 || output.Skipped != 1 {
		t.Errorf("expected updated 1 skipped 1, got %+v", output)
	}
	if store.Bill(late.ID).Status != entity.BillStatusOverdue {
		t.Error("expected late bill to be overdue")
	}
	if store.Bill(dueToday.ID).Status != entity.BillStatusPending {
		t.Error("expected bill due today to stay pending")
	}
	if cache.Invalidations != 1 {
		t.Errorf("expected cache invalidation, got %d", cache.Invalidations)
	}
}

// racingRepository changes the bill between the candidate query and the write.
type racingRepository struct {
	*adaptertest.Store
	paid uuid.UUID
}

func (r racingRepository) FindOverdueCandidates(ctx context.Context, today time.Time) ([]*entity.Bill, error) {
	bills, err := r.Store.FindOverdueCandidates(ctx, today)
	if err != nil {
		return nil, err
	}
	bill := r.Bill(r.paid)
	bill.Status = entity.BillStatusPaid
	r.AddBill(bill)
	return bills, nil
}

func TestSweepOverdueUseCase_SkipsConcurrentChange(t *testing.T) {
	store := adaptertest.NewStore()
	bill := addBill(store, "raced", func(b *entity.Bill) { b.Status = entity.BillStatusPending })

	uc := NewSweepOverdueUseCase(racingRepository{Store: store, paid: bill.ID}, newProcessor(), nil)

	output, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Updated != 0 || output.Skipped != 1 {
		t.Errorf("expected the raced bill to be skipped, got %+v", output)
	}
	if store.Bill(bill.ID).Status != entity.BillStatusPaid {
		t.Error("expected the concurrent write to win")
	}
}

func TestStartupReconciler(t *testing.T) {
	t.Run("runs once", func(t *testing.T) {
		store := adaptertest.NewStore()
		addBill(store, "sweep me", func(b *entity.Bill) { b.IsAutoPay = false; b.Status = entity.BillStatusPending })
		addBill(store, "pay me", nil)
		processor := newProcessor()

		reconciler := NewStartupReconciler(
			NewSweepOverdueUseCase(store, processor, nil),
			NewRunAutoPayUseCase(store, store.TransactionRepo(), processor, nil, 0),
		)

		first := reconciler.Run(context.Background())
		if !first.Ran || first.Sweep.Updated != 1 || first.AutoPay.Processed != 1 {
			t.Errorf("unexpected first run %+v", first)
		}

		second := reconciler.Run(context.Background())
		if second.Ran {
			t.Error("expected the second run to be a no-op")
		}
	})

	t.Run("step failures do not propagate", func(t *testing.T) {
		store := adaptertest.NewStore()
		store.FailQueries(errors.New("database unavailable"))
		processor := newProcessor()

		reconciler := NewStartupReconciler(
			NewSweepOverdueUseCase(store, processor, nil),
			NewRunAutoPayUseCase(store, store.TransactionRepo(), processor, nil, 0),
		)

		output := reconciler.Run(context.Background())
		if !output.Ran {
			t.Error("expected the reconciler to run")
		}
		if output.Sweep != (SweepOverdueOutput{}) || output.AutoPay.Processed != 0 || output.AutoPay.Failed != 0 {
			t.Errorf("expected zeroed results, got %+v", output)
		}
	})
}
