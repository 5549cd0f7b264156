package bill

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

func newProcessor() *billing.Processor {
	return billing.NewProcessor(adaptertest.NewClock(today.Add(9*time.Hour)), time.UTC)
}

func seedBill(store *adaptertest.Store, mutate func(*entity.Bill)) *entity.Bill {
	bill := entity.NewBill("Rent", 20000, date(2025, time.June, 10), nil, entity.FrequencyMonthly, false, false, nil)
	bill.StartDate = date(2025, time.January, 10)
	bill.Status = entity.BillStatusPending
	if mutate != nil {
		mutate(bill)
	}
	store.AddBill(bill)
	return bill
}

func billCode(t *testing.T, err error) domainerror.BillErrorCode {
	t.Helper()
	var billErr *domainerror.BillError
	if !errors.As(err, &billErr) {
		t.Fatalf("expected BillError, got %v", err)
	}
	return billErr.Code
}

func TestCreateBillUseCase(t *testing.T) {
	endBeforeDue := date(2025, time.May, 1)

	tests := []struct {
		name         string
		input        CreateBillInput
		expectedCode domainerror.BillErrorCode
	}{
		{
			name:         "empty name",
			input:        CreateBillInput{Name: "  ", BaseAmount: 100, DueDate: today, Frequency: entity.FrequencyMonthly},
			expectedCode: domainerror.ErrCodeBillNameRequired,
		},
		{
			name:         "zero base amount",
			input:        CreateBillInput{Name: "Water", DueDate: today, Frequency: entity.FrequencyMonthly},
			expectedCode: domainerror.ErrCodeInvalidBaseAmount,
		},
		{
			name:         "unknown frequency",
			input:        CreateBillInput{Name: "Water", BaseAmount: 100, DueDate: today, Frequency: "daily"},
			expectedCode: domainerror.ErrCodeInvalidFrequency,
		},
		{
			name:         "missing due date",
			input:        CreateBillInput{Name: "Water", BaseAmount: 100, Frequency: entity.FrequencyMonthly},
			expectedCode: domainerror.ErrCodeInvalidDueDate,
		},
		{
			name:         "end date before due date",
			input:        CreateBillInput{Name: "Water", BaseAmount: 100, DueDate: today, EndDate: &endBeforeDue, Frequency: entity.FrequencyMonthly},
			expectedCode: domainerror.ErrCodeInvalidEndDate,
		},
		{
			name:         "blank tag",
			input:        CreateBillInput{Name: "Water", BaseAmount: 100, DueDate: today, Frequency: entity.FrequencyMonthly, Tags: []string{"home", " "}},
			expectedCode: domainerror.ErrCodeInvalidTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := adaptertest.NewStore()
			uc := NewCreateBillUseCase(store, newProcessor(), adaptertest.NewCache())

			_, err := uc.Execute(context.Background(), tt.input)
			if code := billCode(t, err); code != tt.expectedCode {
				t.Errorf("expected code %s, got %s", tt.expectedCode, code)
			}
		})
	}

	t.Run("creates an overdue bill with normalized tags", func(t *testing.T) {
		store := adaptertest.NewStore()
		cache := adaptertest.NewCache()
		uc := NewCreateBillUseCase(store, newProcessor(), cache)

		output, err := uc.Execute(context.Background(), CreateBillInput{
			Name:       " Internet ",
			BaseAmount: 7990,
			DueDate:    time.Date(2025, time.June, 1, 18, 30, 0, 0, time.UTC),
			Frequency:  entity.FrequencyMonthly,
			Tags:       []string{"Home", "home", "utilities"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		bill := store.Bill(output.Bill.ID)
		if bill == nil {
			t.Fatal("expected bill to be stored")
		}
		if bill.Name != "Internet" {
			t.Errorf("expected trimmed name, got %q", bill.Name)
		}
		if bill.Status != entity.BillStatusOverdue {
			t.Errorf("expected overdue, got %s", bill.Status)
		}
		if bill.AmountDue != 7990 {
			t.Errorf("expected amount due 7990, got %d", bill.AmountDue)
		}
		if !bill.DueDate.Equal(date(2025, time.June, 1)) || !bill.StartDate.Equal(bill.DueDate) {
			t.Errorf("expected due and start date 2025-06-01, got %s and %s", bill.DueDate, bill.StartDate)
		}
		if len(bill.Tags) != 2 || bill.Tags[0] != "home" || bill.Tags[1] != "utilities" {
			t.Errorf("unexpected tags %v", bill.Tags)
		}
		if cache.Invalidations != 1 {
			t.Errorf("expected forecast cache invalidation, got %d", cache.Invalidations)
		}
	})
}

func TestGetBillUseCase(t *testing.T) {
	store := adaptertest.NewStore()
	bill := seedBill(store, nil)
	store.AddTransaction(entity.NewTransaction(bill.ID, 5000, date(2025, time.May, 20), "", false))
	store.AddTransaction(entity.NewTransaction(bill.ID, 2500, date(2025, time.April, 20), "", false))

	uc := NewGetBillUseCase(store, store.TransactionRepo())

	output, err := uc.Execute(context.Background(), GetBillInput{BillID: bill.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Totals.Count != 2 || output.Totals.Total != 7500 {
		t.Errorf("unexpected totals %+v", output.Totals)
	}

	_, err = uc.Execute(context.Background(), GetBillInput{BillID: uuid.New()})
	if code := billCode(t, err); code != domainerror.ErrCodeBillNotFound {
		t.Errorf("expected not found code, got %s", code)
	}
}

func TestListBillsUseCase(t *testing.T) {
	store := adaptertest.NewStore()
	seedBill(store, func(b *entity.Bill) { b.Name = "Rent"; b.Tags = []string{"home"} })
	seedBill(store, func(b *entity.Bill) { b.Name = "Gym"; b.Status = entity.BillStatusOverdue })
	seedBill(store, func(b *entity.Bill) { b.Name = "Old"; b.IsArchived = true; b.Tags = []string{"home"} })

	uc := NewListBillsUseCase(store)
	overdue := entity.BillStatusOverdue
	invalid := entity.BillStatus("late")

	tests := []struct {
		name     string
		input    ListBillsInput
		expected int
	}{
		{"active bills", ListBillsInput{}, 2},
		{"including archived", ListBillsInput{IncludeArchived: true}, 3},
		{"by status", ListBillsInput{Status: &overdue}, 1},
		{"by tag ignores case", ListBillsInput{Tag: "HOME"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := uc.Execute(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(output.Bills) != tt.expected {
				t.Errorf("expected %d bills, got %d", tt.expected, len(output.Bills))
			}
		})
	}

	t.Run("invalid status", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), ListBillsInput{Status: &invalid})
		if code := billCode(t, err); code != domainerror.ErrCodeMissingBillFields {
			t.Errorf("unexpected code %s", code)
		}
	})
}

func TestUpdateBillUseCase(t *testing.T) {
	t.Run("new base amount keeps current cycle payments", func(t *testing.T) {
		store := adaptertest.NewStore()
		bill := seedBill(store, func(b *entity.Bill) { b.AmountDue = 15000 })
		store.AddTransaction(entity.NewTransaction(bill.ID, 5000, date(2025, time.May, 20), "", false))
		store.AddTransaction(entity.NewTransaction(bill.ID, 20000, date(2025, time.April, 10), "", false))

		uc := NewUpdateBillUseCase(store, store.TransactionRepo(), newProcessor(), nil)
		base := int64(30000)
		name := "Apartment"

		output, err := uc.Execute(context.Background(), UpdateBillInput{BillID: bill.ID, BaseAmount: &base, Name: &name})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Bill.AmountDue != 25000 {
			t.Errorf("expected amount due 25000, got %d", output.Bill.AmountDue)
		}
		if stored := store.Bill(bill.ID); stored.BaseAmount != 30000 || stored.Name != "Apartment" {
			t.Errorf("expected stored update, got %+v", stored)
		}
	})

	t.Run("new base amount after paying on the due date", func(t *testing.T) {
		store := adaptertest.NewStore()
		bill := seedBill(store, func(b *entity.Bill) { b.DueDate = today })

		pay := NewPayBillUseCase(store, store.TransactionRepo(), newProcessor(), nil)
		if _, err := pay.Execute(context.Background(), PayBillInput{
			BillID: bill.ID, Amount: 20000, PaidAt: today, AdvanceCycle: true,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		uc := NewUpdateBillUseCase(store, store.TransactionRepo(), newProcessor(), nil)
		base := int64(30000)
		output, err := uc.Execute(context.Background(), UpdateBillInput{BillID: bill.ID, BaseAmount: &base})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !output.Bill.DueDate.Equal(date(2025, time.July, 5)) || output.Bill.AmountDue != 30000 {
			t.Errorf("expected 30000 due on 2025-07-05, got %+v", output.Bill.State())
		}
	})

	t.Run("clearing the end date", func(t *testing.T) {
		store := adaptertest.NewStore()
		end := date(2025, time.December, 31)
		bill := seedBill(store, func(b *entity.Bill) { b.EndDate = &end })

		uc := NewUpdateBillUseCase(store, store.TransactionRepo(), newProcessor(), nil)
		if _, err := uc.Execute(context.Background(), UpdateBillInput{BillID: bill.ID, ClearEndDate: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.Bill(bill.ID).EndDate != nil {
			t.Error("expected end date to be cleared")
		}
	})

	t.Run("end date before the due date is rejected", func(t *testing.T) {
		store := adaptertest.NewStore()
		bill := seedBill(store, nil)
		end := date(2025, time.June, 1)

		uc := NewUpdateBillUseCase(store, store.TransactionRepo(), newProcessor(), nil)
		_, err := uc.Execute(context.Background(), UpdateBillInput{BillID: bill.ID, EndDate: &end})
		if code := billCode(t, err); code != domainerror.ErrCodeInvalidEndDate {
			t.Errorf("unexpected code %s", code)
		}
	})
}

func TestArchiveBillUseCase(t *testing.T) {
	store := adaptertest.NewStore()
	cache := adaptertest.NewCache()
	bill := seedBill(store, nil)
	uc := NewArchiveBillUseCase(store, cache)

	for i := 0; i < 2; i++ {
		if err := uc.Execute(context.Background(), ArchiveBillInput{BillID: bill.ID}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if !store.Bill(bill.ID).IsArchived {
		t.Error("expected bill to be archived")
	}
	if cache.Invalidations != 1 {
		t.Errorf("expected a single invalidation, got %d", cache.Invalidations)
	}
}
