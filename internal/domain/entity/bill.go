// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Frequency represents how often a bill recurs.
type Frequency string

const (
	FrequencyOnce         Frequency = "once"
	FrequencyWeekly       Frequency = "weekly"
	FrequencyBiweekly     Frequency = "biweekly"
	FrequencyTwiceMonthly Frequency = "twicemonthly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyBimonthly    Frequency = "bimonthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencyYearly       Frequency = "yearly"
)

// Frequencies lists every supported frequency in display order.
var Frequencies = []Frequency{
	FrequencyOnce,
	FrequencyWeekly,
	FrequencyBiweekly,
	FrequencyTwiceMonthly,
	FrequencyMonthly,
	FrequencyBimonthly,
	FrequencyQuarterly,
	FrequencyYearly,
}

// IsValid reports whether f is one of the supported frequencies.
func (f Frequency) IsValid() bool {
	for _, candidate := range Frequencies {
		if f == candidate {
			return true
		}
	}
	return false
}

// BillStatus represents the derived payment status of a bill.
type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusOverdue BillStatus = "overdue"
	BillStatusPaid    BillStatus = "paid"
)

// IsValid reports whether s is a known bill status.
func (s BillStatus) IsValid() bool {
	return s == BillStatusPending || s == BillStatusOverdue || s == BillStatusPaid
}

// Bill represents a recurring or one-time financial obligation.
// Amounts are integer minor currency units.
type Bill struct {
	ID         uuid.UUID
	Name       string
	BaseAmount int64
	AmountDue  int64 // Outstanding balance of the current cycle only
	DueDate    time.Time
	StartDate  time.Time  // First due date ever assigned; cycle reversal never goes before it
	EndDate    *time.Time // Optional, recurrence stops after this date
	Frequency  Frequency
	Status     BillStatus
	IsAutoPay  bool
	IsVariable bool
	IsArchived bool
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewBill creates a new Bill entity for its first cycle.
// Status is left empty; callers derive it from the due date.
func NewBill(
	name string,
	baseAmount int64,
	dueDate time.Time,
	endDate *time.Time,
	frequency Frequency,
	isAutoPay bool,
	isVariable bool,
	tags []string,
) *Bill {
	now := time.Now().UTC()

	return &Bill{
		ID:         uuid.New(),
		Name:       name,
		BaseAmount: baseAmount,
		AmountDue:  baseAmount,
		DueDate:    dueDate,
		StartDate:  dueDate,
		EndDate:    endDate,
		Frequency:  frequency,
		IsAutoPay:  isAutoPay,
		IsVariable: isVariable,
		Tags:       tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsRecurring reports whether the bill has more than one occurrence.
func (b *Bill) IsRecurring() bool {
	return b.Frequency != FrequencyOnce
}

// HasTag reports whether the bill carries the given tag.
func (b *Bill) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// BillState is the derived portion of a bill that payments may change.
type BillState struct {
	DueDate   time.Time
	AmountDue int64
	Status    BillStatus
}

// State returns the bill's current derived state.
func (b *Bill) State() BillState {
	return BillState{
		DueDate:   b.DueDate,
		AmountDue: b.AmountDue,
		Status:    b.Status,
	}
}

// BillChange is a derived state together with the state it was derived from.
// Writers apply To only while the stored bill still matches From.
type BillChange struct {
	From BillState
	To   BillState
}

// ChangeTo returns the change moving the bill from its current state to state.
func (b *Bill) ChangeTo(state BillState) *BillChange {
	return &BillChange{From: b.State(), To: state}
}

// Apply copies a derived state onto the bill.
func (b *Bill) Apply(state BillState) {
	b.DueDate = state.DueDate
	b.AmountDue = state.AmountDue
	b.Status = state.Status
	b.UpdatedAt = time.Now().UTC()
}
