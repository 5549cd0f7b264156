package billing

import (
	"time"

	"github.com/bill-tracker/backend/internal/domain/entity"
	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// PaymentResult is the bill state produced by a single payment.
type PaymentResult struct {
	entity.BillState
	IsHistorical bool // Payment predates the current cycle; the bill must not change
	Advanced     bool // Cycle moved to the next due date
	BillEnded    bool // No further occurrence exists; the bill is settled
}

// RecomputeResult is the bill state rebuilt from a full transaction history.
type RecomputeResult struct {
	entity.BillState
	Advanced  bool
	Reverted  bool // Due date moved back to the previous cycle
	BillEnded bool
}

// Processor derives bill state transitions from payments.
// It performs no I/O; "today" comes from the clock in the billing location.
type Processor struct {
	clock    Clock
	location *time.Location
}

// NewProcessor creates a new payment processor.
func NewProcessor(clock Clock, location *time.Location) *Processor {
	if clock == nil {
		clock = SystemClock{}
	}
	if location == nil {
		location = time.Local
	}
	return &Processor{
		clock:    clock,
		location: location,
	}
}

// Today returns the current calendar date in the billing location.
func (p *Processor) Today() time.Time {
	return DateOf(p.clock.Now().In(p.location))
}

// Location returns the billing location.
func (p *Processor) Location() *time.Location {
	return p.location
}

// ValidatePaidAt rejects missing payment dates and dates after today.
// Same-day payments are allowed.
func (p *Processor) ValidatePaidAt(paidAt time.Time) error {
	if paidAt.IsZero() {
		return domainerror.NewPaymentError(
			domainerror.ErrCodeInvalidPaymentDate,
			"payment date is required",
			domainerror.ErrInvalidPaymentDate,
		)
	}
	if CompareDates(paidAt, p.Today()) > 0 {
		return domainerror.NewPaymentError(
			domainerror.ErrCodeFuturePaymentDate,
			"payment date cannot be in the future",
			domainerror.ErrFuturePaymentDate,
		)
	}
	return nil
}

// ProcessPayment computes the state a single payment leaves the bill in.
// A full payment (advanceCycle) moves the bill to its next occurrence or settles it;
// a partial payment only lowers the amount due.
func (p *Processor) ProcessPayment(bill *entity.Bill, amount int64, paidAt time.Time, advanceCycle bool) (*PaymentResult, error) {
	if err := p.ValidatePaidAt(paidAt); err != nil {
		return nil, err
	}

	if IsHistorical(bill, paidAt) {
		return &PaymentResult{
			BillState:    bill.State(),
			IsHistorical: true,
		}, nil
	}

	if advanceCycle {
		state, ended := p.advance(bill)
		return &PaymentResult{
			BillState: state,
			Advanced:  !ended,
			BillEnded: ended,
		}, nil
	}

	amountDue := max(0, bill.AmountDue-amount)
	if bill.Frequency == entity.FrequencyOnce && amountDue == 0 {
		return &PaymentResult{
			BillState: entity.BillState{
				DueDate:   bill.DueDate,
				AmountDue: 0,
				Status:    entity.BillStatusPaid,
			},
			BillEnded: true,
		}, nil
	}

	return &PaymentResult{
		BillState: entity.BillState{
			DueDate:   bill.DueDate,
			AmountDue: amountDue,
			Status:    DeriveStatus(bill.DueDate, p.Today()),
		},
	}, nil
}

// RecomputeFromHistory rebuilds the bill state from every transaction recorded
// against it. It is used after a payment is edited, deleted or inserted out of
// order, and returns the same result for the same inputs.
//
// The current cycle's balance always starts from BaseAmount and only counts
// payments the previous cycle did not need, so recomputing an unchanged history
// leaves the bill where it is. When the current cycle holds no payments and the
// previous one is not settled, the bill looks back exactly one cycle: an unpaid
// or partially paid previous cycle becomes current again.
func (p *Processor) RecomputeFromHistory(bill *entity.Bill, transactions []*entity.Transaction) *RecomputeResult {
	alloc := allocate(bill, transactions)

	if len(alloc.current) == 0 {
		if alloc.previousSettled {
			return &RecomputeResult{
				BillState: p.openCycle(bill.DueDate, bill.BaseAmount),
			}
		}
		return p.lookBack(bill, alloc.rest)
	}

	paid := sumAmounts(alloc.current)
	if paid >= bill.BaseAmount {
		state, ended := p.advance(bill)
		return &RecomputeResult{
			BillState: state,
			Advanced:  !ended,
			BillEnded: ended,
		}
	}

	return &RecomputeResult{
		BillState: p.openCycle(bill.DueDate, bill.BaseAmount-paid),
	}
}

// lookBack handles a current cycle without payments.
func (p *Processor) lookBack(bill *entity.Bill, earlier []*entity.Transaction) *RecomputeResult {
	stay := &RecomputeResult{
		BillState: p.openCycle(bill.DueDate, bill.BaseAmount),
	}

	previousDue, ok := CycleStart(bill.DueDate, bill.Frequency)
	if !ok {
		return stay
	}
	if !bill.StartDate.IsZero() && CompareDates(previousDue, bill.StartDate) < 0 {
		return stay
	}

	previousStart, hasPrevious := CycleStart(previousDue, bill.Frequency)
	var previousPaid int64
	for _, txn := range earlier {
		if hasPrevious && CompareDates(txn.PaidAt, previousStart) < 0 {
			continue
		}
		previousPaid += txn.Amount
	}

	if previousPaid >= bill.BaseAmount {
		return stay
	}

	return &RecomputeResult{
		BillState: p.openCycle(previousDue, bill.BaseAmount-previousPaid),
		Reverted:  true,
	}
}

// advance moves the bill to its next occurrence, or settles it when none exists.
func (p *Processor) advance(bill *entity.Bill) (entity.BillState, bool) {
	next, ok := NextOccurrence(bill.DueDate, bill.Frequency, bill.EndDate)
	if !ok {
		return entity.BillState{
			DueDate:   bill.DueDate,
			AmountDue: 0,
			Status:    entity.BillStatusPaid,
		}, true
	}

	return entity.BillState{
		DueDate:   next,
		AmountDue: bill.BaseAmount,
		Status:    DeriveStatus(next, p.Today()),
	}, false
}

func (p *Processor) openCycle(dueDate time.Time, amountDue int64) entity.BillState {
	return entity.BillState{
		DueDate:   dueDate,
		AmountDue: max(0, amountDue),
		Status:    DeriveStatus(dueDate, p.Today()),
	}
}
