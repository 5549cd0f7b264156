package billing

import (
	"sort"
	"time"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// IsHistorical reports whether a payment made at paidAt predates the bill's
// current billing cycle. The cycle start itself belongs to the current cycle.
// Payments against one-time bills are never historical.
func IsHistorical(bill *entity.Bill, paidAt time.Time) bool {
	return historicalAgainst(bill.DueDate, bill.Frequency, paidAt)
}

// AffectsCurrentCycle reports whether adding, editing or removing the transaction
// can change the bill's current state. Besides current-cycle payments this covers
// a payment from the previous cycle, which is the one that advanced the bill to
// its current due date.
func AffectsCurrentCycle(bill *entity.Bill, transaction *entity.Transaction) bool {
	if !historicalAgainst(bill.DueDate, bill.Frequency, transaction.PaidAt) {
		return true
	}

	previousDue, ok := CycleStart(bill.DueDate, bill.Frequency)
	if !ok {
		return false
	}
	return !historicalAgainst(previousDue, bill.Frequency, transaction.PaidAt)
}

func historicalAgainst(dueDate time.Time, frequency entity.Frequency, paidAt time.Time) bool {
	start, ok := CycleStart(dueDate, frequency)
	if !ok {
		return false
	}
	return CompareDates(paidAt, start) < 0
}

// partition splits transactions into those inside the cycle ending at dueDate
// and the rest.
func partition(dueDate time.Time, frequency entity.Frequency, transactions []*entity.Transaction) (current, rest []*entity.Transaction) {
	for _, txn := range transactions {
		if historicalAgainst(dueDate, frequency, txn.PaidAt) {
			rest = append(rest, txn)
		} else {
			current = append(current, txn)
		}
	}
	return current, rest
}

// sumAmounts returns the total amount of the given transactions.
func sumAmounts(transactions []*entity.Transaction) int64 {
	var total int64
	for _, txn := range transactions {
		total += txn.Amount
	}
	return total
}

// CurrentCyclePaid sums the payments that count toward the bill's current
// cycle once the previous cycle has taken what it needs.
func CurrentCyclePaid(bill *entity.Bill, transactions []*entity.Transaction) int64 {
	return sumAmounts(allocate(bill, transactions).current)
}

// allocation splits a bill's payments between its cycles.
type allocation struct {
	current         []*entity.Transaction
	rest            []*entity.Transaction
	previousSettled bool
}

// allocate assigns payments to the bill's cycles. The previous cycle is served
// first, from payments dated after its start up to and including its due date,
// then from late payments up to the one that settled it. When those cover it,
// the payments it consumed are removed from the current cycle. Otherwise every
// payment dated on or after the previous due date stays current.
func allocate(bill *entity.Bill, transactions []*entity.Transaction) allocation {
	current, rest := partition(bill.DueDate, bill.Frequency, transactions)

	consumed, settled := coverPreviousCycle(bill, transactions)
	if !settled {
		return allocation{current: current, rest: rest}
	}

	left := make([]*entity.Transaction, 0, len(current))
	for _, txn := range current {
		if !consumed[txn] {
			left = append(left, txn)
		}
	}
	return allocation{current: left, rest: rest, previousSettled: true}
}

// isLate reports whether paidAt falls after previousDue but before dueDate.
func isLate(paidAt, previousDue, dueDate time.Time) bool {
	return CompareDates(paidAt, previousDue) > 0 && CompareDates(paidAt, dueDate) < 0
}

// coverPreviousCycle walks the payments owned by the cycle ending at the
// previous due date in date order and returns the ones needed to pay it in full.
func coverPreviousCycle(bill *entity.Bill, transactions []*entity.Transaction) (map[*entity.Transaction]bool, bool) {
	previousDue, ok := CycleStart(bill.DueDate, bill.Frequency)
	if !ok {
		return nil, false
	}
	if !bill.StartDate.IsZero() && CompareDates(previousDue, bill.StartDate) < 0 {
		return nil, false
	}

	previousStart, hasPrevious := CycleStart(previousDue, bill.Frequency)
	firstCycle := !hasPrevious ||
		(!bill.StartDate.IsZero() && CompareDates(previousStart, bill.StartDate) < 0)

	// Late payments belong to the previous cycle up to the last one that
	// settled it.
	var settledAt time.Time
	for _, txn := range transactions {
		if txn.SettlesCycle && isLate(txn.PaidAt, previousDue, bill.DueDate) && txn.PaidAt.After(settledAt) {
			settledAt = txn.PaidAt
		}
	}

	var owned []*entity.Transaction
	for _, txn := range transactions {
		if CompareDates(txn.PaidAt, previousDue) <= 0 {
			sinceStart := CompareDates(txn.PaidAt, previousStart)
			if sinceStart > 0 || (firstCycle && sinceStart == 0) {
				owned = append(owned, txn)
			}
			continue
		}
		if !settledAt.IsZero() && isLate(txn.PaidAt, previousDue, bill.DueDate) && CompareDates(txn.PaidAt, settledAt) <= 0 {
			owned = append(owned, txn)
		}
	}

	sort.SliceStable(owned, func(i, j int) bool {
		if c := CompareDates(owned[i].PaidAt, owned[j].PaidAt); c != 0 {
			return c < 0
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})

	consumed := make(map[*entity.Transaction]bool, len(owned))
	var paid int64
	for _, txn := range owned {
		consumed[txn] = true
		paid += txn.Amount
		if paid >= bill.BaseAmount {
			return consumed, true
		}
	}
	return nil, false
}
