// Package billing implements the billing-cycle engine: recurrence rules,
// cycle classification and payment state transitions.
//
// Every function here works on calendar dates. Times are reduced to their
// year/month/day fields in their own location; time-of-day is ignored.
package billing

import (
	"fmt"
	"time"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// maxAnchorSearch bounds how many intervals a monthly-family rule may skip
// looking for a month that contains the anchor day. Leap days need at most 8 years.
const maxAnchorSearch = 48

// maxProjectionSteps bounds occurrence enumeration when projecting into a window.
const maxProjectionSteps = 1200

// interval is the (base unit, count) pair a frequency advances by.
type interval struct {
	days   int
	months int
}

// recurrenceRules maps interval-based frequencies to their step.
// FrequencyOnce and FrequencyTwiceMonthly are handled as special cases.
var recurrenceRules = map[entity.Frequency]interval{
	entity.FrequencyWeekly:    {days: 7},
	entity.FrequencyBiweekly:  {days: 14},
	entity.FrequencyMonthly:   {months: 1},
	entity.FrequencyBimonthly: {months: 2},
	entity.FrequencyQuarterly: {months: 3},
	entity.FrequencyYearly:    {months: 12},
}

// twiceMonthlyGap is the distance in days between the two paired due days.
const twiceMonthlyGap = 14

// DateOf returns t at midnight, keeping its calendar date and location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CompareDates compares the calendar dates of a and b, ignoring time-of-day
// and location. It returns -1, 0 or 1.
func CompareDates(a, b time.Time) int {
	ka, kb := dayKey(a), dayKey(b)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// DaysIn returns the real number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextOccurrence returns the next due date after dueDate under frequency.
// It reports false for one-time bills and when the next date falls after endDate.
func NextOccurrence(dueDate time.Time, frequency entity.Frequency, endDate *time.Time) (time.Time, bool) {
	current := DateOf(dueDate)

	var next time.Time
	switch frequency {
	case entity.FrequencyOnce:
		return time.Time{}, false
	case entity.FrequencyTwiceMonthly:
		next = nextTwiceMonthly(current)
	default:
		rule := ruleFor(frequency)
		if rule.days > 0 {
			next = current.AddDate(0, 0, rule.days)
		} else {
			var ok bool
			next, ok = shiftMonths(current, rule.months)
			if !ok {
				return time.Time{}, false
			}
		}
	}

	if endDate != nil && CompareDates(next, *endDate) > 0 {
		return time.Time{}, false
	}
	return next, true
}

// CycleStart returns the occurrence immediately before dueDate, which is where
// the current billing cycle begins. It reports false for one-time bills.
func CycleStart(dueDate time.Time, frequency entity.Frequency) (time.Time, bool) {
	current := DateOf(dueDate)

	switch frequency {
	case entity.FrequencyOnce:
		return time.Time{}, false
	case entity.FrequencyTwiceMonthly:
		return prevTwiceMonthly(current), true
	default:
		rule := ruleFor(frequency)
		if rule.days > 0 {
			return current.AddDate(0, 0, -rule.days), true
		}
		return shiftMonths(current, -rule.months)
	}
}

// DeriveStatus returns overdue when dueDate is strictly before today, pending otherwise.
func DeriveStatus(dueDate, today time.Time) entity.BillStatus {
	if CompareDates(dueDate, today) < 0 {
		return entity.BillStatusOverdue
	}
	return entity.BillStatusPending
}

// MonthsPerCycle returns how many months one cycle spans for frequencies that
// recur less often than monthly. It reports false for monthly or more frequent bills.
func MonthsPerCycle(frequency entity.Frequency) (int, bool) {
	switch frequency {
	case entity.FrequencyBimonthly:
		return 2, true
	case entity.FrequencyQuarterly:
		return 3, true
	case entity.FrequencyYearly:
		return 12, true
	default:
		return 0, false
	}
}

// FirstOccurrenceBetween finds the first occurrence of a bill's schedule inside
// [from, to]. Enumeration starts at dueDate and walks backwards or forwards as
// needed. Occurrences before floor (when set) or after endDate never count.
func FirstOccurrenceBetween(
	dueDate time.Time,
	frequency entity.Frequency,
	endDate *time.Time,
	floor *time.Time,
	from, to time.Time,
) (time.Time, bool) {
	current := DateOf(dueDate)

	if frequency == entity.FrequencyOnce {
		if CompareDates(current, from) >= 0 && CompareDates(current, to) <= 0 {
			return current, true
		}
		return time.Time{}, false
	}

	for steps := 0; CompareDates(current, to) > 0; steps++ {
		if steps >= maxProjectionSteps {
			return time.Time{}, false
		}
		prev, ok := CycleStart(current, frequency)
		if !ok || (floor != nil && CompareDates(prev, *floor) < 0) {
			return time.Time{}, false
		}
		current = prev
	}

	for steps := 0; CompareDates(current, from) < 0; steps++ {
		if steps >= maxProjectionSteps {
			return time.Time{}, false
		}
		next, ok := NextOccurrence(current, frequency, endDate)
		if !ok {
			return time.Time{}, false
		}
		current = next
	}

	if CompareDates(current, to) > 0 {
		return time.Time{}, false
	}
	if endDate != nil && CompareDates(current, *endDate) > 0 {
		return time.Time{}, false
	}
	return current, true
}

func ruleFor(frequency entity.Frequency) interval {
	rule, ok := recurrenceRules[frequency]
	if !ok {
		panic(fmt.Sprintf("billing: unsupported frequency %q", frequency))
	}
	return rule
}

// shiftMonths moves date by months (negative to go back), keeping its day of month.
// Months that lack the day are skipped by further steps of the same size.
func shiftMonths(date time.Time, months int) (time.Time, bool) {
	anchor := date.Day()
	for k := 1; k <= maxAnchorSearch; k++ {
		year, month := addMonths(date.Year(), date.Month(), months*k)
		if anchor <= DaysIn(year, month) {
			return time.Date(year, month, anchor, 0, 0, 0, 0, date.Location()), true
		}
	}
	return time.Time{}, false
}

func addMonths(year int, month time.Month, n int) (int, time.Month) {
	total := year*12 + int(month-1) + n
	y := total / 12
	m := total % 12
	if m < 0 {
		m += 12
		y--
	}
	return y, time.Month(m + 1)
}

// nextTwiceMonthly pairs days 1-14 with the day 14 later in the same month,
// and days 15-31 with the day 14 earlier in the next month.
func nextTwiceMonthly(date time.Time) time.Time {
	day := date.Day()
	if day <= twiceMonthlyGap {
		return time.Date(date.Year(), date.Month(), day+twiceMonthlyGap, 0, 0, 0, 0, date.Location())
	}
	return time.Date(date.Year(), date.Month()+1, day-twiceMonthlyGap, 0, 0, 0, 0, date.Location())
}

func prevTwiceMonthly(date time.Time) time.Time {
	day := date.Day()
	if day <= twiceMonthlyGap {
		return time.Date(date.Year(), date.Month()-1, day+twiceMonthlyGap, 0, 0, 0, 0, date.Location())
	}
	return time.Date(date.Year(), date.Month(), day-twiceMonthlyGap, 0, 0, 0, 0, date.Location())
}
