// Package forecast contains the forecast use cases: projecting bills into
// months, estimating variable amounts and aggregating totals.
package forecast

import (
	"fmt"
	"time"

	domainerror "github.com/bill-tracker/backend/internal/domain/error"
)

// monthLayout is the wire format of a month, e.g. "2025-06".
const monthLayout = "2006-01"

var monthAbbreviations = map[time.Month]string{
	time.January:   "Jan",
	time.February:  "Feb",
	time.March:     "Mar",
	time.April:     "Apr",
	time.May:       "May",
	time.June:      "Jun",
	time.July:      "Jul",
	time.August:    "Aug",
	time.September: "Sep",
	time.October:   "Oct",
	time.November:  "Nov",
	time.December:  "Dec",
}

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(value string) (Month, error) {
	parsed, err := time.Parse(monthLayout, value)
	if err != nil {
		return Month{}, domainerror.NewBillError(
			domainerror.ErrCodeInvalidForecastMonth,
			"month must use the YYYY-MM format",
			domainerror.ErrInvalidForecastMonth,
		)
	}
	return MonthOf(parsed), nil
}

// String formats the month as "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label returns a human-readable label such as "Mar 2025".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", monthAbbreviations[m.Month], m.Year)
}

// Bounds returns the first and last day of the month.
func (m Month) Bounds() (start, end time.Time) {
	start = time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// Add returns the month n months later (or earlier for negative n).
func (m Month) Add(n int) Month {
	start, _ := m.Bounds()
	return MonthOf(start.AddDate(0, n, 0))
}

// PriorYear returns the same month one year earlier.
func (m Month) PriorYear() Month {
	return Month{Year: m.Year - 1, Month: m.Month}
}
