package billing

import (
	"testing"
	"time"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := date(year, month, day)
	return &d
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name      string
		dueDate   time.Time
		frequency entity.Frequency
		endDate   *time.Time
		expected  time.Time
		expectOK  bool
	}{
		{
			name:      "once has no next occurrence",
			dueDate:   date(2025, time.March, 10),
			frequency: entity.FrequencyOnce,
			expectOK:  false,
		},
		{
			name:      "weekly adds seven days",
			dueDate:   date(2025, time.December, 29),
			frequency: entity.FrequencyWeekly,
			expected:  date(2026, time.January, 5),
			expectOK:  true,
		},
		{
			name:      "biweekly adds fourteen days",
			dueDate:   date(2025, time.February, 20),
			frequency: entity.FrequencyBiweekly,
			expected:  date(2025, time.March, 6),
			expectOK:  true,
		},
		{
			name:      "monthly keeps the day",
			dueDate:   date(2025, time.January, 15),
			frequency: entity.FrequencyMonthly,
			expected:  date(2025, time.February, 15),
			expectOK:  true,
		},
		{
			name:      "monthly on the 31st skips February",
			dueDate:   date(2025, time.January, 31),
			frequency: entity.FrequencyMonthly,
			expected:  date(2025, time.March, 31),
			expectOK:  true,
		},
		{
			name:      "monthly on the 30th skips February",
			dueDate:   date(2025, time.January, 30),
			frequency: entity.FrequencyMonthly,
			expected:  date(2025, time.March, 30),
			expectOK:  true,
		},
		{
			name:      "monthly on the 29th uses leap February",
			dueDate:   date(2024, time.January, 29),
			frequency: entity.FrequencyMonthly,
			expected:  date(2024, time.February, 29),
			expectOK:  true,
		},
		{
			name:      "monthly on the 31st skips April",
			dueDate:   date(2025, time.March, 31),
			frequency: entity.FrequencyMonthly,
			expected:  date(2025, time.May, 31),
			expectOK:  true,
		},
		{
			name:      "bimonthly adds two months across year end",
			dueDate:   date(2025, time.November, 10),
			frequency: entity.FrequencyBimonthly,
			expected:  date(2026, time.January, 10),
			expectOK:  true,
		},
		{
			name:      "quarterly on the 30th skips February",
			dueDate:   date(2024, time.November, 30),
			frequency: entity.FrequencyQuarterly,
			expected:  date(2025, time.May, 30),
			expectOK:  true,
		},
		{
			name:      "yearly adds one year",
			dueDate:   date(2025, time.June, 1),
			frequency: entity.FrequencyYearly,
			expected:  date(2026, time.June, 1),
			expectOK:  true,
		},
		{
			name:      "yearly leap day waits for the next leap year",
			dueDate:   date(2024, time.February, 29),
			frequency: entity.FrequencyYearly,
			expected:  date(2028, time.February, 29),
			expectOK:  true,
		},
		{
			name:      "twicemonthly day 5 goes to day 19",
			dueDate:   date(2025, time.April, 5),
			frequency: entity.FrequencyTwiceMonthly,
			expected:  date(2025, time.April, 19),
			expectOK:  true,
		},
		{
			name:      "twicemonthly day 20 goes to day 6 of next month",
			dueDate:   date(2025, time.April, 20),
			frequency: entity.FrequencyTwiceMonthly,
			expected:  date(2025, time.May, 6),
			expectOK:  true,
		},
		{
			name:      "twicemonthly day 17 goes to day 3 of next month",
			dueDate:   date(2025, time.April, 17),
			frequency: entity.FrequencyTwiceMonthly,
			expected:  date(2025, time.May, 3),
			expectOK:  true,
		},
		{
			name:      "twicemonthly wraps December",
			dueDate:   date(2025, time.December, 28),
			frequency: entity.FrequencyTwiceMonthly,
			expected:  date(2026, time.January, 14),
			expectOK:  true,
		},
		{
			name:      "end date stops recurrence",
			dueDate:   date(2025, time.March, 15),
			frequency: entity.FrequencyMonthly,
			endDate:   datePtr(2025, time.April, 14),
			expectOK:  false,
		},
		{
			name:      "end date on the next occurrence still allows it",
			dueDate:   date(2025, time.March, 15),
			frequency: entity.FrequencyMonthly,
			endDate:   datePtr(2025, time.April, 15),
			expected:  date(2025, time.April, 15),
			expectOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := NextOccurrence(tt.dueDate, tt.frequency, tt.endDate)

			if ok != tt.expectOK {
				t.Fatalf("expected ok %v, got %v (next %s)", tt.expectOK, ok, next)
			}
			if ok && !next.Equal(tt.expected) {
				t.Errorf("expected %s, got %s", tt.expected.Format("2006-01-02"), next.Format("2006-01-02"))
			}
		})
	}
}

func TestNextOccurrence_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2025, time.May, 10, 23, 59, 0, 0, time.UTC)

	next, ok := NextOccurrence(due, entity.FrequencyWeekly, nil)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if !next.Equal(date(2025, time.May, 17)) {
		t.Errorf("expected 2025-05-17 at midnight, got %s", next)
	}
}

func TestNextOccurrence_UnknownFrequencyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown frequency")
		}
	}()

	NextOccurrence(date(2025, time.January, 1), entity.Frequency("daily"), nil)
}

func TestRecurrence_RoundTripProperties(t *testing.T) {
	recurring := []entity.Frequency{
		entity.FrequencyWeekly,
		entity.FrequencyBiweekly,
		entity.FrequencyTwiceMonthly,
		entity.FrequencyMonthly,
		entity.FrequencyBimonthly,
		entity.FrequencyQuarterly,
		entity.FrequencyYearly,
	}

	start := date(2023, time.January, 1)
	end := date(2026, time.December, 31)

	for _, frequency := range recurring {
		t.Run(string(frequency), func(t *testing.T) {
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				if frequency == entity.FrequencyTwiceMonthly && d.Day() > 28 {
					continue
				}

				next, ok := NextOccurrence(d, frequency, nil)
				if !ok {
					t.Fatalf("expected next occurrence for %s", d.Format("2006-01-02"))
				}
				if !next.After(d) {
					t.Fatalf("next %s does not exceed %s", next.Format("2006-01-02"), d.Format("2006-01-02"))
				}

				back, ok := CycleStart(next, frequency)
				if !ok {
					t.Fatalf("expected cycle start for %s", next.Format("2006-01-02"))
				}
				if !back.Equal(d) {
					t.Fatalf("round trip from %s via %s returned %s",
						d.Format("2006-01-02"), next.Format("2006-01-02"), back.Format("2006-01-02"))
				}
			}
		})
	}
}

func TestCycleStart(t *testing.T) {
	tests := []struct {
		name      string
		dueDate   time.Time
		frequency entity.Frequency
		expected  time.Time
		expectOK  bool
	}{
		{
			name:      "once has no prior cycle",
			dueDate:   date(2025, time.March, 10),
			frequency: entity.FrequencyOnce,
			expectOK:  false,
		},
		{
			name:      "monthly steps back one month",
			dueDate:   date(2025, time.March, 10),
			frequency: entity.FrequencyMonthly,
			expected:  date(2025, time.February, 10),
			expectOK:  true,
		},
		{
			name:      "monthly on the 31st skips February backwards",
			dueDate:   date(2025, time.March, 31),
			frequency: entity.FrequencyMonthly,
			expected:  date(2025, time.January, 31),
			expectOK:  true,
		},
		{
			name:      "twicemonthly day 19 goes back to day 5",
			dueDate:   date(2025, time.April, 19),
			frequency: entity.FrequencyTwiceMonthly,
			expected:  date(2025, time.April, 5),
			expectOK:  true,
		},
		{
			name:      "twicemonthly day 6 goes back to day 20 of previous month",
			dueDate:   date(2025, time.January, 6),
			frequency: entity.FrequencyTwiceMonthly,
			expected:  date(2024, time.December, 20),
			expectOK:  true,
		},
		{
			name:      "yearly leap day goes back to previous leap year",
			dueDate:   date(2028, time.February, 29),
			frequency: entity.FrequencyYearly,
			expected:  date(2024, time.February, 29),
			expectOK:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, ok := CycleStart(tt.dueDate, tt.frequency)

			if ok != tt.expectOK {
				t.Fatalf("expected ok %v, got %v", tt.expectOK, ok)
			}
			if ok && !start.Equal(tt.expected) {
				t.Errorf("expected %s, got %s", tt.expected.Format("2006-01-02"), start.Format("2006-01-02"))
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	today := time.Date(2025, time.June, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		dueDate  time.Time
		expected entity.BillStatus
	}{
		{"yesterday is overdue", date(2025, time.June, 14), entity.BillStatusOverdue},
		{"today is pending", date(2025, time.June, 15), entity.BillStatusPending},
		{"today early morning is pending", time.Date(2025, time.June, 15, 0, 1, 0, 0, time.UTC), entity.BillStatusPending},
		{"tomorrow is pending", date(2025, time.June, 16), entity.BillStatusPending},
		{"last year is overdue", date(2024, time.December, 31), entity.BillStatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.dueDate, today); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestFirstOccurrenceBetween(t *testing.T) {
	tests := []struct {
		name      string
		dueDate   time.Time
		frequency entity.Frequency
		endDate   *time.Time
		floor     *time.Time
		month     time.Time
		expected  time.Time
		expectOK  bool
	}{
		{
			name:      "once inside the month",
			dueDate:   date(2025, time.July, 4),
			frequency: entity.FrequencyOnce,
			month:     date(2025, time.July, 1),
			expected:  date(2025, time.July, 4),
			expectOK:  true,
		},
		{
			name:      "once outside the month",
			dueDate:   date(2025, time.July, 4),
			frequency: entity.FrequencyOnce,
			month:     date(2025, time.August, 1),
			expectOK:  false,
		},
		{
			name:      "monthly projected forward",
			dueDate:   date(2025, time.January, 20),
			frequency: entity.FrequencyMonthly,
			month:     date(2025, time.June, 1),
			expected:  date(2025, time.June, 20),
			expectOK:  true,
		},
		{
			name:      "monthly projected backwards",
			dueDate:   date(2025, time.June, 20),
			frequency: entity.FrequencyMonthly,
			month:     date(2025, time.February, 1),
			expected:  date(2025, time.February, 20),
			expectOK:  true,
		},
		{
			name:      "backwards projection stops at the floor",
			dueDate:   date(2025, time.June, 20),
			frequency: entity.FrequencyMonthly,
			floor:     datePtr(2025, time.May, 20),
			month:     date(2025, time.February, 1),
			expectOK:  false,
		},
		{
			name:      "yearly bill skips other months",
			dueDate:   date(2025, time.March, 3),
			frequency: entity.FrequencyYearly,
			month:     date(2025, time.September, 1),
			expectOK:  false,
		},
		{
			name:      "yearly bill lands in its month a year later",
			dueDate:   date(2025, time.March, 3),
			frequency: entity.FrequencyYearly,
			month:     date(2026, time.March, 1),
			expected:  date(2026, time.March, 3),
			expectOK:  true,
		},
		{
			name:      "twicemonthly takes the first occurrence",
			dueDate:   date(2025, time.May, 20),
			frequency: entity.FrequencyTwiceMonthly,
			month:     date(2025, time.July, 1),
			expected:  date(2025, time.July, 6),
			expectOK:  true,
		},
		{
			name:      "weekly finds first week of month",
			dueDate:   date(2025, time.May, 28),
			frequency: entity.FrequencyWeekly,
			month:     date(2025, time.June, 1),
			expected:  date(2025, time.June, 4),
			expectOK:  true,
		},
		{
			name:      "end date bounds projection",
			dueDate:   date(2025, time.January, 10),
			frequency: entity.FrequencyMonthly,
			endDate:   datePtr(2025, time.March, 31),
			month:     date(2025, time.April, 1),
			expectOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := tt.month
			to := from.AddDate(0, 1, -1)

			got, ok := FirstOccurrenceBetween(tt.dueDate, tt.frequency, tt.endDate, tt.floor, from, to)

			if ok != tt.expectOK {
				t.Fatalf("expected ok %v, got %v (%s)", tt.expectOK, ok, got)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("expected %s, got %s", tt.expected.Format("2006-01-02"), got.Format("2006-01-02"))
			}
		})
	}
}

func TestAmortize(t *testing.T) {
	tests := []struct {
		name       string
		baseAmount int64
		frequency  entity.Frequency
		expected   int64
		expectOK   bool
	}{
		{"yearly rounds down", 100000, entity.FrequencyYearly, 8333, true},
		{"bimonthly halves", 20000, entity.FrequencyBimonthly, 10000, true},
		{"quarterly rounds to nearest", 10, entity.FrequencyQuarterly, 3, true},
		{"half rounds up", 18, entity.FrequencyYearly, 2, true},
		{"monthly has none", 5000, entity.FrequencyMonthly, 0, false},
		{"weekly has none", 5000, entity.FrequencyWeekly, 0, false},
		{"twicemonthly has none", 5000, entity.FrequencyTwiceMonthly, 0, false},
		{"once has none", 5000, entity.FrequencyOnce, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Amortize(tt.baseAmount, tt.frequency)
			if ok != tt.expectOK {
				t.Fatalf("expected ok %v, got %v", tt.expectOK, ok)
			}
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestRoundDiv(t *testing.T) {
	tests := []struct {
		amount, divisor, expected int64
	}{
		{10, 4, 3},  // 2.5
		{9, 4, 2},   // 2.25
		{11, 4, 3},  // 2.75
		{100, 3, 33},
		{0, 3, 0},
		{100, 0, 0},
	}

	for _, tt := range tests {
		if got := RoundDiv(tt.amount, tt.divisor); got != tt.expected {
			t.Errorf("RoundDiv(%d, %d): expected %d, got %d", tt.amount, tt.divisor, tt.expected, got)
		}
	}
}
