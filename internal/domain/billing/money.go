package billing

import (
	"github.com/shopspring/decimal"

	"github.com/bill-tracker/backend/internal/domain/entity"
)

// RoundDiv divides amount by divisor and rounds to the nearest integer,
// halves away from zero. It returns 0 when divisor is not positive.
func RoundDiv(amount int64, divisor int64) int64 {
	if divisor <= 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Div(decimal.NewFromInt(divisor)).
		Round(0).
		IntPart()
}

// Amortize returns the monthly share of baseAmount for bills that recur less
// often than monthly. It reports false for all other frequencies.
func Amortize(baseAmount int64, frequency entity.Frequency) (int64, bool) {
	months, ok := MonthsPerCycle(frequency)
	if !ok {
		return 0, false
	}
	return RoundDiv(baseAmount, int64(months)), true
}

// ToDecimal renders minor units as a decimal amount with two places.
func ToDecimal(minorUnits int64) decimal.Decimal {
	return decimal.New(minorUnits, -2)
}
