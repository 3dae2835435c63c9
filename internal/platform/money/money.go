package money

import (
	"github.com/shopspring/decimal"
)

// BasisPointsPerUnit is the number of basis points that make up 100%.
const BasisPointsPerUnit = 10_000

var bpsDivisor = decimal.NewFromInt(BasisPointsPerUnit)

// ApplyRate returns amount × bps / 10000, rounded half away from zero to the nearest minor unit.
func ApplyRate(amount, bps int64) int64 {
	if amount == 0 || bps == 0 {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(bps)).
		Div(bpsDivisor).
		Round(0).
		IntPart()
}

// Split divides amount into parts equal shares, rounded half away from zero.
// A non-positive parts count returns the amount unchanged.
func Split(amount int64, parts int) int64 {
	if parts <= 1 {
		return amount
	}
	return decimal.NewFromInt(amount).
		Div(decimal.NewFromInt(int64(parts))).
		Round(0).
		IntPart()
}

// FromMajor converts a major-unit decimal string such as "15.00" into minor units.
func FromMajor(value string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, err
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

// ToMajor converts minor units to a decimal in major units for presentation.
func ToMajor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
