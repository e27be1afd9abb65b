// Package money implements integer minor-unit amounts. Amounts never pass
// through floating point; percentage math goes through shopspring/decimal
// and rounds half-up back to minor units.
package money

import "github.com/shopspring/decimal"

// Money is an amount in minor units (cents, kopecks, ...).
type Money int64

func (m Money) Add(other Money) Money {
	return m + other
}

// Sub may go negative; a negative balance means the period is overpaid.
func (m Money) Sub(other Money) Money {
	return m - other
}

// ClampZero floors the amount at zero. Display-only: stored amounts keep
// their sign.
func (m Money) ClampZero() Money {
	if m < 0 {
		return 0
	}
	return m
}

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsPositive() bool { return m > 0 }
func (m Money) IsNegative() bool { return m < 0 }

// MulPercent returns m × pct/100, rounded half-up to minor units.
func (m Money) MulPercent(pct decimal.Decimal) Money {
	result := decimal.NewFromInt(int64(m)).
		Mul(pct).
		Div(decimal.NewFromInt(100)).
		Round(0)
	return Money(result.IntPart())
}

// PercentFromBasisPoints converts stored basis points (1% = 100 bp) into a
// decimal percentage.
func PercentFromBasisPoints(bp int64) decimal.Decimal {
	return decimal.NewFromInt(bp).Div(decimal.NewFromInt(100))
}
