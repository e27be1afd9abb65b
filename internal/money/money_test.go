package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSubKeepsSign(t *testing.T) {
	collected := Money(120_000)
	expected := Money(100_000)

	balance := expected.Sub(collected)
	assert.Equal(t, Money(-20_000), balance)
	assert.True(t, balance.IsNegative())
	assert.Equal(t, Money(0), balance.ClampZero())
}

func TestMulPercent(t *testing.T) {
	tests := []struct {
		name   string
		amount Money
		pct    string
		want   Money
	}{
		{"ten percent", 100_000, "10", 10_000},
		{"fractional percent", 100_000, "12.5", 12_500},
		{"rounds half up", 333, "10", 33},
		{"rounds up at half", 335, "10", 34},
		{"zero amount", 0, "25", 0},
		{"zero percent", 100_000, "0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct, err := decimal.NewFromString(tt.pct)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, tt.amount.MulPercent(pct))
		})
	}
}

func TestPercentFromBasisPoints(t *testing.T) {
	assert.True(t, PercentFromBasisPoints(1000).Equal(decimal.NewFromInt(10)))
	assert.True(t, PercentFromBasisPoints(1250).Equal(decimal.RequireFromString("12.5")))

	// 1000 bp of 100 000 minor units is 10 000.
	assert.Equal(t, Money(10_000), Money(100_000).MulPercent(PercentFromBasisPoints(1000)))
}
