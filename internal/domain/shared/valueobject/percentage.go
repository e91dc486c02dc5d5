package valueobject

import (
	"github.com/shopspring/decimal"
)

// Percentage is a value in [0, 100]
type Percentage struct {
	value decimal.Decimal
}

// NewPercentage creates a Percentage, rejecting values outside [0, 100]
func NewPercentage(value decimal.Decimal, field string) (Percentage, error) {
	if err := RequirePercent(field, value); err != nil {
		return Percentage{}, err
	}
	return Percentage{value: value}, nil
}

// ClampedPercentage creates a Percentage, clamping value into [0, 100]
func ClampedPercentage(value decimal.Decimal) Percentage {
	return Percentage{value: ClampPercent(value)}
}

// Value returns the percentage as a number between 0 and 100
func (p Percentage) Value() decimal.Decimal {
	return p.value
}

// Ratio returns the percentage as a fraction between 0 and 1
func (p Percentage) Ratio() decimal.Decimal {
	return p.value.Div(Hundred)
}

// Of returns p percent of amount, rounded to MoneyPrecision
func (p Percentage) Of(amount decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(p.value).Div(Hundred))
}

// IsZero returns true for 0%
func (p Percentage) IsZero() bool {
	return p.value.IsZero()
}

// IsComplete returns true for 100%
func (p Percentage) IsComplete() bool {
	return p.value.Equal(Hundred)
}

// String returns the percentage with a percent sign
func (p Percentage) String() string {
	return p.value.String() + "%"
}
