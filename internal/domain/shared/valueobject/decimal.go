package valueobject

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Rounding precisions. All rounding is half-up (decimal.Round / DivRound).
const (
	// MoneyPrecision matches decimal(18,4) storage columns
	MoneyPrecision int32 = 4
	// IndexPrecision is used for CPI, SPI and TCPI ratios and matches decimal(18,8) columns
	IndexPrecision int32 = 8
	// PercentPrecision is used for percent-complete values
	PercentPrecision int32 = 2
)

var (
	// Hundred is 100 as a decimal
	Hundred = decimal.NewFromInt(100)
)

// RoundMoney rounds an amount to MoneyPrecision
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPrecision)
}

// RoundPercent rounds a percentage to PercentPrecision
func RoundPercent(d decimal.Decimal) decimal.Decimal {
	return d.Round(PercentPrecision)
}

// SafeDiv divides a by b rounding half-up to places, returning zero when b is zero.
// Zero is the "no data yet" signal used by the performance indices.
func SafeDiv(a, b decimal.Decimal, places int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, places)
}

// RequireNonNegative returns a validation error if d is negative
func RequireNonNegative(field string, d decimal.Decimal) *shared.DomainError {
	if d.IsNegative() {
		return shared.NewValidationError("", uuid.Nil, "NEGATIVE_VALUE",
			fmt.Sprintf("%s cannot be negative (got %s)", field, d.String()), field)
	}
	return nil
}

// RequirePositive returns a validation error if d is zero or negative
func RequirePositive(field string, d decimal.Decimal) *shared.DomainError {
	if !d.IsPositive() {
		return shared.NewValidationError("", uuid.Nil, "NON_POSITIVE_VALUE",
			fmt.Sprintf("%s must be positive (got %s)", field, d.String()), field)
	}
	return nil
}

// RequirePercent returns a validation error if d is outside [0, 100]
func RequirePercent(field string, d decimal.Decimal) *shared.DomainError {
	if d.IsNegative() || d.GreaterThan(Hundred) {
		return shared.NewValidationError("", uuid.Nil, "PERCENT_OUT_OF_RANGE",
			fmt.Sprintf("%s must be between 0 and 100 (got %s)", field, d.String()), field)
	}
	return nil
}

// ClampPercent limits d to [0, 100]
func ClampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(Hundred) {
		return Hundred
	}
	return d
}

// NonNegative returns d, or zero when d is negative
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds all values
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
