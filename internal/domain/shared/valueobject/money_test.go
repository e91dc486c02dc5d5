package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.50"), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.50")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", EUR)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", EUR)
		assert.Error(t, err)
	})
}

func TestNewNonNegativeMoney(t *testing.T) {
	_, err := NewNonNegativeMoney(decimal.NewFromInt(-1), USD, "bac")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bac cannot be negative")

	m, err := NewNonNegativeMoney(decimal.Zero, USD, "bac")
	require.NoError(t, err)
	assert.True(t, m.IsZero())
}

func TestCurrency_IsValid(t *testing.T) {
	assert.True(t, USD.IsValid())
	assert.True(t, Currency("CLP").IsValid())
	assert.False(t, Currency("usd").IsValid())
	assert.False(t, Currency("US").IsValid())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		m1, _ := NewMoneyFromString("100.50", USD)
		m2, _ := NewMoneyFromString("50.25", USD)
		result, err := m1.Add(m2)
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.RequireFromString("150.75")))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		m1, _ := NewMoneyFromInt(100, USD)
		m2, _ := NewMoneyFromInt(50, EUR)
		_, err := m1.Add(m2)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})
}

func TestMoneySubtract(t *testing.T) {
	m1, _ := NewMoneyFromInt(100, USD)
	m2, _ := NewMoneyFromInt(130, USD)
	result, err := m1.Subtract(m2)
	require.NoError(t, err)
	assert.True(t, result.IsNegative())
	assert.True(t, result.Amount().Equal(decimal.NewFromInt(-30)))
}

func TestMoneyMultiplyRoundsToMoneyPrecision(t *testing.T) {
	m, _ := NewMoneyFromString("10", USD)
	result := m.Multiply(decimal.RequireFromString("0.333333"))
	assert.Equal(t, "3.3333", result.Amount().String())
}

func TestMoneyPercent(t *testing.T) {
	m, _ := NewMoneyFromInt(900, USD)
	pct, err := NewPercentage(decimal.NewFromInt(8), "tax_rate")
	require.NoError(t, err)
	assert.True(t, m.Percent(pct).Amount().Equal(decimal.NewFromInt(72)))
}

func TestMoneyComparisons(t *testing.T) {
	small, _ := NewMoneyFromInt(10, USD)
	big, _ := NewMoneyFromInt(20, USD)
	other, _ := NewMoneyFromInt(20, EUR)

	lt, err := small.LessThan(big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := big.GreaterThan(small)
	require.NoError(t, err)
	assert.True(t, gt)

	_, err = big.GreaterThan(other)
	assert.Error(t, err)
	assert.False(t, big.Equals(other))
}

func TestMoneyString(t *testing.T) {
	m, _ := NewMoneyFromString("99.5", USD)
	assert.Equal(t, "99.50 USD", m.String())
}

func TestMoneyJSON(t *testing.T) {
	m, _ := NewMoneyFromString("1234.56", EUR)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1234.56","currency":"EUR"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))

	err = json.Unmarshal([]byte(`{"amount":"1","currency":""}`), &decoded)
	assert.Error(t, err)
}
