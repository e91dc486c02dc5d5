package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPercentage(t *testing.T) {
	t.Run("accepts bounds", func(t *testing.T) {
		zero, err := NewPercentage(decimal.Zero, "complete")
		require.NoError(t, err)
		assert.True(t, zero.IsZero())

		full, err := NewPercentage(Hundred, "complete")
		require.NoError(t, err)
		assert.True(t, full.IsComplete())
	})

	t.Run("rejects out of range", func(t *testing.T) {
		_, err := NewPercentage(decimal.NewFromInt(101), "complete")
		assert.Error(t, err)
		_, err = NewPercentage(decimal.NewFromInt(-1), "complete")
		assert.Error(t, err)
	})
}

func TestPercentageArithmetic(t *testing.T) {
	p := ClampedPercentage(decimal.RequireFromString("12.5"))
	assert.True(t, p.Ratio().Equal(decimal.RequireFromString("0.125")))
	assert.True(t, p.Of(decimal.NewFromInt(1000)).Equal(decimal.NewFromInt(125)))
	assert.Equal(t, "12.5%", p.String())

	assert.True(t, ClampedPercentage(decimal.NewFromInt(250)).IsComplete())
}
