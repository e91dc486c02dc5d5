package evm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEACStrategies(t *testing.T) {
	in := EACInput{
		BAC:          d("100000"),
		CumulativeEV: d("35000"),
		CumulativeAC: d("38000"),
		CPI:          d("0.92105263"),
		SPI:          d("0.875"),
	}

	tests := []struct {
		strategy EACStrategy
		method   EACMethod
		want     string
	}{
		{CPIStrategy(), EACMethodCPI, "108571.4288"},
		{AdditiveStrategy(), EACMethodAdditive, "103000"},
		// 38,000 + 65,000 / 0.80592105125
		{CompositeStrategy(), EACMethodComposite, "118653.0614"},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.method, tt.strategy.Method())
			assert.NotEmpty(t, tt.strategy.Description())
			got := tt.strategy.Estimate(in)
			assert.True(t, got.Equal(d(tt.want)), "EAC = %s, want %s", got, tt.want)
		})
	}
}

func TestCompositeStrategy_FallsBackWithoutScheduleData(t *testing.T) {
	in := EACInput{
		BAC:          d("1000"),
		CumulativeEV: d("100"),
		CumulativeAC: d("200"),
		CPI:          d("0.5"),
		SPI:          decimal.Zero,
	}
	assert.True(t, CompositeStrategy().Estimate(in).Equal(d("2000")))
}

func TestStrategyFor(t *testing.T) {
	for _, m := range []EACMethod{EACMethodCPI, EACMethodAdditive, EACMethodComposite} {
		s, err := StrategyFor(m)
		require.NoError(t, err)
		assert.Equal(t, m, s.Method())
		assert.True(t, m.IsValid())
	}

	s, err := StrategyFor("")
	require.NoError(t, err)
	assert.Equal(t, EACMethodCPI, s.Method())

	_, err = StrategyFor("MONTE_CARLO")
	assert.Error(t, err)
	assert.False(t, EACMethod("MONTE_CARLO").IsValid())
}
