package evm

import (
	"fmt"

	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EACMethod identifies the formula used to forecast the estimate at completion
type EACMethod string

const (
	// EACMethodCPI is BAC / CPI (the default)
	EACMethodCPI EACMethod = "CPI"
	// EACMethodAdditive is AC + (BAC - EV): remaining work at budgeted rates
	EACMethodAdditive EACMethod = "ADDITIVE"
	// EACMethodComposite is AC + (BAC - EV) / (CPI x SPI)
	EACMethodComposite EACMethod = "COMPOSITE"
)

// IsValid checks if the method is known
func (m EACMethod) IsValid() bool {
	switch m {
	case EACMethodCPI, EACMethodAdditive, EACMethodComposite:
		return true
	}
	return false
}

// String returns the string representation of EACMethod
func (m EACMethod) String() string {
	return string(m)
}

// EACInput holds the cumulative values an EAC strategy may use
type EACInput struct {
	BAC          decimal.Decimal
	CumulativeEV decimal.Decimal
	CumulativeAC decimal.Decimal
	CPI          decimal.Decimal
	SPI          decimal.Decimal
}

// EACStrategy forecasts the estimate at completion
type EACStrategy interface {
	// Method returns the identifier stored on records
	Method() EACMethod
	// Description returns a human-readable description
	Description() string
	// Estimate returns the estimate at completion, rounded to money precision
	Estimate(in EACInput) decimal.Decimal
}

// EstimateAtCompletion is the default formula: BAC / CPI when CPI > 0, else BAC
func EstimateAtCompletion(bac, cpi decimal.Decimal) decimal.Decimal {
	if !cpi.IsPositive() {
		return bac
	}
	return bac.DivRound(cpi, valueobject.MoneyPrecision)
}

type cpiStrategy struct{}

func (cpiStrategy) Method() EACMethod { return EACMethodCPI }
func (cpiStrategy) Description() string {
	return "BAC / CPI: current cost efficiency continues for the remaining work"
}
func (cpiStrategy) Estimate(in EACInput) decimal.Decimal {
	return EstimateAtCompletion(in.BAC, in.CPI)
}

type additiveStrategy struct{}

func (additiveStrategy) Method() EACMethod { return EACMethodAdditive }
func (additiveStrategy) Description() string {
	return "AC + (BAC - EV): remaining work is performed at the budgeted rate"
}
func (additiveStrategy) Estimate(in EACInput) decimal.Decimal {
	return valueobject.RoundMoney(in.CumulativeAC.Add(in.BAC.Sub(in.CumulativeEV)))
}

type compositeStrategy struct{}

func (compositeStrategy) Method() EACMethod { return EACMethodComposite }
func (compositeStrategy) Description() string {
	return "AC + (BAC - EV) / (CPI x SPI): cost and schedule performance both influence the remaining work"
}
func (compositeStrategy) Estimate(in EACInput) decimal.Decimal {
	factor := in.CPI.Mul(in.SPI)
	if !factor.IsPositive() {
		return EstimateAtCompletion(in.BAC, in.CPI)
	}
	remaining := in.BAC.Sub(in.CumulativeEV).DivRound(factor, valueobject.MoneyPrecision)
	return in.CumulativeAC.Add(remaining)
}

// CPIStrategy returns the default BAC / CPI strategy
func CPIStrategy() EACStrategy { return cpiStrategy{} }

// AdditiveStrategy returns the AC + (BAC - EV) strategy
func AdditiveStrategy() EACStrategy { return additiveStrategy{} }

// CompositeStrategy returns the CPI x SPI weighted strategy
func CompositeStrategy() EACStrategy { return compositeStrategy{} }

// StrategyFor returns the strategy implementing method
func StrategyFor(method EACMethod) (EACStrategy, error) {
	switch method {
	case EACMethodCPI, "":
		return cpiStrategy{}, nil
	case EACMethodAdditive:
		return additiveStrategy{}, nil
	case EACMethodComposite:
		return compositeStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown EAC method %q", method)
}
