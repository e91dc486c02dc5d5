package evm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Variances holds cost and schedule variance
type Variances struct {
	CV decimal.Decimal
	SV decimal.Decimal
}

// Indices holds cost and schedule performance indices.
// A zero index means "no data yet", not zero performance.
type Indices struct {
	CPI decimal.Decimal
	SPI decimal.Decimal
}

// ComputeVariances returns CV = EV - AC and SV = EV - PV
func ComputeVariances(pv, ev, ac decimal.Decimal) Variances {
	return Variances{
		CV: ev.Sub(ac),
		SV: ev.Sub(pv),
	}
}

// ComputeIndices returns CPI = EV / AC and SPI = EV / PV, each zero when its divisor is zero
func ComputeIndices(pv, ev, ac decimal.Decimal) Indices {
	return Indices{
		CPI: valueobject.SafeDiv(ev, ac, valueobject.IndexPrecision),
		SPI: valueobject.SafeDiv(ev, pv, valueobject.IndexPrecision),
	}
}

// EstimateToComplete returns EAC - AC
func EstimateToComplete(eac, ac decimal.Decimal) decimal.Decimal {
	return eac.Sub(ac)
}

// VarianceAtCompletion returns BAC - EAC
func VarianceAtCompletion(bac, eac decimal.Decimal) decimal.Decimal {
	return bac.Sub(eac)
}

// ToCompletePerformanceIndex returns (BAC - EV) / (BAC - AC).
// ok is false when BAC equals AC and the index is undefined.
func ToCompletePerformanceIndex(bac, cumulativeEV, cumulativeAC decimal.Decimal) (tcpi decimal.Decimal, ok bool) {
	remainingFunds := bac.Sub(cumulativeAC)
	if remainingFunds.IsZero() {
		return decimal.Zero, false
	}
	return bac.Sub(cumulativeEV).DivRound(remainingFunds, valueobject.IndexPrecision), true
}

// PercentComplete returns EV / BAC x 100, or zero when BAC is zero
func PercentComplete(cumulativeEV, bac decimal.Decimal) decimal.Decimal {
	if !bac.IsPositive() {
		return decimal.Zero
	}
	return cumulativeEV.Mul(valueobject.Hundred).DivRound(bac, valueobject.PercentPrecision)
}

// MaxForecastDays bounds the completion date forecast to roughly 1000 years
// after the data date
const MaxForecastDays = 365_250

// ForecastCompletionDate projects the finish date as dataDate + remaining / SPI,
// where remaining is the whole number of planned days left after dataDate.
// The forecast is a calendar date in UTC, matching date storage columns.
// Returns nil when SPI is not positive or the forecast lies more than
// MaxForecastDays past dataDate.
func ForecastCompletionDate(dataDate, plannedFinish time.Time, spi decimal.Decimal) *time.Time {
	if !spi.IsPositive() {
		return nil
	}
	start, finish := calendarDate(dataDate), calendarDate(plannedFinish)
	remaining := int64(finish.Sub(start) / (24 * time.Hour))
	if remaining < 0 {
		remaining = 0
	}
	days := decimal.NewFromInt(remaining).DivRound(spi, 0)
	if days.GreaterThan(decimal.NewFromInt(MaxForecastDays)) {
		return nil
	}
	forecast := start.AddDate(0, 0, int(days.IntPart()))
	return &forecast
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Input is the raw progress and cost data for one reporting period
type Input struct {
	PV           decimal.Decimal
	EV           decimal.Decimal
	AC           decimal.Decimal
	CumulativePV decimal.Decimal
	CumulativeEV decimal.Decimal
	CumulativeAC decimal.Decimal
	BAC          decimal.Decimal

	DataDate time.Time
	// PlannedFinishDate enables the completion date forecast when set
	PlannedFinishDate *time.Time
}

// Result holds every derived performance field for an Input
type Result struct {
	Period     Variances
	PeriodIdx  Indices
	Cumulative Variances
	CumIdx     Indices

	EAC         decimal.Decimal
	ETC         decimal.Decimal
	VAC         decimal.Decimal
	TCPI        decimal.Decimal
	TCPIDefined bool

	PercentComplete         decimal.Decimal
	Status                  PerformanceStatus
	EACMethod               EACMethod
	EstimatedCompletionDate *time.Time
}

// ValidationPolicy holds the optional validation rules of the calculator
type ValidationPolicy struct {
	// RejectEVAbovePV rejects periods whose EV exceeds PV.
	// Off by default: earning ahead of plan is legal.
	RejectEVAbovePV bool
}

// Calculator derives EVM results from inputs. It holds no mutable state and
// is safe for concurrent use.
type Calculator struct {
	eac        EACStrategy
	thresholds StatusThresholds
	policy     ValidationPolicy
}

// CalculatorOption configures a Calculator
type CalculatorOption func(*Calculator)

// WithEACStrategy sets the EAC forecasting strategy
func WithEACStrategy(s EACStrategy) CalculatorOption {
	return func(c *Calculator) {
		if s != nil {
			c.eac = s
		}
	}
}

// WithThresholds sets the status classification thresholds
func WithThresholds(t StatusThresholds) CalculatorOption {
	return func(c *Calculator) {
		if len(t.Levels) > 0 {
			c.thresholds = t
		}
	}
}

// WithValidationPolicy sets the optional validation rules
func WithValidationPolicy(p ValidationPolicy) CalculatorOption {
	return func(c *Calculator) {
		c.policy = p
	}
}

// NewCalculator creates a calculator using the CPI strategy and graduated
// thresholds unless overridden
func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		eac:        CPIStrategy(),
		thresholds: GraduatedThresholds(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EACStrategy returns the configured EAC strategy
func (c *Calculator) EACStrategy() EACStrategy {
	return c.eac
}

// Thresholds returns the configured status thresholds
func (c *Calculator) Thresholds() StatusThresholds {
	return c.thresholds
}

// Policy returns the configured validation policy
func (c *Calculator) Policy() ValidationPolicy {
	return c.policy
}

// Validate checks in against the calculator rules without computing anything
func (c *Calculator) Validate(in Input) error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"pv", in.PV},
		{"ev", in.EV},
		{"ac", in.AC},
		{"cumulative_pv", in.CumulativePV},
		{"cumulative_ev", in.CumulativeEV},
		{"cumulative_ac", in.CumulativeAC},
		{"bac", in.BAC},
	}
	for _, f := range fields {
		if err := valueobject.RequireNonNegative(f.name, f.value); err != nil {
			return err.WithEntity(AggregateTypeEVMRecord, uuid.Nil)
		}
	}

	for _, pair := range []struct {
		name        string
		period, cum decimal.Decimal
	}{
		{"pv", in.PV, in.CumulativePV},
		{"ev", in.EV, in.CumulativeEV},
		{"ac", in.AC, in.CumulativeAC},
	} {
		if pair.cum.LessThan(pair.period) {
			return shared.NewInvariantViolationError(AggregateTypeEVMRecord, uuid.Nil, "CUMULATIVE_BELOW_PERIOD",
				fmt.Sprintf("cumulative %s (%s) cannot be less than period %s (%s)", pair.name, pair.cum, pair.name, pair.period),
				"cumulative_"+pair.name, pair.name)
		}
	}

	if in.CumulativeEV.GreaterThan(in.BAC) {
		return shared.NewInvariantViolationError(AggregateTypeEVMRecord, uuid.Nil, "CUMULATIVE_EV_EXCEEDS_BAC",
			fmt.Sprintf("cumulative EV (%s) cannot exceed BAC (%s)", in.CumulativeEV, in.BAC),
			"cumulative_ev", "bac")
	}

	if c.policy.RejectEVAbovePV && in.EV.GreaterThan(in.PV) {
		return shared.NewInvariantViolationError(AggregateTypeEVMRecord, uuid.Nil, "EV_EXCEEDS_PV",
			fmt.Sprintf("period EV (%s) cannot exceed period PV (%s)", in.EV, in.PV),
			"ev", "pv")
	}
	return nil
}

// Calculate validates in and derives every performance field
func (c *Calculator) Calculate(in Input) (Result, error) {
	if err := c.Validate(in); err != nil {
		return Result{}, err
	}

	cum := ComputeIndices(in.CumulativePV, in.CumulativeEV, in.CumulativeAC)
	eac := c.eac.Estimate(EACInput{
		BAC:          in.BAC,
		CumulativeEV: in.CumulativeEV,
		CumulativeAC: in.CumulativeAC,
		CPI:          cum.CPI,
		SPI:          cum.SPI,
	})
	tcpi, tcpiOK := ToCompletePerformanceIndex(in.BAC, in.CumulativeEV, in.CumulativeAC)

	res := Result{
		Period:          ComputeVariances(in.PV, in.EV, in.AC),
		PeriodIdx:       ComputeIndices(in.PV, in.EV, in.AC),
		Cumulative:      ComputeVariances(in.CumulativePV, in.CumulativeEV, in.CumulativeAC),
		CumIdx:          cum,
		EAC:             eac,
		ETC:             EstimateToComplete(eac, in.CumulativeAC),
		VAC:             VarianceAtCompletion(in.BAC, eac),
		TCPI:            tcpi,
		TCPIDefined:     tcpiOK,
		PercentComplete: PercentComplete(in.CumulativeEV, in.BAC),
		EACMethod:       c.eac.Method(),
	}

	// nothing planned or spent yet: no basis for a health judgement
	if in.CumulativePV.IsZero() && in.CumulativeAC.IsZero() {
		res.Status = StatusOnTrack
	} else {
		res.Status = ClassifyStatus(cum.CPI, cum.SPI, c.thresholds)
	}

	if in.PlannedFinishDate != nil && !in.DataDate.IsZero() {
		res.EstimatedCompletionDate = ForecastCompletionDate(in.DataDate, *in.PlannedFinishDate, cum.SPI)
	}
	return res, nil
}
