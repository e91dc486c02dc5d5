package controlaccount

import (
	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/shopspring/decimal"
)

// Performance joins a control account with its EVM records.
// All getters read the most recent record by data date and return zero when
// there is none; zero means "no data", not zero performance.
type Performance struct {
	account *ControlAccount
	latest  *evm.EVMRecord
}

// NewPerformance creates the performance view of account over records
func NewPerformance(account *ControlAccount, records []evm.EVMRecord) *Performance {
	return &Performance{
		account: account,
		latest:  evm.Latest(records),
	}
}

// HasData returns true if at least one EVM record exists
func (p *Performance) HasData() bool {
	return p.latest != nil
}

// Latest returns the current EVM record, or nil
func (p *Performance) Latest() *evm.EVMRecord {
	return p.latest
}

// GetActualCost returns the cumulative AC of the current record
func (p *Performance) GetActualCost() decimal.Decimal {
	if p.latest == nil {
		return decimal.Zero
	}
	return p.latest.CumulativeAC
}

// GetEarnedValue returns the cumulative EV of the current record
func (p *Performance) GetEarnedValue() decimal.Decimal {
	if p.latest == nil {
		return decimal.Zero
	}
	return p.latest.CumulativeEV
}

// GetPlannedValue returns the cumulative PV of the current record
func (p *Performance) GetPlannedValue() decimal.Decimal {
	if p.latest == nil {
		return decimal.Zero
	}
	return p.latest.CumulativePV
}

// GetCPI returns the cumulative CPI of the current record
func (p *Performance) GetCPI() decimal.Decimal {
	if p.latest == nil {
		return decimal.Zero
	}
	return p.latest.CumulativeCPI
}

// GetSPI returns the cumulative SPI of the current record
func (p *Performance) GetSPI() decimal.Decimal {
	if p.latest == nil {
		return decimal.Zero
	}
	return p.latest.CumulativeSPI
}

// Metrics is the read-only performance projection of a control account
type Metrics struct {
	ControlAccountID uuid.UUID             `json:"control_account_id"`
	Code             string                `json:"code"`
	Status           Status                `json:"status"`
	BAC              decimal.Decimal       `json:"bac"`
	TotalBudget      decimal.Decimal       `json:"total_budget"`
	PercentComplete  decimal.Decimal       `json:"percent_complete"`
	HasData          bool                  `json:"has_data"`
	PV               decimal.Decimal       `json:"pv"`
	EV               decimal.Decimal       `json:"ev"`
	AC               decimal.Decimal       `json:"ac"`
	CPI              decimal.Decimal       `json:"cpi"`
	SPI              decimal.Decimal       `json:"spi"`
	EAC              decimal.Decimal       `json:"eac"`
	VAC              decimal.Decimal       `json:"vac"`
	Health           evm.PerformanceStatus `json:"health"`
}

// Metrics returns the performance projection
func (p *Performance) Metrics() Metrics {
	m := Metrics{
		ControlAccountID: p.account.ID,
		Code:             p.account.Code,
		Status:           p.account.Status,
		BAC:              p.account.BAC,
		TotalBudget:      p.account.TotalBudget(),
		PercentComplete:  p.account.PercentComplete,
		HasData:          p.HasData(),
		PV:               p.GetPlannedValue(),
		EV:               p.GetEarnedValue(),
		AC:               p.GetActualCost(),
		CPI:              p.GetCPI(),
		SPI:              p.GetSPI(),
		EAC:              p.account.BAC,
		Health:           evm.StatusOnTrack,
	}
	if p.latest != nil {
		m.EAC = p.latest.EAC
		m.VAC = p.latest.VAC
		m.Health = p.latest.Status
	}
	return m
}
