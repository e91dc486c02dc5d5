package evm

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is the read-only view of an EVM record served to reporting.
// Variances and indices are the cumulative ones.
type Snapshot struct {
	RecordID                uuid.UUID         `json:"record_id"`
	ControlAccountID        uuid.UUID         `json:"control_account_id"`
	DataDate                time.Time         `json:"data_date"`
	PeriodType              PeriodType        `json:"period_type"`
	PeriodNumber            int               `json:"period_number"`
	Year                    int               `json:"year"`
	PV                      decimal.Decimal   `json:"pv"`
	EV                      decimal.Decimal   `json:"ev"`
	AC                      decimal.Decimal   `json:"ac"`
	CumulativePV            decimal.Decimal   `json:"cumulative_pv"`
	CumulativeEV            decimal.Decimal   `json:"cumulative_ev"`
	CumulativeAC            decimal.Decimal   `json:"cumulative_ac"`
	BAC                     decimal.Decimal   `json:"bac"`
	CV                      decimal.Decimal   `json:"cv"`
	SV                      decimal.Decimal   `json:"sv"`
	CPI                     decimal.Decimal   `json:"cpi"`
	SPI                     decimal.Decimal   `json:"spi"`
	EAC                     decimal.Decimal   `json:"eac"`
	ETC                     decimal.Decimal   `json:"etc"`
	VAC                     decimal.Decimal   `json:"vac"`
	TCPI                    decimal.Decimal   `json:"tcpi"`
	TCPIDefined             bool              `json:"tcpi_defined"`
	Status                  PerformanceStatus `json:"status"`
	PercentComplete         decimal.Decimal   `json:"percent_complete"`
	EACMethod               EACMethod         `json:"eac_method"`
	EstimatedCompletionDate *time.Time        `json:"estimated_completion_date,omitempty"`
}

// EmptySnapshot is returned for a control account with no records; every value is zero
func EmptySnapshot(controlAccountID uuid.UUID) Snapshot {
	return Snapshot{
		ControlAccountID: controlAccountID,
		Status:           StatusOnTrack,
	}
}
