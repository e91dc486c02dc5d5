package evm

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/application/common"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/shopspring/decimal"
)

// RecordPeriodRequest is the progress and cost data of one reporting period.
// Cumulative values default to the previous record's cumulative values plus
// this period's values; BAC defaults to the control account's BAC.
type RecordPeriodRequest struct {
	ControlAccountID  uuid.UUID        `json:"control_account_id" validate:"required"`
	DataDate          time.Time        `json:"data_date" validate:"required"`
	PeriodType        evm.PeriodType   `json:"period_type" validate:"required"`
	PeriodNumber      int              `json:"period_number" validate:"required,min=1"`
	Year              int              `json:"year" validate:"required,min=1900,max=9999"`
	PV                decimal.Decimal  `json:"pv" validate:"gte=0"`
	EV                decimal.Decimal  `json:"ev" validate:"gte=0"`
	AC                decimal.Decimal  `json:"ac" validate:"gte=0"`
	CumulativePV      *decimal.Decimal `json:"cumulative_pv" validate:"omitempty,gte=0"`
	CumulativeEV      *decimal.Decimal `json:"cumulative_ev" validate:"omitempty,gte=0"`
	CumulativeAC      *decimal.Decimal `json:"cumulative_ac" validate:"omitempty,gte=0"`
	BAC               *decimal.Decimal `json:"bac" validate:"omitempty,gte=0"`
	PlannedFinishDate *time.Time       `json:"planned_finish_date"`
	Comments          string           `json:"comments" validate:"max=2000"`
}

// CorrectRecordRequest replaces the cumulative values of a record
type CorrectRecordRequest struct {
	CumulativePV decimal.Decimal `json:"cumulative_pv" validate:"gte=0"`
	CumulativeEV decimal.Decimal `json:"cumulative_ev" validate:"gte=0"`
	CumulativeAC decimal.Decimal `json:"cumulative_ac" validate:"gte=0"`
	Comments     *string         `json:"comments" validate:"omitempty,max=2000"`
}

// RecordListFilter filters the records of a control account
type RecordListFilter struct {
	common.ListFilter
	PeriodType *evm.PeriodType `json:"period_type"`
	Year       *int            `json:"year"`
}

// RecordResponse is an EVM record with its audit fields
type RecordResponse struct {
	evm.Snapshot
	PeriodCV          decimal.Decimal `json:"period_cv"`
	PeriodSV          decimal.Decimal `json:"period_sv"`
	PeriodCPI         decimal.Decimal `json:"period_cpi"`
	PeriodSPI         decimal.Decimal `json:"period_spi"`
	PlannedFinishDate *time.Time      `json:"planned_finish_date,omitempty"`
	Comments          string          `json:"comments,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToRecordResponse converts a record to its response
func ToRecordResponse(r *evm.EVMRecord) RecordResponse {
	return RecordResponse{
		Snapshot:          r.Snapshot(),
		PeriodCV:          r.CV,
		PeriodSV:          r.SV,
		PeriodCPI:         r.CPI,
		PeriodSPI:         r.SPI,
		PlannedFinishDate: r.PlannedFinishDate,
		Comments:          r.Comments,
		Version:           r.Version,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

// ToRecordResponses converts records to responses
func ToRecordResponses(records []evm.EVMRecord) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i := range records {
		out[i] = ToRecordResponse(&records[i])
	}
	return out
}

// DriftEntry names a record whose stored derived fields differ from a recalculation
type DriftEntry struct {
	RecordID         uuid.UUID      `json:"record_id"`
	ControlAccountID uuid.UUID      `json:"control_account_id"`
	PeriodType       evm.PeriodType `json:"period_type"`
	Year             int            `json:"year"`
	PeriodNumber     int            `json:"period_number"`
	Fields           []string       `json:"fields"`
	Applied          bool           `json:"applied"`
	Error            string         `json:"error,omitempty"`
}

// RecalculationReport summarizes a recalculation run
type RecalculationReport struct {
	TenantID uuid.UUID     `json:"tenant_id"`
	Scanned  int           `json:"scanned"`
	Drifted  []DriftEntry  `json:"drifted"`
	Applied  int           `json:"applied"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}
