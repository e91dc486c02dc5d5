package evm

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	minRecordYear = 1900
	maxRecordYear = 9999
)

// EVMRecord is a dated performance snapshot for one control account and one
// reporting period. It is created once per period; corrections go through
// UpdateCumulative, which recomputes every derived field.
type EVMRecord struct {
	shared.TenantAggregateRoot
	ControlAccountID uuid.UUID
	DataDate         time.Time
	PeriodType       PeriodType
	PeriodNumber     int
	Year             int

	PV           decimal.Decimal
	EV           decimal.Decimal
	AC           decimal.Decimal
	CumulativePV decimal.Decimal
	CumulativeEV decimal.Decimal
	CumulativeAC decimal.Decimal
	BAC          decimal.Decimal

	CV            decimal.Decimal
	SV            decimal.Decimal
	CPI           decimal.Decimal
	SPI           decimal.Decimal
	CumulativeCV  decimal.Decimal
	CumulativeSV  decimal.Decimal
	CumulativeCPI decimal.Decimal
	CumulativeSPI decimal.Decimal

	EAC         decimal.Decimal
	ETC         decimal.Decimal
	VAC         decimal.Decimal
	TCPI        decimal.Decimal
	TCPIDefined bool

	Status                  PerformanceStatus
	PercentComplete         decimal.Decimal
	EACMethod               EACMethod
	PlannedFinishDate       *time.Time
	EstimatedCompletionDate *time.Time
	Comments                string
}

// NewRecordParams holds the inputs for a new EVM record
type NewRecordParams struct {
	ControlAccountID  uuid.UUID
	DataDate          time.Time
	PeriodType        PeriodType
	PeriodNumber      int
	Year              int
	PV                decimal.Decimal
	EV                decimal.Decimal
	AC                decimal.Decimal
	CumulativePV      decimal.Decimal
	CumulativeEV      decimal.Decimal
	CumulativeAC      decimal.Decimal
	BAC               decimal.Decimal
	PlannedFinishDate *time.Time
	Comments          string
}

// NewEVMRecord validates params, derives the performance fields and returns the record
func NewEVMRecord(tenantID uuid.UUID, p NewRecordParams, calc *Calculator, actor shared.Principal) (*EVMRecord, error) {
	if p.ControlAccountID == uuid.Nil {
		return nil, shared.NewValidationError(AggregateTypeEVMRecord, uuid.Nil, "INVALID_CONTROL_ACCOUNT",
			"Control account ID cannot be empty", "control_account_id")
	}
	if p.DataDate.IsZero() {
		return nil, shared.NewValidationError(AggregateTypeEVMRecord, uuid.Nil, "INVALID_DATA_DATE",
			"Data date is required", "data_date")
	}
	if !p.PeriodType.IsValid() {
		return nil, shared.NewValidationError(AggregateTypeEVMRecord, uuid.Nil, "INVALID_PERIOD_TYPE",
			fmt.Sprintf("Invalid period type: %s", p.PeriodType), "period_type")
	}
	if !p.PeriodType.IsValidPeriodNumber(p.PeriodNumber) {
		return nil, shared.NewValidationError(AggregateTypeEVMRecord, uuid.Nil, "INVALID_PERIOD_NUMBER",
			fmt.Sprintf("Period number %d is out of range for %s periods (1-%d)", p.PeriodNumber, p.PeriodType, p.PeriodType.MaxPeriodNumber()),
			"period_number")
	}
	if p.Year < minRecordYear || p.Year > maxRecordYear {
		return nil, shared.NewValidationError(AggregateTypeEVMRecord, uuid.Nil, "INVALID_YEAR",
			fmt.Sprintf("Year %d is out of range", p.Year), "year")
	}
	if calc == nil {
		calc = NewCalculator()
	}

	r := &EVMRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, actor),
		ControlAccountID:    p.ControlAccountID,
		DataDate:            p.DataDate,
		PeriodType:          p.PeriodType,
		PeriodNumber:        p.PeriodNumber,
		Year:                p.Year,
		PV:                  p.PV,
		EV:                  p.EV,
		AC:                  p.AC,
		CumulativePV:        p.CumulativePV,
		CumulativeEV:        p.CumulativeEV,
		CumulativeAC:        p.CumulativeAC,
		BAC:                 p.BAC,
		PlannedFinishDate:   p.PlannedFinishDate,
		Comments:            p.Comments,
	}

	res, err := calc.Calculate(r.Input())
	if err != nil {
		return nil, bindRecord(err, r.ID)
	}
	r.apply(res)

	r.AddDomainEvent(NewEVMRecordCreatedEvent(r, actor))
	return r, nil
}

// Input returns the calculator input stored on the record
func (r *EVMRecord) Input() Input {
	return Input{
		PV:                r.PV,
		EV:                r.EV,
		AC:                r.AC,
		CumulativePV:      r.CumulativePV,
		CumulativeEV:      r.CumulativeEV,
		CumulativeAC:      r.CumulativeAC,
		BAC:               r.BAC,
		DataDate:          r.DataDate,
		PlannedFinishDate: r.PlannedFinishDate,
	}
}

// UpdateCumulative replaces the cumulative values of the record and recomputes
// every derived field. The record is left unchanged when validation fails.
func (r *EVMRecord) UpdateCumulative(cumulativePV, cumulativeEV, cumulativeAC decimal.Decimal, calc *Calculator, actor shared.Principal) error {
	if calc == nil {
		calc = NewCalculator()
	}
	in := r.Input()
	in.CumulativePV = cumulativePV
	in.CumulativeEV = cumulativeEV
	in.CumulativeAC = cumulativeAC

	res, err := calc.Calculate(in)
	if err != nil {
		return bindRecord(err, r.ID)
	}

	previous := r.cumulative()
	r.CumulativePV = cumulativePV
	r.CumulativeEV = cumulativeEV
	r.CumulativeAC = cumulativeAC
	r.apply(res)
	r.Touch(actor)

	r.AddDomainEvent(NewEVMRecordCorrectedEvent(r, previous, actor))
	return nil
}

// Recalculate recomputes the derived fields with calc, keeping every input.
// Used when the EAC method or thresholds change.
func (r *EVMRecord) Recalculate(calc *Calculator, actor shared.Principal) error {
	return r.UpdateCumulative(r.CumulativePV, r.CumulativeEV, r.CumulativeAC, calc, actor)
}

// SetComments replaces the free-text comments
func (r *EVMRecord) SetComments(comments string, actor shared.Principal) {
	r.Comments = comments
	r.Touch(actor)
}

// Drift returns the names of stored derived fields that differ from a fresh
// computation with calc. Empty means the record is consistent.
func (r *EVMRecord) Drift(calc *Calculator) ([]string, error) {
	if calc == nil {
		calc = NewCalculator()
	}
	res, err := calc.Calculate(r.Input())
	if err != nil {
		return nil, bindRecord(err, r.ID)
	}

	var drift []string
	check := func(name string, stored, fresh decimal.Decimal) {
		if !stored.Equal(fresh) {
			drift = append(drift, name)
		}
	}
	check("cv", r.CV, res.Period.CV)
	check("sv", r.SV, res.Period.SV)
	check("cpi", r.CPI, res.PeriodIdx.CPI)
	check("spi", r.SPI, res.PeriodIdx.SPI)
	check("cumulative_cv", r.CumulativeCV, res.Cumulative.CV)
	check("cumulative_sv", r.CumulativeSV, res.Cumulative.SV)
	check("cumulative_cpi", r.CumulativeCPI, res.CumIdx.CPI)
	check("cumulative_spi", r.CumulativeSPI, res.CumIdx.SPI)
	check("eac", r.EAC, res.EAC)
	check("etc", r.ETC, res.ETC)
	check("vac", r.VAC, res.VAC)
	check("tcpi", r.TCPI, res.TCPI)
	check("percent_complete", r.PercentComplete, res.PercentComplete)
	if r.TCPIDefined != res.TCPIDefined {
		drift = append(drift, "tcpi_defined")
	}
	if r.Status != res.Status {
		drift = append(drift, "status")
	}
	if r.EACMethod != res.EACMethod {
		drift = append(drift, "eac_method")
	}
	if !sameDate(r.EstimatedCompletionDate, res.EstimatedCompletionDate) {
		drift = append(drift, "estimated_completion_date")
	}
	return drift, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return calendarDate(*a).Equal(calendarDate(*b))
}

// Snapshot returns the read-only projection of the record
func (r *EVMRecord) Snapshot() Snapshot {
	return Snapshot{
		RecordID:                r.ID,
		ControlAccountID:        r.ControlAccountID,
		DataDate:                r.DataDate,
		PeriodType:              r.PeriodType,
		PeriodNumber:            r.PeriodNumber,
		Year:                    r.Year,
		PV:                      r.PV,
		EV:                      r.EV,
		AC:                      r.AC,
		CumulativePV:            r.CumulativePV,
		CumulativeEV:            r.CumulativeEV,
		CumulativeAC:            r.CumulativeAC,
		BAC:                     r.BAC,
		CV:                      r.CumulativeCV,
		SV:                      r.CumulativeSV,
		CPI:                     r.CumulativeCPI,
		SPI:                     r.CumulativeSPI,
		EAC:                     r.EAC,
		ETC:                     r.ETC,
		VAC:                     r.VAC,
		TCPI:                    r.TCPI,
		TCPIDefined:             r.TCPIDefined,
		Status:                  r.Status,
		PercentComplete:         r.PercentComplete,
		EACMethod:               r.EACMethod,
		EstimatedCompletionDate: r.EstimatedCompletionDate,
	}
}

func (r *EVMRecord) apply(res Result) {
	r.CV = res.Period.CV
	r.SV = res.Period.SV
	r.CPI = res.PeriodIdx.CPI
	r.SPI = res.PeriodIdx.SPI
	r.CumulativeCV = res.Cumulative.CV
	r.CumulativeSV = res.Cumulative.SV
	r.CumulativeCPI = res.CumIdx.CPI
	r.CumulativeSPI = res.CumIdx.SPI
	r.EAC = res.EAC
	r.ETC = res.ETC
	r.VAC = res.VAC
	r.TCPI = res.TCPI
	r.TCPIDefined = res.TCPIDefined
	r.Status = res.Status
	r.PercentComplete = res.PercentComplete
	r.EACMethod = res.EACMethod
	r.EstimatedCompletionDate = res.EstimatedCompletionDate
}

func (r *EVMRecord) cumulative() CumulativeValues {
	return CumulativeValues{PV: r.CumulativePV, EV: r.CumulativeEV, AC: r.CumulativeAC}
}

// CumulativeValues are the cumulative inputs of a record
type CumulativeValues struct {
	PV decimal.Decimal `json:"pv"`
	EV decimal.Decimal `json:"ev"`
	AC decimal.Decimal `json:"ac"`
}

func bindRecord(err error, id uuid.UUID) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.WithEntity(AggregateTypeEVMRecord, id)
	}
	return err
}

// Latest returns the most recent record by data date, or nil when records is empty.
// Ties on data date are broken by creation time.
func Latest(records []EVMRecord) *EVMRecord {
	var latest *EVMRecord
	for i := range records {
		r := &records[i]
		if latest == nil || r.DataDate.After(latest.DataDate) ||
			(r.DataDate.Equal(latest.DataDate) && r.CreatedAt.After(latest.CreatedAt)) {
			latest = r
		}
	}
	return latest
}

// SortByDataDate sorts records oldest first
func SortByDataDate(records []EVMRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DataDate.Before(records[j].DataDate)
	})
}
