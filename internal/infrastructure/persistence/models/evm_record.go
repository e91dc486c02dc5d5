package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/shopspring/decimal"
)

// EVMRecordModel is the persistence model for the EVMRecord aggregate
type EVMRecordModel struct {
	TenantAggregateModel
	ControlAccountID uuid.UUID      `gorm:"type:uuid;not null;index"`
	DataDate         time.Time      `gorm:"type:date;not null;index"`
	PeriodType       evm.PeriodType `gorm:"type:varchar(20);not null"`
	PeriodNumber     int            `gorm:"not null"`
	Year             int            `gorm:"not null"`

	PV           decimal.Decimal `gorm:"column:pv;type:decimal(18,4);not null;default:0"`
	EV           decimal.Decimal `gorm:"column:ev;type:decimal(18,4);not null;default:0"`
	AC           decimal.Decimal `gorm:"column:ac;type:decimal(18,4);not null;default:0"`
	CumulativePV decimal.Decimal `gorm:"column:cumulative_pv;type:decimal(18,4);not null;default:0"`
	CumulativeEV decimal.Decimal `gorm:"column:cumulative_ev;type:decimal(18,4);not null;default:0"`
	CumulativeAC decimal.Decimal `gorm:"column:cumulative_ac;type:decimal(18,4);not null;default:0"`
	BAC          decimal.Decimal `gorm:"column:bac;type:decimal(18,4);not null;default:0"`

	CV            decimal.Decimal `gorm:"column:cv;type:decimal(18,4);not null;default:0"`
	SV            decimal.Decimal `gorm:"column:sv;type:decimal(18,4);not null;default:0"`
	CPI           decimal.Decimal `gorm:"column:cpi;type:decimal(18,8);not null;default:0"`
	SPI           decimal.Decimal `gorm:"column:spi;type:decimal(18,8);not null;default:0"`
	CumulativeCV  decimal.Decimal `gorm:"column:cumulative_cv;type:decimal(18,4);not null;default:0"`
	CumulativeSV  decimal.Decimal `gorm:"column:cumulative_sv;type:decimal(18,4);not null;default:0"`
	CumulativeCPI decimal.Decimal `gorm:"column:cumulative_cpi;type:decimal(18,8);not null;default:0"`
	CumulativeSPI decimal.Decimal `gorm:"column:cumulative_spi;type:decimal(18,8);not null;default:0"`

	EAC         decimal.Decimal `gorm:"column:eac;type:decimal(18,4);not null;default:0"`
	ETC         decimal.Decimal `gorm:"column:etc;type:decimal(18,4);not null;default:0"`
	VAC         decimal.Decimal `gorm:"column:vac;type:decimal(18,4);not null;default:0"`
	TCPI        decimal.Decimal `gorm:"column:tcpi;type:decimal(18,8);not null;default:0"`
	TCPIDefined bool            `gorm:"column:tcpi_defined;not null;default:false"`

	Status                  evm.PerformanceStatus `gorm:"type:varchar(20);not null;index"`
	PercentComplete         decimal.Decimal       `gorm:"type:decimal(7,4);not null;default:0"`
	EACMethod               evm.EACMethod         `gorm:"column:eac_method;type:varchar(20);not null"`
	PlannedFinishDate       *time.Time            `gorm:"type:date"`
	EstimatedCompletionDate *time.Time            `gorm:"type:date"`
	Comments                string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (EVMRecordModel) TableName() string {
	return "evm_records"
}

// ToDomain converts the model to a domain EVMRecord
func (m *EVMRecordModel) ToDomain() *evm.EVMRecord {
	return &evm.EVMRecord{
		TenantAggregateRoot:     m.ToTenantAggregateRoot(),
		ControlAccountID:        m.ControlAccountID,
		DataDate:                m.DataDate,
		PeriodType:              m.PeriodType,
		PeriodNumber:            m.PeriodNumber,
		Year:                    m.Year,
		PV:                      m.PV,
		EV:                      m.EV,
		AC:                      m.AC,
		CumulativePV:            m.CumulativePV,
		CumulativeEV:            m.CumulativeEV,
		CumulativeAC:            m.CumulativeAC,
		BAC:                     m.BAC,
		CV:                      m.CV,
		SV:                      m.SV,
		CPI:                     m.CPI,
		SPI:                     m.SPI,
		CumulativeCV:            m.CumulativeCV,
		CumulativeSV:            m.CumulativeSV,
		CumulativeCPI:           m.CumulativeCPI,
		CumulativeSPI:           m.CumulativeSPI,
		EAC:                     m.EAC,
		ETC:                     m.ETC,
		VAC:                     m.VAC,
		TCPI:                    m.TCPI,
		TCPIDefined:             m.TCPIDefined,
		Status:                  m.Status,
		PercentComplete:         m.PercentComplete,
		EACMethod:               m.EACMethod,
		PlannedFinishDate:       m.PlannedFinishDate,
		EstimatedCompletionDate: m.EstimatedCompletionDate,
		Comments:                m.Comments,
	}
}

// EVMRecordModelFromDomain converts a domain EVMRecord to its model
func EVMRecordModelFromDomain(r *evm.EVMRecord) *EVMRecordModel {
	m := &EVMRecordModel{
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
		CV:                      r.CV,
		SV:                      r.SV,
		CPI:                     r.CPI,
		SPI:                     r.SPI,
		CumulativeCV:            r.CumulativeCV,
		CumulativeSV:            r.CumulativeSV,
		CumulativeCPI:           r.CumulativeCPI,
		CumulativeSPI:           r.CumulativeSPI,
		EAC:                     r.EAC,
		ETC:                     r.ETC,
		VAC:                     r.VAC,
		TCPI:                    r.TCPI,
		TCPIDefined:             r.TCPIDefined,
		Status:                  r.Status,
		PercentComplete:         r.PercentComplete,
		EACMethod:               r.EACMethod,
		PlannedFinishDate:       r.PlannedFinishDate,
		EstimatedCompletionDate: r.EstimatedCompletionDate,
		Comments:                r.Comments,
	}
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	return m
}
