package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/controlaccount"
	"github.com/projectcontrols/backend/internal/infrastructure/persistence/models"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormIndexProvider reads the latest cumulative CPI and SPI per control
// account for the periodic metrics collection
type GormIndexProvider struct {
	db *gorm.DB
}

// NewGormIndexProvider creates a new GormIndexProvider
func NewGormIndexProvider(db *gorm.DB) *GormIndexProvider {
	return &GormIndexProvider{db: db}
}

// ActiveTenantIDs returns the tenants owning at least one control account that is not closed
func (p *GormIndexProvider) ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Model(&models.ControlAccountModel{}).
		Where("status <> ?", controlaccount.StatusClosed).
		Distinct("tenant_id").
		Order("tenant_id").
		Pluck("tenant_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type indexRow struct {
	ControlAccountID uuid.UUID
	CumulativeCPI    decimal.Decimal
	CumulativeSPI    decimal.Decimal
}

// LatestIndices returns the indices of the newest record of each control account
func (p *GormIndexProvider) LatestIndices(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]telemetry.IndexPair, error) {
	var rows []indexRow
	err := p.db.WithContext(ctx).
		Model(&models.EVMRecordModel{}).
		Select("control_account_id, cumulative_cpi, cumulative_spi").
		Where("tenant_id = ?", tenantID).
		Order("control_account_id, data_date DESC, created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]telemetry.IndexPair)
	for _, row := range rows {
		// rows are newest first within each account
		if _, seen := out[row.ControlAccountID]; seen {
			continue
		}
		out[row.ControlAccountID] = telemetry.IndexPair{CPI: row.CumulativeCPI, SPI: row.CumulativeSPI}
	}
	return out, nil
}

var _ telemetry.SnapshotProvider = (*GormIndexProvider)(nil)
