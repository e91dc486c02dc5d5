package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ProjectControlMetrics records project-control metrics: EVM snapshot
// counts and indices, commitment cash flow, lifecycle transitions and
// optimistic lock retries.
type ProjectControlMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	snapshotTotal       *Counter
	cpiGauge            *FloatGauge
	spiGauge            *FloatGauge
	transitionTotal     *Counter
	invoicedAmountTotal *Counter
	paidAmountTotal     *Counter
	conflictRetryTotal  *Counter
	recalcDuration      *DurationHistogram
	driftTotal          *Counter

	provider    SnapshotProvider
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// ProjectControlMetricsConfig holds configuration for project-control metrics.
type ProjectControlMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider SnapshotProvider // optional, enables periodic gauge collection
}

// SnapshotProvider supplies the latest CPI and SPI per control account for a tenant.
type SnapshotProvider interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
	LatestIndices(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]IndexPair, error)
}

// IndexPair is a CPI/SPI reading for one control account.
type IndexPair struct {
	CPI decimal.Decimal
	SPI decimal.Decimal
}

// NewProjectControlMetrics creates the project-control metric instruments.
func NewProjectControlMetrics(cfg ProjectControlMetricsConfig) (*ProjectControlMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &ProjectControlMetrics{
		meter:    cfg.Meter,
		logger:   logger,
		provider: cfg.Provider,
		stopChan: make(chan struct{}),
	}

	var err error

	pm.snapshotTotal, err = NewCounter(
		cfg.Meter,
		"pc_evm_snapshot_total",
		"Total number of EVM snapshots calculated, by performance status",
		"{snapshots}",
	)
	if err != nil {
		return nil, err
	}

	pm.cpiGauge, err = NewFloatGauge(
		cfg.Meter,
		"pc_evm_cpi",
		"Latest cumulative cost performance index per control account",
		"1",
	)
	if err != nil {
		return nil, err
	}

	pm.spiGauge, err = NewFloatGauge(
		cfg.Meter,
		"pc_evm_spi",
		"Latest cumulative schedule performance index per control account",
		"1",
	)
	if err != nil {
		return nil, err
	}

	pm.transitionTotal, err = NewCounter(
		cfg.Meter,
		"pc_state_transition_total",
		"Total number of lifecycle status transitions",
		"{transitions}",
	)
	if err != nil {
		return nil, err
	}

	pm.invoicedAmountTotal, err = NewCounter(
		cfg.Meter,
		"pc_commitment_invoiced_amount_total",
		"Total amount invoiced against commitments in minor currency units",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	pm.paidAmountTotal, err = NewCounter(
		cfg.Meter,
		"pc_commitment_paid_amount_total",
		"Total amount paid against commitment invoices in minor currency units",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	pm.conflictRetryTotal, err = NewCounter(
		cfg.Meter,
		"pc_concurrency_conflict_retry_total",
		"Total number of retries after an optimistic lock conflict",
		"{retries}",
	)
	if err != nil {
		return nil, err
	}

	pm.recalcDuration, err = NewDurationHistogram(cfg.Meter,
		"pc_evm_recalculation_duration_seconds",
		"Duration of EVM recalculation runs",
		RecalculationBuckets,
	)
	if err != nil {
		return nil, err
	}

	pm.driftTotal, err = NewCounter(
		cfg.Meter,
		"pc_evm_drift_total",
		"Total number of EVM records whose stored values drifted from a recalculation",
		"{records}",
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// =============================================================================
// EVM Metrics
// =============================================================================

// RecordSnapshot counts a calculated snapshot and records its indices.
func (pm *ProjectControlMetrics) RecordSnapshot(ctx context.Context, tenantID, controlAccountID uuid.UUID, status string, cpi, spi decimal.Decimal) {
	pm.snapshotTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPerformanceStatus.String(status),
	)
	pm.RecordIndices(ctx, tenantID, controlAccountID, cpi, spi)
}

// RecordIndices records the CPI and SPI gauges for a control account.
func (pm *ProjectControlMetrics) RecordIndices(ctx context.Context, tenantID, controlAccountID uuid.UUID, cpi, spi decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrTenantID.String(tenantID.String()),
		AttrControlAccountID.String(controlAccountID.String()),
	}
	pm.cpiGauge.Record(ctx, cpi.InexactFloat64(), attrs...)
	pm.spiGauge.Record(ctx, spi.InexactFloat64(), attrs...)
}

// RecordRecalculation records the duration of a recalculation run and the drifted records it found.
func (pm *ProjectControlMetrics) RecordRecalculation(ctx context.Context, tenantID uuid.UUID, d time.Duration, drifted int) {
	pm.recalcDuration.Record(ctx, d, AttrTenantID.String(tenantID.String()))
	if drifted > 0 {
		pm.driftTotal.Add(ctx, int64(drifted), AttrTenantID.String(tenantID.String()))
	}
}

// =============================================================================
// Lifecycle Metrics
// =============================================================================

// RecordTransition counts a status transition of an aggregate.
func (pm *ProjectControlMetrics) RecordTransition(ctx context.Context, tenantID uuid.UUID, aggregateType, toStatus string) {
	pm.transitionTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrAggregateType.String(aggregateType),
		AttrToStatus.String(toStatus),
	)
}

// RecordConflictRetry counts a retry after an optimistic lock conflict.
func (pm *ProjectControlMetrics) RecordConflictRetry(ctx context.Context, aggregateType string) {
	pm.conflictRetryTotal.Inc(ctx, AttrAggregateType.String(aggregateType))
}

// =============================================================================
// Commitment Metrics
// =============================================================================

// RecordInvoiced adds an invoiced amount.
// Amounts are converted to minor units (x100).
func (pm *ProjectControlMetrics) RecordInvoiced(ctx context.Context, tenantID uuid.UUID, currency string, amount decimal.Decimal) {
	pm.invoicedAmountTotal.Add(ctx, toMinorUnits(amount),
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

// RecordPaid adds a paid amount.
func (pm *ProjectControlMetrics) RecordPaid(ctx context.Context, tenantID uuid.UUID, currency string, amount decimal.Decimal) {
	pm.paidAmountTotal.Add(ctx, toMinorUnits(amount),
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

func toMinorUnits(amount decimal.Decimal) int64 {
	if amount.IsNegative() {
		return 0
	}
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of the index gauges.
// It is non-blocking; use Stop() to stop collection.
func (pm *ProjectControlMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	pm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go pm.runPeriodicCollection(ctx, interval)
	})
}

func (pm *ProjectControlMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pm.Collect(ctx)

	for {
		select {
		case <-pm.stopChan:
			pm.logger.Info("Stopping periodic project-control metrics collection")
			return
		case <-ctx.Done():
			pm.logger.Info("Context cancelled, stopping periodic project-control metrics collection")
			return
		case <-ticker.C:
			pm.Collect(ctx)
		}
	}
}

// Collect records the index gauges of every active tenant once.
func (pm *ProjectControlMetrics) Collect(ctx context.Context) {
	if pm.provider == nil {
		pm.logger.Debug("No snapshot provider configured, skipping index collection")
		return
	}

	tenantIDs, err := pm.provider.ActiveTenantIDs(ctx)
	if err != nil {
		pm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		indices, err := pm.provider.LatestIndices(ctx, tenantID)
		if err != nil {
			pm.logger.Warn("Failed to get latest indices for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}
		for caID, pair := range indices {
			pm.RecordIndices(ctx, tenantID, caID, pair.CPI, pair.SPI)
		}
	}
}

// Stop stops the periodic collection.
func (pm *ProjectControlMetrics) Stop() {
	pm.stopOnce.Do(func() {
		close(pm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewProjectControlMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
