package telemetry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewProjectControlMetrics(t *testing.T) {
	pm, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{
		Meter:  noop.NewMeterProvider().Meter("test"),
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, pm)
}

func TestNewProjectControlMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, pm)
	assert.Equal(t, "NewProjectControlMetrics: meter cannot be nil", err.Error())
}

func TestProjectControlMetrics_RecordWithoutPanic(t *testing.T) {
	pm, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	caID := uuid.New()

	pm.RecordSnapshot(ctx, tenantID, caID, "AT_RISK", decimal.RequireFromString("0.9211"), decimal.RequireFromString("0.875"))
	pm.RecordTransition(ctx, tenantID, "Commitment", "APPROVED")
	pm.RecordInvoiced(ctx, tenantID, "USD", decimal.NewFromInt(3000))
	pm.RecordPaid(ctx, tenantID, "USD", decimal.NewFromInt(-1))
	pm.RecordConflictRetry(ctx, "Budget")
	pm.RecordRecalculation(ctx, tenantID, 20*time.Millisecond, 2)
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "%s is not an int64 sum", name)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Sum[int64]{}
}

func TestProjectControlMetrics_InvoicedInMinorUnits(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	pm, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	pm.RecordInvoiced(ctx, tenantID, "USD", decimal.RequireFromString("1250.55"))
	pm.RecordInvoiced(ctx, tenantID, "USD", decimal.RequireFromString("0.45"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sum := findSum(t, rm, "pc_commitment_invoiced_amount_total")
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(125100), sum.DataPoints[0].Value)
}

type stubSnapshotProvider struct {
	mu      sync.Mutex
	calls   int
	tenants []uuid.UUID
	err     error
}

func (s *stubSnapshotProvider) ActiveTenantIDs(_ context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.tenants, s.err
}

func (s *stubSnapshotProvider) LatestIndices(_ context.Context, _ uuid.UUID) (map[uuid.UUID]telemetry.IndexPair, error) {
	return map[uuid.UUID]telemetry.IndexPair{
		uuid.New(): {CPI: decimal.NewFromInt(1), SPI: decimal.RequireFromString("0.9")},
	}, nil
}

func (s *stubSnapshotProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestProjectControlMetrics_PeriodicCollection(t *testing.T) {
	provider := &stubSnapshotProvider{tenants: []uuid.UUID{uuid.New()}}
	pm, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{
		Meter:    noop.NewMeterProvider().Meter("test"),
		Provider: provider,
	})
	require.NoError(t, err)

	pm.StartPeriodicCollection(context.Background(), 10*time.Millisecond)
	assert.Eventually(t, func() bool { return provider.Calls() >= 2 }, time.Second, 5*time.Millisecond)

	pm.Stop()
	pm.Stop() // idempotent
}

func TestProjectControlMetrics_CollectionSurvivesProviderError(t *testing.T) {
	provider := &stubSnapshotProvider{err: errors.New("db down")}
	pm, err := telemetry.NewProjectControlMetrics(telemetry.ProjectControlMetricsConfig{
		Meter:    noop.NewMeterProvider().Meter("test"),
		Provider: provider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	pm.StartPeriodicCollection(ctx, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return provider.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
}
