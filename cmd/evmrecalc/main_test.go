package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	evmapp "github.com/projectcontrols/backend/internal/application/evm"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tenant := uuid.New()
	account := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		opts, err := parseFlags([]string{"-tenant", tenant.String()})
		require.NoError(t, err)
		assert.Equal(t, tenant, opts.tenantID)
		assert.Nil(t, opts.controlAccountID)
		assert.False(t, opts.apply)
		assert.Equal(t, "text", opts.format)
		assert.Equal(t, ".env", opts.envFile)
	})

	t.Run("all flags", func(t *testing.T) {
		opts, err := parseFlags([]string{
			"-tenant", tenant.String(),
			"-control-account", account.String(),
			"-apply",
			"-format", "json",
		})
		require.NoError(t, err)
		require.NotNil(t, opts.controlAccountID)
		assert.Equal(t, account, *opts.controlAccountID)
		assert.True(t, opts.apply)
		assert.Equal(t, "json", opts.format)
	})

	for name, args := range map[string][]string{
		"missing tenant":      {},
		"bad tenant":          {"-tenant", "acme"},
		"bad control account": {"-tenant", tenant.String(), "-control-account", "x"},
		"unknown format":      {"-tenant", tenant.String(), "-format", "xml"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseFlags(args)
			require.Error(t, err)
		})
	}
}

func sampleReport() *evmapp.RecalculationReport {
	return &evmapp.RecalculationReport{
		TenantID: uuid.New(),
		Scanned:  12,
		Drifted: []evmapp.DriftEntry{
			{RecordID: uuid.New(), ControlAccountID: uuid.New(), PeriodType: evm.PeriodTypeMonthly, Year: 2026, PeriodNumber: 3, Fields: []string{"cpi", "eac"}, Applied: true},
			{RecordID: uuid.New(), ControlAccountID: uuid.New(), PeriodType: evm.PeriodTypeMonthly, Year: 2026, PeriodNumber: 4, Fields: []string{"status"}, Error: "conflict"},
		},
		Applied:  1,
		Failed:   1,
		Duration: 1500 * time.Millisecond,
	}
}

func TestWriteReport(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReport(&buf, sampleReport(), "text"))
		out := buf.String()
		assert.Contains(t, out, "scanned 12, drifted 2, applied 1, failed 1 (1.5s)")
		assert.Contains(t, out, "[cpi,eac]  applied")
		assert.Contains(t, out, "[status]  failed: conflict")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		report := sampleReport()
		require.NoError(t, writeReport(&buf, report, "json"))

		var decoded evmapp.RecalculationReport
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, report.TenantID, decoded.TenantID)
		assert.Len(t, decoded.Drifted, 2)
		assert.Equal(t, "conflict", decoded.Drifted[1].Error)
	})
}

func TestCorrectionAudit(t *testing.T) {
	audit := newCorrectionAudit(nil)
	assert.Equal(t, []string{evm.EventTypeEVMRecordCorrected}, audit.EventTypes())

	corrected := &evm.EVMRecordCorrectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(evm.EventTypeEVMRecordCorrected, evm.AggregateTypeEVMRecord, uuid.New(), uuid.New()),
		RecordID:        uuid.New(),
		Status:          evm.StatusAtRisk,
	}
	require.NoError(t, audit.Handle(context.Background(), corrected))

	created := &evm.EVMRecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(evm.EventTypeEVMRecordCreated, evm.AggregateTypeEVMRecord, uuid.New(), uuid.New()),
	}
	require.NoError(t, audit.Handle(context.Background(), created))

	assert.Equal(t, 1, audit.Count())
}
