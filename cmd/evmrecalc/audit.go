package main

import (
	"context"
	"sync/atomic"

	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// correctionAudit logs every corrected record published during the run
type correctionAudit struct {
	logger *zap.Logger
	count  atomic.Int64
}

func newCorrectionAudit(logger *zap.Logger) *correctionAudit {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &correctionAudit{logger: logger}
}

func (a *correctionAudit) EventTypes() []string {
	return []string{evm.EventTypeEVMRecordCorrected}
}

func (a *correctionAudit) Handle(_ context.Context, e shared.DomainEvent) error {
	corrected, ok := e.(*evm.EVMRecordCorrectedEvent)
	if !ok {
		return nil
	}
	a.count.Add(1)
	a.logger.Info("EVM record corrected",
		zap.String("record_id", corrected.RecordID.String()),
		zap.String("control_account_id", corrected.ControlAccountID.String()),
		zap.String("status", corrected.Status.String()),
	)
	return nil
}

func (a *correctionAudit) Count() int {
	return int(a.count.Load())
}
