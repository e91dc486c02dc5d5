package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	evmapp "github.com/projectcontrols/backend/internal/application/evm"
)

func writeReport(w io.Writer, report *evmapp.RecalculationReport, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	if _, err := fmt.Fprintf(w, "tenant %s: scanned %d, drifted %d, applied %d, failed %d (%s)\n",
		report.TenantID, report.Scanned, len(report.Drifted), report.Applied, report.Failed, report.Duration.Round(time.Millisecond)); err != nil {
		return err
	}
	for _, entry := range report.Drifted {
		state := "pending"
		switch {
		case entry.Error != "":
			state = "failed: " + entry.Error
		case entry.Applied:
			state = "applied"
		}
		if _, err := fmt.Fprintf(w, "  %s  %s %s %d/%d  [%s]  %s\n",
			entry.RecordID, entry.ControlAccountID, entry.PeriodType, entry.PeriodNumber, entry.Year,
			strings.Join(entry.Fields, ","), state); err != nil {
			return err
		}
	}
	return nil
}
