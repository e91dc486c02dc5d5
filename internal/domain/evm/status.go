package evm

import (
	"github.com/shopspring/decimal"
)

// PerformanceStatus is the health classification of an EVM snapshot
type PerformanceStatus string

const (
	StatusOnTrack  PerformanceStatus = "ON_TRACK"
	StatusWarning  PerformanceStatus = "WARNING"
	StatusAtRisk   PerformanceStatus = "AT_RISK"
	StatusCritical PerformanceStatus = "CRITICAL"
)

// IsValid checks if the status is a valid PerformanceStatus
func (s PerformanceStatus) IsValid() bool {
	switch s {
	case StatusOnTrack, StatusWarning, StatusAtRisk, StatusCritical:
		return true
	}
	return false
}

// String returns the string representation of PerformanceStatus
func (s PerformanceStatus) String() string {
	return string(s)
}

// Severity orders statuses from healthy (0) to critical (3)
func (s PerformanceStatus) Severity() int {
	switch s {
	case StatusOnTrack:
		return 0
	case StatusWarning:
		return 1
	case StatusAtRisk:
		return 2
	}
	return 3
}

// ThresholdLevel assigns Status when both indices reach their minimums
type ThresholdLevel struct {
	Status PerformanceStatus
	MinCPI decimal.Decimal
	MinSPI decimal.Decimal
}

// StatusThresholds is an ordered list of levels, evaluated top-down.
// Indices that satisfy no level classify as StatusCritical.
type StatusThresholds struct {
	Name   string
	Levels []ThresholdLevel
}

// Threshold preset names
const (
	ThresholdsGraduated = "graduated"
	ThresholdsTwoTier   = "two_tier"
)

func level(status PerformanceStatus, min string) ThresholdLevel {
	d := decimal.RequireFromString(min)
	return ThresholdLevel{Status: status, MinCPI: d, MinSPI: d}
}

// GraduatedThresholds is the four-band classification:
// OnTrack >= 0.95, Warning >= 0.90, AtRisk >= 0.80 (both indices), else Critical.
func GraduatedThresholds() StatusThresholds {
	return StatusThresholds{
		Name: ThresholdsGraduated,
		Levels: []ThresholdLevel{
			level(StatusOnTrack, "0.95"),
			level(StatusWarning, "0.90"),
			level(StatusAtRisk, "0.80"),
		},
	}
}

// TwoTierThresholds is the three-band classification:
// OnTrack >= 0.95, AtRisk >= 0.90 (both indices), else Critical.
func TwoTierThresholds() StatusThresholds {
	return StatusThresholds{
		Name: ThresholdsTwoTier,
		Levels: []ThresholdLevel{
			level(StatusOnTrack, "0.95"),
			level(StatusAtRisk, "0.90"),
		},
	}
}

// ThresholdsByName returns a preset by name; ok is false for unknown names
func ThresholdsByName(name string) (StatusThresholds, bool) {
	switch name {
	case ThresholdsGraduated, "":
		return GraduatedThresholds(), true
	case ThresholdsTwoTier:
		return TwoTierThresholds(), true
	}
	return StatusThresholds{}, false
}

// ClassifyStatus classifies cumulative CPI and SPI against thresholds
func ClassifyStatus(cpi, spi decimal.Decimal, thresholds StatusThresholds) PerformanceStatus {
	for _, l := range thresholds.Levels {
		if cpi.GreaterThanOrEqual(l.MinCPI) && spi.GreaterThanOrEqual(l.MinSPI) {
			return l.Status
		}
	}
	return StatusCritical
}
