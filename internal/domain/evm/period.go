package evm

// PeriodType represents the reporting cycle of an EVM record
type PeriodType string

const (
	PeriodTypeDaily     PeriodType = "DAILY"
	PeriodTypeWeekly    PeriodType = "WEEKLY"
	PeriodTypeMonthly   PeriodType = "MONTHLY"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
	PeriodTypeBiannual  PeriodType = "BIANNUAL"
	PeriodTypeYearly    PeriodType = "YEARLY"
)

// IsValid checks if the period type is valid
func (p PeriodType) IsValid() bool {
	return p.MaxPeriodNumber() > 0
}

// String returns the string representation of PeriodType
func (p PeriodType) String() string {
	return string(p)
}

// MaxPeriodNumber returns the highest period number within a year, or 0 for unknown types
func (p PeriodType) MaxPeriodNumber() int {
	switch p {
	case PeriodTypeDaily:
		return 366
	case PeriodTypeWeekly:
		return 53
	case PeriodTypeMonthly:
		return 12
	case PeriodTypeQuarterly:
		return 4
	case PeriodTypeBiannual:
		return 2
	case PeriodTypeYearly:
		return 1
	}
	return 0
}

// IsValidPeriodNumber returns true if n is within [1, MaxPeriodNumber]
func (p PeriodType) IsValidPeriodNumber(n int) bool {
	return n >= 1 && n <= p.MaxPeriodNumber()
}
