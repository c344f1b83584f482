package allocation

import "github.com/shopspring/decimal"

// Default warning thresholds, in whole percent of available funds. The source
// data for a practice can override both through configuration; nothing in this
// package hard-codes them past this point.
const (
	DefaultHighUsagePercent = 70
	DefaultCriticalPercent  = 90
)

// Config carries the classification thresholds for Compare.
type Config struct {
	// HighUsagePercent is the percent-used at which a plan is flagged as
	// high-usage (inclusive).
	HighUsagePercent int
	// CriticalPercent is the percent-used at which a plan is flagged as
	// critical (inclusive). Must be >= HighUsagePercent to be meaningful.
	CriticalPercent int
}

// DefaultConfig returns the standard 70/90 thresholds.
func DefaultConfig() Config {
	return Config{
		HighUsagePercent: DefaultHighUsagePercent,
		CriticalPercent:  DefaultCriticalPercent,
	}
}

var oneHundred = decimal.NewFromInt(100)

// Compare computes remaining funds, display percent used and the status
// classification for a plan. Pure function of its inputs.
//
// PercentUsed is rounded half-up and clamped to [0, 100] for display only.
// The threshold checks read the exact ratio, so a plan at 69.999% displays
// as 70 without being high-usage yet, and over-budget is read off the sign
// of Remaining so the clamp can never mask it. A plan with zero available
// funds reports 0 percent used (no division) and is fully-allocated only
// while nothing is allocated against it.
func Compare(available, allocated decimal.Decimal, cfg Config) Summary {
	pct := exactPercent(available, allocated)
	s := Summary{
		TotalAvailable: available,
		TotalAllocated: allocated,
		Remaining:      available.Sub(allocated),
		PercentUsed:    displayPercent(pct),
	}

	// First match wins: over-budget and fully-allocated outrank the
	// threshold-derived states.
	switch {
	case s.Remaining.IsNegative():
		s.Status = StatusOverBudget
	case s.Remaining.IsZero():
		s.Status = StatusFullyAllocated
	case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(cfg.CriticalPercent))):
		s.Status = StatusCritical
	case pct.GreaterThanOrEqual(decimal.NewFromInt(int64(cfg.HighUsagePercent))):
		s.Status = StatusHighUsage
	default:
		s.Status = StatusWithinBudget
	}
	return s
}

// exactPercent is allocated over available in whole percent, unrounded.
func exactPercent(available, allocated decimal.Decimal) decimal.Decimal {
	if available.Sign() <= 0 {
		return decimal.Zero
	}
	return allocated.Div(available).Mul(oneHundred)
}

func displayPercent(pct decimal.Decimal) int {
	rounded := pct.Round(0)
	if rounded.GreaterThan(oneHundred) {
		return 100
	}
	if rounded.IsNegative() {
		return 0
	}
	return int(rounded.IntPart())
}
