package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		available string
		allocated string
		status    Status
		remaining string
		percent   int
	}{
		{"untouched plan", "1000.00", "0.00", StatusWithinBudget, "1000.00", 0},
		{"well within", "1000.00", "500.00", StatusWithinBudget, "500.00", 50},
		{"just below high usage", "1000.00", "699.99", StatusWithinBudget, "300.01", 70},
		{"high usage boundary", "1000.00", "700.00", StatusHighUsage, "300.00", 70},
		{"critical boundary", "1000.00", "900.00", StatusCritical, "100.00", 90},
		{"almost exhausted", "1000.00", "999.99", StatusCritical, "0.01", 100},
		{"fully allocated", "1000.00", "1000.00", StatusFullyAllocated, "0.00", 100},
		{"over budget", "1000.00", "1000.01", StatusOverBudget, "-0.01", 100},
		{"far over budget", "375.00", "950.00", StatusOverBudget, "-575.00", 100},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := Compare(money(t, tc.available), money(t, tc.allocated), DefaultConfig())
			assert.Equal(t, tc.status, s.Status)
			assert.Equal(t, tc.remaining, s.Remaining.StringFixed(2))
			assert.Equal(t, tc.percent, s.PercentUsed)
			assert.True(t, s.TotalAvailable.Equal(money(t, tc.available)))
			assert.True(t, s.TotalAllocated.Equal(money(t, tc.allocated)))
		})
	}
}

func TestCompareZeroAvailable(t *testing.T) {
	t.Parallel()

	// Nothing allocated against an empty plan reads as fully allocated,
	// not over budget, and percent stays at zero.
	s := Compare(money(t, "0.00"), money(t, "0.00"), DefaultConfig())
	assert.Equal(t, StatusFullyAllocated, s.Status)
	assert.Equal(t, 0, s.PercentUsed)

	s = Compare(money(t, "0.00"), money(t, "10.00"), DefaultConfig())
	assert.Equal(t, StatusOverBudget, s.Status)
	assert.Equal(t, 0, s.PercentUsed)
	assert.Equal(t, "-10.00", s.Remaining.StringFixed(2))
}

func TestComparePercentRounding(t *testing.T) {
	t.Parallel()

	// 1/3 of 300 rounds half up to 33, 2/3 to 67.
	s := Compare(money(t, "300.00"), money(t, "100.00"), DefaultConfig())
	assert.Equal(t, 33, s.PercentUsed)

	s = Compare(money(t, "300.00"), money(t, "200.00"), DefaultConfig())
	assert.Equal(t, 67, s.PercentUsed)

	// Deep over-allocation clamps at 100 instead of reporting 253%.
	s = Compare(money(t, "375.00"), money(t, "950.00"), DefaultConfig())
	assert.Equal(t, 100, s.PercentUsed)
}

func TestCompareCustomThresholds(t *testing.T) {
	t.Parallel()

	cfg := Config{HighUsagePercent: 50, CriticalPercent: 75}

	s := Compare(money(t, "100.00"), money(t, "50.00"), cfg)
	assert.Equal(t, StatusHighUsage, s.Status)

	s = Compare(money(t, "100.00"), money(t, "75.00"), cfg)
	assert.Equal(t, StatusCritical, s.Status)

	s = Compare(money(t, "100.00"), money(t, "49.00"), cfg)
	assert.Equal(t, StatusWithinBudget, s.Status)
}

func TestCompareExactMatchBeatsCritical(t *testing.T) {
	t.Parallel()

	// 100% used lands on fully-allocated, not critical, when remaining is zero.
	s := Compare(money(t, "375.00"), money(t, "375.00"), DefaultConfig())
	assert.Equal(t, StatusFullyAllocated, s.Status)
	assert.Equal(t, 100, s.PercentUsed)
}
