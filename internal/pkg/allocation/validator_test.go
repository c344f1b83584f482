package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		available string
		proposed  string
		decision  Decision
		delta     string
	}{
		{"exact match proceeds", "375.00", "375.00", DecisionProceed, "0.00"},
		{"under budget needs confirmation", "375.00", "350.00", DecisionConfirmUnder, "-25.00"},
		{"over budget needs confirmation", "375.00", "400.00", DecisionConfirmOver, "25.00"},
		{"one cent over", "375.00", "375.01", DecisionConfirmOver, "0.01"},
		{"one cent under", "375.00", "374.99", DecisionConfirmUnder, "-0.01"},
		{"empty plan exact", "0.00", "0.00", DecisionProceed, "0.00"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ev := EvaluateChange(money(t, tc.available), money(t, tc.proposed))
			assert.Equal(t, tc.decision, ev.Decision)
			assert.Equal(t, tc.delta, ev.Delta.StringFixed(2))
			assert.Equal(t, tc.proposed, ev.ProposedTotal.StringFixed(2))
		})
	}
}

// A plan with 375.00 available holding a 300.00 line; adding a 50.00 line
// leaves 25.00 unallocated and asks the user to confirm staying under.
func TestEvaluateLinesUnderBudgetScenario(t *testing.T) {
	t.Parallel()

	lines := []Line{{ID: 1, Code: "15_056", UnitPrice: money(t, "100.00"), Quantity: 3}}
	next, ev, err := EvaluateLines(money(t, "375.00"), lines, Change{
		Kind:  ChangeAdd,
		Draft: &Draft{Code: "15_045", UnitPrice: money(t, "50.00"), Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, DecisionConfirmUnder, ev.Decision)
	assert.Equal(t, "350.00", ev.ProposedTotal.StringFixed(2))
	assert.Equal(t, "-25.00", ev.Delta.StringFixed(2))
}

// The same plan holding 360.00; adding 40.00 overshoots by 25.00.
func TestEvaluateLinesOverBudgetScenario(t *testing.T) {
	t.Parallel()

	lines := []Line{{ID: 1, Code: "15_056", UnitPrice: money(t, "120.00"), Quantity: 3}}
	next, ev, err := EvaluateLines(money(t, "375.00"), lines, Change{
		Kind:  ChangeAdd,
		Draft: &Draft{Code: "15_045", UnitPrice: money(t, "40.00"), Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, DecisionConfirmOver, ev.Decision)
	assert.Equal(t, "400.00", ev.ProposedTotal.StringFixed(2))
	assert.Equal(t, "25.00", ev.Delta.StringFixed(2))
}

// Quantity cannot drop below what was already consumed; the rejection fires
// before any budget arithmetic happens.
func TestEvaluateLinesQuantityFloorWins(t *testing.T) {
	t.Parallel()

	// Shrinking this line to 2 would also bring the plan back under budget,
	// but the floor rejection takes priority over the delta evaluation.
	lines := []Line{{ID: 9, Code: "15_056", UnitPrice: money(t, "200.00"), Quantity: 5, Used: 3}}
	_, _, err := EvaluateLines(money(t, "600.00"), lines, Change{
		Kind: ChangeUpdate, LineID: 9, NewQuantity: 2,
	})

	var floorErr *QuantityFloorError
	require.ErrorAs(t, err, &floorErr)
	assert.Contains(t, floorErr.Error(), "3")
}

func TestEvaluateLinesRemoveAll(t *testing.T) {
	t.Parallel()

	lines := []Line{{ID: 1, UnitPrice: money(t, "375.00"), Quantity: 1}}
	next, ev, err := EvaluateLines(money(t, "375.00"), lines, Change{Kind: ChangeRemove, LineID: 1})
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Equal(t, DecisionConfirmUnder, ev.Decision)
	assert.Equal(t, "-375.00", ev.Delta.StringFixed(2))
}
