package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	lines := []Line{{ID: 1, Code: "15_056", UnitPrice: money(t, "100.00"), Quantity: 3}}
	return NewSession(money(t, "375.00"), lines, DefaultConfig())
}

func TestSessionStartsIdle(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, "300.00", s.Summary().TotalAllocated.StringFixed(2))
}

func TestSessionStageRequiresEditing(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	_, err := s.Stage(Change{Kind: ChangeRemove, LineID: 1})
	assert.Error(t, err)
	assert.Equal(t, StateIdle, s.State())
}

func TestSessionProceedCommitsImmediately(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	require.NoError(t, s.Begin())

	// 300.00 staged up to exactly 375.00: no confirmation round.
	ev, err := s.Stage(Change{
		Kind:  ChangeAdd,
		Draft: &Draft{Code: "15_045", UnitPrice: money(t, "75.00"), Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionProceed, ev.Decision)
	assert.Equal(t, StateCommitted, s.State())
	assert.Len(t, s.Lines(), 2)
	assert.Equal(t, StatusFullyAllocated, s.Summary().Status)
}

func TestSessionConfirmFlow(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	require.NoError(t, s.Begin())

	ev, err := s.Stage(Change{
		Kind:  ChangeAdd,
		Draft: &Draft{Code: "15_045", UnitPrice: money(t, "50.00"), Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionConfirmUnder, ev.Decision)
	assert.Equal(t, StateAwaitingConfirmation, s.State())

	// The staged change is not visible until confirmed.
	assert.Len(t, s.Lines(), 1)

	require.NoError(t, s.Confirm())
	assert.Equal(t, StateCommitted, s.State())
	assert.Len(t, s.Lines(), 2)
	assert.Equal(t, "350.00", s.Summary().TotalAllocated.StringFixed(2))
}

func TestSessionCancelDropsStagedChange(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	require.NoError(t, s.Begin())

	_, err := s.Stage(Change{
		Kind:  ChangeAdd,
		Draft: &Draft{Code: "15_045", UnitPrice: money(t, "500.00"), Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingConfirmation, s.State())

	require.NoError(t, s.Cancel())
	assert.Equal(t, StateEditing, s.State())
	assert.Len(t, s.Lines(), 1)
	assert.Equal(t, "300.00", s.Summary().TotalAllocated.StringFixed(2))

	// A fresh change can be staged after cancelling.
	ev, err := s.Stage(Change{Kind: ChangeUpdate, LineID: 1, NewQuantity: 2})
	require.NoError(t, err)
	assert.Equal(t, DecisionConfirmUnder, ev.Decision)
}

func TestSessionAwaitingAllowsOnlyConfirmOrCancel(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	require.NoError(t, s.Begin())
	_, err := s.Stage(Change{
		Kind:  ChangeAdd,
		Draft: &Draft{Code: "15_045", UnitPrice: money(t, "10.00"), Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, StateAwaitingConfirmation, s.State())

	_, err = s.Stage(Change{Kind: ChangeRemove, LineID: 1})
	assert.Error(t, err)
	assert.Error(t, s.Begin())
	assert.Error(t, s.Abort())
	assert.Equal(t, StateAwaitingConfirmation, s.State())
}

func TestSessionStageErrorKeepsEditing(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	require.NoError(t, s.Begin())

	_, err := s.Stage(Change{Kind: ChangeUpdate, LineID: 42, NewQuantity: 1})
	assert.ErrorIs(t, err, ErrLineNotFound)
	assert.Equal(t, StateEditing, s.State())

	// The session is still usable after a rejected change.
	ev, err := s.Stage(Change{Kind: ChangeUpdate, LineID: 1, NewQuantity: 4})
	require.NoError(t, err)
	assert.Equal(t, DecisionConfirmOver, ev.Decision)
}

func TestSessionAbortAndReset(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	require.NoError(t, s.Begin())
	require.NoError(t, s.Abort())
	assert.Equal(t, StateCancelled, s.State())

	require.NoError(t, s.Reset())
	assert.Equal(t, StateIdle, s.State())
	require.NoError(t, s.Begin())
	assert.Equal(t, StateEditing, s.State())
}

func TestSessionResetAfterCommit(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	require.NoError(t, s.Begin())
	_, err := s.Stage(Change{Kind: ChangeUpdate, LineID: 1, NewQuantity: 2})
	require.NoError(t, err)
	require.NoError(t, s.Confirm())
	require.Equal(t, StateCommitted, s.State())

	require.NoError(t, s.Reset())
	assert.Equal(t, StateIdle, s.State())

	// Committed lines survive the reset.
	assert.Equal(t, "200.00", s.Summary().TotalAllocated.StringFixed(2))
}

func TestSessionConfirmRequiresPending(t *testing.T) {
	t.Parallel()

	s := newTestSession(t)
	assert.Error(t, s.Confirm())
	require.NoError(t, s.Begin())
	assert.Error(t, s.Confirm())
	assert.Error(t, s.Cancel())
}
