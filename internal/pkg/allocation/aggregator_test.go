package allocation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestTotal(t *testing.T) {
	t.Parallel()

	assert.True(t, Total(nil).IsZero())
	assert.True(t, Total([]Line{}).IsZero())

	lines := []Line{
		{ID: 1, UnitPrice: money(t, "193.99"), Quantity: 1},
		{ID: 2, UnitPrice: money(t, "51.09"), Quantity: 4},
		{ID: 3, UnitPrice: money(t, "0.00"), Quantity: 10},
	}
	// 193.99 + 204.36 + 0
	assert.Equal(t, "398.35", Total(lines).StringFixed(2))
}

func TestTotalSingleLineMatchesLineTotal(t *testing.T) {
	t.Parallel()

	l := Line{ID: 7, UnitPrice: money(t, "12.34"), Quantity: 3}
	assert.True(t, Total([]Line{l}).Equal(l.Total()))
	assert.Equal(t, "37.02", l.Total().StringFixed(2))
}

func TestApplyAdd(t *testing.T) {
	t.Parallel()

	base := []Line{{ID: 1, UnitPrice: money(t, "50.00"), Quantity: 6}}
	next, err := Apply(base, Change{Kind: ChangeAdd, Draft: &Draft{
		Code: "15_054", UnitPrice: money(t, "25.00"), Quantity: 2,
	}})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, "350.00", Total(next).StringFixed(2))

	// Input slice untouched.
	assert.Len(t, base, 1)
}

func TestApplyAddWithoutDraft(t *testing.T) {
	t.Parallel()

	_, err := Apply(nil, Change{Kind: ChangeAdd})
	assert.Error(t, err)
}

func TestApplyUpdate(t *testing.T) {
	t.Parallel()

	base := []Line{
		{ID: 1, UnitPrice: money(t, "50.00"), Quantity: 6, Used: 2},
		{ID: 2, UnitPrice: money(t, "10.00"), Quantity: 1},
	}
	next, err := Apply(base, Change{Kind: ChangeUpdate, LineID: 1, NewQuantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, next[0].Quantity)
	assert.Equal(t, 6, base[0].Quantity, "input must not be mutated")
	assert.Equal(t, "210.00", Total(next).StringFixed(2))
}

func TestApplyUpdateBelowUsedQuantity(t *testing.T) {
	t.Parallel()

	base := []Line{{ID: 5, UnitPrice: money(t, "80.00"), Quantity: 5, Used: 3}}
	_, err := Apply(base, Change{Kind: ChangeUpdate, LineID: 5, NewQuantity: 2})

	var floorErr *QuantityFloorError
	require.ErrorAs(t, err, &floorErr)
	assert.Equal(t, uint(5), floorErr.LineID)
	assert.Equal(t, 2, floorErr.Requested)
	assert.Equal(t, 3, floorErr.Used)
}

func TestApplyUpdateToExactlyUsedQuantity(t *testing.T) {
	t.Parallel()

	base := []Line{{ID: 5, UnitPrice: money(t, "80.00"), Quantity: 5, Used: 3}}
	next, err := Apply(base, Change{Kind: ChangeUpdate, LineID: 5, NewQuantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, next[0].Balance())
}

func TestApplyRemove(t *testing.T) {
	t.Parallel()

	base := []Line{
		{ID: 1, UnitPrice: money(t, "50.00"), Quantity: 6},
		{ID: 2, UnitPrice: money(t, "10.00"), Quantity: 1},
	}
	next, err := Apply(base, Change{Kind: ChangeRemove, LineID: 1})
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, uint(2), next[0].ID)
}

func TestApplyUnknownLine(t *testing.T) {
	t.Parallel()

	base := []Line{{ID: 1, UnitPrice: money(t, "50.00"), Quantity: 6}}
	for _, ch := range []Change{
		{Kind: ChangeUpdate, LineID: 99, NewQuantity: 1},
		{Kind: ChangeRemove, LineID: 99},
	} {
		_, err := Apply(base, ch)
		assert.True(t, errors.Is(err, ErrLineNotFound))
	}
}

func TestApplyUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Apply(nil, Change{Kind: ChangeKind("merge")})
	assert.Error(t, err)
}
