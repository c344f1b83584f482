package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Total sums UnitPrice × Quantity over all lines. An empty or nil slice yields
// zero. Inputs are assumed sanitized (non-negative); validation happens at the
// model boundary, not here.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

// Apply returns the line set that would result from staging the change,
// without mutating the input. Update and remove must reference an existing
// line; an update below the line's used quantity fails with
// *QuantityFloorError before any budget arithmetic happens.
func Apply(lines []Line, ch Change) ([]Line, error) {
	switch ch.Kind {
	case ChangeAdd:
		if ch.Draft == nil {
			return nil, fmt.Errorf("allocation: add change carries no draft")
		}
		next := make([]Line, len(lines), len(lines)+1)
		copy(next, lines)
		next = append(next, Line{
			Code:      ch.Draft.Code,
			UnitPrice: ch.Draft.UnitPrice,
			Quantity:  ch.Draft.Quantity,
		})
		return next, nil

	case ChangeUpdate:
		idx := indexOf(lines, ch.LineID)
		if idx < 0 {
			return nil, ErrLineNotFound
		}
		if ch.NewQuantity < lines[idx].Used {
			return nil, &QuantityFloorError{LineID: ch.LineID, Requested: ch.NewQuantity, Used: lines[idx].Used}
		}
		next := make([]Line, len(lines))
		copy(next, lines)
		next[idx].Quantity = ch.NewQuantity
		return next, nil

	case ChangeRemove:
		idx := indexOf(lines, ch.LineID)
		if idx < 0 {
			return nil, ErrLineNotFound
		}
		next := make([]Line, 0, len(lines)-1)
		next = append(next, lines[:idx]...)
		next = append(next, lines[idx+1:]...)
		return next, nil
	}
	return nil, fmt.Errorf("allocation: unknown change kind %q", ch.Kind)
}

func indexOf(lines []Line, id uint) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}
