package allocation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Status classifies how far a plan's allocations have consumed its funds.
type Status string

const (
	StatusWithinBudget   Status = "within-budget"
	StatusHighUsage      Status = "high-usage"
	StatusCritical       Status = "critical"
	StatusFullyAllocated Status = "fully-allocated"
	StatusOverBudget     Status = "over-budget"
)

// Decision is the outcome of evaluating a proposed allocation change.
type Decision string

const (
	// DecisionProceed commits without any confirmation (proposed total equals available funds).
	DecisionProceed Decision = "proceed"
	// DecisionConfirmOver blocks the change until the user explicitly accepts the overage.
	DecisionConfirmOver Decision = "confirm-over"
	// DecisionConfirmUnder lets the change through after an informational confirmation
	// that surfaces the unallocated remainder.
	DecisionConfirmUnder Decision = "confirm-under"
)

// Line is one allocation row as the calculator sees it: no persistence state,
// just the numbers the arithmetic needs.
type Line struct {
	ID        uint
	Code      string
	UnitPrice decimal.Decimal
	Quantity  int
	Used      int
}

// Total returns UnitPrice × Quantity for this line.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Balance returns the undelivered quantity (Quantity − Used).
func (l Line) Balance() int {
	return l.Quantity - l.Used
}

// ChangeKind tags the three mutations an edit session can stage.
type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeUpdate ChangeKind = "update"
	ChangeRemove ChangeKind = "remove"
)

// Draft is a not-yet-persisted line. A staged add carries a Draft instead of
// a Line, so a zero ID never doubles as an "unsaved" marker.
type Draft struct {
	Code        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
	Category    string
}

// Change is a staged mutation of a plan's line set. Exactly one of the
// kind-specific fields is meaningful: Draft for add, LineID+NewQuantity for
// update, LineID for remove.
type Change struct {
	Kind        ChangeKind
	LineID      uint
	NewQuantity int
	Draft       *Draft
}

// Summary is the comparator's output for one plan.
type Summary struct {
	TotalAvailable decimal.Decimal `json:"total_available"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	Remaining      decimal.Decimal `json:"remaining"`
	PercentUsed    int             `json:"percent_used"`
	Status         Status          `json:"status"`
}

// Evaluation is the change validator's output: a decision plus the delta the
// user must be shown (positive = overage, negative = unallocated remainder).
type Evaluation struct {
	Decision      Decision        `json:"decision"`
	Delta         decimal.Decimal `json:"delta"`
	ProposedTotal decimal.Decimal `json:"proposed_total"`
}

// ErrLineNotFound is returned when a staged change references a line that is
// not part of the plan.
var ErrLineNotFound = errors.New("allocation: line not found")

// QuantityFloorError reports an attempt to reduce a line's quantity below the
// quantity already delivered. This is a hard rejection, never confirmable.
type QuantityFloorError struct {
	LineID    uint
	Requested int
	Used      int
}

func (e *QuantityFloorError) Error() string {
	return fmt.Sprintf("allocation: quantity %d is below the %d units already used on line %d", e.Requested, e.Used, e.LineID)
}
