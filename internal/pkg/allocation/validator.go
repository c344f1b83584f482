package allocation

import "github.com/shopspring/decimal"

// EvaluateChange decides what a proposed new allocation total means for the
// caller: commit silently, ask the user to accept an overage, or ask the user
// to acknowledge funds left unallocated. Delta is proposedTotal − available,
// so a positive delta is the overage amount and a negative delta is the
// unallocated remainder.
//
// The used-quantity floor is not this function's concern: callers must reject
// a quantity decrease below a line's used quantity before evaluating the
// budget delta (Apply does that check).
func EvaluateChange(available, proposedTotal decimal.Decimal) Evaluation {
	delta := proposedTotal.Sub(available)
	ev := Evaluation{Delta: delta, ProposedTotal: proposedTotal}
	switch delta.Sign() {
	case 1:
		ev.Decision = DecisionConfirmOver
	case -1:
		ev.Decision = DecisionConfirmUnder
	default:
		ev.Decision = DecisionProceed
	}
	return ev
}

// EvaluateLines runs a staged change end to end against a committed line set:
// floor/existence checks via Apply, then the budget-delta decision for the
// resulting total. Returns the prospective lines alongside the evaluation so
// callers can commit them if the decision (plus any confirmation) allows.
func EvaluateLines(available decimal.Decimal, lines []Line, ch Change) ([]Line, Evaluation, error) {
	next, err := Apply(lines, ch)
	if err != nil {
		return nil, Evaluation{}, err
	}
	return next, EvaluateChange(available, Total(next)), nil
}
