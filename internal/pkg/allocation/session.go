package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// State is the lifecycle position of an edit session.
type State string

const (
	StateIdle                 State = "idle"
	StateEditing              State = "editing"
	StateAwaitingConfirmation State = "awaiting-confirmation"
	StateCommitted            State = "committed"
	StateCancelled            State = "cancelled"
)

// Session drives one in-progress edit against a plan's line set:
//
//	idle → editing → validating → (proceed | awaiting-confirmation) → committed | cancelled → idle
//
// Validation is transient inside Stage, so it never appears as a resting
// state. awaiting-confirmation is the only state with two exits: Confirm
// commits the staged change, Cancel reverts it and drops back to editing.
// The session owns plain values and performs no I/O; a controller holds it
// for the duration of the edit and persists the committed lines itself.
type Session struct {
	state     State
	available decimal.Decimal
	cfg       Config
	lines     []Line
	staged    *Change
	proposed  []Line
	eval      Evaluation
}

// NewSession starts an idle session over the committed lines of a plan.
func NewSession(available decimal.Decimal, lines []Line, cfg Config) *Session {
	committed := make([]Line, len(lines))
	copy(committed, lines)
	return &Session{state: StateIdle, available: available, cfg: cfg, lines: committed}
}

// State reports the session's current lifecycle position.
func (s *Session) State() State { return s.state }

// Lines returns the committed line set (staged changes excluded).
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Summary classifies the committed allocation against available funds.
func (s *Session) Summary() Summary {
	return Compare(s.available, Total(s.lines), s.cfg)
}

// Evaluation returns the decision for the currently staged change. Only
// meaningful in awaiting-confirmation and committed states.
func (s *Session) Evaluation() Evaluation { return s.eval }

// Begin moves an idle session into editing.
func (s *Session) Begin() error {
	if s.state != StateIdle {
		return s.transitionErr("begin")
	}
	s.state = StateEditing
	return nil
}

// Stage validates one change. A floor or reference violation leaves the
// session in editing with nothing staged. A proceed decision commits
// immediately; the confirmable decisions park the session in
// awaiting-confirmation until Confirm or Cancel.
func (s *Session) Stage(ch Change) (Evaluation, error) {
	if s.state != StateEditing {
		return Evaluation{}, s.transitionErr("stage")
	}

	next, eval, err := EvaluateLines(s.available, s.lines, ch)
	if err != nil {
		return Evaluation{}, err
	}

	s.staged = &ch
	s.proposed = next
	s.eval = eval

	if eval.Decision == DecisionProceed {
		s.commit()
		return eval, nil
	}
	s.state = StateAwaitingConfirmation
	return eval, nil
}

// Confirm accepts the pending decision and commits the staged change.
func (s *Session) Confirm() error {
	if s.state != StateAwaitingConfirmation {
		return s.transitionErr("confirm")
	}
	s.commit()
	return nil
}

// Cancel rejects the pending decision, reverts the staged change and returns
// the session to editing.
func (s *Session) Cancel() error {
	if s.state != StateAwaitingConfirmation {
		return s.transitionErr("cancel")
	}
	s.staged = nil
	s.proposed = nil
	s.eval = Evaluation{}
	s.state = StateEditing
	return nil
}

// Abort ends an editing session without committing, landing in cancelled.
func (s *Session) Abort() error {
	if s.state != StateEditing {
		return s.transitionErr("abort")
	}
	s.staged = nil
	s.proposed = nil
	s.state = StateCancelled
	return nil
}

// Reset returns a finished (committed or cancelled) session to idle so the
// next edit can begin over the now-current lines.
func (s *Session) Reset() error {
	if s.state != StateCommitted && s.state != StateCancelled {
		return s.transitionErr("reset")
	}
	s.state = StateIdle
	return nil
}

func (s *Session) commit() {
	s.lines = s.proposed
	s.staged = nil
	s.proposed = nil
	s.state = StateCommitted
}

func (s *Session) transitionErr(op string) error {
	return fmt.Errorf("allocation: cannot %s from state %q", op, s.state)
}
