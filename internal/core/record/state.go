package record

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrExists            = errors.New("record already exists")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrStateMismatch     = errors.New("record is not in the expected state")
)

// State is the lifecycle location of a record. Each state is a directory
// under the workspace root.
type State string

const (
	StateIntake   State = "intake"
	StatePlans    State = "plans"
	StatePending  State = "pending-approval"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateDone     State = "done"
)

// LogsDir holds the run log and approval ledgers. It is not a record state.
const LogsDir = "logs"

// States lists every record state in lifecycle order.
func States() []State {
	return []State{StateIntake, StatePlans, StatePending, StateApproved, StateRejected, StateDone}
}

// Dir returns the directory name for the state.
func (s State) Dir() string { return string(s) }

func (s State) String() string { return string(s) }

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	for _, v := range States() {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether records in s never move again.
func (s State) IsTerminal() bool {
	switch s {
	case StateApproved, StateRejected, StateDone, StatePlans:
		return true
	}
	return false
}

// ParseState converts a directory name into a State.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.IsValid() {
		return "", fmt.Errorf("unknown state %q", s)
	}
	return st, nil
}

var transitions = map[State][]State{
	StateIntake:  {StateDone, StatePending},
	StatePending: {StateApproved, StateRejected},
}

// CanTransition reports whether a record may move from one state to another.
// Plans are side records created directly in their directory and never move.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
