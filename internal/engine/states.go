// Package engine drives a conversation turn through classification,
// parallel agent branches, the join barrier, optional recoloring, and
// reply composition. Each turn is a fresh pass through the state machine;
// the session carries everything that outlives a turn.
package engine

// TurnState is the per-turn position in the orchestration state machine.
type TurnState int

const (
	StateClassifying TurnState = iota
	StateDispatching
	StateAwaitingBranches
	StateJoining
	StateRecoloring
	StateAwaitingInput
	StateResponding
	StateDone
)

var stateNames = map[TurnState]string{
	StateClassifying:      "classifying",
	StateDispatching:      "dispatching",
	StateAwaitingBranches: "awaiting_branches",
	StateJoining:          "joining",
	StateRecoloring:       "recoloring",
	StateAwaitingInput:    "awaiting_input",
	StateResponding:       "responding",
	StateDone:             "done",
}

func (s TurnState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
