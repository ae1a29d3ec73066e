package game

import "fmt"

// ExecutionResult reports the outcome of a forced action.
type ExecutionResult struct {
	Messages []string
	HasError bool
}

// QueueingOutcome is what happened to a queued action.
type QueueingOutcome int

const (
	StackUnresolved QueueingOutcome = iota
	StackResolved
	SpecialActionPerformed
)

var queueingOutcomeNames = map[QueueingOutcome]string{
	StackUnresolved:        "STACK_UNRESOLVED",
	StackResolved:          "STACK_RESOLVED",
	SpecialActionPerformed: "SPECIAL_ACTION_PERFORMED",
}

func (o QueueingOutcome) String() string {
	if name, ok := queueingOutcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("OUTCOME_%d", int(o))
}

// QueueingResult reports the outcome of queueing an action.
type QueueingResult struct {
	Outcome QueueingOutcome

	// ActionPerformed is false when the queued action was a pass, either
	// as proposed or after a downgrade.
	ActionPerformed bool

	// Downgraded is true when the proposed action failed validation and was
	// replaced by a pass. Messages holds the reasons.
	Downgraded bool

	// Resolved counts the non-pass actions resolved off the stack.
	Resolved int

	Messages []string
}

// SimulationResult reports the outcome of a whole game.
type SimulationResult struct {
	Messages      []string
	HasError      bool
	Tabletop      *Tabletop
	WinningPlayer *Player
	Turns         int
	Seed          int64
}
