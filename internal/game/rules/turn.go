package rules

import "fmt"

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseBeginning
	PhasePrecombatMain
	PhaseCombat
	PhasePostcombatMain
	PhaseEnding
)

var phaseNames = map[Phase]string{
	PhaseSetup:          "SETUP",
	PhaseBeginning:      "BEGINNING",
	PhasePrecombatMain:  "PRECOMBAT_MAIN",
	PhaseCombat:         "COMBAT",
	PhasePostcombatMain: "POSTCOMBAT_MAIN",
	PhaseEnding:         "ENDING",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// IsMain reports whether the phase is one of the two main phases.
func (p Phase) IsMain() bool {
	return p == PhasePrecombatMain || p == PhasePostcombatMain
}

// Next returns the phase that follows p. Setup only ever leads into
// Beginning, and Ending wraps back to Beginning.
func Next(p Phase) Phase {
	switch p {
	case PhaseSetup:
		return PhaseBeginning
	case PhaseBeginning:
		return PhasePrecombatMain
	case PhasePrecombatMain:
		return PhaseCombat
	case PhaseCombat:
		return PhasePostcombatMain
	case PhasePostcombatMain:
		return PhaseEnding
	default:
		return PhaseBeginning
	}
}

// Step represents the individual steps that comprise a turn.
type Step int

const (
	StepNone Step = iota
	StepUntap
	StepUpkeep
	StepDraw
	StepBeginningOfCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepCombatDamage
	StepEndOfCombat
	StepEnd
	StepCleanup
)

var stepNames = map[Step]string{
	StepNone:              "NONE",
	StepUntap:             "UNTAP",
	StepUpkeep:            "UPKEEP",
	StepDraw:              "DRAW",
	StepBeginningOfCombat: "BEGINNING_OF_COMBAT",
	StepDeclareAttackers:  "DECLARE_ATTACKERS",
	StepDeclareBlockers:   "DECLARE_BLOCKERS",
	StepCombatDamage:      "COMBAT_DAMAGE",
	StepEndOfCombat:       "END_OF_COMBAT",
	StepEnd:               "END",
	StepCleanup:           "CLEANUP",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// TurnEntry is one (phase, step) state of the turn table.
type TurnEntry struct {
	Phase Phase
	Step  Step
}

func (e TurnEntry) String() string {
	return e.Phase.String() + "/" + e.Step.String()
}

var baseTurnSequence = []TurnEntry{
	{PhaseBeginning, StepUntap},
	{PhaseBeginning, StepUpkeep},
	{PhaseBeginning, StepDraw},
	{PhasePrecombatMain, StepNone},
	{PhaseCombat, StepBeginningOfCombat},
	{PhaseCombat, StepDeclareAttackers},
	{PhaseCombat, StepDeclareBlockers},
	{PhaseCombat, StepCombatDamage},
	{PhaseCombat, StepEndOfCombat},
	{PhasePostcombatMain, StepNone},
	{PhaseEnding, StepEnd},
	{PhaseEnding, StepCleanup},
}

// TurnSequence returns the ordered states of one turn. The first turn of
// the game has no draw step.
func TurnSequence(firstTurn bool) []TurnEntry {
	sequence := make([]TurnEntry, 0, len(baseTurnSequence))
	for _, entry := range baseTurnSequence {
		if firstTurn && entry.Step == StepDraw {
			continue
		}
		sequence = append(sequence, entry)
	}
	return sequence
}

var setupSequence = []TurnEntry{{PhaseSetup, StepNone}}

// TurnManager walks the turn table. It starts in the setup state at turn 0;
// the first advance enters the untap step of turn 1.
type TurnManager struct {
	orderIndex int
	turnNumber int
	sequence   []TurnEntry
}

// NewTurnManager creates a turn manager in the setup state.
func NewTurnManager() *TurnManager {
	return &TurnManager{
		sequence: setupSequence,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return tm.sequence[tm.orderIndex].Phase
}

// CurrentStep returns the step currently in progress.
func (tm *TurnManager) CurrentStep() Step {
	return tm.sequence[tm.orderIndex].Step
}

// TurnNumber returns the current turn number (0 during setup).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// IsEndOfTurn reports whether the cleanup step is in progress.
func (tm *TurnManager) IsEndOfTurn() bool {
	return tm.CurrentStep() == StepCleanup
}

// AdvanceStep moves to the next state of the table. Leaving the last
// state of a turn (or setup) starts the next turn at the untap step.
// The returned flag is true when a new turn started.
func (tm *TurnManager) AdvanceStep() (Phase, Step, bool) {
	tm.orderIndex++
	newTurn := false
	if tm.orderIndex >= len(tm.sequence) {
		tm.turnNumber++
		tm.orderIndex = 0
		tm.sequence = TurnSequence(tm.turnNumber == 1)
		newTurn = true
	}
	return tm.CurrentPhase(), tm.CurrentStep(), newTurn
}

// Sequence returns a copy of the states of the current turn.
func (tm *TurnManager) Sequence() []TurnEntry {
	out := make([]TurnEntry, len(tm.sequence))
	copy(out, tm.sequence)
	return out
}
