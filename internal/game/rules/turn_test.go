package rules

import "testing"

func TestNextPhaseCycles(t *testing.T) {
	expected := []Phase{
		PhaseBeginning,
		PhasePrecombatMain,
		PhaseCombat,
		PhasePostcombatMain,
		PhaseEnding,
		PhaseBeginning,
		PhasePrecombatMain,
	}

	phase := PhaseSetup
	for i, exp := range expected {
		phase = Next(phase)
		if phase != exp {
			t.Fatalf("transition %d: expected %s, got %s", i, exp, phase)
		}
	}
}

func TestNextPhaseIsTotal(t *testing.T) {
	for p := range phaseNames {
		if next := Next(p); next == PhaseSetup {
			t.Fatalf("Next(%s) must never return to setup", p)
		}
	}
}

func TestTurnManagerStartsInSetup(t *testing.T) {
	tm := NewTurnManager()

	if tm.CurrentPhase() != PhaseSetup || tm.CurrentStep() != StepNone {
		t.Fatalf("expected SETUP/NONE, got %s/%s", tm.CurrentPhase(), tm.CurrentStep())
	}
	if tm.TurnNumber() != 0 {
		t.Fatalf("expected turn 0, got %d", tm.TurnNumber())
	}
}

func TestTurnManagerFirstTurnSkipsDraw(t *testing.T) {
	tm := NewTurnManager()

	expected := []TurnEntry{
		{PhaseBeginning, StepUntap},
		{PhaseBeginning, StepUpkeep},
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

	for i, exp := range expected {
		phase, step, newTurn := tm.AdvanceStep()
		if phase != exp.Phase || step != exp.Step {
			t.Fatalf("transition %d: expected %s, got %s/%s", i, exp, phase, step)
		}
		if newTurn != (i == 0) {
			t.Fatalf("transition %d: unexpected new turn flag %v", i, newTurn)
		}
		if tm.TurnNumber() != 1 {
			t.Fatalf("transition %d: expected turn 1, got %d", i, tm.TurnNumber())
		}
	}
	if !tm.IsEndOfTurn() {
		t.Fatal("expected end of turn after cleanup")
	}
}

func TestTurnManagerSecondTurnHasTwelveSteps(t *testing.T) {
	tm := NewTurnManager()
	for i := 0; i < len(TurnSequence(true)); i++ {
		tm.AdvanceStep()
	}

	transitions := 0
	for {
		_, _, newTurn := tm.AdvanceStep()
		if newTurn && transitions > 0 {
			break
		}
		transitions++
	}

	if transitions != 12 {
		t.Fatalf("expected 12 transitions on turn 2, got %d", transitions)
	}
	if tm.TurnNumber() != 3 {
		t.Fatalf("expected turn 3 after wrap, got %d", tm.TurnNumber())
	}
	if tm.CurrentPhase() != PhaseBeginning || tm.CurrentStep() != StepUntap {
		t.Fatalf("expected new turn to start at BEGINNING/UNTAP, got %s/%s", tm.CurrentPhase(), tm.CurrentStep())
	}
}

func TestTurnSequenceLengths(t *testing.T) {
	if n := len(TurnSequence(true)); n != 11 {
		t.Fatalf("expected 11 entries on the first turn, got %d", n)
	}
	if n := len(TurnSequence(false)); n != 12 {
		t.Fatalf("expected 12 entries on later turns, got %d", n)
	}
}
