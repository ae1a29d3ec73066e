package game

// Strategy is the decision-making boundary of a player. Prioritized,
// attacking and required decisions are made for the active player;
// non-prioritized and blocking decisions for the non-active player.
// A nil Action is treated as a pass.
type Strategy interface {
	DeclareAttacker(t *Tabletop) AttackingDecision
	DeclareBlocker(t *Tabletop) BlockingDecision
	PerformPrioritizedAction(t *Tabletop) *Action
	PerformNonPrioritizedAction(t *Tabletop) *Action
	PerformRequiredAction(t *Tabletop, kind ActionKind, parameter Parameter) *Action
}

// AttackingDecision lists the permanents declared as attackers.
type AttackingDecision struct {
	Attackers []*Permanent
}

// Combat pairs an attacker with the permanents blocking it.
type Combat struct {
	Attacker *Permanent
	Blockers []*Permanent
}

// IsBlocked reports whether any blocker was assigned.
func (c Combat) IsBlocked() bool {
	return len(c.Blockers) > 0
}

// BlockingDecision lists the declared blocks.
type BlockingDecision struct {
	Combats []Combat
}
