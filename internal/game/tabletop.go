package game

import (
	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/game/zone"
)

// DefaultMaxHandSize is the hand size enforced in the cleanup step.
const DefaultMaxHandSize = 7

// CombatState records the attackers and blocks of the current combat.
type CombatState struct {
	Attackers []*Permanent
	Combats   []Combat
}

// IsAttacking reports whether the permanent was declared as an attacker.
func (c *CombatState) IsAttacking(p *Permanent) bool {
	if c == nil {
		return false
	}
	for _, a := range c.Attackers {
		if a == p {
			return true
		}
	}
	return false
}

// Tabletop is the aggregate state of one game. It is mutated in place by
// exactly one component at a time and is not safe for concurrent use.
type Tabletop struct {
	ActivePlayer    *Player
	NonActivePlayer *Player

	Battlefield *zone.Zone[*Permanent]
	Stack       *zone.Zone[*Action]
	Exile       *zone.Zone[*Card]

	Phase           rules.Phase
	Step            rules.Step
	TurnID          int
	PlayedLandCount int
	MaxHandSize     int

	Combat *CombatState
}

// NewTabletop seats two players opposite each other. first becomes the
// active player.
func NewTabletop(first, second *Player) *Tabletop {
	first.Opponent = second
	second.Opponent = first
	return &Tabletop{
		ActivePlayer:    first,
		NonActivePlayer: second,
		Battlefield:     zone.New[*Permanent](zone.KindBattlefield, zone.VisibilityPublic),
		Stack:           zone.New[*Action](zone.KindStack, zone.VisibilityPublic),
		Exile:           zone.New[*Card](zone.KindExile, zone.VisibilityPublic),
		Phase:           rules.PhaseSetup,
		Step:            rules.StepNone,
		MaxHandSize:     DefaultMaxHandSize,
	}
}

// Players returns both players, the active one first.
func (t *Tabletop) Players() []*Player {
	return []*Player{t.ActivePlayer, t.NonActivePlayer}
}

// SwapActivePlayer passes the turn to the other player.
func (t *Tabletop) SwapActivePlayer() {
	t.ActivePlayer, t.NonActivePlayer = t.NonActivePlayer, t.ActivePlayer
}

// IsMainPhase reports whether a main phase is in progress.
func (t *Tabletop) IsMainPhase() bool {
	return t.Phase.IsMain()
}

// PermanentsControlledBy returns the battlefield permanents of a player,
// bottom first.
func (t *Tabletop) PermanentsControlledBy(p *Player) []*Permanent {
	var out []*Permanent
	for _, perm := range t.Battlefield.FindAll() {
		if perm.Controller == p {
			out = append(out, perm)
		}
	}
	return out
}

// FindPermanent looks up a battlefield permanent by card ID.
func (t *Tabletop) FindPermanent(id string) (*Permanent, bool) {
	for _, perm := range t.Battlefield.FindAll() {
		if perm.ID() == id {
			return perm, true
		}
	}
	return nil, false
}

// Winner returns the only player who has not lost, or nil.
func (t *Tabletop) Winner() *Player {
	activeLost := t.ActivePlayer.HasLost()
	nonActiveLost := t.NonActivePlayer.HasLost()
	switch {
	case activeLost && !nonActiveLost:
		return t.NonActivePlayer
	case nonActiveLost && !activeLost:
		return t.ActivePlayer
	default:
		return nil
	}
}

// IsOver reports whether any player has lost.
func (t *Tabletop) IsOver() bool {
	return t.ActivePlayer.HasLost() || t.NonActivePlayer.HasLost()
}
