// Package strategy provides the decision-making policies that play a game:
// a random policy, a scripted lookup policy and a passive one.
package strategy

import (
	"fmt"
	"strings"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/random"
)

// Names of the built-in policies.
const (
	NameRandom  = "random"
	NamePassive = "passive"
)

// New builds a named policy. rng is only used by the random policy.
func New(name string, rng random.Generator) (game.Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameRandom, "":
		return NewRandom(rng), nil
	case NamePassive:
		return Passive{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// Passive passes every time, never attacks or blocks and discards from the
// top of its hand.
type Passive struct{}

func (Passive) DeclareAttacker(*game.Tabletop) game.AttackingDecision {
	return game.AttackingDecision{}
}

func (Passive) DeclareBlocker(*game.Tabletop) game.BlockingDecision {
	return game.BlockingDecision{}
}

func (Passive) PerformPrioritizedAction(t *game.Tabletop) *game.Action {
	return game.NewPassAction(t.ActivePlayer)
}

func (Passive) PerformNonPrioritizedAction(t *game.Tabletop) *game.Action {
	return game.NewPassAction(t.NonActivePlayer)
}

func (Passive) PerformRequiredAction(t *game.Tabletop, kind game.ActionKind, parameter game.Parameter) *game.Action {
	if kind == game.ActionDiscarding {
		return game.NewDiscardAction(t.ActivePlayer, parameter.Amount)
	}
	return game.NewPassAction(t.ActivePlayer)
}
