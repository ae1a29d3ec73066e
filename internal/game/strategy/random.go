package strategy

import (
	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/random"
)

// Random plays lands when it may, casts affordable cards, attacks and
// blocks at random. It only proposes actions it believes are legal, but the
// engine still validates them.
type Random struct {
	rng random.Generator
}

// NewRandom creates a random policy drawing from rng.
func NewRandom(rng random.Generator) *Random {
	return &Random{rng: rng}
}

func (r *Random) DeclareAttacker(t *game.Tabletop) game.AttackingDecision {
	var attackers []*game.Permanent
	for _, perm := range t.PermanentsControlledBy(t.ActivePlayer) {
		if !perm.IsCreature() || perm.Tapped || perm.SummoningSick || perm.Power() <= 0 {
			continue
		}
		if r.coin() {
			attackers = append(attackers, perm)
		}
	}
	return game.AttackingDecision{Attackers: attackers}
}

func (r *Random) DeclareBlocker(t *game.Tabletop) game.BlockingDecision {
	if t.Combat == nil {
		return game.BlockingDecision{}
	}
	var available []*game.Permanent
	for _, perm := range t.PermanentsControlledBy(t.NonActivePlayer) {
		if perm.IsCreature() && !perm.Tapped {
			available = append(available, perm)
		}
	}

	var decision game.BlockingDecision
	for _, attacker := range t.Combat.Attackers {
		if len(available) == 0 {
			break
		}
		if !r.coin() {
			continue
		}
		i := r.pick(len(available))
		decision.Combats = append(decision.Combats, game.Combat{
			Attacker: attacker,
			Blockers: []*game.Permanent{available[i]},
		})
		available = append(available[:i], available[i+1:]...)
	}
	return decision
}

func (r *Random) PerformPrioritizedAction(t *game.Tabletop) *game.Action {
	me := t.ActivePlayer
	var candidates []*game.Action
	sorceryTiming := t.IsMainPhase() && t.Stack.IsEmpty()
	for _, card := range me.Hand.FindAll() {
		switch {
		case onStack(t, card):
		case card.IsLand():
			if sorceryTiming && t.PlayedLandCount == 0 {
				candidates = append(candidates, game.NewPlayLandAction(me, card))
			}
		case !me.ManaPool.CanPay(card.ManaCost):
		case card.Kind.HasSorceryTiming():
			if sorceryTiming {
				candidates = append(candidates, game.NewPlayNonLandAction(me, card))
			}
		default:
			candidates = append(candidates, game.NewPlayNonLandAction(me, card))
		}
	}
	return r.choose(me, candidates)
}

func (r *Random) PerformNonPrioritizedAction(t *game.Tabletop) *game.Action {
	me := t.NonActivePlayer
	var candidates []*game.Action
	for _, card := range me.Hand.FindAll() {
		if card.Kind == game.CardInstant && me.ManaPool.CanPay(card.ManaCost) && !onStack(t, card) {
			candidates = append(candidates, game.NewPlayNonLandAction(me, card))
		}
	}
	return r.choose(me, candidates)
}

func (r *Random) PerformRequiredAction(t *game.Tabletop, kind game.ActionKind, parameter game.Parameter) *game.Action {
	me := t.ActivePlayer
	if kind != game.ActionDiscarding {
		return game.NewPassAction(me)
	}
	hand := me.Hand.FindAll()
	chosen := make([]*game.Card, 0, parameter.Amount)
	for len(chosen) < parameter.Amount && len(hand) > 0 {
		i := r.pick(len(hand))
		chosen = append(chosen, hand[i])
		hand = append(hand[:i], hand[i+1:]...)
	}
	return game.NewDiscardAction(me, parameter.Amount, chosen...)
}

// choose picks one of the candidates most of the time and passes otherwise.
func (r *Random) choose(me *game.Player, candidates []*game.Action) *game.Action {
	if len(candidates) == 0 || r.rng.RollDice(4) == 1 {
		return game.NewPassAction(me)
	}
	return candidates[r.pick(len(candidates))]
}

func (r *Random) coin() bool {
	return r.rng.RollDice(2) == 1
}

func (r *Random) pick(n int) int {
	return r.rng.RollDice(n) - 1
}

func onStack(t *game.Tabletop, card *game.Card) bool {
	for _, a := range t.Stack.FindAll() {
		for _, c := range a.Target.Cards {
			if c == card {
				return true
			}
		}
	}
	return false
}
