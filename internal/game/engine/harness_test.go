package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/handler"
	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/game/strategy"
)

// harness seats Alice (active) and Bob at a tabletop in Alice's precombat
// main phase and builds creatures directly on the battlefield.
type harness struct {
	t      *testing.T
	table  *game.Tabletop
	alice  *game.Player
	bob    *game.Player
	bus    *rules.EventBus
	events []rules.Event
	stack  *StackResolver
	combat *CombatResolver
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, bus: rules.NewEventBus()}
	h.alice = game.NewPlayer("alice", "Alice", 20, strategy.NewScripted())
	h.bob = game.NewPlayer("bob", "Bob", 20, strategy.NewScripted())
	h.table = game.NewTabletop(h.alice, h.bob)
	h.table.TurnID = 2
	h.table.Phase = rules.PhasePrecombatMain

	registry, err := handler.NewRegistry()
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	h.bus.Subscribe(func(e rules.Event) { h.events = append(h.events, e) })
	h.stack = NewStackResolver(registry, h.bus, logger)
	h.combat = NewCombatResolver(h.bus, logger)
	return h
}

func (h *harness) card(owner *game.Player, name string, kind game.CardKind) *game.Card {
	c := &game.Card{ID: owner.ID + "-" + name, Name: name, Kind: kind}
	owner.Hand.AddToTop(c)
	return c
}

func (h *harness) creature(owner *game.Player, name string, power, toughness int) *game.Permanent {
	c := &game.Card{ID: owner.ID + "-" + name, Name: name, Kind: game.CardCreature, Power: power, Toughness: toughness}
	perm := game.NewPermanent(c, owner)
	perm.SummoningSick = false
	h.table.Battlefield.AddToTop(perm)
	return perm
}

func (h *harness) script(p *game.Player) *strategy.Scripted {
	return p.Strategy.(*strategy.Scripted)
}

func (h *harness) attackWith(attackers ...*game.Permanent) {
	h.script(h.table.ActivePlayer).AttackOn(h.table.TurnID, func(*game.Tabletop) game.AttackingDecision {
		return game.AttackingDecision{Attackers: attackers}
	})
}

func (h *harness) block(combats ...game.Combat) {
	h.script(h.table.NonActivePlayer).BlockOn(h.table.TurnID, func(*game.Tabletop) game.BlockingDecision {
		return game.BlockingDecision{Combats: combats}
	})
}

// fight runs a whole combat: declarations followed by damage.
func (h *harness) fight() {
	h.t.Helper()
	h.table.Combat = &game.CombatState{}
	require.True(h.t, h.combat.DeclareAttackers(h.table).IsSuccessful())
	require.True(h.t, h.combat.DeclareBlockers(h.table).IsSuccessful())
	require.NoError(h.t, h.combat.ResolveCombatDamage(h.table))
}

func (h *harness) queue(a *game.Action) game.QueueingResult {
	h.t.Helper()
	result, err := h.stack.QueueAction(h.table, a)
	require.NoError(h.t, err)
	return result
}

func (h *harness) eventsOf(eventType rules.EventType) []rules.Event {
	var out []rules.Event
	for _, e := range h.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
