package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/mana"
	"github.com/magefree/mage-sim/internal/game/rules"
)

type fixture struct {
	table  *game.Tabletop
	alice  *game.Player
	bob    *game.Player
	reg    *Registry
	forest *game.Card
	bears  *game.Card
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := NewRegistry()
	require.NoError(t, err)

	alice := game.NewPlayer("p1", "Alice", 20, nil)
	bob := game.NewPlayer("p2", "Bob", 20, nil)
	table := game.NewTabletop(alice, bob)
	table.Phase = rules.PhasePrecombatMain
	table.TurnID = 2

	forest := &game.Card{ID: "forest", Name: "Forest", Kind: game.CardLand, Produces: mana.ColorGreen}
	bears := &game.Card{
		ID:        "bears",
		Name:      "Grizzly Bears",
		Kind:      game.CardCreature,
		ManaCost:  mana.NewCost().Add(mana.ColorGreen, 1).Generic(1).Build(),
		Power:     2,
		Toughness: 2,
	}
	alice.Hand.AddToTop(forest, bears)

	return &fixture{table: table, alice: alice, bob: bob, reg: reg, forest: forest, bears: bears}
}

func (f *fixture) validate(t *testing.T, a *game.Action) game.ValidationResult {
	t.Helper()
	h, err := f.reg.ActionHandler(a.Kind)
	require.NoError(t, err)
	result, err := h.Validate(f.table, a)
	require.NoError(t, err)
	return result
}

func (f *fixture) resolve(t *testing.T, a *game.Action) {
	t.Helper()
	h, err := f.reg.ActionHandler(a.Kind)
	require.NoError(t, err)
	require.NoError(t, h.Resolve(f.table, a))
}

func TestRegistryCoversEveryKind(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	for _, kind := range game.ActionKinds() {
		h, err := reg.ActionHandler(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, h.Kind())
	}
	for _, kind := range game.CostKinds() {
		h, err := reg.CostHandler(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, h.Kind())
	}

	_, err = reg.ActionHandler(game.ActionKind(99))
	assert.True(t, errors.Is(err, game.ErrMissingHandler))
	_, err = reg.CostHandler(game.CostKind(99))
	assert.True(t, errors.Is(err, game.ErrMissingHandler))
}

func TestRegistryRejectsIncompleteTable(t *testing.T) {
	_, err := NewRegistryWith(
		map[game.ActionKind]ActionHandler{game.ActionPassing: newPassingHandler()},
		map[game.CostKind]CostHandler{game.CostNone: newDoingNothingHandler()},
	)
	assert.True(t, errors.Is(err, game.ErrMissingHandler))
}

func TestRegistryRejectsMismatchedHandler(t *testing.T) {
	actions := map[game.ActionKind]ActionHandler{
		game.ActionPassing:               newPassingHandler(),
		game.ActionPlayingLand:           newPassingHandler(),
		game.ActionPlayingNonLand:        newPlayingNonLandHandler(),
		game.ActionDiscarding:            newDiscardingHandler(),
		game.ActionActivatingManaAbility: newActivatingManaAbilityHandler(),
	}
	costs := map[game.CostKind]CostHandler{
		game.CostNone:       newDoingNothingHandler(),
		game.CostTapping:    newTappingHandler(),
		game.CostPayingMana: newPayingManaHandler(),
	}
	_, err := NewRegistryWith(actions, costs)
	assert.True(t, errors.Is(err, game.ErrKindMismatch))
}

func TestHandlerKindGuard(t *testing.T) {
	f := newFixture(t)
	h, err := f.reg.ActionHandler(game.ActionPlayingLand)
	require.NoError(t, err)

	pass := game.NewPassAction(f.alice)
	_, err = h.Validate(f.table, pass)
	assert.True(t, errors.Is(err, game.ErrKindMismatch))
	assert.True(t, errors.Is(h.Resolve(f.table, pass), game.ErrKindMismatch))

	ch, err := f.reg.CostHandler(game.CostTapping)
	require.NoError(t, err)
	_, err = ch.Validate(f.table, f.alice, game.NoCost())
	assert.True(t, errors.Is(err, game.ErrKindMismatch))
}

func TestFindCost(t *testing.T) {
	f := newFixture(t)

	h, err := f.reg.ActionHandler(game.ActionPlayingNonLand)
	require.NoError(t, err)
	cost, err := h.FindCost(game.NewPlayNonLandAction(f.alice, f.bears))
	require.NoError(t, err)
	assert.Equal(t, game.CostPayingMana, cost.Kind)
	assert.Equal(t, 2, cost.Mana.Total())

	multi := game.NewPlayNonLandAction(f.alice, f.bears)
	multi.Target.Cards = append(multi.Target.Cards, f.forest)
	_, err = h.FindCost(multi)
	assert.True(t, errors.Is(err, game.ErrMultipleTargetCost))

	pass, err := f.reg.ActionHandler(game.ActionPassing)
	require.NoError(t, err)
	cost, err = pass.FindCost(game.NewPassAction(f.alice))
	require.NoError(t, err)
	assert.Equal(t, game.CostNone, cost.Kind)

	discard, err := f.reg.ActionHandler(game.ActionDiscarding)
	require.NoError(t, err)
	cost, err = discard.FindCost(game.NewDiscardAction(f.alice, 2, f.bears, f.forest))
	require.NoError(t, err)
	assert.Equal(t, game.CostNone, cost.Kind)
}

func TestPlayingLandIsSpecial(t *testing.T) {
	f := newFixture(t)
	h, err := f.reg.ActionHandler(game.ActionPlayingLand)
	require.NoError(t, err)
	assert.True(t, h.IsSpecialAction())

	pass, err := f.reg.ActionHandler(game.ActionPassing)
	require.NoError(t, err)
	assert.False(t, pass.IsSpecialAction())
}

func TestPlayingLandStackNotEmpty(t *testing.T) {
	f := newFixture(t)
	f.table.Stack.AddToTop(game.NewPassAction(f.bob))

	result := f.validate(t, game.NewPlayLandAction(f.alice, f.forest))

	require.False(t, result.IsSuccessful())
	assert.Equal(t, []string{"Stack is not empty when playing a land!"}, result.Messages())
	assert.Contains(t, result.Reasons[0].Rules, rules.Rule305_1)
	assert.True(t, f.alice.Hand.Contains(f.forest))
	assert.True(t, f.table.Battlefield.IsEmpty())
}

func TestPlayingLandRestrictions(t *testing.T) {
	f := newFixture(t)
	f.bob.Hand.AddToTop(&game.Card{ID: "island", Name: "Island", Kind: game.CardLand})
	bobLand, _ := f.bob.Hand.FindFromTop()

	result := f.validate(t, game.NewPlayLandAction(f.bob, bobLand))
	assert.Equal(t, []string{"Only the active player can play a land!"}, result.Messages())

	f.table.PlayedLandCount = 1
	result = f.validate(t, game.NewPlayLandAction(f.alice, f.forest))
	assert.Equal(t, []string{"Active player has already played a land this turn!"}, result.Messages())

	f.table.PlayedLandCount = 0
	result = f.validate(t, game.NewPlayLandAction(f.alice, f.bears))
	assert.Equal(t, []string{MsgNotALand}, result.Messages())
}

func TestPlayingLandResolve(t *testing.T) {
	f := newFixture(t)
	action := game.NewPlayLandAction(f.alice, f.forest)
	require.True(t, f.validate(t, action).IsSuccessful())

	f.resolve(t, action)

	assert.False(t, f.alice.Hand.Contains(f.forest))
	perm, ok := f.table.FindPermanent(f.forest.ID)
	require.True(t, ok)
	assert.Same(t, f.forest, perm.Card)
	assert.Same(t, f.alice, perm.Owner)
	assert.Same(t, f.alice, perm.Controller)
	assert.False(t, perm.SummoningSick)
	assert.Equal(t, 1, f.table.PlayedLandCount)
}

func TestPlayingNonLandResolve(t *testing.T) {
	f := newFixture(t)
	action := game.NewPlayNonLandAction(f.alice, f.bears)

	f.resolve(t, action)

	perm, ok := f.table.FindPermanent(f.bears.ID)
	require.True(t, ok)
	assert.True(t, perm.SummoningSick)
	assert.False(t, f.alice.Hand.Contains(f.bears))
}

func TestPlayingNonLandFizzlesWhenCardLeftHand(t *testing.T) {
	f := newFixture(t)
	action := game.NewPlayNonLandAction(f.alice, f.bears)
	f.alice.Hand.Remove(f.bears)
	f.alice.Graveyard.AddToTop(f.bears)

	f.resolve(t, action)

	assert.True(t, f.table.Battlefield.IsEmpty())
	assert.True(t, f.alice.Graveyard.Contains(f.bears))
}

func TestPlayingNonLandValidation(t *testing.T) {
	f := newFixture(t)
	f.table.Stack.AddToTop(game.NewPlayNonLandAction(f.alice, f.bears))

	result := f.validate(t, game.NewPlayNonLandAction(f.alice, f.bears))
	assert.Contains(t, result.Messages(), MsgCardAlreadyOnStack)
	assert.Contains(t, result.Messages(), MsgSorceryStackNotEmpty)

	result = f.validate(t, game.NewPlayNonLandAction(f.alice, f.forest))
	assert.Contains(t, result.Messages(), MsgIsALand)
}

func TestDiscardShortfallPullsFromTopOfHand(t *testing.T) {
	f := newFixture(t)
	extra1 := &game.Card{ID: "c1", Name: "Shock", Kind: game.CardInstant}
	extra2 := &game.Card{ID: "c2", Name: "Divination", Kind: game.CardSorcery}
	f.alice.Hand.AddToTop(extra1, extra2)
	handBefore := f.alice.Hand.Quantity()

	action := game.NewDiscardAction(f.alice, 3, f.forest)
	require.True(t, f.validate(t, action).IsSuccessful())
	f.resolve(t, action)

	assert.Equal(t, 3, f.alice.Graveyard.Quantity())
	assert.Equal(t, handBefore-3, f.alice.Hand.Quantity())
	assert.True(t, f.alice.Graveyard.Contains(f.forest))
	assert.True(t, f.alice.Graveyard.Contains(extra2))
	assert.True(t, f.alice.Graveyard.Contains(extra1))
	assert.True(t, f.alice.Hand.Contains(f.bears))
}

func TestDiscardExcessTargetsAreTruncated(t *testing.T) {
	f := newFixture(t)

	action := game.NewDiscardAction(f.alice, 1, f.bears, f.forest)
	f.resolve(t, action)

	assert.Equal(t, 1, f.alice.Graveyard.Quantity())
	assert.True(t, f.alice.Graveyard.Contains(f.bears))
	assert.True(t, f.alice.Hand.Contains(f.forest))
}

func TestDiscardValidation(t *testing.T) {
	f := newFixture(t)
	stranger := &game.Card{ID: "x", Name: "Stranger", Kind: game.CardInstant}

	result := f.validate(t, game.NewDiscardAction(f.alice, -1, stranger))
	assert.Equal(t, []string{MsgNegativeDiscard, MsgCardNotInHand}, result.Messages())
}

func TestActivatingManaAbilityNotSupported(t *testing.T) {
	f := newFixture(t)
	land := game.NewPermanent(f.forest, f.alice)
	f.alice.Hand.Remove(f.forest)
	f.table.Battlefield.AddToTop(land)

	action := game.NewActivateManaAbilityAction(f.alice, land)
	require.True(t, f.validate(t, action).IsSuccessful())

	h, err := f.reg.ActionHandler(action.Kind)
	require.NoError(t, err)
	assert.True(t, errors.Is(h.Resolve(f.table, action), game.ErrNotSupported))
}

func TestTappingCost(t *testing.T) {
	f := newFixture(t)
	land := game.NewPermanent(f.forest, f.alice)
	f.table.Battlefield.AddToTop(land)
	h, err := f.reg.CostHandler(game.CostTapping)
	require.NoError(t, err)

	result, err := h.Validate(f.table, f.alice, game.TapCost(land))
	require.NoError(t, err)
	assert.True(t, result.IsSuccessful())

	require.NoError(t, h.Resolve(f.table, f.alice, game.TapCost(land)))
	assert.True(t, land.Tapped)

	result, err = h.Validate(f.table, f.alice, game.TapCost(land))
	require.NoError(t, err)
	assert.Equal(t, []string{MsgAlreadyTapped}, result.Messages())
}

func TestPayingManaCost(t *testing.T) {
	f := newFixture(t)
	h, err := f.reg.CostHandler(game.CostPayingMana)
	require.NoError(t, err)

	result, err := h.Validate(f.table, f.alice, f.bears.Cost())
	require.NoError(t, err)
	assert.Equal(t, []string{MsgNotEnoughMana}, result.Messages())

	f.alice.ManaPool = mana.NewPool().Add(mana.ColorGreen, 2).Build()
	result, err = h.Validate(f.table, f.alice, f.bears.Cost())
	require.NoError(t, err)
	assert.True(t, result.IsSuccessful())

	assert.True(t, errors.Is(h.Resolve(f.table, f.alice, f.bears.Cost()), game.ErrNotSupported))
}

func TestCompositeCostDelegates(t *testing.T) {
	f := newFixture(t)
	land := game.NewPermanent(f.forest, f.alice)
	land.Tapped = true
	f.table.Battlefield.AddToTop(land)

	cost := game.RollCosts(game.TapCost(land), f.bears.Cost())
	require.Equal(t, game.CostComposite, cost.Kind)

	h, err := f.reg.CostHandler(game.CostComposite)
	require.NoError(t, err)
	result, err := h.Validate(f.table, f.alice, cost)
	require.NoError(t, err)
	assert.Equal(t, []string{MsgAlreadyTapped, MsgNotEnoughMana}, result.Messages())
}
