package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magefree/mage-sim/internal/game/mana"
)

func TestRollCostsFlattensAndDropsFreeParts(t *testing.T) {
	forest := NewPermanent(&Card{ID: "forest", Name: "Forest", Kind: CardLand}, nil)
	green := ManaCost(mana.NewCost().Add(mana.ColorGreen, 1).Build())

	assert.Equal(t, CostNone, RollCosts().Kind)
	assert.Equal(t, CostNone, RollCosts(NoCost(), NoCost()).Kind)
	assert.Equal(t, green, RollCosts(NoCost(), green))

	rolled := RollCosts(green, RollCosts(NoCost(), TapCost(forest), green))
	require.Equal(t, CostComposite, rolled.Kind)
	parts := rolled.Unroll()
	require.Len(t, parts, 3)
	assert.Equal(t, CostPayingMana, parts[0].Kind)
	assert.Equal(t, CostTapping, parts[1].Kind)
	assert.Equal(t, CostPayingMana, parts[2].Kind)
}

func TestRollEffects(t *testing.T) {
	assert.Equal(t, EffectNone, RollEffects().Kind)

	one := ProduceMana(mana.ColorRed, 1)
	assert.Equal(t, one, RollEffects(Effect{}, one))

	both := RollEffects(one, ProduceMana(mana.ColorBlue, 2))
	assert.Equal(t, EffectComposite, both.Kind)
	assert.Len(t, both.Unroll(), 2)
}

func TestValidationCombineKeepsOrder(t *testing.T) {
	assert.True(t, Valid().Combine(Valid(), Valid()).IsSuccessful())
	assert.Nil(t, Valid().Messages())

	combined := Invalid("first", nil).Combine(Valid(), Invalid("second", nil, "305.2"))
	assert.False(t, combined.IsSuccessful())
	assert.Equal(t, []string{"first", "second"}, combined.Messages())
	assert.Equal(t, []string{"305.2"}, combined.Reasons[1].Rules)
}

func TestNewPermanentKeepsCardIdentity(t *testing.T) {
	owner := NewPlayer("alice", "Alice", 20, nil)
	bears := &Card{ID: "bears", Name: "Grizzly Bears", Kind: CardCreature, Power: 2, Toughness: 2}
	forest := &Card{ID: "forest", Name: "Forest", Kind: CardLand}

	creature := NewPermanent(bears, owner)
	assert.Equal(t, "bears", creature.ID())
	assert.Same(t, owner, creature.Controller)
	assert.True(t, creature.SummoningSick)
	assert.Equal(t, "Grizzly Bears (2/2)", creature.String())

	land := NewPermanent(forest, owner)
	assert.False(t, land.SummoningSick)
	assert.False(t, land.HasLethalDamage())

	creature.Damage = 2
	assert.True(t, creature.HasLethalDamage())
}

func TestCardCost(t *testing.T) {
	memnite := &Card{Name: "Memnite", Kind: CardArtifact}
	assert.Equal(t, CostNone, memnite.Cost().Kind)

	bears := &Card{Name: "Grizzly Bears", Kind: CardCreature, ManaCost: mana.NewCost().Generic(1).Add(mana.ColorGreen, 1).Build()}
	cost := bears.Cost()
	assert.Equal(t, CostPayingMana, cost.Kind)
	assert.Equal(t, "{1}{G}", cost.String())
}

func TestCardKindTiming(t *testing.T) {
	assert.True(t, CardCreature.HasSorceryTiming())
	assert.True(t, CardSorcery.HasSorceryTiming())
	assert.False(t, CardInstant.HasSorceryTiming())
	assert.False(t, CardLand.HasSorceryTiming())
	assert.False(t, CardSorcery.IsPermanent())
	assert.True(t, CardLand.IsPermanent())

	kind, err := ParseCardKind(" creature ")
	require.NoError(t, err)
	assert.Equal(t, CardCreature, kind)
	_, err = ParseCardKind("planeswalker")
	assert.Error(t, err)
}

func TestTabletopWinner(t *testing.T) {
	alice := NewPlayer("alice", "Alice", 20, nil)
	bob := NewPlayer("bob", "Bob", 20, nil)
	table := NewTabletop(alice, bob)

	assert.Same(t, bob, alice.Opponent)
	assert.False(t, table.IsOver())
	assert.Nil(t, table.Winner())

	bob.Life = 0
	assert.True(t, table.IsOver())
	assert.Same(t, alice, table.Winner())

	alice.Lose("drew from an empty library")
	alice.Lose("ignored")
	assert.Equal(t, "drew from an empty library", alice.LossReason)
	assert.Nil(t, table.Winner())
}

func TestTabletopSwapAndLookup(t *testing.T) {
	alice := NewPlayer("alice", "Alice", 20, nil)
	bob := NewPlayer("bob", "Bob", 20, nil)
	table := NewTabletop(alice, bob)
	perm := NewPermanent(&Card{ID: "x", Name: "X", Kind: CardCreature}, bob)
	table.Battlefield.AddToTop(perm)

	table.SwapActivePlayer()
	assert.Equal(t, []*Player{bob, alice}, table.Players())
	assert.Equal(t, []*Permanent{perm}, table.PermanentsControlledBy(bob))
	assert.Empty(t, table.PermanentsControlledBy(alice))

	found, ok := table.FindPermanent("x")
	assert.True(t, ok)
	assert.Same(t, perm, found)
	_, ok = table.FindPermanent("y")
	assert.False(t, ok)
}
