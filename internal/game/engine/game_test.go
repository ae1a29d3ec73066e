package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/random"
	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/game/strategy"
)

func seatPlayer(id string, librarySize int, s game.Strategy) *game.Player {
	p := game.NewPlayer(id, id, 20, s)
	for i := 0; i < librarySize; i++ {
		var c *game.Card
		switch i % 3 {
		case 0:
			c = &game.Card{Name: "Forest", Kind: game.CardLand}
		case 1:
			c = &game.Card{Name: "Memnite", Kind: game.CardArtifact}
		default:
			c = &game.Card{Name: "Ornithopter Pilot", Kind: game.CardCreature, Power: 2, Toughness: 1}
		}
		c.ID = fmt.Sprintf("%s-%02d", id, i)
		p.Library.AddToTop(c)
	}
	return p
}

func TestNewGame_RequiresPlayersWithStrategies(t *testing.T) {
	_, err := NewGame(nil, seatPlayer("b", 0, strategy.Passive{}), Options{})
	assert.Error(t, err)

	_, err = NewGame(seatPlayer("a", 0, nil), seatPlayer("b", 0, strategy.Passive{}), Options{})
	assert.Error(t, err)
}

func TestGame_SetupDrawsOpeningHands(t *testing.T) {
	g, err := NewGame(seatPlayer("a", 20, strategy.Passive{}), seatPlayer("b", 20, strategy.Passive{}), Options{Seed: 3})
	require.NoError(t, err)

	require.NoError(t, g.Setup())
	require.NoError(t, g.Setup(), "setup runs once")

	for _, p := range g.Tabletop().Players() {
		assert.Equal(t, DefaultOpeningHand, p.Hand.Quantity())
		assert.Equal(t, 13, p.Library.Quantity())
	}
}

func TestGame_PassivePlayersReachTurnLimit(t *testing.T) {
	g, err := NewGame(seatPlayer("a", 40, strategy.Passive{}), seatPlayer("b", 40, strategy.Passive{}), Options{
		Seed:     1,
		MaxTurns: 6,
		Logger:   zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	result := g.Play()

	assert.False(t, result.HasError)
	assert.Nil(t, result.WinningPlayer)
	assert.Equal(t, 6, result.Turns)
	assert.Equal(t, []string{"turn limit of 6 reached"}, result.Messages)
	assert.Equal(t, int64(1), result.Seed)
}

func TestGame_SecondPlayerDecksOut(t *testing.T) {
	bus := rules.NewEventBus()
	var over []rules.Event
	bus.SubscribeTyped(rules.EventGameOver, func(e rules.Event) { over = append(over, e) })

	g, err := NewGame(seatPlayer("a", 8, strategy.Passive{}), seatPlayer("b", 8, strategy.Passive{}), Options{
		Seed:   9,
		Bus:    bus,
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	require.NoError(t, g.Setup())
	first := g.Tabletop().ActivePlayer

	result := g.Play()

	assert.False(t, result.HasError)
	assert.Equal(t, 4, result.Turns)
	require.NotNil(t, result.WinningPlayer)
	assert.Same(t, first, result.WinningPlayer)
	assert.Equal(t, []string{first.Opponent.Name + " lost: drew from an empty library"}, result.Messages)
	require.Len(t, over, 1)
	assert.Equal(t, first.ID, over[0].PlayerID)
}

func TestGame_TerminatePolicyReportsError(t *testing.T) {
	cheat := strategy.NewScripted()
	g, err := NewGame(seatPlayer("a", 20, cheat), seatPlayer("b", 20, cheat), Options{
		Seed:   5,
		Policy: PolicyTerminate,
	})
	require.NoError(t, err)
	require.NoError(t, g.Setup())
	active := g.Tabletop().ActivePlayer
	card, ok := active.Hand.FindFromTop()
	require.True(t, ok)
	upkeep := strategy.Moment{Turn: 1, Phase: rules.PhaseBeginning, Step: rules.StepUpkeep}
	cheat.OnPriority(upkeep, func(t *game.Tabletop) *game.Action {
		return game.NewPlayNonLandAction(t.ActivePlayer, card)
	})

	result := g.Play()

	assert.True(t, result.HasError)
	assert.Equal(t, 1, result.Turns)
	assert.Contains(t, result.Messages[0], "illegal action by "+active.Name)
}

func TestGame_SameSeedPlaysTheSameGame(t *testing.T) {
	play := func(seed int64) ([]rules.Event, game.SimulationResult) {
		bus := rules.NewEventBus()
		var events []rules.Event
		bus.Subscribe(func(e rules.Event) { events = append(events, e) })
		a := seatPlayer("a", 40, strategy.NewRandom(random.NewSource(seed+1)))
		b := seatPlayer("b", 40, strategy.NewRandom(random.NewSource(seed+2)))
		g, err := NewGame(a, b, Options{Seed: seed, MaxTurns: 20, Bus: bus})
		require.NoError(t, err)
		return events, g.Play()
	}

	firstEvents, first := play(77)
	secondEvents, second := play(77)

	assert.False(t, first.HasError)
	assert.Equal(t, first.Turns, second.Turns)
	assert.Equal(t, first.Messages, second.Messages)
	assert.Equal(t, firstEvents, secondEvents)
	assert.NotEmpty(t, firstEvents)
}
