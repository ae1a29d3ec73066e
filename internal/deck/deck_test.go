package deck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/mana"
	"github.com/magefree/mage-sim/internal/game/random"
	"github.com/magefree/mage-sim/internal/game/strategy"
)

const twoCardDeck = `name: Tiny
cards:
  - name: Forest
    kind: land
    produces: G
    count: 2
  - name: Grizzly Bears
    kind: creature
    cost: "{1}{G}"
    power: 2
    toughness: 2
    count: 1
`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(twoCardDeck))
	require.NoError(t, err)
	assert.Equal(t, "Tiny", d.Name)
	assert.Equal(t, 3, d.Size())
}

func TestParseRejectsBrokenDecks(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no name", "cards:\n  - {name: Forest, kind: land, produces: G, count: 1}\n"},
		{"no cards", "name: Empty\n"},
		{"unknown kind", "name: X\ncards:\n  - {name: Jace, kind: planeswalker, count: 1}\n"},
		{"bad cost", "name: X\ncards:\n  - {name: Fireball, kind: sorcery, cost: \"{X}{R}\", count: 1}\n"},
		{"land without color", "name: X\ncards:\n  - {name: Wastes, kind: land, count: 1}\n"},
		{"zero count", "name: X\ncards:\n  - {name: Forest, kind: land, produces: G, count: 0}\n"},
		{"not yaml", "name: [unterminated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoCardDeck), 0o600))

	decks, err := LoadAll([]string{path})
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "Tiny", decks[0].Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	decks, err := Defaults()
	require.NoError(t, err)
	require.Len(t, decks, 2)

	for _, d := range decks {
		assert.Equal(t, 40, d.Size(), d.Name)
		free := 0
		for _, entry := range d.Cards {
			cost, err := mana.ParseCost(entry.Cost)
			require.NoError(t, err)
			if entry.Kind != "land" && cost.IsZero() {
				free += entry.Count
			}
		}
		assert.Positive(t, free, "%s needs cards castable without mana", d.Name)
	}

	fromEmpty, err := LoadAll(nil)
	require.NoError(t, err)
	assert.Equal(t, decks, fromEmpty)
}

func TestCreatePlayer(t *testing.T) {
	d, err := Parse([]byte(twoCardDeck))
	require.NoError(t, err)
	f := NewFactory(nil, 0, zaptest.NewLogger(t))

	p, err := f.CreatePlayer(DefinedPlayer{Deck: d, Strategy: strategy.Passive{}})
	require.NoError(t, err)
	assert.Equal(t, "Tiny", p.Name)
	assert.Equal(t, DefaultStartingLife, p.Life)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.Hand.IsEmpty())

	cards := p.Library.FindAll()
	require.Len(t, cards, 3)
	assert.Equal(t, game.CardLand, cards[0].Kind)
	assert.Equal(t, mana.ColorGreen, cards[0].Produces)
	assert.NotSame(t, cards[0], cards[1])
	assert.NotEqual(t, cards[0].ID, cards[1].ID)
	assert.Equal(t, "{1}{G}", cards[2].ManaCost.String())
	assert.Equal(t, 2, cards[2].Power)
}

func TestCreatePlayerIsReproducibleFromSeed(t *testing.T) {
	d, err := Parse([]byte(twoCardDeck))
	require.NoError(t, err)

	ids := func(seed int64) []string {
		f := NewFactory(random.NewSource(seed), 20, nil)
		p, err := f.CreatePlayer(DefinedPlayer{Name: "Alice", Deck: d, Strategy: strategy.Passive{}})
		require.NoError(t, err)
		out := []string{p.ID}
		for _, c := range p.Library.FindAll() {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, ids(4), ids(4))
	assert.NotEqual(t, ids(4), ids(5))
}

func TestCreatePlayerRequiresStrategy(t *testing.T) {
	d, err := Parse([]byte(twoCardDeck))
	require.NoError(t, err)
	_, err = NewFactory(nil, 20, nil).CreatePlayer(DefinedPlayer{Deck: d})
	assert.Error(t, err)
}
