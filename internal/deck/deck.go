// Package deck loads deck lists and turns them into players ready to sit
// at a tabletop.
package deck

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/mana"
)

//go:embed decks/*.yaml
var embeddedDecks embed.FS

// Definition models a deck file.
type Definition struct {
	Name  string      `yaml:"name"`
	Cards []CardEntry `yaml:"cards"`
}

// CardEntry is one line of a deck list.
type CardEntry struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Cost      string `yaml:"cost"`
	Power     int    `yaml:"power"`
	Toughness int    `yaml:"toughness"`
	Produces  string `yaml:"produces"`
	Count     int    `yaml:"count"`
}

// Size returns the number of cards in the deck.
func (d Definition) Size() int {
	n := 0
	for _, c := range d.Cards {
		n += c.Count
	}
	return n
}

// Validate checks that every entry can be turned into cards.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("deck name is required")
	}
	if len(d.Cards) == 0 {
		return fmt.Errorf("deck %s has no cards", d.Name)
	}
	for i, entry := range d.Cards {
		if _, err := entry.template(); err != nil {
			return fmt.Errorf("deck %s card %d: %w", d.Name, i+1, err)
		}
		if entry.Count <= 0 {
			return fmt.Errorf("deck %s card %s: count must be positive", d.Name, entry.Name)
		}
	}
	return nil
}

// template builds the card definition shared by every copy of the entry.
func (e CardEntry) template() (game.Card, error) {
	if strings.TrimSpace(e.Name) == "" {
		return game.Card{}, errors.New("card name is required")
	}
	kind, err := game.ParseCardKind(e.Kind)
	if err != nil {
		return game.Card{}, fmt.Errorf("card %s: %w", e.Name, err)
	}
	cost, err := mana.ParseCost(e.Cost)
	if err != nil {
		return game.Card{}, fmt.Errorf("card %s: %w", e.Name, err)
	}
	card := game.Card{
		Name:      e.Name,
		Kind:      kind,
		ManaCost:  cost,
		Power:     e.Power,
		Toughness: e.Toughness,
	}
	if kind == game.CardLand {
		if e.Produces == "" {
			return game.Card{}, fmt.Errorf("land %s must produce mana", e.Name)
		}
		if card.Produces, err = mana.ParseColor(e.Produces); err != nil {
			return game.Card{}, fmt.Errorf("land %s: %w", e.Name, err)
		}
	}
	return card, nil
}

// Parse decodes and validates a deck from YAML.
func Parse(data []byte) (Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Definition{}, fmt.Errorf("invalid deck yaml: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Definition{}, err
	}
	return d, nil
}

// Load reads a deck file.
func Load(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read deck %s: %w", path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return Definition{}, fmt.Errorf("deck %s: %w", path, err)
	}
	return d, nil
}

// Defaults returns the decks embedded in this package, sorted by file name.
func Defaults() ([]Definition, error) {
	paths, err := fs.Glob(embeddedDecks, "decks/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob embedded decks: %w", err)
	}
	sort.Strings(paths)

	decks := make([]Definition, 0, len(paths))
	for _, path := range paths {
		data, err := fs.ReadFile(embeddedDecks, path)
		if err != nil {
			return nil, fmt.Errorf("read deck %s: %w", path, err)
		}
		d, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("deck %s: %w", path, err)
		}
		decks = append(decks, d)
	}
	return decks, nil
}

// LoadAll loads the given deck files, or the embedded defaults when paths
// is empty.
func LoadAll(paths []string) ([]Definition, error) {
	if len(paths) == 0 {
		return Defaults()
	}
	decks := make([]Definition, 0, len(paths))
	for _, path := range paths {
		d, err := Load(path)
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, nil
}
