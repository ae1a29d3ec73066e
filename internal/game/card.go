package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magefree/mage-sim/internal/game/mana"
)

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// CardKind is the card type of a card definition.
type CardKind int

const (
	CardLand CardKind = iota
	CardCreature
	CardInstant
	CardSorcery
	CardArtifact
	CardEnchantment
)

var cardKindNames = map[CardKind]string{
	CardLand:        "LAND",
	CardCreature:    "CREATURE",
	CardInstant:     "INSTANT",
	CardSorcery:     "SORCERY",
	CardArtifact:    "ARTIFACT",
	CardEnchantment: "ENCHANTMENT",
}

func (k CardKind) String() string {
	if name, ok := cardKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CARD_KIND_%d", int(k))
}

// ParseCardKind resolves a card kind from its name, case-insensitively.
func ParseCardKind(s string) (CardKind, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for kind, name := range cardKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown card kind: %q", s)
}

// IsPermanent reports whether cards of this kind enter the battlefield.
func (k CardKind) IsPermanent() bool {
	return k != CardInstant && k != CardSorcery
}

// HasSorceryTiming reports whether cards of this kind can only be cast in
// the owner's main phase with an empty stack.
func (k CardKind) HasSorceryTiming() bool {
	return k != CardInstant && k != CardLand
}

// Card is an immutable card definition. Identity is the pointer and ID.
type Card struct {
	ID        string
	Name      string
	Kind      CardKind
	ManaCost  mana.Cost
	Power     int
	Toughness int
	Produces  mana.Color // lands only
}

func (c *Card) String() string {
	if c == nil {
		return "<nil card>"
	}
	return c.Name
}

// IsLand reports whether the card is a land.
func (c *Card) IsLand() bool { return c.Kind == CardLand }

// IsCreature reports whether the card is a creature.
func (c *Card) IsCreature() bool { return c.Kind == CardCreature }

// Cost returns what a player pays to play the card.
func (c *Card) Cost() Cost {
	if c.ManaCost.IsZero() {
		return NoCost()
	}
	return ManaCost(c.ManaCost)
}

// Permanent is a card on the battlefield.
type Permanent struct {
	Card          *Card
	Owner         *Player
	Controller    *Player
	Tapped        bool
	SummoningSick bool
	Damage        int
}

// NewPermanent creates the battlefield instance of a card. The permanent
// keeps the card's identity; creatures enter summoning sick.
func NewPermanent(card *Card, owner *Player) *Permanent {
	return &Permanent{
		Card:          card,
		Owner:         owner,
		Controller:    owner,
		SummoningSick: card.IsCreature(),
	}
}

// ID returns the identifier of the underlying card.
func (p *Permanent) ID() string { return p.Card.ID }

// Name returns the name of the underlying card.
func (p *Permanent) Name() string { return p.Card.Name }

// IsCreature reports whether the permanent is a creature.
func (p *Permanent) IsCreature() bool { return p.Card.IsCreature() }

// IsLand reports whether the permanent is a land.
func (p *Permanent) IsLand() bool { return p.Card.IsLand() }

// Power returns the permanent's power.
func (p *Permanent) Power() int { return p.Card.Power }

// Toughness returns the permanent's toughness.
func (p *Permanent) Toughness() int { return p.Card.Toughness }

// HasLethalDamage reports whether marked damage reaches the toughness.
func (p *Permanent) HasLethalDamage() bool {
	return p.IsCreature() && p.Damage >= p.Toughness()
}

func (p *Permanent) String() string {
	if p == nil {
		return "<nil permanent>"
	}
	if p.IsCreature() {
		return fmt.Sprintf("%s (%d/%d)", p.Name(), p.Power(), p.Toughness())
	}
	return p.Name()
}
