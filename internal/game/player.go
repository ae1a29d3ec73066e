package game

import (
	"github.com/magefree/mage-sim/internal/game/mana"
	"github.com/magefree/mage-sim/internal/game/zone"
)

// Player is one side of a game.
type Player struct {
	ID        string
	Name      string
	Life      int
	Library   *zone.Zone[*Card]
	Hand      *zone.Zone[*Card]
	Graveyard *zone.Zone[*Card]
	ManaPool  mana.Pool
	Strategy  Strategy

	// Opponent is a back-reference and is not owned by the player.
	Opponent *Player

	Lost       bool
	LossReason string
}

// NewPlayer creates a player with empty zones.
func NewPlayer(id, name string, life int, strategy Strategy) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Life:      life,
		Library:   zone.New[*Card](zone.KindLibrary, zone.VisibilityHidden),
		Hand:      zone.New[*Card](zone.KindHand, zone.VisibilityHidden),
		Graveyard: zone.New[*Card](zone.KindGraveyard, zone.VisibilityPublic),
		Strategy:  strategy,
	}
}

// Lose marks the player as having lost the game. The first reason sticks.
func (p *Player) Lose(reason string) {
	if p.Lost {
		return
	}
	p.Lost = true
	p.LossReason = reason
}

// HasLost reports whether the player lost, either explicitly or by life.
func (p *Player) HasLost() bool {
	return p.Lost || p.Life <= 0
}

func (p *Player) String() string {
	if p == nil {
		return "<nil player>"
	}
	return p.Name
}
