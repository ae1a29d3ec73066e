package game

import (
	"fmt"

	"github.com/magefree/mage-sim/internal/game/mana"
)

// CostKind tags what a player pays for an action.
type CostKind int

const (
	CostNone CostKind = iota
	CostTapping
	CostPayingMana
	CostComposite
)

var costKindNames = map[CostKind]string{
	CostNone:       "NONE",
	CostTapping:    "TAPPING",
	CostPayingMana: "PAYING_MANA",
	CostComposite:  "COMPOSITE",
}

func (k CostKind) String() string {
	if name, ok := costKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("COST_KIND_%d", int(k))
}

// CostKinds lists every cost kind a registry must handle.
func CostKinds() []CostKind {
	return []CostKind{CostNone, CostTapping, CostPayingMana, CostComposite}
}

// Cost is a tagged cost value. Only the fields of its kind are meaningful.
type Cost struct {
	Kind       CostKind
	Mana       mana.Cost    // PayingMana
	Permanents []*Permanent // Tapping
	Parts      []Cost       // Composite
}

// NoCost is the cost of a free action.
func NoCost() Cost {
	return Cost{Kind: CostNone}
}

// ManaCost is a cost paid from the mana pool.
func ManaCost(c mana.Cost) Cost {
	return Cost{Kind: CostPayingMana, Mana: c}
}

// TapCost is paid by tapping the given permanents.
func TapCost(permanents ...*Permanent) Cost {
	return Cost{Kind: CostTapping, Permanents: permanents}
}

// RollCosts combines several costs into one unit. Free parts are dropped
// and a single remaining part is returned as is.
func RollCosts(costs ...Cost) Cost {
	var parts []Cost
	for _, c := range costs {
		parts = append(parts, c.Unroll()...)
	}
	switch len(parts) {
	case 0:
		return NoCost()
	case 1:
		return parts[0]
	default:
		return Cost{Kind: CostComposite, Parts: parts}
	}
}

// Unroll flattens a cost into its non-composite, non-free parts.
func (c Cost) Unroll() []Cost {
	switch c.Kind {
	case CostNone:
		return nil
	case CostComposite:
		var parts []Cost
		for _, p := range c.Parts {
			parts = append(parts, p.Unroll()...)
		}
		return parts
	default:
		return []Cost{c}
	}
}

func (c Cost) String() string {
	switch c.Kind {
	case CostPayingMana:
		return c.Mana.String()
	case CostTapping:
		return fmt.Sprintf("tap %v", c.Permanents)
	case CostComposite:
		return fmt.Sprintf("%v", c.Parts)
	default:
		return c.Kind.String()
	}
}

// EffectKind tags what an action produces besides its own resolution.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectProducingMana
	EffectComposite
)

var effectKindNames = map[EffectKind]string{
	EffectNone:          "NONE",
	EffectProducingMana: "PRODUCING_MANA",
	EffectComposite:     "COMPOSITE",
}

func (k EffectKind) String() string {
	if name, ok := effectKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EFFECT_KIND_%d", int(k))
}

// Effect is a tagged effect value.
type Effect struct {
	Kind   EffectKind
	Color  mana.Color // ProducingMana
	Amount int        // ProducingMana
	Parts  []Effect   // Composite
}

// ProduceMana is an effect adding mana to the pool.
func ProduceMana(color mana.Color, amount int) Effect {
	return Effect{Kind: EffectProducingMana, Color: color, Amount: amount}
}

// RollEffects combines several effects into one unit.
func RollEffects(effects ...Effect) Effect {
	var parts []Effect
	for _, e := range effects {
		parts = append(parts, e.Unroll()...)
	}
	switch len(parts) {
	case 0:
		return Effect{}
	case 1:
		return parts[0]
	default:
		return Effect{Kind: EffectComposite, Parts: parts}
	}
}

// Unroll flattens an effect into its non-composite parts.
func (e Effect) Unroll() []Effect {
	switch e.Kind {
	case EffectNone:
		return nil
	case EffectComposite:
		var parts []Effect
		for _, p := range e.Parts {
			parts = append(parts, p.Unroll()...)
		}
		return parts
	default:
		return []Effect{e}
	}
}
