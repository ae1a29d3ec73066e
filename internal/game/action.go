package game

import (
	"fmt"
	"strings"
)

// ActionKind tags the request a player makes when holding priority.
type ActionKind int

const (
	ActionPassing ActionKind = iota
	ActionPlayingLand
	ActionPlayingNonLand
	ActionDiscarding
	ActionActivatingManaAbility
)

var actionKindNames = map[ActionKind]string{
	ActionPassing:               "PASSING",
	ActionPlayingLand:           "PLAYING_LAND",
	ActionPlayingNonLand:        "PLAYING_NON_LAND",
	ActionDiscarding:            "DISCARDING",
	ActionActivatingManaAbility: "ACTIVATING_MANA_ABILITY",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_KIND_%d", int(k))
}

// ActionKinds lists every action kind a registry must handle.
func ActionKinds() []ActionKind {
	return []ActionKind{
		ActionPassing,
		ActionPlayingLand,
		ActionPlayingNonLand,
		ActionDiscarding,
		ActionActivatingManaAbility,
	}
}

// Target is what an action is aimed at.
type Target struct {
	Player     *Player
	Cards      []*Card
	Permanents []*Permanent
}

// Parameter is the kind-specific data of an action.
type Parameter struct {
	Amount int    // Discarding: number of cards to discard
	Effect Effect // ActivatingManaAbility: mana produced
}

// Action is a request made by a player. Stack entries are *Action values,
// so an action is identified by its pointer.
type Action struct {
	Kind      ActionKind
	Owner     *Player
	Target    Target
	Cost      Cost
	Parameter Parameter
}

// NewPassAction passes priority.
func NewPassAction(owner *Player) *Action {
	return &Action{Kind: ActionPassing, Owner: owner, Cost: NoCost()}
}

// NewPlayLandAction plays a land from the owner's hand.
func NewPlayLandAction(owner *Player, card *Card) *Action {
	return &Action{
		Kind:   ActionPlayingLand,
		Owner:  owner,
		Target: Target{Player: owner, Cards: []*Card{card}},
		Cost:   NoCost(),
	}
}

// NewPlayNonLandAction casts a non-land card from the owner's hand.
func NewPlayNonLandAction(owner *Player, card *Card) *Action {
	return &Action{
		Kind:   ActionPlayingNonLand,
		Owner:  owner,
		Target: Target{Player: owner, Cards: []*Card{card}},
		Cost:   card.Cost(),
	}
}

// NewDiscardAction discards amount cards from the owner's hand, preferring
// the given cards.
func NewDiscardAction(owner *Player, amount int, cards ...*Card) *Action {
	return &Action{
		Kind:      ActionDiscarding,
		Owner:     owner,
		Target:    Target{Player: owner, Cards: cards},
		Cost:      NoCost(),
		Parameter: Parameter{Amount: amount},
	}
}

// NewActivateManaAbilityAction taps a land for mana.
func NewActivateManaAbilityAction(owner *Player, land *Permanent) *Action {
	return &Action{
		Kind:      ActionActivatingManaAbility,
		Owner:     owner,
		Target:    Target{Player: owner, Permanents: []*Permanent{land}},
		Cost:      TapCost(land),
		Parameter: Parameter{Effect: ProduceMana(land.Card.Produces, 1)},
	}
}

// IsPass reports whether the action passes priority.
func (a *Action) IsPass() bool {
	return a != nil && a.Kind == ActionPassing
}

func (a *Action) String() string {
	if a == nil {
		return "<nil action>"
	}
	var sb strings.Builder
	sb.WriteString(a.Owner.String())
	sb.WriteString(" ")
	sb.WriteString(a.Kind.String())
	if len(a.Target.Cards) > 0 {
		names := make([]string, 0, len(a.Target.Cards))
		for _, c := range a.Target.Cards {
			names = append(names, c.Name)
		}
		sb.WriteString(" [" + strings.Join(names, ", ") + "]")
	}
	if len(a.Target.Permanents) > 0 {
		sb.WriteString(fmt.Sprintf(" %v", a.Target.Permanents))
	}
	if a.Kind == ActionDiscarding {
		sb.WriteString(fmt.Sprintf(" x%d", a.Parameter.Amount))
	}
	return sb.String()
}
