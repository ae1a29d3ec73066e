package handler

import (
	"fmt"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/game/zone"
)

// Validation messages shared with strategies and tests.
const (
	MsgStackNotEmptyForLand  = "Stack is not empty when playing a land!"
	MsgOnlyActivePlaysLand   = "Only the active player can play a land!"
	MsgLandAlreadyPlayed     = "Active player has already played a land this turn!"
	MsgLandOutsideMainPhase  = "A land can only be played during a main phase!"
	MsgNotALand              = "Only a land card can be played as a land!"
	MsgIsALand               = "A land card cannot be cast!"
	MsgSingleCardTarget      = "Exactly one card must be targeted!"
	MsgCardNotInHand         = "Card is not in the player's hand!"
	MsgCardAlreadyOnStack    = "Card is already on the stack!"
	MsgSorceryNotActive      = "Only the active player can cast this card now!"
	MsgSorceryOutsideMain    = "This card can only be cast during a main phase!"
	MsgSorceryStackNotEmpty  = "Stack is not empty when casting this card!"
	MsgNegativeDiscard       = "Discard amount cannot be negative!"
	MsgSinglePermanentTarget = "Exactly one permanent must be targeted!"
	MsgPermanentNotOnField   = "Permanent is not on the battlefield!"
	MsgNotController         = "Player does not control this permanent!"
	MsgNoManaAbility         = "Permanent has no mana ability!"
)

type passingRules struct{}

func newPassingHandler() ActionHandler {
	return &guardedAction{kind: game.ActionPassing, rules: passingRules{}}
}

func (passingRules) validate(*game.Tabletop, *game.Action) game.ValidationResult {
	return game.Valid()
}

func (passingRules) resolve(*game.Tabletop, *game.Action) error {
	return nil
}

type playingLandRules struct{}

func newPlayingLandHandler() ActionHandler {
	return &guardedAction{kind: game.ActionPlayingLand, special: true, rules: playingLandRules{}}
}

func (playingLandRules) validate(t *game.Tabletop, a *game.Action) game.ValidationResult {
	result := game.Valid()
	if !t.Stack.IsEmpty() {
		result = result.Combine(game.Invalid(MsgStackNotEmptyForLand, a, rules.Rule116_2a, rules.Rule305_1))
	}
	if a.Owner != t.ActivePlayer {
		result = result.Combine(game.Invalid(MsgOnlyActivePlaysLand, a.Owner, rules.Rule305_1))
	}
	if t.PlayedLandCount > 0 {
		result = result.Combine(game.Invalid(MsgLandAlreadyPlayed, a.Owner, rules.Rule305_2))
	}
	if !t.IsMainPhase() {
		result = result.Combine(game.Invalid(MsgLandOutsideMainPhase, a, rules.Rule305_1))
	}
	card, ok := singleCard(a)
	if !ok {
		return result.Combine(game.Invalid(MsgSingleCardTarget, a))
	}
	if !card.IsLand() {
		result = result.Combine(game.Invalid(MsgNotALand, card, rules.Rule305_1))
	}
	if !a.Owner.Hand.Contains(card) {
		result = result.Combine(game.Invalid(MsgCardNotInHand, card))
	}
	return result
}

func (playingLandRules) resolve(t *game.Tabletop, a *game.Action) error {
	card, ok := singleCard(a)
	if !ok {
		return fmt.Errorf("play land with %d cards: %w", len(a.Target.Cards), game.ErrMultipleTargetCost)
	}
	if err := enterBattlefield(t, a.Owner, card); err != nil {
		return err
	}
	t.PlayedLandCount++
	return nil
}

type playingNonLandRules struct{}

func newPlayingNonLandHandler() ActionHandler {
	return &guardedAction{kind: game.ActionPlayingNonLand, rules: playingNonLandRules{}}
}

func (playingNonLandRules) validate(t *game.Tabletop, a *game.Action) game.ValidationResult {
	card, ok := singleCard(a)
	if !ok {
		return game.Invalid(MsgSingleCardTarget, a)
	}
	result := game.Valid()
	if card.IsLand() {
		result = result.Combine(game.Invalid(MsgIsALand, card, rules.Rule305_1))
	}
	if !a.Owner.Hand.Contains(card) {
		result = result.Combine(game.Invalid(MsgCardNotInHand, card, rules.Rule601_2))
	}
	if isOnStack(t, card) {
		result = result.Combine(game.Invalid(MsgCardAlreadyOnStack, card, rules.Rule601_2))
	}
	if card.Kind.HasSorceryTiming() {
		if a.Owner != t.ActivePlayer {
			result = result.Combine(game.Invalid(MsgSorceryNotActive, a.Owner, rules.Rule307_1))
		}
		if !t.IsMainPhase() {
			result = result.Combine(game.Invalid(MsgSorceryOutsideMain, card, rules.Rule307_1))
		}
		if !t.Stack.IsEmpty() {
			result = result.Combine(game.Invalid(MsgSorceryStackNotEmpty, card, rules.Rule307_1))
		}
	}
	return result
}

// resolve puts a permanent card onto the battlefield and any other card into
// its owner's graveyard. A card that left the hand meanwhile fizzles.
func (playingNonLandRules) resolve(t *game.Tabletop, a *game.Action) error {
	card, ok := singleCard(a)
	if !ok {
		return fmt.Errorf("play non-land with %d cards: %w", len(a.Target.Cards), game.ErrMultipleTargetCost)
	}
	if !a.Owner.Hand.Contains(card) {
		return nil
	}
	if card.Kind.IsPermanent() {
		return enterBattlefield(t, a.Owner, card)
	}
	if err := zone.Move(card, a.Owner.Hand, a.Owner.Graveyard); err != nil {
		return fmt.Errorf("%w: %v", game.ErrEntityNotInZone, err)
	}
	return nil
}

type discardingRules struct{}

func newDiscardingHandler() ActionHandler {
	return &guardedAction{
		kind:  game.ActionDiscarding,
		rules: discardingRules{},
		findCost: func(*game.Action) (game.Cost, error) {
			return game.NoCost(), nil
		},
	}
}

func (discardingRules) validate(_ *game.Tabletop, a *game.Action) game.ValidationResult {
	result := game.Valid()
	if a.Parameter.Amount < 0 {
		result = result.Combine(game.Invalid(MsgNegativeDiscard, a, rules.Rule701_8))
	}
	for _, card := range a.Target.Cards {
		if !a.Owner.Hand.Contains(card) {
			result = result.Combine(game.Invalid(MsgCardNotInHand, card, rules.Rule701_8))
		}
	}
	return result
}

// resolve discards exactly Parameter.Amount cards when the hand allows it.
// Extra targets are ignored; missing ones are taken from the top of the hand.
func (discardingRules) resolve(_ *game.Tabletop, a *game.Action) error {
	cards := DiscardSelection(a.Owner, a.Parameter.Amount, a.Target.Cards)
	for _, card := range cards {
		if err := zone.Move(card, a.Owner.Hand, a.Owner.Graveyard); err != nil {
			return fmt.Errorf("%w: %v", game.ErrEntityNotInZone, err)
		}
	}
	return nil
}

// DiscardSelection returns the cards a discard of amount cards would move:
// the first targets still in hand, topped up from the top of the hand.
func DiscardSelection(owner *game.Player, amount int, targets []*game.Card) []*game.Card {
	if amount <= 0 {
		return nil
	}
	chosen := make([]*game.Card, 0, amount)
	picked := make(map[*game.Card]bool, amount)
	for _, card := range targets {
		if len(chosen) == amount {
			break
		}
		if picked[card] || !owner.Hand.Contains(card) {
			continue
		}
		chosen = append(chosen, card)
		picked[card] = true
	}
	for _, card := range owner.Hand.FindManyFromTop(owner.Hand.Quantity()) {
		if len(chosen) == amount {
			break
		}
		if picked[card] {
			continue
		}
		chosen = append(chosen, card)
		picked[card] = true
	}
	return chosen
}

type activatingManaAbilityRules struct{}

func newActivatingManaAbilityHandler() ActionHandler {
	return &guardedAction{kind: game.ActionActivatingManaAbility, rules: activatingManaAbilityRules{}}
}

func (activatingManaAbilityRules) validate(t *game.Tabletop, a *game.Action) game.ValidationResult {
	if len(a.Target.Permanents) != 1 {
		return game.Invalid(MsgSinglePermanentTarget, a, rules.Rule605_1a)
	}
	perm := a.Target.Permanents[0]
	result := game.Valid()
	if !t.Battlefield.Contains(perm) {
		result = result.Combine(game.Invalid(MsgPermanentNotOnField, perm, rules.Rule605_1a))
	}
	if perm.Controller != a.Owner {
		result = result.Combine(game.Invalid(MsgNotController, perm, rules.Rule605_1a))
	}
	if !perm.IsLand() {
		result = result.Combine(game.Invalid(MsgNoManaAbility, perm, rules.Rule605_1a))
	}
	return result
}

func (activatingManaAbilityRules) resolve(*game.Tabletop, *game.Action) error {
	return fmt.Errorf("activating mana abilities: %w", game.ErrNotSupported)
}

func singleCard(a *game.Action) (*game.Card, bool) {
	if len(a.Target.Cards) != 1 || a.Target.Cards[0] == nil {
		return nil, false
	}
	return a.Target.Cards[0], true
}

func isOnStack(t *game.Tabletop, card *game.Card) bool {
	for _, queued := range t.Stack.FindAll() {
		if queued.Kind != game.ActionPlayingNonLand {
			continue
		}
		for _, c := range queued.Target.Cards {
			if c == card {
				return true
			}
		}
	}
	return false
}

func enterBattlefield(t *game.Tabletop, owner *game.Player, card *game.Card) error {
	err := zone.MoveToZone(card, owner.Hand, t.Battlefield, func(c *game.Card) *game.Permanent {
		return game.NewPermanent(c, owner)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", game.ErrEntityNotInZone, err)
	}
	return nil
}
