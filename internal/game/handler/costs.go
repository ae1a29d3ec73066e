package handler

import (
	"fmt"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/rules"
)

const (
	MsgAlreadyTapped = "Permanent is already tapped!"
	MsgNotEnoughMana = "Not enough mana in the pool to pay the cost!"
	MsgNothingToTap  = "No permanent to tap!"
)

type doingNothingRules struct{}

func newDoingNothingHandler() CostHandler {
	return &guardedCost{kind: game.CostNone, rules: doingNothingRules{}}
}

func (doingNothingRules) validate(*game.Tabletop, *game.Player, game.Cost) (game.ValidationResult, error) {
	return game.Valid(), nil
}

func (doingNothingRules) resolve(*game.Tabletop, *game.Player, game.Cost) error {
	return nil
}

type tappingRules struct{}

func newTappingHandler() CostHandler {
	return &guardedCost{kind: game.CostTapping, rules: tappingRules{}}
}

func (tappingRules) validate(t *game.Tabletop, payer *game.Player, c game.Cost) (game.ValidationResult, error) {
	if len(c.Permanents) == 0 {
		return game.Invalid(MsgNothingToTap, payer, rules.Rule118_3), nil
	}
	result := game.Valid()
	for _, perm := range c.Permanents {
		if !t.Battlefield.Contains(perm) {
			result = result.Combine(game.Invalid(MsgPermanentNotOnField, perm, rules.Rule118_3))
			continue
		}
		if perm.Controller != payer {
			result = result.Combine(game.Invalid(MsgNotController, perm, rules.Rule118_3))
		}
		if perm.Tapped {
			result = result.Combine(game.Invalid(MsgAlreadyTapped, perm, rules.Rule118_3))
		}
	}
	return result, nil
}

func (tappingRules) resolve(_ *game.Tabletop, _ *game.Player, c game.Cost) error {
	for _, perm := range c.Permanents {
		perm.Tapped = true
	}
	return nil
}

type payingManaRules struct{}

func newPayingManaHandler() CostHandler {
	return &guardedCost{kind: game.CostPayingMana, rules: payingManaRules{}}
}

func (payingManaRules) validate(_ *game.Tabletop, payer *game.Player, c game.Cost) (game.ValidationResult, error) {
	if !payer.ManaPool.CanPay(c.Mana) {
		return game.Invalid(MsgNotEnoughMana, payer, rules.Rule118_3), nil
	}
	return game.Valid(), nil
}

// resolve always fails with game.ErrNotSupported: without mana abilities no
// pool ever holds mana, so validation rejects every non-zero mana cost first.
func (payingManaRules) resolve(*game.Tabletop, *game.Player, game.Cost) error {
	return fmt.Errorf("paying mana: %w", game.ErrNotSupported)
}

type compositeCostRules struct {
	registry *Registry
}

func newCompositeCostHandler(r *Registry) CostHandler {
	return &guardedCost{kind: game.CostComposite, rules: compositeCostRules{registry: r}}
}

func (cr compositeCostRules) validate(t *game.Tabletop, payer *game.Player, c game.Cost) (game.ValidationResult, error) {
	result := game.Valid()
	for _, part := range c.Unroll() {
		h, err := cr.registry.CostHandler(part.Kind)
		if err != nil {
			return game.ValidationResult{}, err
		}
		partResult, err := h.Validate(t, payer, part)
		if err != nil {
			return game.ValidationResult{}, err
		}
		result = result.Combine(partResult)
	}
	return result, nil
}

func (cr compositeCostRules) resolve(t *game.Tabletop, payer *game.Player, c game.Cost) error {
	for _, part := range c.Unroll() {
		h, err := cr.registry.CostHandler(part.Kind)
		if err != nil {
			return err
		}
		if err := h.Resolve(t, payer, part); err != nil {
			return err
		}
	}
	return nil
}
