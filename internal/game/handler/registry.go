// Package handler holds the validation and resolution rules of every action
// and cost kind, and the registry that maps kinds to them.
package handler

import (
	"fmt"

	"github.com/magefree/mage-sim/internal/game"
)

// ActionHandler validates and resolves one action kind.
type ActionHandler interface {
	Kind() game.ActionKind
	// IsSpecialAction reports whether actions of this kind bypass the stack.
	IsSpecialAction() bool
	// FindCost derives the cost to pay for the action.
	FindCost(a *game.Action) (game.Cost, error)
	Validate(t *game.Tabletop, a *game.Action) (game.ValidationResult, error)
	Resolve(t *game.Tabletop, a *game.Action) error
}

// CostHandler validates and pays one cost kind on behalf of a player.
type CostHandler interface {
	Kind() game.CostKind
	Validate(t *game.Tabletop, payer *game.Player, c game.Cost) (game.ValidationResult, error)
	Resolve(t *game.Tabletop, payer *game.Player, c game.Cost) error
}

// Registry maps every action and cost kind to exactly one handler.
type Registry struct {
	actions map[game.ActionKind]ActionHandler
	costs   map[game.CostKind]CostHandler
}

// NewRegistry builds the registry of the standard handlers.
func NewRegistry() (*Registry, error) {
	r := &Registry{}
	r.actions = map[game.ActionKind]ActionHandler{
		game.ActionPassing:               newPassingHandler(),
		game.ActionPlayingLand:           newPlayingLandHandler(),
		game.ActionPlayingNonLand:        newPlayingNonLandHandler(),
		game.ActionDiscarding:            newDiscardingHandler(),
		game.ActionActivatingManaAbility: newActivatingManaAbilityHandler(),
	}
	r.costs = map[game.CostKind]CostHandler{
		game.CostNone:       newDoingNothingHandler(),
		game.CostTapping:    newTappingHandler(),
		game.CostPayingMana: newPayingManaHandler(),
		game.CostComposite:  newCompositeCostHandler(r),
	}
	if err := r.verify(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewRegistryWith builds a registry from explicit tables. Every kind must
// be covered by a handler reporting that same kind.
func NewRegistryWith(actions map[game.ActionKind]ActionHandler, costs map[game.CostKind]CostHandler) (*Registry, error) {
	r := &Registry{actions: actions, costs: costs}
	if err := r.verify(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) verify() error {
	for _, kind := range game.ActionKinds() {
		h, ok := r.actions[kind]
		if !ok || h == nil {
			return fmt.Errorf("action %s: %w", kind, game.ErrMissingHandler)
		}
		if h.Kind() != kind {
			return fmt.Errorf("action %s registered with %s handler: %w", kind, h.Kind(), game.ErrKindMismatch)
		}
	}
	for _, kind := range game.CostKinds() {
		h, ok := r.costs[kind]
		if !ok || h == nil {
			return fmt.Errorf("cost %s: %w", kind, game.ErrMissingHandler)
		}
		if h.Kind() != kind {
			return fmt.Errorf("cost %s registered with %s handler: %w", kind, h.Kind(), game.ErrKindMismatch)
		}
	}
	return nil
}

// ActionHandler returns the handler of an action kind.
func (r *Registry) ActionHandler(kind game.ActionKind) (ActionHandler, error) {
	h, ok := r.actions[kind]
	if !ok {
		return nil, fmt.Errorf("action %s: %w", kind, game.ErrMissingHandler)
	}
	return h, nil
}

// CostHandler returns the handler of a cost kind.
func (r *Registry) CostHandler(kind game.CostKind) (CostHandler, error) {
	h, ok := r.costs[kind]
	if !ok {
		return nil, fmt.Errorf("cost %s: %w", kind, game.ErrMissingHandler)
	}
	return h, nil
}

// actionRules is the kind-specific part of an action handler.
type actionRules interface {
	validate(t *game.Tabletop, a *game.Action) game.ValidationResult
	resolve(t *game.Tabletop, a *game.Action) error
}

// guardedAction checks the action kind before delegating to its rules.
type guardedAction struct {
	kind     game.ActionKind
	special  bool
	rules    actionRules
	findCost func(a *game.Action) (game.Cost, error)
}

func (g *guardedAction) Kind() game.ActionKind { return g.kind }

func (g *guardedAction) IsSpecialAction() bool { return g.special }

func (g *guardedAction) FindCost(a *game.Action) (game.Cost, error) {
	if err := g.check(a); err != nil {
		return game.Cost{}, err
	}
	if g.findCost != nil {
		return g.findCost(a)
	}
	return defaultFindCost(a)
}

func (g *guardedAction) Validate(t *game.Tabletop, a *game.Action) (game.ValidationResult, error) {
	if err := g.check(a); err != nil {
		return game.ValidationResult{}, err
	}
	return g.rules.validate(t, a), nil
}

func (g *guardedAction) Resolve(t *game.Tabletop, a *game.Action) error {
	if err := g.check(a); err != nil {
		return err
	}
	return g.rules.resolve(t, a)
}

func (g *guardedAction) check(a *game.Action) error {
	if a == nil {
		return fmt.Errorf("%s handler got nil action: %w", g.kind, game.ErrKindMismatch)
	}
	if a.Kind != g.kind {
		return fmt.Errorf("%s handler got %s action: %w", g.kind, a.Kind, game.ErrKindMismatch)
	}
	return nil
}

// defaultFindCost uses the cost of the single targeted card, or the
// action's own cost when no card is targeted.
func defaultFindCost(a *game.Action) (game.Cost, error) {
	switch len(a.Target.Cards) {
	case 0:
		return a.Cost, nil
	case 1:
		return a.Target.Cards[0].Cost(), nil
	default:
		return game.Cost{}, fmt.Errorf("%s with %d cards: %w", a.Kind, len(a.Target.Cards), game.ErrMultipleTargetCost)
	}
}

// costRules is the kind-specific part of a cost handler.
type costRules interface {
	validate(t *game.Tabletop, payer *game.Player, c game.Cost) (game.ValidationResult, error)
	resolve(t *game.Tabletop, payer *game.Player, c game.Cost) error
}

// guardedCost checks the cost kind before delegating to its rules.
type guardedCost struct {
	kind  game.CostKind
	rules costRules
}

func (g *guardedCost) Kind() game.CostKind { return g.kind }

func (g *guardedCost) Validate(t *game.Tabletop, payer *game.Player, c game.Cost) (game.ValidationResult, error) {
	if c.Kind != g.kind {
		return game.ValidationResult{}, fmt.Errorf("%s cost handler got %s cost: %w", g.kind, c.Kind, game.ErrKindMismatch)
	}
	return g.rules.validate(t, payer, c)
}

func (g *guardedCost) Resolve(t *game.Tabletop, payer *game.Player, c game.Cost) error {
	if c.Kind != g.kind {
		return fmt.Errorf("%s cost handler got %s cost: %w", g.kind, c.Kind, game.ErrKindMismatch)
	}
	return g.rules.resolve(t, payer, c)
}
