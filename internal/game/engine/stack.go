// Package engine drives a game: the priority stack, combat, and the turn
// sequencer that calls them at the right steps.
package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/handler"
	"github.com/magefree/mage-sim/internal/game/rules"
)

// StackResolver validates proposed actions and runs the priority stack.
type StackResolver struct {
	registry *handler.Registry
	bus      *rules.EventBus
	logger   *zap.Logger
}

// NewStackResolver creates a resolver. bus and logger may be nil.
func NewStackResolver(registry *handler.Registry, bus *rules.EventBus, logger *zap.Logger) *StackResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StackResolver{
		registry: registry,
		bus:      bus,
		logger:   logger,
	}
}

// QueueAction validates an action and either performs it (special actions),
// pushes it on the stack, or resolves the whole stack when priority has
// been passed twice in a row. An illegal action is replaced by a pass from
// the same player; the reasons are reported in the result. Errors are
// engine errors only.
func (r *StackResolver) QueueAction(t *game.Tabletop, a *game.Action) (game.QueueingResult, error) {
	if a == nil {
		return game.QueueingResult{}, errors.New("queue action: nil action")
	}

	actionHandler, cost, costHandler, err := r.handlersFor(a)
	if err != nil {
		return game.QueueingResult{}, err
	}
	validation, err := r.validate(t, a, actionHandler, cost, costHandler)
	if err != nil {
		return game.QueueingResult{}, err
	}

	var result game.QueueingResult
	if !validation.IsSuccessful() {
		r.logger.Debug("illegal action downgraded to pass",
			zap.Int("turn", t.TurnID),
			zap.String("player", a.Owner.Name),
			zap.String("action", a.String()),
			zap.Strings("reasons", validation.Messages()),
		)
		r.publish(t, rules.Event{
			Type:        rules.EventActionDowngraded,
			PlayerID:    a.Owner.ID,
			Description: a.String(),
		})
		result.Downgraded = true
		result.Messages = validation.Messages()

		a = game.NewPassAction(a.Owner)
		cost = game.NoCost()
		if actionHandler, err = r.registry.ActionHandler(game.ActionPassing); err != nil {
			return game.QueueingResult{}, err
		}
		if costHandler, err = r.registry.CostHandler(game.CostNone); err != nil {
			return game.QueueingResult{}, err
		}
	}

	if actionHandler.IsSpecialAction() {
		if err := costHandler.Resolve(t, a.Owner, cost); err != nil {
			return game.QueueingResult{}, fmt.Errorf("pay %s for %s: %w", cost.Kind, a.Kind, err)
		}
		if err := actionHandler.Resolve(t, a); err != nil {
			return game.QueueingResult{}, fmt.Errorf("resolve %s: %w", a.Kind, err)
		}
		r.publish(t, rules.Event{
			Type:        rules.EventSpecialActionPerformed,
			PlayerID:    a.Owner.ID,
			SourceID:    sourceID(a),
			Description: a.String(),
		})
		result.Outcome = game.SpecialActionPerformed
		result.ActionPerformed = true
		return result, nil
	}

	if err := costHandler.Resolve(t, a.Owner, cost); err != nil {
		return game.QueueingResult{}, fmt.Errorf("pay %s for %s: %w", cost.Kind, a.Kind, err)
	}
	t.Stack.AddToTop(a)
	result.ActionPerformed = !a.IsPass()
	r.publish(t, rules.Event{
		Type:        rules.EventActionQueued,
		PlayerID:    a.Owner.ID,
		SourceID:    sourceID(a),
		Description: a.String(),
	})

	if !shouldResolve(t) {
		result.Outcome = game.StackUnresolved
		return result, nil
	}

	resolved, err := r.resolveStack(t)
	if err != nil {
		return game.QueueingResult{}, err
	}
	result.Outcome = game.StackResolved
	result.Resolved = resolved
	return result, nil
}

// ExecuteAction validates and immediately resolves a forced action without
// touching the stack. A failed validation is reported in the result.
func (r *StackResolver) ExecuteAction(t *game.Tabletop, a *game.Action) (game.ExecutionResult, error) {
	if a == nil {
		return game.ExecutionResult{}, errors.New("execute action: nil action")
	}

	actionHandler, cost, costHandler, err := r.handlersFor(a)
	if err != nil {
		return game.ExecutionResult{}, err
	}
	validation, err := r.validate(t, a, actionHandler, cost, costHandler)
	if err != nil {
		return game.ExecutionResult{}, err
	}
	if !validation.IsSuccessful() {
		return game.ExecutionResult{Messages: validation.Messages(), HasError: true}, nil
	}

	if err := costHandler.Resolve(t, a.Owner, cost); err != nil {
		return game.ExecutionResult{}, fmt.Errorf("pay %s for %s: %w", cost.Kind, a.Kind, err)
	}
	discarded := discardedBy(a)
	if err := actionHandler.Resolve(t, a); err != nil {
		return game.ExecutionResult{}, fmt.Errorf("resolve %s: %w", a.Kind, err)
	}
	r.publishDiscards(t, a.Owner, discarded)
	r.publish(t, rules.Event{
		Type:        rules.EventActionResolved,
		PlayerID:    a.Owner.ID,
		SourceID:    sourceID(a),
		Description: a.String(),
	})
	return game.ExecutionResult{}, nil
}

func (r *StackResolver) handlersFor(a *game.Action) (handler.ActionHandler, game.Cost, handler.CostHandler, error) {
	actionHandler, err := r.registry.ActionHandler(a.Kind)
	if err != nil {
		return nil, game.Cost{}, nil, err
	}
	cost, err := actionHandler.FindCost(a)
	if err != nil {
		return nil, game.Cost{}, nil, err
	}
	costHandler, err := r.registry.CostHandler(cost.Kind)
	if err != nil {
		return nil, game.Cost{}, nil, err
	}
	return actionHandler, cost, costHandler, nil
}

func (r *StackResolver) validate(t *game.Tabletop, a *game.Action, ah handler.ActionHandler, cost game.Cost, ch handler.CostHandler) (game.ValidationResult, error) {
	costResult, err := ch.Validate(t, a.Owner, cost)
	if err != nil {
		return game.ValidationResult{}, err
	}
	actionResult, err := ah.Validate(t, a)
	if err != nil {
		return game.ValidationResult{}, err
	}
	return costResult.Combine(actionResult), nil
}

// shouldResolve is true when the top two stack entries are both passes.
func shouldResolve(t *game.Tabletop) bool {
	top := t.Stack.FindManyFromTop(2)
	return len(top) == 2 && top[0].IsPass() && top[1].IsPass()
}

// resolveStack drops the two closing passes and then resolves every
// remaining entry from the top down. It returns the number of non-pass
// actions resolved.
func (r *StackResolver) resolveStack(t *game.Tabletop) (int, error) {
	t.Stack.RemoveManyFromTop(2)
	r.logger.Debug("resolving stack",
		zap.Int("turn", t.TurnID),
		zap.Int("stack_size", t.Stack.Quantity()),
	)

	resolved := 0
	for {
		top, ok := t.Stack.FindFromTop()
		if !ok {
			break
		}
		h, err := r.registry.ActionHandler(top.Kind)
		if err != nil {
			return resolved, err
		}
		discarded := discardedBy(top)
		if err := h.Resolve(t, top); err != nil {
			r.logger.Error("failed to resolve stack item",
				zap.String("action", top.String()),
				zap.Error(err),
			)
			return resolved, fmt.Errorf("resolve %s: %w", top.Kind, err)
		}
		t.Stack.RemoveFromTop()
		if top.IsPass() {
			continue
		}
		r.publishDiscards(t, top.Owner, discarded)
		resolved++
		r.publish(t, rules.Event{
			Type:        rules.EventActionResolved,
			PlayerID:    top.Owner.ID,
			SourceID:    sourceID(top),
			Description: top.String(),
		})
	}

	r.publish(t, rules.Event{Type: rules.EventStackResolved, Amount: resolved})
	r.logger.Debug("stack resolved",
		zap.Int("turn", t.TurnID),
		zap.Int("resolved", resolved),
	)
	return resolved, nil
}

func (r *StackResolver) publish(t *game.Tabletop, e rules.Event) {
	publish(r.bus, t, e)
}

// discardedBy returns the cards a discard action will move, in order.
func discardedBy(a *game.Action) []*game.Card {
	if a.Kind != game.ActionDiscarding {
		return nil
	}
	return handler.DiscardSelection(a.Owner, a.Parameter.Amount, a.Target.Cards)
}

func (r *StackResolver) publishDiscards(t *game.Tabletop, owner *game.Player, cards []*game.Card) {
	for _, card := range cards {
		r.publish(t, rules.Event{
			Type:        rules.EventCardDiscarded,
			PlayerID:    owner.ID,
			SourceID:    card.ID,
			Description: card.Name,
		})
	}
}

func publish(bus *rules.EventBus, t *game.Tabletop, e rules.Event) {
	if bus == nil {
		return
	}
	e.Turn = t.TurnID
	e.Phase = t.Phase
	e.Step = t.Step
	bus.Publish(e)
}

func sourceID(a *game.Action) string {
	if len(a.Target.Cards) > 0 {
		return a.Target.Cards[0].ID
	}
	if len(a.Target.Permanents) > 0 {
		return a.Target.Permanents[0].ID()
	}
	return ""
}
