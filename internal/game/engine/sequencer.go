package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/mana"
	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/game/zone"
)

// DefaultMaxPriorityRounds bounds the actions taken within one step.
const DefaultMaxPriorityRounds = 64

// MsgActionNotOwned reports an action a strategy proposed for a player other
// than the one it was asked for.
const MsgActionNotOwned = "Action is owned by another player!"

// IllegalActionPolicy selects what happens when a player proposes an
// illegal action or declaration.
type IllegalActionPolicy string

const (
	// PolicyDowngrade replaces illegal actions with passes and keeps playing.
	PolicyDowngrade IllegalActionPolicy = "downgrade"
	// PolicyTerminate ends the game with an error result.
	PolicyTerminate IllegalActionPolicy = "terminate"
)

// ParseIllegalActionPolicy validates a policy name.
func ParseIllegalActionPolicy(s string) (IllegalActionPolicy, error) {
	switch p := IllegalActionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyDowngrade, PolicyTerminate:
		return p, nil
	case "":
		return PolicyDowngrade, nil
	default:
		return "", fmt.Errorf("unknown illegal action policy: %q", s)
	}
}

// IllegalActionError ends a game under PolicyTerminate.
type IllegalActionError struct {
	Player   string
	Messages []string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action by %s: %s", e.Player, strings.Join(e.Messages, "; "))
}

type stepHook func(t *game.Tabletop) error

// Sequencer walks the turn table and runs the hook of every step it enters.
type Sequencer struct {
	turns     *rules.TurnManager
	stack     *StackResolver
	combat    *CombatResolver
	bus       *rules.EventBus
	logger    *zap.Logger
	policy    IllegalActionPolicy
	maxRounds int
	hooks     map[rules.TurnEntry]stepHook
}

// SequencerConfig configures a Sequencer.
type SequencerConfig struct {
	Stack             *StackResolver
	Combat            *CombatResolver
	Bus               *rules.EventBus
	Logger            *zap.Logger
	Policy            IllegalActionPolicy
	MaxPriorityRounds int
}

// NewSequencer creates a sequencer in the setup state.
func NewSequencer(cfg SequencerConfig) *Sequencer {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Policy == "" {
		cfg.Policy = PolicyDowngrade
	}
	if cfg.MaxPriorityRounds <= 0 {
		cfg.MaxPriorityRounds = DefaultMaxPriorityRounds
	}
	s := &Sequencer{
		turns:     rules.NewTurnManager(),
		stack:     cfg.Stack,
		combat:    cfg.Combat,
		bus:       cfg.Bus,
		logger:    cfg.Logger,
		policy:    cfg.Policy,
		maxRounds: cfg.MaxPriorityRounds,
	}
	s.hooks = map[rules.TurnEntry]stepHook{
		{Phase: rules.PhaseBeginning, Step: rules.StepUntap}:          s.untap,
		{Phase: rules.PhaseBeginning, Step: rules.StepUpkeep}:         s.priority,
		{Phase: rules.PhaseBeginning, Step: rules.StepDraw}:           s.draw,
		{Phase: rules.PhasePrecombatMain, Step: rules.StepNone}:       s.priority,
		{Phase: rules.PhaseCombat, Step: rules.StepBeginningOfCombat}: s.beginCombat,
		{Phase: rules.PhaseCombat, Step: rules.StepDeclareAttackers}:  s.declareAttackers,
		{Phase: rules.PhaseCombat, Step: rules.StepDeclareBlockers}:   s.declareBlockers,
		{Phase: rules.PhaseCombat, Step: rules.StepCombatDamage}:      s.combatDamage,
		{Phase: rules.PhaseCombat, Step: rules.StepEndOfCombat}:       s.endCombat,
		{Phase: rules.PhasePostcombatMain, Step: rules.StepNone}:      s.priority,
		{Phase: rules.PhaseEnding, Step: rules.StepEnd}:               s.priority,
		{Phase: rules.PhaseEnding, Step: rules.StepCleanup}:           s.cleanup,
	}
	return s
}

// TurnNumber returns the current turn number.
func (s *Sequencer) TurnNumber() int {
	return s.turns.TurnNumber()
}

// AdvanceStep enters the next step: it updates the tabletop, announces the
// new state and then runs the step's hook. From the second turn on, a new
// turn passes the active role to the other player.
func (s *Sequencer) AdvanceStep(t *game.Tabletop) error {
	phase, step, newTurn := s.turns.AdvanceStep()
	if newTurn {
		if s.turns.TurnNumber() > 1 {
			t.SwapActivePlayer()
		}
		t.PlayedLandCount = 0
	}
	t.Phase, t.Step, t.TurnID = phase, step, s.turns.TurnNumber()

	s.logger.Debug("step changed",
		zap.Int("turn", t.TurnID),
		zap.String("phase", phase.String()),
		zap.String("step", step.String()),
		zap.String("active_player", t.ActivePlayer.Name),
	)
	if newTurn {
		publish(s.bus, t, rules.Event{
			Type:        rules.EventTurnStarted,
			PlayerID:    t.ActivePlayer.ID,
			Description: fmt.Sprintf("turn %d: %s", t.TurnID, t.ActivePlayer.Name),
		})
	}
	publish(s.bus, t, rules.Event{Type: rules.EventStepChanged, PlayerID: t.ActivePlayer.ID})

	hook, ok := s.hooks[rules.TurnEntry{Phase: phase, Step: step}]
	if !ok {
		return nil
	}
	return hook(t)
}

// AdvanceUntilEndOfTurn advances until the cleanup step has run or the
// game is over.
func (s *Sequencer) AdvanceUntilEndOfTurn(t *game.Tabletop) error {
	for {
		if err := s.AdvanceStep(t); err != nil {
			return err
		}
		if t.IsOver() || s.turns.IsEndOfTurn() {
			return nil
		}
	}
}

func (s *Sequencer) untap(t *game.Tabletop) error {
	for _, perm := range t.PermanentsControlledBy(t.ActivePlayer) {
		perm.Tapped = false
		perm.SummoningSick = false
	}
	return nil
}

func (s *Sequencer) draw(t *game.Tabletop) error {
	player := t.ActivePlayer
	card, ok := player.Library.FindFromTop()
	if !ok {
		player.Lose("drew from an empty library")
		s.logger.Debug("player decked", zap.String("player", player.Name), zap.Int("turn", t.TurnID))
		return nil
	}
	if err := zone.Move(card, player.Library, player.Hand); err != nil {
		return fmt.Errorf("%w: %v", game.ErrEntityNotInZone, err)
	}
	publish(s.bus, t, rules.Event{Type: rules.EventCardDrawn, PlayerID: player.ID, SourceID: card.ID})
	return s.priority(t)
}

func (s *Sequencer) beginCombat(t *game.Tabletop) error {
	t.Combat = &game.CombatState{}
	return s.priority(t)
}

func (s *Sequencer) declareAttackers(t *game.Tabletop) error {
	validation := s.combat.DeclareAttackers(t)
	if err := s.checkPolicy(t.ActivePlayer, validation); err != nil {
		return err
	}
	return s.priority(t)
}

func (s *Sequencer) declareBlockers(t *game.Tabletop) error {
	if !hasAttackers(t) {
		return nil
	}
	validation := s.combat.DeclareBlockers(t)
	if err := s.checkPolicy(t.NonActivePlayer, validation); err != nil {
		return err
	}
	return s.priority(t)
}

func (s *Sequencer) combatDamage(t *game.Tabletop) error {
	if !hasAttackers(t) {
		return nil
	}
	if err := s.combat.ResolveCombatDamage(t); err != nil {
		return err
	}
	if t.IsOver() {
		return nil
	}
	return s.priority(t)
}

func (s *Sequencer) endCombat(t *game.Tabletop) error {
	s.combat.EndCombat(t)
	return nil
}

// cleanup discards down to the maximum hand size, removes marked damage
// and empties mana pools.
func (s *Sequencer) cleanup(t *game.Tabletop) error {
	player := t.ActivePlayer
	if excess := player.Hand.Quantity() - t.MaxHandSize; excess > 0 {
		parameter := game.Parameter{Amount: excess}
		action := player.Strategy.PerformRequiredAction(t, game.ActionDiscarding, parameter)
		if action == nil || action.Kind != game.ActionDiscarding || action.Parameter.Amount != excess || action.Owner != player {
			action = game.NewDiscardAction(player, excess)
		}
		result, err := s.stack.ExecuteAction(t, action)
		if err != nil {
			return err
		}
		if result.HasError {
			if err := s.checkPolicy(player, game.ValidationResult{Reasons: reasons(result.Messages)}); err != nil {
				return err
			}
			if _, err := s.stack.ExecuteAction(t, game.NewDiscardAction(player, excess)); err != nil {
				return err
			}
		}
	}

	for _, perm := range t.Battlefield.FindAll() {
		perm.Damage = 0
	}
	for _, p := range t.Players() {
		p.ManaPool = mana.Pool{}
	}
	return nil
}

// priority runs one priority round: the active player acts, then the
// non-active player, alternating until both pass in succession with
// nothing to resolve. A special action keeps priority with the same
// player; a resolution that resolved actions returns priority to the
// active player.
func (s *Sequencer) priority(t *game.Tabletop) error {
	player := t.ActivePlayer
	for round := 0; round < s.maxRounds; round++ {
		action, foreign := s.ask(t, player)
		if foreign && s.policy == PolicyTerminate {
			return &IllegalActionError{Player: player.Name, Messages: []string{MsgActionNotOwned}}
		}
		result, err := s.stack.QueueAction(t, action)
		if err != nil {
			return err
		}
		if result.Downgraded && s.policy == PolicyTerminate {
			return &IllegalActionError{Player: player.Name, Messages: result.Messages}
		}

		switch result.Outcome {
		case game.SpecialActionPerformed:
			continue
		case game.StackResolved:
			if result.Resolved == 0 || t.IsOver() {
				return nil
			}
			player = t.ActivePlayer
		default:
			player = player.Opponent
		}
	}

	s.logger.Debug("priority rounds exhausted, forcing passes",
		zap.Int("turn", t.TurnID),
		zap.String("step", t.Step.String()),
	)
	return s.forcePasses(t, player)
}

// forcePasses queues passes until the stack resolves.
func (s *Sequencer) forcePasses(t *game.Tabletop, player *game.Player) error {
	for i := 0; i < 2; i++ {
		result, err := s.stack.QueueAction(t, game.NewPassAction(player))
		if err != nil {
			return err
		}
		if result.Outcome == game.StackResolved {
			return nil
		}
		player = player.Opponent
	}
	return nil
}

// ask returns the action player's strategy proposes. An action owned by
// anyone else is replaced by a pass from player and reported as foreign.
func (s *Sequencer) ask(t *game.Tabletop, player *game.Player) (*game.Action, bool) {
	var action *game.Action
	if player == t.ActivePlayer {
		action = player.Strategy.PerformPrioritizedAction(t)
	} else {
		action = player.Strategy.PerformNonPrioritizedAction(t)
	}
	if action == nil {
		return game.NewPassAction(player), false
	}
	if action.Owner != player {
		s.logger.Debug("foreign action downgraded to pass",
			zap.Int("turn", t.TurnID),
			zap.String("player", player.Name),
			zap.String("action", action.String()),
		)
		publish(s.bus, t, rules.Event{
			Type:        rules.EventActionDowngraded,
			PlayerID:    player.ID,
			Description: action.String(),
		})
		return game.NewPassAction(player), true
	}
	return action, false
}

func (s *Sequencer) checkPolicy(player *game.Player, validation game.ValidationResult) error {
	if validation.IsSuccessful() || s.policy != PolicyTerminate {
		return nil
	}
	return &IllegalActionError{Player: player.Name, Messages: validation.Messages()}
}

func hasAttackers(t *game.Tabletop) bool {
	return t.Combat != nil && len(t.Combat.Attackers) > 0
}

func reasons(messages []string) []game.ValidationReason {
	out := make([]game.ValidationReason, 0, len(messages))
	for _, m := range messages {
		out = append(out, game.ValidationReason{Message: m})
	}
	return out
}
