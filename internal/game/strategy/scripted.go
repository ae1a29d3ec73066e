package strategy

import (
	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/rules"
)

// Moment identifies a step of a given turn.
type Moment struct {
	Turn  int
	Phase rules.Phase
	Step  rules.Step
}

// MomentOf returns the current moment of a tabletop.
func MomentOf(t *game.Tabletop) Moment {
	return Moment{Turn: t.TurnID, Phase: t.Phase, Step: t.Step}
}

// ActionFunc builds an action against the live tabletop, so a script can
// refer to permanents that do not exist yet when it is written.
type ActionFunc func(t *game.Tabletop) *game.Action

// Scripted answers from lookup tables. Queued actions are consumed in
// order; anything not scripted is a pass or an empty decision.
type Scripted struct {
	prioritized    map[Moment][]ActionFunc
	nonPrioritized map[Moment][]ActionFunc
	attacks        map[int]func(t *game.Tabletop) game.AttackingDecision
	blocks         map[int]func(t *game.Tabletop) game.BlockingDecision
	required       map[int]ActionFunc
}

// NewScripted creates an empty script.
func NewScripted() *Scripted {
	return &Scripted{
		prioritized:    make(map[Moment][]ActionFunc),
		nonPrioritized: make(map[Moment][]ActionFunc),
		attacks:        make(map[int]func(t *game.Tabletop) game.AttackingDecision),
		blocks:         make(map[int]func(t *game.Tabletop) game.BlockingDecision),
		required:       make(map[int]ActionFunc),
	}
}

// OnPriority queues actions taken while holding priority as active player.
func (s *Scripted) OnPriority(m Moment, actions ...ActionFunc) *Scripted {
	s.prioritized[m] = append(s.prioritized[m], actions...)
	return s
}

// OnNonPriority queues actions taken as the non-active player.
func (s *Scripted) OnNonPriority(m Moment, actions ...ActionFunc) *Scripted {
	s.nonPrioritized[m] = append(s.nonPrioritized[m], actions...)
	return s
}

// AttackOn scripts the attack of a turn.
func (s *Scripted) AttackOn(turn int, decide func(t *game.Tabletop) game.AttackingDecision) *Scripted {
	s.attacks[turn] = decide
	return s
}

// BlockOn scripts the blocks of a turn.
func (s *Scripted) BlockOn(turn int, decide func(t *game.Tabletop) game.BlockingDecision) *Scripted {
	s.blocks[turn] = decide
	return s
}

// RequireOn scripts the answer to a required action in a turn.
func (s *Scripted) RequireOn(turn int, action ActionFunc) *Scripted {
	s.required[turn] = action
	return s
}

func (s *Scripted) DeclareAttacker(t *game.Tabletop) game.AttackingDecision {
	if decide, ok := s.attacks[t.TurnID]; ok {
		return decide(t)
	}
	return game.AttackingDecision{}
}

func (s *Scripted) DeclareBlocker(t *game.Tabletop) game.BlockingDecision {
	if decide, ok := s.blocks[t.TurnID]; ok {
		return decide(t)
	}
	return game.BlockingDecision{}
}

func (s *Scripted) PerformPrioritizedAction(t *game.Tabletop) *game.Action {
	return s.next(s.prioritized, t, t.ActivePlayer)
}

func (s *Scripted) PerformNonPrioritizedAction(t *game.Tabletop) *game.Action {
	return s.next(s.nonPrioritized, t, t.NonActivePlayer)
}

func (s *Scripted) PerformRequiredAction(t *game.Tabletop, _ game.ActionKind, _ game.Parameter) *game.Action {
	if build, ok := s.required[t.TurnID]; ok {
		return build(t)
	}
	return nil
}

func (s *Scripted) next(table map[Moment][]ActionFunc, t *game.Tabletop, me *game.Player) *game.Action {
	m := MomentOf(t)
	queue := table[m]
	if len(queue) == 0 {
		return game.NewPassAction(me)
	}
	table[m] = queue[1:]
	if a := queue[0](t); a != nil {
		return a
	}
	return game.NewPassAction(me)
}
