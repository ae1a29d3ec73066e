package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/handler"
	"github.com/magefree/mage-sim/internal/game/random"
	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/game/zone"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultMaxTurns    = 50
	DefaultOpeningHand = 7
	firstPlayerDie     = 20
)

// Options configures one game.
type Options struct {
	Seed              int64
	Random            random.Generator // defaults to random.NewSource(Seed)
	MaxTurns          int
	MaxPriorityRounds int
	OpeningHand       int
	MaxHandSize       int
	Policy            IllegalActionPolicy
	Bus               *rules.EventBus
	Logger            *zap.Logger
}

// Game wires a tabletop to the engine components and plays it out.
type Game struct {
	table     *game.Tabletop
	stack     *StackResolver
	combat    *CombatResolver
	sequencer *Sequencer
	rng       random.Generator
	bus       *rules.EventBus
	logger    *zap.Logger
	opts      Options
	ready     bool
}

// NewGame seats two players at a new tabletop.
func NewGame(first, second *game.Player, opts Options) (*Game, error) {
	if first == nil || second == nil {
		return nil, errors.New("new game: two players are required")
	}
	if first.Strategy == nil || second.Strategy == nil {
		return nil, errors.New("new game: every player needs a strategy")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Random == nil {
		opts.Random = random.NewSource(opts.Seed)
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.OpeningHand < 0 {
		opts.OpeningHand = 0
	} else if opts.OpeningHand == 0 {
		opts.OpeningHand = DefaultOpeningHand
	}
	if opts.MaxHandSize <= 0 {
		opts.MaxHandSize = game.DefaultMaxHandSize
	}

	registry, err := handler.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}

	table := game.NewTabletop(first, second)
	table.MaxHandSize = opts.MaxHandSize

	stack := NewStackResolver(registry, opts.Bus, opts.Logger)
	combat := NewCombatResolver(opts.Bus, opts.Logger)
	return &Game{
		table:  table,
		stack:  stack,
		combat: combat,
		sequencer: NewSequencer(SequencerConfig{
			Stack:             stack,
			Combat:            combat,
			Bus:               opts.Bus,
			Logger:            opts.Logger,
			Policy:            opts.Policy,
			MaxPriorityRounds: opts.MaxPriorityRounds,
		}),
		rng:    opts.Random,
		bus:    opts.Bus,
		logger: opts.Logger,
		opts:   opts,
	}, nil
}

// Tabletop returns the game state.
func (g *Game) Tabletop() *game.Tabletop {
	return g.table
}

// Setup shuffles both libraries, rolls dice for the first player (rerolling
// ties) and draws opening hands. It runs once.
func (g *Game) Setup() error {
	if g.ready {
		return nil
	}
	t := g.table
	for _, p := range t.Players() {
		if err := p.Library.Shuffle(g.rng.GenerateShufflingIndexes(p.Library.Quantity())); err != nil {
			return fmt.Errorf("setup %s: %w", p.Name, err)
		}
	}

	for {
		first, second := g.rng.RollDice(firstPlayerDie), g.rng.RollDice(firstPlayerDie)
		if first == second {
			continue
		}
		if second > first {
			t.SwapActivePlayer()
		}
		break
	}

	for _, p := range t.Players() {
		for _, card := range p.Library.FindManyFromTop(g.opts.OpeningHand) {
			if err := zone.Move(card, p.Library, p.Hand); err != nil {
				return fmt.Errorf("setup %s: %w", p.Name, err)
			}
		}
	}

	g.ready = true
	publish(g.bus, t, rules.Event{
		Type:        rules.EventGameStarted,
		PlayerID:    t.ActivePlayer.ID,
		Description: fmt.Sprintf("%s plays first against %s", t.ActivePlayer.Name, t.NonActivePlayer.Name),
	})
	g.logger.Debug("game set up",
		zap.String("first_player", t.ActivePlayer.Name),
		zap.Int64("seed", g.opts.Seed),
	)
	return nil
}

// PlayTurn plays one full turn.
func (g *Game) PlayTurn() error {
	if err := g.Setup(); err != nil {
		return err
	}
	return g.sequencer.AdvanceUntilEndOfTurn(g.table)
}

// Play runs turns until a player loses or the turn limit is reached.
// Reaching the limit is a successful result without a winner. An illegal
// action under PolicyTerminate and engine errors produce error results.
func (g *Game) Play() game.SimulationResult {
	t := g.table
	result := game.SimulationResult{Tabletop: t, Seed: g.opts.Seed}

	err := g.Setup()
	for err == nil && !t.IsOver() && t.TurnID < g.opts.MaxTurns {
		err = g.sequencer.AdvanceUntilEndOfTurn(t)
	}
	result.Turns = t.TurnID

	var illegal *IllegalActionError
	switch {
	case errors.As(err, &illegal):
		result.HasError = true
		result.Messages = append([]string{illegal.Error()}, illegal.Messages...)
	case err != nil:
		g.logger.Error("game aborted by engine error",
			zap.Int("turn", t.TurnID),
			zap.Int64("seed", g.opts.Seed),
			zap.Error(err),
		)
		result.HasError = true
		result.Messages = []string{err.Error()}
	case t.IsOver():
		result.WinningPlayer = t.Winner()
		for _, p := range t.Players() {
			if p.HasLost() {
				result.Messages = append(result.Messages, fmt.Sprintf("%s lost: %s", p.Name, lossReason(p)))
			}
		}
	default:
		result.Messages = []string{fmt.Sprintf("turn limit of %d reached", g.opts.MaxTurns)}
	}

	winner := ""
	if result.WinningPlayer != nil {
		winner = result.WinningPlayer.ID
	}
	publish(g.bus, t, rules.Event{
		Type:        rules.EventGameOver,
		PlayerID:    winner,
		Amount:      result.Turns,
		Description: fmt.Sprint(result.Messages),
	})
	return result
}

func lossReason(p *game.Player) string {
	if p.LossReason != "" {
		return p.LossReason
	}
	return "life total reached 0"
}
