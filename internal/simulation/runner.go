// Package simulation plays many independent games in parallel and
// summarizes their outcomes.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/magefree/mage-sim/internal/deck"
	"github.com/magefree/mage-sim/internal/game"
	"github.com/magefree/mage-sim/internal/game/engine"
	"github.com/magefree/mage-sim/internal/game/random"
	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/game/strategy"
	"github.com/magefree/mage-sim/internal/trace"
)

// Config describes a batch of games.
type Config struct {
	Games             int
	Parallelism       int
	Seed              int64
	MaxTurns          int
	MaxPriorityRounds int
	Policy            engine.IllegalActionPolicy
	Strategy          string
	Decks             []deck.Definition
	StartingLife      int
	OpeningHand       int
	MaxHandSize       int
	TraceDir          string
}

// Outcome is the result of one game of a run.
type Outcome struct {
	RunID      string
	Game       int
	Seed       int64
	FirstDeck  string
	SecondDeck string
	Winner     string
	WinnerDeck string
	Turns      int
	HasError   bool
	Messages   []string
	Checksum   string
	TracePath  string
}

// IsDraw reports whether the game ended without a winner and without error.
func (o Outcome) IsDraw() bool {
	return !o.HasError && o.Winner == ""
}

// Report is the result of a run.
type Report struct {
	RunID    string
	Seed     int64
	Outcomes []Outcome
	Summary  Summary
}

// GameEvent is an event of one game of a run.
type GameEvent struct {
	RunID string
	Game  int
	Event rules.Event
}

// Observer receives the events of every game as they happen. It is called
// from several goroutines at once.
type Observer interface {
	Observe(GameEvent)
}

// Sink persists outcomes as games finish.
type Sink interface {
	SaveOutcome(ctx context.Context, outcome Outcome) error
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSink persists every outcome to sink.
func WithSink(sink Sink) Option {
	return func(r *Runner) { r.sink = sink }
}

// WithObserver forwards every game event to observer.
func WithObserver(observer Observer) Option {
	return func(r *Runner) { r.observer = observer }
}

// Runner plays the games of a Config.
type Runner struct {
	cfg      Config
	logger   *zap.Logger
	sink     Sink
	observer Observer
}

// NewRunner validates cfg and fills in defaults. A zero seed is replaced
// by a fresh random one, which the report carries for reproduction.
func NewRunner(cfg Config, logger *zap.Logger, opts ...Option) (*Runner, error) {
	if cfg.Games <= 0 {
		return nil, errors.New("simulation: games must be positive")
	}
	if len(cfg.Decks) == 0 {
		return nil, errors.New("simulation: at least one deck is required")
	}
	for _, d := range cfg.Decks {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("simulation: %w", err)
		}
	}
	if _, err := strategy.New(cfg.Strategy, random.NewSource(0)); err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	if cfg.Seed == 0 {
		seed, err := random.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("simulation: %w", err)
		}
		cfg.Seed = seed
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Runner{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Seed returns the base seed of the run. Game i is played from Seed+i.
func (r *Runner) Seed() int64 {
	return r.cfg.Seed
}

// Run plays every game. Games share nothing, so they run on up to
// Parallelism goroutines. Engine errors are reported in the outcome of
// their game; Run only fails on cancellation or when persisting fails.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	r.logger.Info("simulation started",
		zap.String("run_id", runID),
		zap.Int("games", r.cfg.Games),
		zap.Int("parallelism", r.cfg.Parallelism),
		zap.Int64("seed", r.cfg.Seed),
	)

	outcomes := make([]Outcome, r.cfg.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)
	for i := range outcomes {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := r.playGame(runID, i)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			if r.sink != nil {
				if err := r.sink.SaveOutcome(ctx, outcome); err != nil {
					return fmt.Errorf("save outcome of game %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:    runID,
		Seed:     r.cfg.Seed,
		Outcomes: outcomes,
		Summary:  Summarize(outcomes),
	}
	r.logger.Info("simulation finished",
		zap.String("run_id", runID),
		zap.Int("errors", report.Summary.Errors),
		zap.Int("draws", report.Summary.Draws),
		zap.Float64("average_turns", report.Summary.AverageTurns),
	)
	return report, nil
}

// playGame plays game index of the run. Everything random in the game
// draws from one source seeded with Seed+index, so the game can be
// replayed exactly.
func (r *Runner) playGame(runID string, index int) (Outcome, error) {
	seed := r.cfg.Seed + int64(index)
	rng := random.NewSource(seed)
	firstDeck := r.cfg.Decks[index%len(r.cfg.Decks)]
	secondDeck := r.cfg.Decks[(index+1)%len(r.cfg.Decks)]
	outcome := Outcome{
		RunID:      runID,
		Game:       index,
		Seed:       seed,
		FirstDeck:  firstDeck.Name,
		SecondDeck: secondDeck.Name,
	}

	factory := deck.NewFactory(rng, r.cfg.StartingLife, r.logger)
	var players [2]*game.Player
	for seat, d := range []deck.Definition{firstDeck, secondDeck} {
		s, err := strategy.New(r.cfg.Strategy, rng)
		if err != nil {
			return outcome, err
		}
		p, err := factory.CreatePlayer(deck.DefinedPlayer{
			Name:     fmt.Sprintf("P%d %s", seat+1, d.Name),
			Deck:     d,
			Strategy: s,
		})
		if err != nil {
			return outcome, fmt.Errorf("game %d: %w", index, err)
		}
		players[seat] = p
	}

	bus := rules.NewEventBus()
	recorder := trace.NewRecorder(fmt.Sprintf("%s-%04d", runID, index), seed)
	recorder.Attach(bus)
	if r.observer != nil {
		bus.Subscribe(func(e rules.Event) {
			r.observer.Observe(GameEvent{RunID: runID, Game: index, Event: e})
		})
	}

	g, err := engine.NewGame(players[0], players[1], engine.Options{
		Seed:              seed,
		Random:            rng,
		MaxTurns:          r.cfg.MaxTurns,
		MaxPriorityRounds: r.cfg.MaxPriorityRounds,
		OpeningHand:       r.cfg.OpeningHand,
		MaxHandSize:       r.cfg.MaxHandSize,
		Policy:            r.cfg.Policy,
		Bus:               bus,
		Logger:            r.logger.With(zap.Int("game", index)),
	})
	if err != nil {
		return outcome, fmt.Errorf("game %d: %w", index, err)
	}

	r.logger.Info("game started",
		zap.Int("game", index),
		zap.Int64("seed", seed),
		zap.String("first_deck", firstDeck.Name),
		zap.String("second_deck", secondDeck.Name),
	)
	result := g.Play()
	recorder.Detach()

	outcome.Turns = result.Turns
	outcome.HasError = result.HasError
	outcome.Messages = result.Messages
	if result.WinningPlayer != nil {
		outcome.Winner = result.WinningPlayer.Name
		if result.WinningPlayer == players[0] {
			outcome.WinnerDeck = firstDeck.Name
		} else {
			outcome.WinnerDeck = secondDeck.Name
		}
	}

	tr := recorder.Trace()
	outcome.Checksum = tr.Checksum()
	if r.cfg.TraceDir != "" {
		path, err := tr.SaveToFile(r.cfg.TraceDir)
		if err != nil {
			return outcome, fmt.Errorf("game %d: %w", index, err)
		}
		outcome.TracePath = path
	}

	r.logger.Info("game finished",
		zap.Int("game", index),
		zap.Int64("seed", seed),
		zap.String("winner", outcome.Winner),
		zap.Int("turns", outcome.Turns),
		zap.Bool("error", outcome.HasError),
	)
	return outcome, nil
}
