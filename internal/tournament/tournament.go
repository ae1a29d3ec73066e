// Package tournament plays every deck against every other deck and ranks
// them by match points.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/deck"
	"github.com/magefree/mage-sim/internal/game/random"
	"github.com/magefree/mage-sim/internal/simulation"
)

// Match points.
const (
	PointsWin  = 3
	PointsDraw = 1
)

// State represents the state of a tournament
type State int

const (
	StateWaiting State = iota
	StateInProgress
	StateFinished
	StateAborted
)

var stateNames = map[State]string{
	StateWaiting:    "WAITING",
	StateInProgress: "IN_PROGRESS",
	StateFinished:   "FINISHED",
	StateAborted:    "ABORTED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Standing is the match record of one deck.
type Standing struct {
	Deck   string
	Points int
	Wins   int
	Losses int
	Draws  int
}

// Pairing is one match: a batch of games between two decks, each going
// first in every other game.
type Pairing struct {
	First      string
	Second     string
	RunID      string
	FirstWins  int
	SecondWins int
	Draws      int
	Errors     int
	Winner     string // empty for a drawn match
	Finished   bool
}

// Tournament is a round robin between decks.
type Tournament struct {
	ID        string
	Name      string
	State     State
	Seed      int64
	StartTime *time.Time
	EndTime   *time.Time
	base      simulation.Config
	decks     map[string]deck.Definition
	order     []string
	standings map[string]*Standing
	pairings  []*Pairing
	logger    *zap.Logger
	mu        sync.RWMutex
}

// New creates a tournament between base.Decks. base.Games is the number
// of games per match; the other fields apply to every game.
func New(name string, base simulation.Config, logger *zap.Logger) (*Tournament, error) {
	if len(base.Decks) < 2 {
		return nil, errors.New("tournament: at least two decks are required")
	}
	if base.Games <= 0 {
		return nil, errors.New("tournament: games per match must be positive")
	}
	if base.Seed == 0 {
		seed, err := random.NewSeed()
		if err != nil {
			return nil, fmt.Errorf("tournament: %w", err)
		}
		base.Seed = seed
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	t := &Tournament{
		ID:        uuid.New().String(),
		Name:      name,
		State:     StateWaiting,
		Seed:      base.Seed,
		base:      base,
		decks:     make(map[string]deck.Definition, len(base.Decks)),
		standings: make(map[string]*Standing, len(base.Decks)),
		logger:    logger,
	}
	for _, d := range base.Decks {
		if _, ok := t.decks[d.Name]; ok {
			return nil, fmt.Errorf("tournament: duplicate deck %q", d.Name)
		}
		t.decks[d.Name] = d
		t.order = append(t.order, d.Name)
		t.standings[d.Name] = &Standing{Deck: d.Name}
	}
	t.pairings = t.generatePairings()
	return t, nil
}

// generatePairings pairs every deck with every later deck.
func (t *Tournament) generatePairings() []*Pairing {
	var pairings []*Pairing
	for i := 0; i < len(t.order); i++ {
		for j := i + 1; j < len(t.order); j++ {
			pairings = append(pairings, &Pairing{First: t.order[i], Second: t.order[j]})
		}
	}
	return pairings
}

// Run plays every match in order. Match i draws its seeds from
// Seed + i*Games, so no two games of the tournament share a seed.
func (t *Tournament) Run(ctx context.Context, opts ...simulation.Option) error {
	t.mu.Lock()
	if t.State != StateWaiting {
		t.mu.Unlock()
		return errors.New("tournament: already started")
	}
	now := time.Now()
	t.StartTime = &now
	t.State = StateInProgress
	t.mu.Unlock()

	t.logger.Info("tournament started",
		zap.String("tournament_id", t.ID),
		zap.Int("decks", len(t.order)),
		zap.Int("matches", len(t.pairings)),
		zap.Int64("seed", t.Seed),
	)

	for i, p := range t.pairings {
		cfg := t.base
		cfg.Decks = []deck.Definition{t.decks[p.First], t.decks[p.Second]}
		cfg.Seed = t.Seed + int64(i*t.base.Games)

		report, err := t.playMatch(ctx, i, cfg, opts)
		if err != nil {
			t.abort(err)
			return fmt.Errorf("tournament: match %s vs %s: %w", p.First, p.Second, err)
		}
		t.recordMatchResult(p, report)
	}

	t.mu.Lock()
	end := time.Now()
	t.EndTime = &end
	t.State = StateFinished
	t.mu.Unlock()

	standings := t.Standings()
	t.logger.Info("tournament finished",
		zap.String("tournament_id", t.ID),
		zap.String("leader", standings[0].Deck),
		zap.Int("points", standings[0].Points),
	)
	return nil
}

func (t *Tournament) playMatch(ctx context.Context, i int, cfg simulation.Config, opts []simulation.Option) (*simulation.Report, error) {
	runner, err := simulation.NewRunner(cfg, t.logger.With(zap.Int("match", i)), opts...)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx)
}

// abort ends the tournament after a failed match.
func (t *Tournament) abort(cause error) {
	t.mu.Lock()
	end := time.Now()
	t.EndTime = &end
	t.State = StateAborted
	t.mu.Unlock()

	t.logger.Warn("tournament aborted",
		zap.String("tournament_id", t.ID),
		zap.Error(cause),
	)
}

// recordMatchResult counts the games of a match and awards match points.
func (t *Tournament) recordMatchResult(p *Pairing, report *simulation.Report) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p.RunID = report.RunID
	for _, o := range report.Outcomes {
		switch {
		case o.HasError:
			p.Errors++
		case o.IsDraw():
			p.Draws++
		case o.WinnerDeck == p.First:
			p.FirstWins++
		default:
			p.SecondWins++
		}
	}
	p.Finished = true

	first, second := t.standings[p.First], t.standings[p.Second]
	switch {
	case p.FirstWins > p.SecondWins:
		p.Winner = p.First
		first.Wins++
		first.Points += PointsWin
		second.Losses++
	case p.SecondWins > p.FirstWins:
		p.Winner = p.Second
		second.Wins++
		second.Points += PointsWin
		first.Losses++
	default:
		first.Draws++
		first.Points += PointsDraw
		second.Draws++
		second.Points += PointsDraw
	}
}

// Pairings returns a copy of the matches.
func (t *Tournament) Pairings() []Pairing {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Pairing, len(t.pairings))
	for i, p := range t.pairings {
		out[i] = *p
	}
	return out
}

// Standings returns the decks by points, then match wins, then name.
func (t *Tournament) Standings() []Standing {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Standing, 0, len(t.standings))
	for _, name := range t.order {
		out = append(out, *t.standings[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Deck < out[j].Deck
	})
	return out
}

// GetState returns the state of the tournament.
func (t *Tournament) GetState() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.State
}
