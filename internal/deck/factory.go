package deck

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/game"
)

// DefaultStartingLife is the life total players start with.
const DefaultStartingLife = 20

// DefinedPlayer describes a player before the game: who it is, what it
// plays and how it decides.
type DefinedPlayer struct {
	Name     string
	Deck     Definition
	Strategy game.Strategy
}

// Factory creates players with fresh identifiers. Given a deterministic
// reader, the identifiers it hands out are reproducible.
type Factory struct {
	ids          io.Reader
	startingLife int
	logger       *zap.Logger
}

// NewFactory creates a factory. A nil ids reader draws identifiers from
// crypto/rand; a non-positive startingLife uses DefaultStartingLife.
func NewFactory(ids io.Reader, startingLife int, logger *zap.Logger) *Factory {
	if startingLife <= 0 {
		startingLife = DefaultStartingLife
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{ids: ids, startingLife: startingLife, logger: logger}
}

// CreatePlayer builds a player whose library holds one fresh card per copy
// in the deck list, in list order. Shuffling happens at game setup.
func (f *Factory) CreatePlayer(dp DefinedPlayer) (*game.Player, error) {
	if dp.Strategy == nil {
		return nil, errors.New("create player: strategy is required")
	}
	if err := dp.Deck.Validate(); err != nil {
		return nil, fmt.Errorf("create player %s: %w", dp.Name, err)
	}
	id, err := f.newID()
	if err != nil {
		return nil, fmt.Errorf("create player %s: %w", dp.Name, err)
	}
	name := dp.Name
	if name == "" {
		name = dp.Deck.Name
	}

	player := game.NewPlayer(id, name, f.startingLife, dp.Strategy)
	for _, entry := range dp.Deck.Cards {
		template, err := entry.template()
		if err != nil {
			return nil, fmt.Errorf("create player %s: %w", name, err)
		}
		for i := 0; i < entry.Count; i++ {
			card := template
			if card.ID, err = f.newID(); err != nil {
				return nil, fmt.Errorf("create player %s: %w", name, err)
			}
			player.Library.AddToTop(&card)
		}
	}

	f.logger.Debug("player created",
		zap.String("player", name),
		zap.String("deck", dp.Deck.Name),
		zap.Int("library", player.Library.Quantity()),
	)
	return player, nil
}

func (f *Factory) newID() (string, error) {
	var (
		id  uuid.UUID
		err error
	)
	if f.ids == nil {
		id, err = uuid.NewRandom()
	} else {
		id, err = uuid.NewRandomFromReader(f.ids)
	}
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}
