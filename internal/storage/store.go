// Package storage persists simulation outcomes.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/simulation"
)

// Supported drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultListLimit caps ListOutcomes when the filter sets no limit.
const DefaultListLimit = 100

// Record is a stored outcome.
type Record struct {
	simulation.Outcome
	RecordedAt time.Time
}

// ListFilter narrows ListOutcomes. Records come back newest first.
type ListFilter struct {
	RunID string
	Limit int
}

func (f ListFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// Store persists outcomes. Implementations are safe for concurrent use.
type Store interface {
	SaveOutcome(ctx context.Context, outcome simulation.Outcome) error
	ListOutcomes(ctx context.Context, filter ListFilter) ([]Record, error)
	Close() error
}

// Open connects to the store selected by driver. The "none" driver (or an
// empty one) returns a nil Store and no error: nothing is persisted.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverNone:
		return nil, nil
	case DriverSQLite:
		s, err := OpenSQLite(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := OpenPostgres(ctx, dsn, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", driver)
	}
}

func joinMessages(messages []string) string {
	return strings.Join(messages, "\n")
}

func splitMessages(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
