package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/simulation"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS outcomes (
	run_id      UUID        NOT NULL,
	game        INT         NOT NULL,
	seed        BIGINT      NOT NULL,
	first_deck  TEXT        NOT NULL,
	second_deck TEXT        NOT NULL,
	winner      TEXT        NOT NULL DEFAULT '',
	winner_deck TEXT        NOT NULL DEFAULT '',
	turns       INT         NOT NULL,
	has_error   BOOLEAN     NOT NULL DEFAULT FALSE,
	messages    TEXT[]      NOT NULL DEFAULT '{}',
	checksum    TEXT        NOT NULL DEFAULT '',
	trace_path  TEXT        NOT NULL DEFAULT '',
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, game)
);
CREATE INDEX IF NOT EXISTS idx_outcomes_recorded_at ON outcomes(recorded_at DESC);
`

// PostgresStore keeps outcomes in PostgreSQL.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// OpenPostgres connects to databaseURL and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("postgres: database URL is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: create schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("connected to Postgres")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// SaveOutcome inserts or updates an outcome.
func (s *PostgresStore) SaveOutcome(ctx context.Context, o simulation.Outcome) error {
	messages := o.Messages
	if messages == nil {
		messages = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO outcomes
			(run_id, game, seed, first_deck, second_deck, winner, winner_deck, turns, has_error, messages, checksum, trace_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (run_id, game) DO UPDATE SET
			winner = EXCLUDED.winner,
			winner_deck = EXCLUDED.winner_deck,
			turns = EXCLUDED.turns,
			has_error = EXCLUDED.has_error,
			messages = EXCLUDED.messages,
			checksum = EXCLUDED.checksum,
			trace_path = EXCLUDED.trace_path,
			recorded_at = now()`,
		o.RunID, o.Game, o.Seed, o.FirstDeck, o.SecondDeck, o.Winner, o.WinnerDeck, o.Turns,
		o.HasError, messages, o.Checksum, o.TracePath,
	)
	if err != nil {
		return fmt.Errorf("postgres: save outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns stored outcomes, newest first.
func (s *PostgresStore) ListOutcomes(ctx context.Context, filter ListFilter) ([]Record, error) {
	var (
		rows pgx.Rows
		err  error
	)
	const columns = `run_id::text, game, seed, first_deck, second_deck, winner, winner_deck, turns, has_error, messages, checksum, trace_path, recorded_at`
	if filter.RunID != "" {
		rows, err = s.pool.Query(ctx, `SELECT `+columns+` FROM outcomes WHERE run_id = $1 ORDER BY recorded_at DESC, game DESC LIMIT $2`,
			filter.RunID, filter.limit())
	} else {
		rows, err = s.pool.Query(ctx, `SELECT `+columns+` FROM outcomes ORDER BY recorded_at DESC, game DESC LIMIT $1`,
			filter.limit())
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: list outcomes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.RunID, &r.Game, &r.Seed, &r.FirstDeck, &r.SecondDeck, &r.Winner, &r.WinnerDeck,
			&r.Turns, &r.HasError, &r.Messages, &r.Checksum, &r.TracePath, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan outcome: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
