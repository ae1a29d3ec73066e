package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/magefree/mage-sim/internal/simulation"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS outcomes (
	run_id      TEXT    NOT NULL,
	game        INTEGER NOT NULL,
	seed        INTEGER NOT NULL,
	first_deck  TEXT    NOT NULL,
	second_deck TEXT    NOT NULL,
	winner      TEXT    NOT NULL DEFAULT '',
	winner_deck TEXT    NOT NULL DEFAULT '',
	turns       INTEGER NOT NULL,
	has_error   INTEGER NOT NULL DEFAULT 0,
	messages    TEXT    NOT NULL DEFAULT '',
	checksum    TEXT    NOT NULL DEFAULT '',
	trace_path  TEXT    NOT NULL DEFAULT '',
	recorded_at TEXT    NOT NULL,
	PRIMARY KEY (run_id, game)
);
CREATE INDEX IF NOT EXISTS idx_outcomes_recorded_at ON outcomes(recorded_at);
`

// SQLiteStore keeps outcomes in a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path. path may also
// be a full "file:" DSN.
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	dsn := path
	if !strings.HasPrefix(path, "file:") {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One writer at a time; games finish concurrently.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("connected to SQLite", zap.String("path", path))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// SaveOutcome inserts or replaces an outcome.
func (s *SQLiteStore) SaveOutcome(ctx context.Context, o simulation.Outcome) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO outcomes
			(run_id, game, seed, first_deck, second_deck, winner, winner_deck, turns, has_error, messages, checksum, trace_path, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.Game, o.Seed, o.FirstDeck, o.SecondDeck, o.Winner, o.WinnerDeck, o.Turns,
		o.HasError, joinMessages(o.Messages), o.Checksum, o.TracePath,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns stored outcomes, newest first.
func (s *SQLiteStore) ListOutcomes(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `
		SELECT run_id, game, seed, first_deck, second_deck, winner, winner_deck, turns, has_error, messages, checksum, trace_path, recorded_at
		FROM outcomes`
	var args []any
	if filter.RunID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, filter.RunID)
	}
	query += ` ORDER BY recorded_at DESC, game DESC LIMIT ?`
	args = append(args, filter.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list outcomes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r          Record
			messages   string
			recordedAt string
		)
		if err := rows.Scan(&r.RunID, &r.Game, &r.Seed, &r.FirstDeck, &r.SecondDeck, &r.Winner, &r.WinnerDeck,
			&r.Turns, &r.HasError, &messages, &r.Checksum, &r.TracePath, &recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan outcome: %w", err)
		}
		r.Messages = splitMessages(messages)
		if r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse recorded_at: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
