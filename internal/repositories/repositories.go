// Package repositories implements SQLite persistence for game results.
//
// Two boards are kept: a high-score table trimmed to the top 10 by score, and
// a per-game history table trimmed to the 50 most recent games. Both use
// atomic per-table sequence counters for stable insertion ordering.
package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/songsnap/internal/models"
)

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide stable insertion ordering independent of UUIDs and
// timestamps; history trimming keys off them.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	_, err = tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// Store bundles the score and history repositories behind the single
// persistence interface the game engine consumes.
type Store struct {
	Scores  *ScoreRepository
	History *HistoryRepository
}

// NewStore creates a Store over the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{
		Scores:  NewScoreRepository(db),
		History: NewHistoryRepository(db),
	}
}

// RecordHighScore records a finished game on the high-score board.
func (s *Store) RecordHighScore(score, correct, total int) (int, error) {
	return s.Scores.Record(score, correct, total)
}

// AppendHistory appends a finished game to the play history.
func (s *Store) AppendHistory(record models.GameRecord) error {
	return s.History.Append(record)
}
