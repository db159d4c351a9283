package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/songsnap/internal/models"
	"github.com/desertthunder/songsnap/internal/shared"
)

// maxHistory is the number of most recent games kept.
const maxHistory = 50

// HistoryRepository persists the per-game play history.
//
// Rounds are stored as a JSON column rather than a junction table: history is
// read back whole for display and export, never queried per round.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts a finished game and trims the table to the [maxHistory] most
// recent entries. A zero ID or PlayedAt is filled in.
func (r *HistoryRepository) Append(record models.GameRecord) error {
	sequence, err := NextSequence(r.db, "game_history")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if record.ID == "" {
		record.ID = shared.GenerateID()
	}
	if record.PlayedAt.IsZero() {
		record.PlayedAt = time.Now()
	}

	rounds, err := json.Marshal(record.Rounds)
	if err != nil {
		return fmt.Errorf("failed to encode rounds: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO game_history (id, sequence, score, correct, total, rounds, played_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, sequence, record.Score, record.Correct, record.Total, string(rounds), record.PlayedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game history: %w", err)
	}

	_, err = r.db.Exec(
		`DELETE FROM game_history WHERE id NOT IN (
			SELECT id FROM game_history ORDER BY sequence DESC LIMIT ?
		)`,
		maxHistory,
	)
	if err != nil {
		return fmt.Errorf("failed to trim game history: %w", err)
	}

	return nil
}

// List returns up to limit games, most recent first. A non-positive limit
// returns the full retained history.
func (r *HistoryRepository) List(limit int) ([]models.GameRecord, error) {
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}

	rows, err := r.db.Query(
		`SELECT id, score, correct, total, rounds, played_at FROM game_history ORDER BY sequence DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var record models.GameRecord
		var rounds string
		if err := rows.Scan(&record.ID, &record.Score, &record.Correct, &record.Total, &rounds, &record.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game history: %w", err)
		}
		if err := json.Unmarshal([]byte(rounds), &record.Rounds); err != nil {
			return nil, fmt.Errorf("failed to decode rounds: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Clear empties the history.
func (r *HistoryRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM game_history`); err != nil {
		return fmt.Errorf("failed to clear game history: %w", err)
	}
	return nil
}
