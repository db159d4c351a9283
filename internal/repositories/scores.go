package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/songsnap/internal/models"
	"github.com/desertthunder/songsnap/internal/shared"
)

// maxHighScores is the size of the high-score board.
const maxHighScores = 10

// ScoreRepository persists the high-score board.
//
// The board holds at most [maxHighScores] entries ordered by score descending;
// inserts that fall off the bottom are trimmed away.
type ScoreRepository struct {
	db *sql.DB
}

// NewScoreRepository creates a new ScoreRepository with the given database connection
func NewScoreRepository(db *sql.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Record inserts a finished game onto the board and returns its 1-based rank,
// or -1 when the score did not make the top 10. The board is trimmed after
// every insert.
func (r *ScoreRepository) Record(score, correct, total int) (int, error) {
	sequence, err := NextSequence(r.db, "high_scores")
	if err != nil {
		return 0, fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playedAt := time.Now()

	_, err = r.db.Exec(
		`INSERT INTO high_scores (id, sequence, score, correct, total, played_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, sequence, score, correct, total, playedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert high score: %w", err)
	}

	// rank among all rows, earlier entries win ties
	var rank int
	err = r.db.QueryRow(
		`SELECT COUNT(*) + 1 FROM high_scores WHERE score > ? OR (score = ? AND sequence < ?)`,
		score, score, sequence,
	).Scan(&rank)
	if err != nil {
		return 0, fmt.Errorf("failed to compute rank: %w", err)
	}

	_, err = r.db.Exec(
		`DELETE FROM high_scores WHERE id NOT IN (
			SELECT id FROM high_scores ORDER BY score DESC, sequence ASC LIMIT ?
		)`,
		maxHighScores,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to trim high scores: %w", err)
	}

	if rank > maxHighScores {
		return -1, nil
	}

	return rank, nil
}

// List returns the board ordered best-first.
func (r *ScoreRepository) List() ([]models.HighScore, error) {
	rows, err := r.db.Query(
		`SELECT score, correct, total, played_at FROM high_scores ORDER BY score DESC, sequence ASC LIMIT ?`,
		maxHighScores,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query high scores: %w", err)
	}
	defer rows.Close()

	var scores []models.HighScore
	for rows.Next() {
		var entry models.HighScore
		if err := rows.Scan(&entry.Score, &entry.Correct, &entry.Total, &entry.PlayedAt); err != nil {
			return nil, fmt.Errorf("failed to scan high score: %w", err)
		}
		scores = append(scores, entry)
	}

	return scores, rows.Err()
}

// Clear empties the board.
func (r *ScoreRepository) Clear() error {
	if _, err := r.db.Exec(`DELETE FROM high_scores`); err != nil {
		return fmt.Errorf("failed to clear high scores: %w", err)
	}
	return nil
}
