package repositories

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/songsnap/internal/models"
	"github.com/desertthunder/songsnap/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestScoreRepository(t *testing.T) {
	t.Run("Record Returns Rank", func(t *testing.T) {
		repo := NewScoreRepository(setupTestDB(t))

		rank, err := repo.Record(5000, 5, 10)
		if err != nil {
			t.Fatalf("failed to record score: %v", err)
		}
		if rank != 1 {
			t.Errorf("expected rank 1 on an empty board, got %d", rank)
		}

		rank, err = repo.Record(7000, 7, 10)
		if err != nil {
			t.Fatalf("failed to record score: %v", err)
		}
		if rank != 1 {
			t.Errorf("expected the higher score to rank 1, got %d", rank)
		}

		rank, err = repo.Record(6000, 6, 10)
		if err != nil {
			t.Fatalf("failed to record score: %v", err)
		}
		if rank != 2 {
			t.Errorf("expected rank 2, got %d", rank)
		}
	})

	t.Run("Earlier Entry Wins Ties", func(t *testing.T) {
		repo := NewScoreRepository(setupTestDB(t))

		if _, err := repo.Record(5000, 5, 10); err != nil {
			t.Fatalf("failed to record score: %v", err)
		}
		rank, err := repo.Record(5000, 5, 10)
		if err != nil {
			t.Fatalf("failed to record score: %v", err)
		}
		if rank != 2 {
			t.Errorf("expected the later tied score to rank 2, got %d", rank)
		}
	})

	t.Run("Board Trims To Ten", func(t *testing.T) {
		repo := NewScoreRepository(setupTestDB(t))

		for i := 0; i < 12; i++ {
			if _, err := repo.Record(1000*(i+1), i, 10); err != nil {
				t.Fatalf("failed to record score %d: %v", i, err)
			}
		}

		scores, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list scores: %v", err)
		}
		if len(scores) != maxHighScores {
			t.Errorf("expected %d scores after trim, got %d", maxHighScores, len(scores))
		}
		if scores[0].Score != 12000 {
			t.Errorf("expected best score first, got %d", scores[0].Score)
		}
		for i := 1; i < len(scores); i++ {
			if scores[i].Score > scores[i-1].Score {
				t.Errorf("scores out of order at %d: %d after %d", i, scores[i].Score, scores[i-1].Score)
			}
		}
	})

	t.Run("Off-Board Score Ranks Negative", func(t *testing.T) {
		repo := NewScoreRepository(setupTestDB(t))

		for i := 0; i < maxHighScores; i++ {
			if _, err := repo.Record(5000, 5, 10); err != nil {
				t.Fatalf("failed to record score: %v", err)
			}
		}

		rank, err := repo.Record(100, 1, 10)
		if err != nil {
			t.Fatalf("failed to record score: %v", err)
		}
		if rank != -1 {
			t.Errorf("expected rank -1 for an off-board score, got %d", rank)
		}

		scores, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list scores: %v", err)
		}
		for _, entry := range scores {
			if entry.Score == 100 {
				t.Error("off-board score must not remain on the board")
			}
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewScoreRepository(setupTestDB(t))

		if _, err := repo.Record(5000, 5, 10); err != nil {
			t.Fatalf("failed to record score: %v", err)
		}
		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear scores: %v", err)
		}

		scores, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list scores: %v", err)
		}
		if len(scores) != 0 {
			t.Errorf("expected an empty board, got %d entries", len(scores))
		}
	})
}

func TestHistoryRepository(t *testing.T) {
	record := func(score int) models.GameRecord {
		return models.GameRecord{
			Score:   score,
			Correct: score / 1000,
			Total:   10,
			Rounds: []models.RoundRecord{
				{TrackID: "t1", TrackName: "Song One", Artist: "Artist", Correct: true, Points: 1000},
				{TrackID: "t2", TrackName: "Song Two", Artist: "Artist", Correct: false, Points: 0},
			},
		}
	}

	t.Run("Append And List Round-Trip", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		if err := repo.Append(record(3000)); err != nil {
			t.Fatalf("failed to append history: %v", err)
		}

		records, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}

		got := records[0]
		if got.ID == "" {
			t.Error("expected a generated ID")
		}
		if got.PlayedAt.IsZero() {
			t.Error("expected a fill-in played_at")
		}
		if got.Score != 3000 || got.Total != 10 {
			t.Errorf("unexpected record: %+v", got)
		}
		if len(got.Rounds) != 2 || got.Rounds[0].TrackName != "Song One" || got.Rounds[1].Points != 0 {
			t.Errorf("rounds did not survive the round-trip: %+v", got.Rounds)
		}
	})

	t.Run("Most Recent First", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		for i := 1; i <= 3; i++ {
			if err := repo.Append(record(i * 1000)); err != nil {
				t.Fatalf("failed to append history: %v", err)
			}
		}

		records, err := repo.List(2)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records with a limit, got %d", len(records))
		}
		if records[0].Score != 3000 || records[1].Score != 2000 {
			t.Errorf("expected most recent first, got %d then %d", records[0].Score, records[1].Score)
		}
	})

	t.Run("Trims To Fifty", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		for i := 0; i < maxHistory+5; i++ {
			entry := record(1000)
			entry.ID = fmt.Sprintf("game-%03d", i)
			if err := repo.Append(entry); err != nil {
				t.Fatalf("failed to append history %d: %v", i, err)
			}
		}

		records, err := repo.List(0)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if len(records) != maxHistory {
			t.Errorf("expected %d records after trim, got %d", maxHistory, len(records))
		}
		if records[0].ID != fmt.Sprintf("game-%03d", maxHistory+4) {
			t.Errorf("expected the newest record to survive, got %s", records[0].ID)
		}
	})

	t.Run("Preserves Provided Timestamp", func(t *testing.T) {
		repo := NewHistoryRepository(setupTestDB(t))

		played := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		entry := record(2000)
		entry.PlayedAt = played
		if err := repo.Append(entry); err != nil {
			t.Fatalf("failed to append history: %v", err)
		}

		records, err := repo.List(1)
		if err != nil {
			t.Fatalf("failed to list history: %v", err)
		}
		if !records[0].PlayedAt.Equal(played) {
			t.Errorf("expected played_at %v, got %v", played, records[0].PlayedAt)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "high_scores")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}
}

func TestStore(t *testing.T) {
	store := NewStore(setupTestDB(t))

	rank, err := store.RecordHighScore(4000, 4, 10)
	if err != nil {
		t.Fatalf("failed to record high score: %v", err)
	}
	if rank != 1 {
		t.Errorf("expected rank 1, got %d", rank)
	}

	if err := store.AppendHistory(models.GameRecord{Score: 4000, Correct: 4, Total: 10}); err != nil {
		t.Fatalf("failed to append history: %v", err)
	}

	records, err := store.History.List(0)
	if err != nil {
		t.Fatalf("failed to list history: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 history record, got %d", len(records))
	}
}
