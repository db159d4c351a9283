package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/songsnap/internal/formatter"
	"github.com/desertthunder/songsnap/internal/repositories"
	"github.com/desertthunder/songsnap/internal/shared"
	"github.com/urfave/cli/v3"
)

// openStore opens the configured database, runs migrations, and wraps it in a
// repositories.Store. The caller owns closing the returned handle.
func (r *Runner) openStore(cmd *cli.Command) (*sql.DB, *repositories.Store, error) {
	config := r.loadConfig(cmd)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, repositories.NewStore(db), nil
}

// Scores prints the high-score board.
func (r *Runner) Scores(ctx context.Context, cmd *cli.Command) error {
	db, store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	scores, err := store.Scores.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(scores, true)
	}

	return r.writePlain("%s", formatter.HighScoreTable(scores, time.Now()))
}

// ScoresExport writes the high-score board to CSV.
func (r *Runner) ScoresExport(ctx context.Context, cmd *cli.Command) error {
	db, store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	scores, err := store.Scores.List()
	if err != nil {
		return err
	}

	path, err := formatter.WriteHighScoresExport(scores, cmd.String("output"))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Exported %d scores to %s\n", len(scores), path)
}

// ScoresClear empties the high-score board.
func (r *Runner) ScoresClear(ctx context.Context, cmd *cli.Command) error {
	db, store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Scores.Clear(); err != nil {
		return err
	}

	return r.writePlain("✓ High scores cleared\n")
}

// History prints recent games.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := store.History.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	return r.writePlain("%s", formatter.HistoryText(records, time.Now()))
}

// HistoryExport writes the play history to CSV, one row per round.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	db, store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := store.History.List(0)
	if err != nil {
		return err
	}

	path, err := formatter.WriteHistoryExport(records, cmd.String("output"))
	if err != nil {
		return err
	}

	return r.writePlain("✓ Exported %d games to %s\n", len(records), path)
}

// HistoryClear empties the play history.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	db, store, err := r.openStore(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.History.Clear(); err != nil {
		return err
	}

	return r.writePlain("✓ History cleared\n")
}
