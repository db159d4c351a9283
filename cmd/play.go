package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songsnap/internal/audio"
	"github.com/desertthunder/songsnap/internal/game"
	"github.com/desertthunder/songsnap/internal/repositories"
	"github.com/desertthunder/songsnap/internal/services"
	"github.com/desertthunder/songsnap/internal/shared"
	"github.com/desertthunder/songsnap/internal/ui"
	"github.com/urfave/cli/v3"
)

// Play wires the full game session and launches the interactive TUI.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadConfig(cmd)

	svc, err := r.spotifyService(config)
	if err != nil {
		return err
	}

	token := config.Credentials.Spotify.Token()
	if token == nil {
		return fmt.Errorf("%w: run songsnap auth login first", shared.ErrNotAuthenticated)
	}
	if err := svc.OAuthenticate(ctx, token); err != nil {
		return fmt.Errorf("failed to install token: %w", err)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	rounds := config.Game.RoundsPerGame
	if v := cmd.Int("rounds"); v > 0 {
		rounds = v
	}
	volume := config.Game.Volume
	if v := cmd.Float("volume"); v > 0 {
		volume = v
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/songsnap-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	controller := audio.NewController(audio.ControllerOpts{
		Logger: r.logger,
		Volume: volume,
	})
	defer controller.Destroy()

	store := repositories.NewStore(db)
	engine := game.NewEngine(game.EngineOpts{
		Source:        svc,
		Player:        controller,
		Store:         store,
		Logger:        r.logger,
		RoundsPerGame: rounds,
	})

	model := ui.NewModel(ctx, engine, store)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	// the service may have refreshed the token mid-session
	if sp, ok := svc.(*services.SpotifyService); ok {
		if fresh := sp.Token(); fresh != nil && fresh.AccessToken != token.AccessToken {
			if err := config.Credentials.Spotify.Update(fresh); err == nil {
				if err := shared.SaveConfig(configPath, config); err != nil {
					r.logger.Warn("failed to persist refreshed token", "error", err)
				}
			}
		}
	}

	return nil
}
