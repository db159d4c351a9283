package ui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songsnap/internal/game"
	"github.com/desertthunder/songsnap/internal/models"
)

type fakeSource struct {
	tracks []models.Track
}

func (s *fakeSource) TopTracks(ctx context.Context, limit int) ([]models.Track, error) {
	return s.tracks, nil
}

func (s *fakeSource) SavedTracks(ctx context.Context, limit int) ([]models.Track, error) {
	return nil, nil
}

type fakePlayer struct {
	playing bool
}

func (p *fakePlayer) Load(ctx context.Context, url string) error { return nil }
func (p *fakePlayer) PlayForDuration(seconds float64, onProgress func(elapsed, total float64), onComplete func()) {
	p.playing = true
}
func (p *fakePlayer) Pause()              { p.playing = false }
func (p *fakePlayer) Stop()               { p.playing = false }
func (p *fakePlayer) IsPlaying() bool     { return p.playing }
func (p *fakePlayer) SetVolume(v float64) {}
func (p *fakePlayer) Destroy()            {}

// newRoundModel builds a model mid-game, sitting on the first round.
func newRoundModel(t *testing.T) *Model {
	t.Helper()

	tracks := make([]models.Track, 0, 12)
	for i := 0; i < 12; i++ {
		tracks = append(tracks, models.Track{
			ID:         fmt.Sprintf("track%02d", i),
			Title:      fmt.Sprintf("Song %02d", i),
			Artists:    []string{fmt.Sprintf("Artist %02d", i)},
			PreviewURL: "https://p.scdn.co/mp3-preview/" + fmt.Sprintf("track%02d", i),
		})
	}

	engine := game.NewEngine(game.EngineOpts{
		Source: &fakeSource{tracks: tracks},
		Player: &fakePlayer{},
		Rand:   rand.New(rand.NewSource(7)),
	})
	if _, err := engine.Initialize(context.Background(), nil); err != nil {
		t.Fatalf("failed to initialize engine: %v", err)
	}
	engine.StartGame()

	m := NewModel(context.Background(), engine, nil)
	m.view = RoundView
	return m
}

func TestTrackLoadFailure(t *testing.T) {
	t.Run("Skips The Round Instead Of Quitting", func(t *testing.T) {
		m := newRoundModel(t)

		updated, cmd := m.Update(trackLoadedMsg{err: errors.New("preview 404")})
		if cmd != nil {
			t.Fatal("expected no command from a load failure, got one")
		}

		model := updated.(*Model)
		if model.err != nil {
			t.Errorf("load failure must not become a fatal model error: %v", model.err)
		}
		if model.view != RoundResultView {
			t.Errorf("expected RoundResultView, got %v", model.view)
		}
		if model.exhausted == nil || model.exhausted.Track.ID == "" {
			t.Error("expected the answer revealed for the skipped round")
		}
		if round := model.engine.CurrentRound(); round == nil || !round.IsComplete {
			t.Error("expected the round archived as complete")
		}
	})

	t.Run("Game Continues After Skip", func(t *testing.T) {
		m := newRoundModel(t)

		updated, _ := m.Update(trackLoadedMsg{err: errors.New("preview 404")})
		model := updated.(*Model)

		next, _ := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model = next.(*Model)
		if model.view != RoundView {
			t.Errorf("expected next round after skip, got view %v", model.view)
		}
		if round := model.engine.CurrentRound(); round == nil || round.RoundNumber != 2 {
			t.Errorf("expected round 2 active, got %+v", round)
		}
	})

	t.Run("Successful Load Starts Playback", func(t *testing.T) {
		m := newRoundModel(t)

		updated, cmd := m.Update(trackLoadedMsg{})
		model := updated.(*Model)
		if model.view != RoundView {
			t.Errorf("expected to stay in RoundView, got %v", model.view)
		}
		if cmd == nil {
			t.Error("expected a playback command after a successful load")
		}
	})
}
