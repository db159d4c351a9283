package ui

import (
	"github.com/desertthunder/songsnap/internal/game"
	"github.com/desertthunder/songsnap/internal/models"
)

// catalogProgressMsg narrates a catalog assembly phase.
type catalogProgressMsg game.ProgressUpdate

// catalogReadyMsg reports that catalog assembly finished.
type catalogReadyMsg struct {
	count int
	err   error
}

// trackLoadedMsg reports that the active round's preview finished loading.
type trackLoadedMsg struct {
	err error
}

// audioEvent crosses from the audio controller's callbacks into the TUI loop.
type audioEvent struct {
	elapsed float64
	total   float64
	done    bool
}

// audioTickMsg is a 100ms playback progress tick.
type audioTickMsg struct {
	elapsed float64
	total   float64
}

// audioDoneMsg reports that the current clip's time window elapsed.
type audioDoneMsg struct{}

// scoresLoadedMsg carries the high-score board for display.
type scoresLoadedMsg struct {
	scores []models.HighScore
	err    error
}

// historyLoadedMsg carries the play history for display.
type historyLoadedMsg struct {
	records []models.GameRecord
	err     error
}
