package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songsnap/internal/formatter"
	"github.com/desertthunder/songsnap/internal/game"
	"github.com/desertthunder/songsnap/internal/models"
	"github.com/desertthunder/songsnap/internal/repositories"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	MenuView
	RoundView
	RoundResultView
	SummaryView
	ScoresView
	HistoryView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	engine *game.Engine
	store  *repositories.Store

	view   ViewState
	width  int
	height int

	input       textinput.Model
	progressBar progress.Model
	suggestions []models.Track
	suggestIdx  int

	catalogMsg   string
	loadingTrack bool
	elapsed      float64
	total        float64
	listening    bool
	audioCh      chan audioEvent
	progressCh   chan game.ProgressUpdate

	lastGuess *game.GuessResult
	exhausted *game.RevealResult
	summary   *game.Summary
	scores    []models.HighScore
	history   []models.GameRecord

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *game.Engine, store *repositories.Store) *Model {
	input := textinput.New()
	input.Placeholder = "Type a song or artist..."
	input.CharLimit = 64
	input.Width = 40
	input.Focus()

	return &Model{
		ctx:         ctx,
		engine:      engine,
		store:       store,
		view:        LoadingView,
		input:       input,
		progressBar: progress.New(progress.WithDefaultGradient()),
		audioCh:     make(chan audioEvent, 16),
		progressCh:  make(chan game.ProgressUpdate, 8),
		catalogMsg:  "Connecting to Spotify...",
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init kicks off catalog assembly.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.initializeCatalog(), m.waitForCatalogProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = min(msg.Width-8, 50)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MenuView:
			return m.handleMenuKeys(msg)
		case RoundView:
			return m.handleRoundKeys(msg)
		case RoundResultView:
			return m.handleRoundResultKeys(msg)
		case SummaryView:
			return m.handleSummaryKeys(msg)
		case ScoresView, HistoryView:
			return m.handleBoardKeys(msg)
		case LoadingView:
			if msg.String() == "ctrl+c" || msg.String() == "q" {
				return m, tea.Quit
			}
		}
		return m, nil

	case catalogProgressMsg:
		m.catalogMsg = msg.Message
		return m, m.waitForCatalogProgress()

	case catalogReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.view = MenuView
		return m, nil

	case trackLoadedMsg:
		m.loadingTrack = false
		if msg.err != nil {
			// unplayable preview: the round is forfeited, not the session
			result := m.engine.SkipRound()
			m.exhausted = &result
			m.lastGuess = nil
			m.view = RoundResultView
			return m, nil
		}
		return m, m.playTier()

	case audioTickMsg:
		m.elapsed, m.total = msg.elapsed, msg.total
		return m, m.waitForAudio()

	case audioDoneMsg:
		m.listening = false
		if m.total > 0 {
			m.elapsed = m.total
		}
		return m, nil

	case scoresLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.scores = msg.scores
		m.view = ScoresView
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.history = msg.records
		m.view = HistoryView
		return m, nil
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case MenuView:
		return m.renderMenu()
	case RoundView:
		return m.renderRound()
	case RoundResultView:
		return m.renderRoundResult()
	case SummaryView:
		return m.renderSummary()
	case ScoresView:
		return m.renderScores()
	case HistoryView:
		return m.renderHistory()
	default:
		return ""
	}
}

func (m *Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		return m, m.startGame()
	case key.Matches(msg, m.keys.scores):
		return m, m.loadScores()
	case key.Matches(msg, m.keys.history):
		return m, m.loadHistory()
	}
	return m, nil
}

func (m *Model) handleRoundKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		m.engine.StopAudio()
		return m, tea.Quit

	case key.Matches(msg, m.keys.back):
		m.engine.StopAudio()
		m.view = MenuView
		return m, nil

	case key.Matches(msg, m.keys.play):
		if m.loadingTrack {
			return m, nil
		}
		return m, m.playTier()

	case key.Matches(msg, m.keys.reveal):
		result := m.engine.RevealMore()
		if !result.HasMore {
			m.exhausted = &result
			m.lastGuess = nil
			m.view = RoundResultView
			return m, nil
		}
		m.elapsed, m.total = 0, 0
		return m, nil

	case key.Matches(msg, m.keys.up):
		if m.suggestIdx > 0 {
			m.suggestIdx--
		}
		return m, nil

	case key.Matches(msg, m.keys.down):
		if m.suggestIdx < len(m.suggestions)-1 {
			m.suggestIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.enter):
		if len(m.suggestions) == 0 {
			return m, nil
		}
		guess := m.suggestions[m.suggestIdx]
		result := m.engine.SubmitGuess(guess.ID)
		if !result.Valid {
			return m, nil
		}
		m.lastGuess = &result
		m.exhausted = nil
		m.view = RoundResultView
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.suggestions = m.engine.SearchTracks(m.input.Value())
	m.suggestIdx = 0
	return m, cmd
}

func (m *Model) handleRoundResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		next := m.engine.NextRound()
		if next.GameOver {
			summary := m.engine.EndGame()
			m.summary = &summary
			m.view = SummaryView
			return m, nil
		}
		m.view = RoundView
		m.resetRoundUI()
		return m, m.loadTrack()
	}
	return m, nil
}

func (m *Model) handleSummaryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		return m, m.startGame()
	case key.Matches(msg, m.keys.scores):
		return m, m.loadScores()
	case key.Matches(msg, m.keys.history):
		return m, m.loadHistory()
	}
	return m, nil
}

func (m *Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.summary != nil {
			m.view = SummaryView
		} else {
			m.view = MenuView
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) startGame() tea.Cmd {
	m.engine.StartGame()
	m.summary = nil
	m.view = RoundView
	m.resetRoundUI()
	return m.loadTrack()
}

func (m *Model) resetRoundUI() {
	m.input.SetValue("")
	m.suggestions = nil
	m.suggestIdx = 0
	m.elapsed, m.total = 0, 0
	m.lastGuess = nil
	m.exhausted = nil
}

func (m *Model) initializeCatalog() tea.Cmd {
	return func() tea.Msg {
		tracks, err := m.engine.Initialize(m.ctx, func(update game.ProgressUpdate) {
			select {
			case m.progressCh <- update:
			default:
			}
		})
		close(m.progressCh)
		return catalogReadyMsg{count: len(tracks), err: err}
	}
}

func (m *Model) waitForCatalogProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressCh
		if !ok {
			return nil
		}
		return catalogProgressMsg(update)
	}
}

func (m *Model) loadTrack() tea.Cmd {
	m.loadingTrack = true
	return func() tea.Msg {
		return trackLoadedMsg{err: m.engine.LoadCurrentTrack(m.ctx)}
	}
}

func (m *Model) playTier() tea.Cmd {
	m.elapsed, m.total = 0, 0
	m.engine.PlayCurrentTier(
		func(elapsed, total float64) {
			m.pushAudio(audioEvent{elapsed: elapsed, total: total})
		},
		func() {
			m.pushAudio(audioEvent{done: true})
		},
	)

	if m.listening {
		return nil
	}
	m.listening = true
	return m.waitForAudio()
}

// pushAudio forwards an audio callback into the TUI loop without blocking the
// audio goroutine.
func (m *Model) pushAudio(event audioEvent) {
	select {
	case m.audioCh <- event:
	default:
	}
}

func (m *Model) waitForAudio() tea.Cmd {
	return func() tea.Msg {
		event := <-m.audioCh
		if event.done {
			return audioDoneMsg{}
		}
		return audioTickMsg{elapsed: event.elapsed, total: event.total}
	}
}

func (m *Model) loadScores() tea.Cmd {
	return func() tea.Msg {
		scores, err := m.store.Scores.List()
		return scoresLoadedMsg{scores: scores, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	return func() tea.Msg {
		records, err := m.store.History.List(0)
		return historyLoadedMsg{records: records, err: err}
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("SongSnap")
	return fmt.Sprintf("%s\n%s\n", title, m.catalogMsg)
}

func (m *Model) renderMenu() string {
	title := styles.title.Render("SongSnap — how fast can you name that tune?")
	body := fmt.Sprintf("%d tracks in your pool\n\nenter  play\ns      high scores\nh      history\nq      quit", len(m.engine.Tracks()))
	return fmt.Sprintf("%s\n%s\n", title, body)
}

func (m *Model) renderRound() string {
	round := m.engine.CurrentRound()
	if round == nil {
		return ""
	}

	title := styles.title.Render(fmt.Sprintf("Round %d/%d", round.RoundNumber, round.TotalRounds))
	tier := fmt.Sprintf("%s clip — %s, %d points", formatSeconds(round.Tier.Seconds), round.Tier.Difficulty, round.Tier.Points)
	score := styles.ok.Render(fmt.Sprintf("Score: %d", m.engine.Score()))
	if streak := m.engine.Streak(); streak > 1 {
		score += styles.warn.Render(fmt.Sprintf("  %d in a row!", streak))
	}

	var bar string
	if m.total > 0 {
		bar = m.progressBar.ViewAs(m.elapsed / m.total)
	} else {
		bar = m.progressBar.ViewAs(0)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n%s\n%s\n\n%s\n\n%s\n", title, score, tier, bar, m.input.View()))

	for i, track := range m.suggestions {
		cursor := "  "
		line := fmt.Sprintf("%s — %s", track.Title, track.Artist())
		if i == m.suggestIdx {
			cursor = "> "
			line = styles.ok.Render(line)
		}
		sb.WriteString(cursor + line + "\n")
	}

	helpKeys := []key.Binding{m.keys.play, m.keys.reveal, m.keys.enter, m.keys.back}
	sb.WriteString("\n" + m.help.ShortHelpView(helpKeys))

	return sb.String()
}

func (m *Model) renderRoundResult() string {
	var sb strings.Builder

	switch {
	case m.lastGuess != nil && m.lastGuess.Correct:
		sb.WriteString(styles.ok.Render(fmt.Sprintf("✓ Correct! +%d points", m.lastGuess.Points)))
		sb.WriteString(fmt.Sprintf("\n\n%s — %s\n", m.lastGuess.Track.Title, m.lastGuess.Track.Artist()))
	case m.lastGuess != nil:
		sb.WriteString(styles.err.Render("✗ Not this one"))
		sb.WriteString(fmt.Sprintf("\n\nIt was %s — %s\n", m.lastGuess.Track.Title, m.lastGuess.Track.Artist()))
	case m.exhausted != nil:
		sb.WriteString(styles.warn.Render("⏱ Out of time"))
		sb.WriteString(fmt.Sprintf("\n\nIt was %s — %s\n", m.exhausted.Track.Title, m.exhausted.Track.Artist()))
	}

	sb.WriteString(styles.ok.Render(fmt.Sprintf("\nScore: %d", m.engine.Score())))
	sb.WriteString("\n\n" + styles.help.Render("press enter to continue"))

	return sb.String()
}

func (m *Model) renderSummary() string {
	if m.summary == nil {
		return ""
	}

	title := styles.title.Render("Game Over")
	totals := fmt.Sprintf(
		"Final score: %d\nCorrect: %d/%d (%d%%)\nBest streak: %d",
		m.summary.Score, m.summary.CorrectCount, m.summary.TotalRounds, m.summary.Accuracy, m.summary.BestStreak,
	)

	var rounds strings.Builder
	for i, result := range m.summary.Rounds {
		mark := styles.err.Render("✗")
		if result.Correct {
			mark = styles.ok.Render("✓")
		}
		rounds.WriteString(fmt.Sprintf("%2d. %s %s — %s (%d pts)\n", i+1, mark, result.Track.Title, result.Track.Artist(), result.Points))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.scores, m.keys.history, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", title, totals, rounds.String(), helpView)
}

func (m *Model) renderScores() string {
	title := styles.title.Render("High Scores")
	table := formatter.HighScoreTable(m.scores, time.Now())
	return fmt.Sprintf("%s\n%s\n%s", title, table, styles.help.Render("esc back, q quit"))
}

func (m *Model) renderHistory() string {
	title := styles.title.Render("Recent Games")
	body := formatter.HistoryText(m.history, time.Now())
	return fmt.Sprintf("%s\n%s\n%s", title, body, styles.help.Render("esc back, q quit"))
}

func formatSeconds(s float64) string {
	if s == float64(int(s)) {
		return fmt.Sprintf("%ds", int(s))
	}
	return fmt.Sprintf("%.1fs", s)
}
