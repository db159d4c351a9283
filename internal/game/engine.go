package game

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songsnap/internal/models"
	"github.com/desertthunder/songsnap/internal/shared"
)

// DefaultRoundsPerGame is the session length when none is configured.
const DefaultRoundsPerGame = 10

// TrackSource supplies the two catalog collections the game draws from.
// Implemented by services.SpotifyService.
type TrackSource interface {
	TopTracks(ctx context.Context, limit int) ([]models.Track, error)
	SavedTracks(ctx context.Context, limit int) ([]models.Track, error)
}

// Player is the audio playback collaborator. Implemented by audio.Controller.
type Player interface {
	Load(ctx context.Context, url string) error
	PlayForDuration(seconds float64, onProgress func(elapsed, total float64), onComplete func())
	Pause()
	Stop()
	IsPlaying() bool
	SetVolume(v float64)
	Destroy()
}

// ScoreStore persists finished games. Implemented by repositories.ScoreStore.
// Persistence is best-effort: the engine logs and swallows store failures.
type ScoreStore interface {
	RecordHighScore(score, correct, total int) (int, error)
	AppendHistory(record models.GameRecord) error
}

// RoundResult is the immutable archive of one finished round.
type RoundResult struct {
	Track   models.Track
	Correct bool
	// GuessedAt is the tier index the round ended on, or -1 when the
	// reveal tiers were exhausted without a correct guess.
	GuessedAt int
	Points    int
}

// RoundView is a snapshot of the current round handed to callers. It carries
// copies only, so the presentation layer cannot corrupt engine state.
type RoundView struct {
	RoundNumber int
	TotalRounds int
	Track       models.Track
	TierIndex   int
	Tier        Tier
	Score       int
	HasPlayed   bool
	IsComplete  bool
}

// GameStart reports the shape of a freshly started session.
type GameStart struct {
	TotalRounds  int
	CurrentRound int
}

// GuessResult reports the outcome of a guess submission. Valid is false when
// there was no active round to guess on; nothing was mutated in that case.
type GuessResult struct {
	Valid      bool
	Correct    bool
	Points     int
	TotalScore int
	TierIndex  int
	Track      models.Track
}

// RevealResult reports a tier advance. HasMore false means the tiers were
// exhausted and the round was closed as a loss; Track carries the answer.
type RevealResult struct {
	HasMore   bool
	Tier      Tier
	TierIndex int
	Track     models.Track
}

// NextRoundResult reports a round transition.
type NextRoundResult struct {
	GameOver bool
	Round    *RoundView
}

// Summary is the immutable record of a finished session.
type Summary struct {
	Score        int
	CorrectCount int
	TotalRounds  int
	Accuracy     int
	BestStreak   int
	Rounds       []RoundResult
}

// Engine drives one play session: catalog assembly, the per-round reveal and
// guess protocol, score and streak bookkeeping, and end-of-game persistence.
//
// Engines are plain constructed values, not singletons; all collaborators are
// injected. Methods are not safe for concurrent use: the engine expects the
// single-goroutine, event-driven call pattern of the TUI loop.
type Engine struct {
	source TrackSource
	player Player
	store  ScoreStore
	logger *log.Logger
	rng    *rand.Rand

	roundsPerGame int

	// catalog, assembled once per Initialize
	tracks []models.Track

	// session state
	gameTracks           []models.Track
	currentRoundIndex    int
	currentTierIndex     int
	score                int
	roundScores          []int
	correctCount         int
	currentStreak        int
	bestStreak           int
	hasPlayedCurrentTier bool
	isRoundComplete      bool
	roundResults         []RoundResult
	finalized            bool
	lastSummary          *Summary
}

// EngineOpts contains the collaborators and settings for a new [Engine].
type EngineOpts struct {
	Source        TrackSource
	Player        Player
	Store         ScoreStore
	Logger        *log.Logger
	Rand          *rand.Rand
	RoundsPerGame int
}

// NewEngine creates an engine with the provided collaborators. Rand may be
// seeded for deterministic draws; it defaults to a time-seeded source.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.RoundsPerGame <= 0 {
		opts.RoundsPerGame = DefaultRoundsPerGame
	}

	e := &Engine{
		source:        opts.Source,
		player:        opts.Player,
		store:         opts.Store,
		logger:        opts.Logger,
		rng:           opts.Rand,
		roundsPerGame: opts.RoundsPerGame,
	}
	e.resetSession()

	return e
}

// resetSession clears all per-session state. The assembled catalog survives so
// a new game can be started without re-fetching.
func (e *Engine) resetSession() {
	e.gameTracks = nil
	e.currentRoundIndex = 0
	e.currentTierIndex = 0
	e.score = 0
	e.roundScores = nil
	e.correctCount = 0
	e.currentStreak = 0
	e.bestStreak = 0
	e.hasPlayedCurrentTier = false
	e.isRoundComplete = false
	e.roundResults = nil
	e.finalized = false
	e.lastSummary = nil
}

// StartGame resets the session and draws this game's round sequence: a
// Fisher-Yates permutation of the eligible pool truncated to the configured
// round count. The draw is fixed for the session's lifetime.
func (e *Engine) StartGame() GameStart {
	e.resetSession()

	drawn := make([]models.Track, len(e.tracks))
	copy(drawn, e.tracks)
	for i := len(drawn) - 1; i > 0; i-- {
		j := e.rng.Intn(i + 1)
		drawn[i], drawn[j] = drawn[j], drawn[i]
	}

	if len(drawn) > e.roundsPerGame {
		drawn = drawn[:e.roundsPerGame]
	}
	e.gameTracks = drawn

	return GameStart{TotalRounds: len(e.gameTracks), CurrentRound: 1}
}

// CurrentRound returns a snapshot of the active round, or nil once the round
// index has passed the end of the draw.
func (e *Engine) CurrentRound() *RoundView {
	if e.currentRoundIndex >= len(e.gameTracks) {
		return nil
	}

	tier, _ := TierInfo(e.currentTierIndex)

	return &RoundView{
		RoundNumber: e.currentRoundIndex + 1,
		TotalRounds: len(e.gameTracks),
		Track:       e.gameTracks[e.currentRoundIndex],
		TierIndex:   e.currentTierIndex,
		Tier:        tier,
		Score:       e.score,
		HasPlayed:   e.hasPlayedCurrentTier,
		IsComplete:  e.isRoundComplete,
	}
}

// LoadCurrentTrack loads the active round's preview into the player.
func (e *Engine) LoadCurrentTrack(ctx context.Context) error {
	round := e.CurrentRound()
	if round == nil {
		return shared.ErrNoActiveRound
	}

	return e.player.Load(ctx, round.Track.PreviewURL)
}

// PlayCurrentTier plays the current tier's clip. May be called repeatedly to
// replay the same tier; it never advances round state beyond the played flag.
func (e *Engine) PlayCurrentTier(onProgress func(elapsed, total float64), onComplete func()) {
	if e.CurrentRound() == nil {
		return
	}

	e.hasPlayedCurrentTier = true
	e.player.PlayForDuration(SecondsForTier(e.currentTierIndex), onProgress, onComplete)
}

// StopAudio halts playback. Safe to call at any time.
func (e *Engine) StopAudio() {
	e.player.Stop()
}

// IsPlaying reports whether the player is actively producing audio.
func (e *Engine) IsPlaying() bool {
	return e.player.IsPlaying()
}

// SubmitGuess resolves the active round against the guessed track ID. Matching
// is exact ID equality only. Calls without an active, incomplete round return
// Valid false and mutate nothing; otherwise the round is completed and exactly
// one [RoundResult] is archived.
func (e *Engine) SubmitGuess(guessTrackID string) GuessResult {
	round := e.CurrentRound()
	if round == nil || e.isRoundComplete {
		return GuessResult{Valid: false}
	}

	correct := guessTrackID == round.Track.ID
	points := 0

	if correct {
		points = PointsForTier(e.currentTierIndex)
		e.score += points
		e.correctCount++
		e.currentStreak++
		if e.currentStreak > e.bestStreak {
			e.bestStreak = e.currentStreak
		}
	} else {
		e.currentStreak = 0
	}

	e.roundScores = append(e.roundScores, points)
	e.isRoundComplete = true
	e.roundResults = append(e.roundResults, RoundResult{
		Track:     round.Track,
		Correct:   correct,
		GuessedAt: e.currentTierIndex,
		Points:    points,
	})

	e.player.Stop()

	return GuessResult{
		Valid:      true,
		Correct:    correct,
		Points:     points,
		TotalScore: e.score,
		TierIndex:  e.currentTierIndex,
		Track:      round.Track,
	}
}

// RevealMore advances to the next reveal tier. At the last tier this is the
// exhaustion path: the round closes as a loss, the streak resets, and the
// answer is returned so the caller can show it.
func (e *Engine) RevealMore() RevealResult {
	round := e.CurrentRound()
	if round == nil || e.isRoundComplete {
		return RevealResult{HasMore: false}
	}

	if e.currentTierIndex >= len(TimeTiers)-1 {
		e.isRoundComplete = true
		e.currentStreak = 0
		e.roundScores = append(e.roundScores, 0)
		e.roundResults = append(e.roundResults, RoundResult{
			Track:     round.Track,
			Correct:   false,
			GuessedAt: -1,
			Points:    0,
		})

		e.player.Stop()

		return RevealResult{HasMore: false, Track: round.Track}
	}

	e.currentTierIndex++
	e.hasPlayedCurrentTier = false

	tier, _ := TierInfo(e.currentTierIndex)

	return RevealResult{HasMore: true, Tier: tier, TierIndex: e.currentTierIndex}
}

// SkipRound closes the active round as a loss without a guess, used when the
// round's preview cannot be played. It archives the same result as reveal
// exhaustion: zero points, streak reset, answer returned for display. A no-op
// when no round is active or the round is already complete.
func (e *Engine) SkipRound() RevealResult {
	round := e.CurrentRound()
	if round == nil || e.isRoundComplete {
		return RevealResult{HasMore: false}
	}

	e.isRoundComplete = true
	e.currentStreak = 0
	e.roundScores = append(e.roundScores, 0)
	e.roundResults = append(e.roundResults, RoundResult{
		Track:     round.Track,
		Correct:   false,
		GuessedAt: -1,
		Points:    0,
	})

	e.player.Stop()

	return RevealResult{HasMore: false, Track: round.Track}
}

// NextRound advances to the next round, or reports game-over once the draw is
// exhausted. The round index only ever moves forward.
func (e *Engine) NextRound() NextRoundResult {
	e.currentRoundIndex++
	e.currentTierIndex = 0
	e.hasPlayedCurrentTier = false
	e.isRoundComplete = false

	if e.currentRoundIndex >= len(e.gameTracks) {
		return NextRoundResult{GameOver: true}
	}

	return NextRoundResult{GameOver: false, Round: e.CurrentRound()}
}

// EndGame finalizes the session into a [Summary] and persists a high-score
// entry and a history record. Finalization happens at most once: repeated
// calls return the cached summary without writing again. Store failures are
// logged and swallowed; score history is a convenience, not gameplay.
func (e *Engine) EndGame() Summary {
	if e.finalized && e.lastSummary != nil {
		return *e.lastSummary
	}

	total := len(e.gameTracks)
	accuracy := 0
	if total > 0 {
		accuracy = int(float64(e.correctCount)/float64(total)*100 + 0.5)
	}

	summary := Summary{
		Score:        e.score,
		CorrectCount: e.correctCount,
		TotalRounds:  total,
		Accuracy:     accuracy,
		BestStreak:   e.bestStreak,
		Rounds:       append([]RoundResult(nil), e.roundResults...),
	}

	e.finalized = true
	e.lastSummary = &summary

	e.persist(summary)

	return summary
}

// persist writes the high-score and history entries for a finished session.
func (e *Engine) persist(summary Summary) {
	if e.store == nil {
		return
	}

	if rank, err := e.store.RecordHighScore(summary.Score, summary.CorrectCount, summary.TotalRounds); err != nil {
		e.logger.Warn("failed to record high score", "error", err)
	} else {
		e.logger.Info("high score recorded", "rank", rank, "score", summary.Score)
	}

	rounds := make([]models.RoundRecord, 0, len(summary.Rounds))
	for _, r := range summary.Rounds {
		rounds = append(rounds, models.RoundRecord{
			TrackID:   r.Track.ID,
			TrackName: r.Track.Title,
			Artist:    r.Track.Artist(),
			Correct:   r.Correct,
			Points:    r.Points,
		})
	}

	record := models.GameRecord{
		Score:    summary.Score,
		Correct:  summary.CorrectCount,
		Total:    summary.TotalRounds,
		Rounds:   rounds,
		PlayedAt: time.Now(),
	}

	if err := e.store.AppendHistory(record); err != nil {
		e.logger.Warn("failed to append game history", "error", err)
	}
}

// SearchTracks returns up to eight catalog tracks whose title or primary
// artist contains the query, case-insensitively. Queries shorter than two
// characters return nothing.
func (e *Engine) SearchTracks(query string) []models.Track {
	query = shared.NormalizeQuery(query)
	if len(query) < 2 {
		return nil
	}

	var matches []models.Track
	for _, track := range e.tracks {
		title := strings.ToLower(track.Title)
		artist := strings.ToLower(track.Artist())
		if strings.Contains(title, query) || strings.Contains(artist, query) {
			matches = append(matches, track)
			if len(matches) == 8 {
				break
			}
		}
	}

	return matches
}

// Tracks returns the assembled catalog.
func (e *Engine) Tracks() []models.Track {
	return e.tracks
}

// Score returns the running session score.
func (e *Engine) Score() int { return e.score }

// Streak returns the current run of consecutive correct guesses.
func (e *Engine) Streak() int { return e.currentStreak }

// BestStreak returns the longest streak observed this session.
func (e *Engine) BestStreak() int { return e.bestStreak }
