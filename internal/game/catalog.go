package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/songsnap/internal/models"
	"github.com/desertthunder/songsnap/internal/shared"
)

// trackPageSize is the page size requested from each catalog endpoint.
const trackPageSize = 50

// InsufficientTracksError reports a catalog too small for a full game.
type InsufficientTracksError struct {
	Found    int
	Required int
}

func (e *InsufficientTracksError) Error() string {
	return fmt.Sprintf("not enough tracks with previews: found %d, need at least %d", e.Found, e.Required)
}

// Phase identifies a step of catalog assembly for progress narration.
type Phase int

const (
	FetchTopTracks Phase = iota
	FetchSavedTracks
	BuildCatalog
)

func (p Phase) String() string {
	switch p {
	case FetchTopTracks:
		return "fetch_top_tracks"
	case FetchSavedTracks:
		return "fetch_saved_tracks"
	case BuildCatalog:
		return "build_catalog"
	default:
		return "unknown"
	}
}

// ProgressUpdate represents a progress event during catalog assembly.
//
// Purely narrative: consumers display the message, nothing more.
type ProgressUpdate struct {
	Phase   Phase
	Message string
}

// Initialize assembles the game catalog: both collections are fetched, merged
// in top-tracks-first order, filtered to preview-eligible tracks, and
// deduplicated by ID (first occurrence wins).
//
// A failure of one collection degrades to an empty page; authentication
// failures and a failure of both collections propagate. A pool smaller than
// the configured rounds per game fails with [*InsufficientTracksError].
//
// onProgress is an optional narration sink and never drives control flow.
func (e *Engine) Initialize(ctx context.Context, onProgress func(ProgressUpdate)) ([]models.Track, error) {
	e.resetSession()
	e.tracks = nil

	notify := func(phase Phase, message string) {
		if onProgress != nil {
			onProgress(ProgressUpdate{Phase: phase, Message: message})
		}
	}

	notify(FetchTopTracks, "Fetching your top tracks...")
	topTracks, topErr := e.source.TopTracks(ctx, trackPageSize)
	if topErr != nil {
		if isAuthError(topErr) {
			return nil, topErr
		}
		e.logger.Warn("could not fetch top tracks", "error", topErr)
	}

	notify(FetchSavedTracks, "Fetching your saved tracks...")
	savedTracks, savedErr := e.source.SavedTracks(ctx, trackPageSize)
	if savedErr != nil {
		if isAuthError(savedErr) {
			return nil, savedErr
		}
		e.logger.Warn("could not fetch saved tracks", "error", savedErr)
	}

	if topErr != nil && savedErr != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, savedErr)
	}

	notify(BuildCatalog, "Building your track pool...")

	seen := make(map[string]struct{})
	var pool []models.Track
	for _, track := range append(topTracks, savedTracks...) {
		if !track.Playable() {
			continue
		}
		if _, dup := seen[track.ID]; dup {
			continue
		}
		seen[track.ID] = struct{}{}
		pool = append(pool, track)
	}

	if len(pool) < e.roundsPerGame {
		return nil, &InsufficientTracksError{Found: len(pool), Required: e.roundsPerGame}
	}

	e.tracks = pool
	e.logger.Info("catalog assembled", "eligible", len(pool))

	return pool, nil
}

func isAuthError(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated) ||
		errors.Is(err, shared.ErrTokenExpired) ||
		errors.Is(err, shared.ErrNoRefreshToken) ||
		errors.Is(err, shared.ErrRefreshFailed)
}
