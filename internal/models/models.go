// package models defines the data model for the SongSnap guessing game
package models

import (
	"time"
)

// Track represents a playable Spotify track in the game catalog.
// Immutable once fetched; only tracks with a preview URL are playable.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	AlbumArtURL []string `json:"album_art_urls,omitempty"` // descending size
}

// Artist returns the track's primary artist, or an empty string.
func (t Track) Artist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// Playable reports whether the track exposes a preview clip.
func (t Track) Playable() bool {
	return t.PreviewURL != ""
}

// HighScore is one entry on the persisted leaderboard.
type HighScore struct {
	Score    int       `json:"score"`
	Correct  int       `json:"correct"`
	Total    int       `json:"total"`
	PlayedAt time.Time `json:"date"`
}

// RoundRecord is the per-round line embedded in a persisted game record.
type RoundRecord struct {
	TrackID   string `json:"trackId"`
	TrackName string `json:"trackName"`
	Artist    string `json:"artist"`
	Correct   bool   `json:"correct"`
	Points    int    `json:"points"`
}

// GameRecord is one completed game in the persisted history.
type GameRecord struct {
	ID       string        `json:"id,omitempty"`
	Score    int           `json:"score"`
	Correct  int           `json:"correct"`
	Total    int           `json:"total"`
	Rounds   []RoundRecord `json:"rounds"`
	PlayedAt time.Time     `json:"playedAt"`
}
