// Package models defines domain entities shared across the SongSnap game.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Track] : Song metadata from Spotify with the preview clip URL used for playback
//
// 2. Persisted shapes: JSON-serializable records written to the local score store
//   - [HighScore] : One leaderboard entry (score, correct count, total rounds, date)
//   - [GameRecord] : One completed game with its per-round [RoundRecord] lines
//
// Game-session state (rounds, tiers, streaks) lives in internal/game and is
// deliberately not part of this package; only the immutable inputs and the
// archived outputs of a session appear here.
package models
