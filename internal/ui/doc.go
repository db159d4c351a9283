// Package ui implements the interactive game using bubbletea's Elm architecture.
//
// The TUI walks a multi-view session:
//  1. [LoadingView] : Catalog assembly with phase narration
//  2. [MenuView] : Start a game or browse boards
//  3. [RoundView] : Listen to the clip, type a guess, pick a suggestion
//  4. [RoundResultView] : Reveal the outcome of the round
//  5. [SummaryView] : Final score, accuracy, and the full round list
//  6. [ScoresView] / [HistoryView] : Persisted boards
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Audio progress flows through a channel from the playback controller's
// callbacks, keeping the 100ms ticks non-blocking for the audio goroutine.
//
// Round-view actions use ctrl chords (ctrl+p play, ctrl+t more time) so plain
// letters reach the guess input; contextual help renders via charmbracelet/bubbles/help.
package ui
