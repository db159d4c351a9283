// Package game implements the guessing-game core: scoring rules, the round
// state machine, and the session engine.
//
// # Reveal Protocol
//
// Each round offers the player the fixed [TimeTiers] sequence of audio
// excerpts, shortest first. A correct guess earns the current tier's points;
// a wrong guess costs nothing but the streak; revealing past the last tier
// closes the round as a loss. Exactly one [RoundResult] is archived per
// round, whichever way it ends.
//
// # Session Flow
//
//	engine := game.NewEngine(game.EngineOpts{Source: spotify, Player: player, Store: store})
//	pool, err := engine.Initialize(ctx, nil)
//	start := engine.StartGame()
//	for {
//	    round := engine.CurrentRound()
//	    ... play tiers, reveal, guess ...
//	    if engine.NextRound().GameOver {
//	        break
//	    }
//	}
//	summary := engine.EndGame()
//
// The engine is single-goroutine: every operation is synchronous
// and atomic from the caller's perspective, with suspension only at the two
// catalog fetches and the player's media load.
package game
