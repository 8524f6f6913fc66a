// Package auction implements the per-asset bidding ladder that runs while a
// game sits in its auction phase.
//
// # Core Types
//
// Auction: the sub-state of one auction, keyed by player. Every replica holds
// its own copy and only ever changes the entry of its own player.
//
// PlayerState: bid, last action, round and the winner the player has chosen.
//
// # Rounds
//
// A player acts at most once per round (Bid, Stand or Pass) and then moves to
// the next round once every peer has either acted, passed or moved ahead.
// A winner is chosen locally from the player's own view; Merge folds a peer's
// view in so that all players converge on the same winner before the
// initiator may close the auction.
package auction
