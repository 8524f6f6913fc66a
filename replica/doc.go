// Package replica drives one replica of a game: it picks and applies the
// player's actions, merges from peers when the player has nothing to do and
// commits every accepted snapshot.
//
// # Core Components
//
// Node: one replica. AdvanceOneStep performs exactly one action or one merge
// and commits the result.
//
// Store: persists each replica's chain of snapshots. MemoryStore keeps them
// in memory; the storage package keeps them on disk.
//
// Transport: fetches the latest snapshot of a peer. LocalTransport reads it
// from a shared Store.
//
// Chooser: picks one of the legal actions. RandomChooser picks uniformly
// with randomness derived from the snapshot.
//
// Simulation: runs every replica of a game in one process until the game
// ends.
//
// # Failure Handling
//
// A step whose result breaks an invariant is never committed: the replica
// stays at its last committed snapshot and the step returns a *StepError
// carrying the rejected snapshot. An unavailable peer is not an error, the
// node waits and tries another peer on the next step.
package replica
