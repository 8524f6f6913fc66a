// Package monopoly implements the rules of the board game as a pure state
// machine over immutable snapshots.
//
// # Core Types
//
// GameState: one snapshot of the whole game, encoded canonically as YAML.
// Its Digest identifies it and seeds every random draw taken from it.
//
// Action: a legal move returned by EnabledActions. Applying an action clones
// the snapshot it was enumerated on and returns the successor.
//
// # Phases
//
// A turn goes pre-roll → roll → post-roll → doubles-check and then either
// back to pre-roll (after doubles) or into free 4 all, where every player in
// turn may manage its properties before the turn passes on. Post-roll may
// detour through bankruptcy prevention or an auction. Each phase is served by
// one handler of the dispatch table in actions.go.
//
// # Replication
//
// Every player keeps its own chain of snapshots. Reconcile merges a peer's
// snapshot into the local one and CheckInvariants guards every snapshot
// before it is committed.
package monopoly
